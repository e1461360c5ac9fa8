package rest

import (
	"time"

	"medghor/internal/core"
	"medghor/internal/listview"
	"medghor/pkg/domain"
)

// recordPayload is the wire shape of add/edit requests. Dates travel as
// epoch milliseconds.
type recordPayload struct {
	Name         string `json:"name"`
	ExpectedDate *int64 `json:"expected_date,omitempty"`
}

func (p recordPayload) toFields() core.RecordFields {
	fields := core.RecordFields{Name: p.Name}
	if p.ExpectedDate != nil {
		t := time.UnixMilli(*p.ExpectedDate).UTC()
		fields.ExpectedDate = &t
	}
	return fields
}

// recordDTO is the wire shape of a stored record.
type recordDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
	ExpectedDate *int64 `json:"expected_date,omitempty"`
}

func toRecordDTO(r domain.Record) recordDTO {
	dto := recordDTO{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt.UnixMilli(),
		UpdatedAt: r.UpdatedAt.UnixMilli(),
	}
	if r.ExpectedDate != nil {
		ms := r.ExpectedDate.UnixMilli()
		dto.ExpectedDate = &ms
	}
	return dto
}

func toRecordDTOs(records []domain.Record) []recordDTO {
	out := make([]recordDTO, 0, len(records))
	for _, r := range records {
		out = append(out, toRecordDTO(r))
	}
	return out
}

// boardEntryDTO is one labelled row of a board page.
type boardEntryDTO struct {
	Position int       `json:"position"`
	Status   string    `json:"status"`
	Record   recordDTO `json:"record"`
}

// boardPageDTO is the wire shape of a board page.
type boardPageDTO struct {
	Collection string          `json:"collection"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	TotalItems int             `json:"total_items"`
	Entries    []boardEntryDTO `json:"entries"`
}

func toBoardPageDTO(p listview.Page) boardPageDTO {
	entries := make([]boardEntryDTO, 0, len(p.Entries))
	for _, e := range p.Entries {
		entries = append(entries, boardEntryDTO{
			Position: e.Position,
			Status:   string(e.Status),
			Record:   toRecordDTO(e.Record),
		})
	}
	return boardPageDTO{
		Collection: string(p.Collection),
		Page:       p.Number,
		TotalPages: p.TotalPages,
		TotalItems: p.TotalItems,
		Entries:    entries,
	}
}
