// Package listview derives presentation state for the announcement board:
// chronological ordering for scheduled collections, fixed-size page slices
// with clamped navigation, and per-item status labels computed against the
// current time. Everything here is a pure function of its inputs.
package listview

import (
	"sort"
	"time"

	"medghor/pkg/domain"
)

// DefaultPageSize is the number of records shown per board page.
const DefaultPageSize = 5

// DueSoonWindow is the look-ahead threshold for the due_soon status.
const DueSoonWindow = 7 * 24 * time.Hour

// Status labels a record relative to the current time.
type Status string

const (
	// StatusInStock marks records of the simple collections; it carries no
	// temporal logic.
	StatusInStock Status = "in_stock"
	// StatusScheduled marks scheduled records more than a week out.
	StatusScheduled Status = "scheduled"
	// StatusDueSoon marks scheduled records arriving within the next week.
	StatusDueSoon Status = "due_soon"
	// StatusOverdue marks scheduled records whose expected date has passed.
	StatusOverdue Status = "overdue"
)

// StatusAt classifies a record against now. Records without an expected date
// are always in stock. Overdue and due_soon are mutually exclusive: the
// expected date is overdue strictly before now, due_soon strictly after now
// up to and including the seven-day window.
func StatusAt(r domain.Record, now time.Time) Status {
	if r.ExpectedDate == nil {
		return StatusInStock
	}
	diff := r.ExpectedDate.Sub(now)
	switch {
	case diff < 0:
		return StatusOverdue
	case diff > 0 && diff <= DueSoonWindow:
		return StatusDueSoon
	default:
		return StatusScheduled
	}
}

// SortScheduled returns a copy of records ordered ascending by expected date.
// The sort is stable, so equal dates keep their incoming order and re-sorting
// an already sorted slice is a no-op. Records without an expected date sort
// last, also in incoming order.
func SortScheduled(records []domain.Record) []domain.Record {
	out := make([]domain.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].ExpectedDate, out[j].ExpectedDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return out
}

// TotalPages returns ceil(n / pageSize) with a minimum of one page, so an
// empty collection still presents a single (empty) page.
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := (n + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// ClampPage forces a 1-indexed page cursor into [1, totalPages]. Navigation
// past either end is a no-op rather than a wraparound, and a stale cursor
// left over from a longer dataset lands on the last page.
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Paginate returns the slice of records on the given (already clamped)
// 1-indexed page.
func Paginate(records []domain.Record, page, pageSize int) []domain.Record {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	start := (page - 1) * pageSize
	if start >= len(records) || start < 0 {
		return nil
	}
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// Entry is one labelled row on a board page. Position is the 1-based rank of
// the record within the whole (sorted) collection, not within the page.
type Entry struct {
	Position int
	Record   domain.Record
	Status   Status
}

// Page is one rendered slice of a collection.
type Page struct {
	Collection domain.Collection
	Number     int
	TotalPages int
	TotalItems int
	Entries    []Entry
}

// BuildPage assembles the board page for a collection. Scheduled collections
// are sorted by expected date first; the requested cursor is clamped against
// the current dataset on every call.
func BuildPage(c domain.Collection, records []domain.Record, page int, now time.Time) Page {
	if c.Scheduled() {
		records = SortScheduled(records)
	}
	totalPages := TotalPages(len(records), DefaultPageSize)
	page = ClampPage(page, totalPages)
	slice := Paginate(records, page, DefaultPageSize)

	entries := make([]Entry, 0, len(slice))
	offset := (page - 1) * DefaultPageSize
	for i, r := range slice {
		entries = append(entries, Entry{
			Position: offset + i + 1,
			Record:   r,
			Status:   StatusAt(r, now),
		})
	}
	return Page{
		Collection: c,
		Number:     page,
		TotalPages: totalPages,
		TotalItems: len(records),
		Entries:    entries,
	}
}
