// Package report builds the downloadable product summary PDF and runs the
// asynchronous export worker that stores generated artifacts.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"medghor/internal/listview"
	"medghor/pkg/domain"
)

// Organization header repeated at the top of every section page.
const (
	OrgName     = "MEDGHOR DISTRIBUTIONS"
	OrgLocation = "CHANCHAL, MALDA"
)

// sectionTitles maps each collection to its printed heading, in the fixed
// report order returned by domain.Collections().
var sectionTitles = map[domain.Collection]string{
	domain.CollectionProducts:                "Available Office Products",
	domain.CollectionGenericProducts:         "Available Generic Products",
	domain.CollectionUpcomingProducts:        "Upcoming Office Products",
	domain.CollectionUpcomingGenericProducts: "Upcoming Generic Products",
}

// istOffset is the Asia/Kolkata UTC offset in seconds (+05:30).
const istOffset = 5*3600 + 30*60

// Location returns the Asia/Kolkata time zone used for the report header and
// file name, falling back to a fixed IST offset when the zone database is
// unavailable.
func Location() *time.Location {
	if loc, err := time.LoadLocation("Asia/Kolkata"); err == nil {
		return loc
	}
	return time.FixedZone("IST", istOffset)
}

// FileName returns the artifact name for a report generated at now, e.g.
// medghor_product_summary(28-02-2026,09,45(PM)).pdf. The timestamp is
// rendered in the report time zone.
func FileName(now time.Time) string {
	local := now.In(Location())
	return fmt.Sprintf("medghor_product_summary(%s,%s,%s(%s)).pdf",
		local.Format("02-01-2006"),
		local.Format("03"),
		local.Format("04"),
		local.Format("PM"),
	)
}

// formatDate renders a date as M/D/YYYY without leading zeros, in the report
// time zone.
func formatDate(t time.Time) string {
	local := t.In(Location())
	return fmt.Sprintf("%d/%d/%d", int(local.Month()), local.Day(), local.Year())
}

// Build renders the four-section summary PDF to w. Sections appear in the
// fixed order: current branded, current generic, upcoming branded, upcoming
// generic. Scheduled sections are sorted ascending by expected date; input
// slices are never mutated. Empty sections still render their header and an
// empty table body.
func Build(w io.Writer, collections map[domain.Collection][]domain.Record, now time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 18)
	generated := now.In(Location())

	header := func(title string) {
		pdf.SetFont("Helvetica", "B", 16)
		pdf.CellFormat(0, 9, OrgName, "", 1, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 6, OrgLocation, "", 1, "C", false, 0, "")
		pdf.CellFormat(0, 6, "Generated: "+generated.Format("1/2/2006 3:04 PM")+" IST", "", 1, "C", false, 0, "")
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
		pdf.Ln(2)
	}

	for _, c := range domain.Collections() {
		records := collections[c]
		dateHeading := "Stocked Date"
		if c.Scheduled() {
			records = listview.SortScheduled(records)
			dateHeading = "Expected Date"
		}

		pdf.AddPage()
		header(sectionTitles[c])

		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(15, 8, "No.", "1", 0, "C", true, 0, "")
		pdf.CellFormat(120, 8, "Product Name", "1", 0, "L", true, 0, "")
		pdf.CellFormat(45, 8, dateHeading, "1", 1, "C", true, 0, "")

		pdf.SetFont("Helvetica", "", 10)
		for i, r := range records {
			date := r.CreatedAt
			if c.Scheduled() && r.ExpectedDate != nil {
				date = *r.ExpectedDate
			}
			pdf.CellFormat(15, 8, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
			pdf.CellFormat(120, 8, strings.ToUpper(r.Name), "1", 0, "L", false, 0, "")
			pdf.CellFormat(45, 8, formatDate(date), "1", 1, "C", false, 0, "")
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
