// Package domain defines the persistent records, collection identifiers, and
// error types shared by the medghor inventory service.
package domain

import "time"

// Collection identifies one of the four independent product namespaces.
type Collection string

// Supported collection identifiers used in persistence buckets and API paths.
const (
	// CollectionProducts holds branded products currently in stock.
	CollectionProducts Collection = "products"
	// CollectionGenericProducts holds generic products currently in stock.
	CollectionGenericProducts Collection = "genericProducts"
	// CollectionUpcomingProducts holds branded products with an expected arrival date.
	CollectionUpcomingProducts Collection = "upcomingProducts"
	// CollectionUpcomingGenericProducts holds generic products with an expected arrival date.
	CollectionUpcomingGenericProducts Collection = "upcomingGenericProducts"
)

// Collections lists every collection in the fixed report/display order:
// current branded, current generic, upcoming branded, upcoming generic.
func Collections() []Collection {
	return []Collection{
		CollectionProducts,
		CollectionGenericProducts,
		CollectionUpcomingProducts,
		CollectionUpcomingGenericProducts,
	}
}

// Known reports whether c names one of the four collections.
func Known(c Collection) bool {
	switch c {
	case CollectionProducts, CollectionGenericProducts,
		CollectionUpcomingProducts, CollectionUpcomingGenericProducts:
		return true
	}
	return false
}

// Scheduled reports whether records in c carry an expected arrival date.
func (c Collection) Scheduled() bool {
	return c == CollectionUpcomingProducts || c == CollectionUpcomingGenericProducts
}

// Base contains the store-assigned fields common to all records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Record is a single product entry. All four collections share this shape;
// ExpectedDate is set only for records in scheduled collections.
type Record struct {
	Base
	Name         string     `json:"name"`
	ExpectedDate *time.Time `json:"expected_date,omitempty"`
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	if r.ExpectedDate != nil {
		d := *r.ExpectedDate
		out.ExpectedDate = &d
	}
	return out
}
