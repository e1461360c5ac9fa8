// Package core exposes the typed inventory service façade over the
// persistent store, together with its observability hooks and storage driver
// selection.
package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"medghor/pkg/domain"
)

// RecordFields carries the caller-supplied fields of an add or edit
// operation. ID and CreatedAt are always store-assigned and never accepted
// from callers.
type RecordFields struct {
	Name         string
	ExpectedDate *time.Time
}

// Service exposes list/add/edit/remove operations for the four product
// collections. The same contract is replicated per collection; all validation
// happens here, before the store is touched.
type Service struct {
	store   domain.PersistentStore
	logger  Logger
	metrics MetricsRecorder
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger attaches a structured logger to the service.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches a metrics recorder to the service.
func WithMetrics(metrics MetricsRecorder) Option {
	return func(s *Service) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: NoopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListProducts returns all current branded products.
func (s *Service) ListProducts(ctx context.Context) ([]Record, error) {
	return s.list(ctx, "list_products", CollectionProducts)
}

// AddProduct creates a branded product and returns its fresh id.
func (s *Service) AddProduct(ctx context.Context, fields RecordFields) (string, error) {
	return s.add(ctx, "add_product", CollectionProducts, fields)
}

// EditProduct replaces the mutable fields of a branded product in place.
func (s *Service) EditProduct(ctx context.Context, id string, fields RecordFields) error {
	return s.edit(ctx, "edit_product", CollectionProducts, id, fields)
}

// RemoveProduct permanently deletes a branded product.
func (s *Service) RemoveProduct(ctx context.Context, id string) error {
	return s.remove(ctx, "remove_product", CollectionProducts, id)
}

// ListGenericProducts returns all current generic products.
func (s *Service) ListGenericProducts(ctx context.Context) ([]Record, error) {
	return s.list(ctx, "list_generic_products", CollectionGenericProducts)
}

// AddGenericProduct creates a generic product and returns its fresh id.
func (s *Service) AddGenericProduct(ctx context.Context, fields RecordFields) (string, error) {
	return s.add(ctx, "add_generic_product", CollectionGenericProducts, fields)
}

// EditGenericProduct replaces the mutable fields of a generic product in place.
func (s *Service) EditGenericProduct(ctx context.Context, id string, fields RecordFields) error {
	return s.edit(ctx, "edit_generic_product", CollectionGenericProducts, id, fields)
}

// RemoveGenericProduct permanently deletes a generic product.
func (s *Service) RemoveGenericProduct(ctx context.Context, id string) error {
	return s.remove(ctx, "remove_generic_product", CollectionGenericProducts, id)
}

// ListUpcomingProducts returns all scheduled branded products.
func (s *Service) ListUpcomingProducts(ctx context.Context) ([]Record, error) {
	return s.list(ctx, "list_upcoming_products", CollectionUpcomingProducts)
}

// AddUpcomingProduct creates a scheduled branded product and returns its fresh id.
func (s *Service) AddUpcomingProduct(ctx context.Context, fields RecordFields) (string, error) {
	return s.add(ctx, "add_upcoming_product", CollectionUpcomingProducts, fields)
}

// EditUpcomingProduct replaces the mutable fields of a scheduled branded product.
func (s *Service) EditUpcomingProduct(ctx context.Context, id string, fields RecordFields) error {
	return s.edit(ctx, "edit_upcoming_product", CollectionUpcomingProducts, id, fields)
}

// RemoveUpcomingProduct permanently deletes a scheduled branded product.
func (s *Service) RemoveUpcomingProduct(ctx context.Context, id string) error {
	return s.remove(ctx, "remove_upcoming_product", CollectionUpcomingProducts, id)
}

// ListUpcomingGenericProducts returns all scheduled generic products.
func (s *Service) ListUpcomingGenericProducts(ctx context.Context) ([]Record, error) {
	return s.list(ctx, "list_upcoming_generic_products", CollectionUpcomingGenericProducts)
}

// AddUpcomingGenericProduct creates a scheduled generic product and returns its fresh id.
func (s *Service) AddUpcomingGenericProduct(ctx context.Context, fields RecordFields) (string, error) {
	return s.add(ctx, "add_upcoming_generic_product", CollectionUpcomingGenericProducts, fields)
}

// EditUpcomingGenericProduct replaces the mutable fields of a scheduled generic product.
func (s *Service) EditUpcomingGenericProduct(ctx context.Context, id string, fields RecordFields) error {
	return s.edit(ctx, "edit_upcoming_generic_product", CollectionUpcomingGenericProducts, id, fields)
}

// RemoveUpcomingGenericProduct permanently deletes a scheduled generic product.
func (s *Service) RemoveUpcomingGenericProduct(ctx context.Context, id string) error {
	return s.remove(ctx, "remove_upcoming_generic_product", CollectionUpcomingGenericProducts, id)
}

// List returns all records of the named collection.
func (s *Service) List(ctx context.Context, c Collection) ([]Record, error) {
	if !domain.Known(c) {
		return nil, domain.UnknownCollectionError{Collection: c}
	}
	return s.list(ctx, "list_"+string(c), c)
}

// Add creates a record in the named collection.
func (s *Service) Add(ctx context.Context, c Collection, fields RecordFields) (string, error) {
	if !domain.Known(c) {
		return "", domain.UnknownCollectionError{Collection: c}
	}
	return s.add(ctx, "add_"+string(c), c, fields)
}

// Edit replaces the mutable fields of a record in the named collection.
func (s *Service) Edit(ctx context.Context, c Collection, id string, fields RecordFields) error {
	if !domain.Known(c) {
		return domain.UnknownCollectionError{Collection: c}
	}
	return s.edit(ctx, "edit_"+string(c), c, id, fields)
}

// Remove permanently deletes a record from the named collection.
func (s *Service) Remove(ctx context.Context, c Collection, id string) error {
	if !domain.Known(c) {
		return domain.UnknownCollectionError{Collection: c}
	}
	return s.remove(ctx, "remove_"+string(c), c, id)
}

// ListAll reads every collection in one consistent view, in the fixed
// report order. The report exporter is the primary consumer.
func (s *Service) ListAll(ctx context.Context) (map[Collection][]Record, error) {
	start := time.Now()
	out := make(map[Collection][]Record, len(domain.Collections()))
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		for _, c := range domain.Collections() {
			out[c] = view.List(c)
		}
		return nil
	})
	if err != nil {
		err = wrapStoreErr("list_all", err)
	}
	s.observe(ctx, "list_all", start, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) list(ctx context.Context, op string, c Collection) ([]Record, error) {
	start := time.Now()
	var out []Record
	err := s.store.View(ctx, func(view domain.TransactionView) error {
		out = view.List(c)
		return nil
	})
	if err != nil {
		err = wrapStoreErr(op, err)
	}
	s.observe(ctx, op, start, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) add(ctx context.Context, op string, c Collection, fields RecordFields) (string, error) {
	start := time.Now()
	id, err := s.doAdd(ctx, c, fields)
	s.observe(ctx, op, start, err)
	return id, err
}

func (s *Service) doAdd(ctx context.Context, c Collection, fields RecordFields) (string, error) {
	normalized, err := normalizeFields(c, fields)
	if err != nil {
		return "", err
	}
	var created Record
	err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		created, err = tx.Create(c, Record{
			Name:         normalized.Name,
			ExpectedDate: normalized.ExpectedDate,
		})
		return err
	})
	if err != nil {
		return "", wrapStoreErr("add", err)
	}
	return created.ID, nil
}

func (s *Service) edit(ctx context.Context, op string, c Collection, id string, fields RecordFields) error {
	start := time.Now()
	err := s.doEdit(ctx, c, id, fields)
	s.observe(ctx, op, start, err)
	return err
}

func (s *Service) doEdit(ctx context.Context, c Collection, id string, fields RecordFields) error {
	normalized, err := normalizeFields(c, fields)
	if err != nil {
		return err
	}
	err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.Update(c, id, func(r *Record) error {
			r.Name = normalized.Name
			r.ExpectedDate = normalized.ExpectedDate
			return nil
		})
		return err
	})
	return wrapStoreErr("edit", err)
}

func (s *Service) remove(ctx context.Context, op string, c Collection, id string) error {
	start := time.Now()
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.Delete(c, id)
	})
	err = wrapStoreErr("remove", err)
	s.observe(ctx, op, start, err)
	return err
}

// normalizeFields trims the name and enforces the per-shape field contract:
// a non-empty name always, an expected date only for scheduled collections.
func normalizeFields(c Collection, fields RecordFields) (RecordFields, error) {
	fields.Name = strings.TrimSpace(fields.Name)
	if fields.Name == "" {
		return RecordFields{}, domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if c.Scheduled() {
		if fields.ExpectedDate == nil {
			return RecordFields{}, domain.ValidationError{Field: "expectedDate", Reason: "required for scheduled products"}
		}
		d := fields.ExpectedDate.UTC()
		fields.ExpectedDate = &d
	} else {
		fields.ExpectedDate = nil
	}
	return fields, nil
}

// wrapStoreErr classifies store failures, passing typed domain errors through
// untouched so callers can match on them.
func wrapStoreErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var notFound domain.NotFoundError
	var invalid domain.ValidationError
	var unknown domain.UnknownCollectionError
	var unavailable domain.StoreUnavailableError
	if errors.As(err, &notFound) || errors.As(err, &invalid) ||
		errors.As(err, &unknown) || errors.As(err, &unavailable) {
		return err
	}
	return domain.StoreUnavailableError{Op: op, Err: err}
}

func (s *Service) observe(ctx context.Context, op string, start time.Time, err error) {
	duration := time.Since(start)
	if s.metrics != nil {
		s.metrics.Observe(ctx, op, err == nil, duration)
	}
	if err != nil {
		s.logger.Warn("operation failed", "operation", op, "error", err)
		return
	}
	s.logger.Debug("operation completed", "operation", op, "duration_ms", duration.Milliseconds())
}
