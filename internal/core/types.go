package core

import "medghor/pkg/domain"

type (
	Collection      = domain.Collection
	Record          = domain.Record
	Transaction     = domain.Transaction
	TransactionView = domain.TransactionView
	PersistentStore = domain.PersistentStore

	NotFoundError         = domain.NotFoundError
	ValidationError       = domain.ValidationError
	StoreUnavailableError = domain.StoreUnavailableError
)

const (
	CollectionProducts                = domain.CollectionProducts
	CollectionGenericProducts         = domain.CollectionGenericProducts
	CollectionUpcomingProducts        = domain.CollectionUpcomingProducts
	CollectionUpcomingGenericProducts = domain.CollectionUpcomingGenericProducts
)
