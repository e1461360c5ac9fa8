package domain

import "fmt"

// NotFoundError reports an edit or remove targeting an id that no longer
// exists within its collection.
type NotFoundError struct {
	Collection Collection
	ID         string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Collection, e.ID)
}

// ValidationError reports a rejected field value. The operation is not
// attempted against the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UnknownCollectionError reports an operation against a collection name that
// is not one of the four managed namespaces.
type UnknownCollectionError struct {
	Collection Collection
}

func (e UnknownCollectionError) Error() string {
	return fmt.Sprintf("unknown collection %q", e.Collection)
}

// StoreUnavailableError wraps a transport or backend failure from the
// persistent store. Callers surface it as a generic failure; nothing retries
// at this layer.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e StoreUnavailableError) Unwrap() error { return e.Err }
