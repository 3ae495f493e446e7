package store

import (
	"context"
	"errors"
	"fmt"
)

// Collection names.
const (
	CollectionProducts = "products"
	CollectionOrders   = "orders"
	CollectionUsers    = "users"
	CollectionSessions = "sessions"
	// CollectionEmails holds one document per registered email, keyed by
	// the normalized address.
	CollectionEmails = "user_emails"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrDuplicateID     = errors.New("document already exists")
	ErrVersionConflict = errors.New("document version conflict")
)

// DocumentStore persists JSON-shaped documents grouped in collections.
//
// Every document carries a version (the "__v" field of the stored shape).
// Insert stores version 0. Replace succeeds only while the stored version
// still equals the expected one and then stores expected+1, so callers set
// the new document's version to expected+1 before replacing it.
type DocumentStore interface {
	Insert(ctx context.Context, collection, id string, doc any) error
	Get(ctx context.Context, collection, id string, out any) error
	Replace(ctx context.Context, collection, id string, version int64, doc any) error
	Delete(ctx context.Context, collection, id string) error
	// Find decodes matching documents into out, which must point to a slice.
	Find(ctx context.Context, collection string, q Query, out any) error
	Count(ctx context.Context, collection string, q Query) (int64, error)
	Close(ctx context.Context) error
}

// Query selects documents by top-level fields.
type Query struct {
	// Equals requires each field to equal the given string value.
	Equals map[string]string
	// Search is a case-insensitive literal substring match.
	Search *Search
	// SortBy orders by a top-level field; insertion order when empty.
	SortBy     string
	Descending bool
	Skip       int64
	// Limit caps the result size; zero means unlimited.
	Limit int64
}

// Search matches documents whose Field contains Term, ignoring case.
type Search struct {
	Field string
	Term  string
}

// active reports whether the search restricts results.
func (s *Search) active() bool {
	return s != nil && s.Term != ""
}

// Retry runs fn until it returns something other than ErrVersionConflict or
// attempts are exhausted. The last error is returned.
func Retry(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = fn()
		if !errors.Is(err, ErrVersionConflict) {
			return err
		}
	}
	return fmt.Errorf("gave up after %d attempts: %w", attempts, err)
}
