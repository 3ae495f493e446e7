package mocks

import (
	"context"
	"sync"

	"github.com/example/ec-storefront/internal/infrastructure/store"
)

// MockStore wraps a MemoryStore, records write calls and lets tests inject
// failures into Replace.
type MockStore struct {
	*store.MemoryStore

	mu sync.Mutex

	// For tracking calls in tests
	InsertCalls  []InsertCall
	ReplaceCalls []ReplaceCall
	DeleteCalls  []DeleteCall

	InsertErr error
	// ReplaceHook runs before each Replace with the 1-based call number.
	// A non-nil return is returned instead of performing the replace.
	ReplaceHook func(call int, collection, id string) error
}

// InsertCall records parameters passed to Insert
type InsertCall struct {
	Collection string
	ID         string
	Doc        any
}

// ReplaceCall records parameters passed to Replace
type ReplaceCall struct {
	Collection string
	ID         string
	Version    int64
	Doc        any
}

// DeleteCall records parameters passed to Delete
type DeleteCall struct {
	Collection string
	ID         string
}

// NewMockStore creates a new MockStore
func NewMockStore() *MockStore {
	return &MockStore{MemoryStore: store.NewMemoryStore()}
}

func (m *MockStore) Insert(ctx context.Context, collection, id string, doc any) error {
	m.mu.Lock()
	m.InsertCalls = append(m.InsertCalls, InsertCall{Collection: collection, ID: id, Doc: doc})
	err := m.InsertErr
	m.mu.Unlock()

	if err != nil {
		return err
	}
	return m.MemoryStore.Insert(ctx, collection, id, doc)
}

func (m *MockStore) Replace(ctx context.Context, collection, id string, version int64, doc any) error {
	m.mu.Lock()
	m.ReplaceCalls = append(m.ReplaceCalls, ReplaceCall{Collection: collection, ID: id, Version: version, Doc: doc})
	call := len(m.ReplaceCalls)
	hook := m.ReplaceHook
	m.mu.Unlock()

	if hook != nil {
		if err := hook(call, collection, id); err != nil {
			return err
		}
	}
	return m.MemoryStore.Replace(ctx, collection, id, version, doc)
}

func (m *MockStore) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, DeleteCall{Collection: collection, ID: id})
	m.mu.Unlock()

	return m.MemoryStore.Delete(ctx, collection, id)
}

// Seed inserts a document without recording the call.
func (m *MockStore) Seed(collection, id string, doc any) {
	if err := m.MemoryStore.Insert(context.Background(), collection, id, doc); err != nil {
		panic(err)
	}
}
