package store

import (
	"context"
	"encoding/json"
	"sync"
)

type memoryDoc struct {
	version int64
	data    []byte
}

type memoryCollection struct {
	order []string // insertion order
	docs  map[string]memoryDoc
}

// MemoryStore is an in-memory DocumentStore. Documents are kept as JSON so
// callers never share memory with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memoryCollection),
	}
}

func (ms *MemoryStore) collection(name string) *memoryCollection {
	c, ok := ms.collections[name]
	if !ok {
		c = &memoryCollection{docs: make(map[string]memoryDoc)}
		ms.collections[name] = c
	}
	return c
}

// Insert stores a new document at version 0.
func (ms *MemoryStore) Insert(ctx context.Context, collection, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	c := ms.collection(collection)
	if _, exists := c.docs[id]; exists {
		return ErrDuplicateID
	}
	c.docs[id] = memoryDoc{version: 0, data: data}
	c.order = append(c.order, id)
	return nil
}

// Get decodes a document by id into out.
func (ms *MemoryStore) Get(ctx context.Context, collection, id string, out any) error {
	ms.mu.RLock()
	c, ok := ms.collections[collection]
	var d memoryDoc
	var found bool
	if ok {
		d, found = c.docs[id]
	}
	ms.mu.RUnlock()

	if !found {
		return ErrNotFound
	}
	return json.Unmarshal(d.data, out)
}

// Replace swaps the document if its stored version equals version.
func (ms *MemoryStore) Replace(ctx context.Context, collection, id string, version int64, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	c, ok := ms.collections[collection]
	if !ok {
		return ErrNotFound
	}
	current, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}
	if current.version != version {
		return ErrVersionConflict
	}
	c.docs[id] = memoryDoc{version: version + 1, data: data}
	return nil
}

// Delete removes a document.
func (ms *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	c, ok := ms.collections[collection]
	if !ok {
		return ErrNotFound
	}
	if _, ok := c.docs[id]; !ok {
		return ErrNotFound
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Find decodes the documents matching q into out.
func (ms *MemoryStore) Find(ctx context.Context, collection string, q Query, out any) error {
	docs, err := evaluate(ms.snapshot(collection), q, true)
	if err != nil {
		return err
	}
	return decodeAll(docs, out)
}

// Count returns the number of documents matching q, ignoring Skip and Limit.
func (ms *MemoryStore) Count(ctx context.Context, collection string, q Query) (int64, error) {
	docs, err := evaluate(ms.snapshot(collection), q, false)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func (ms *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func (ms *MemoryStore) snapshot(collection string) []rawDoc {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	c, ok := ms.collections[collection]
	if !ok {
		return nil
	}
	docs := make([]rawDoc, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, rawDoc{data: c.docs[id].data})
	}
	return docs
}
