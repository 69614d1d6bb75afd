package store

import (
	"context"
	"strings"
	"sync"
)

// MemStore is an in-process Store used in tests and local development.
// All operations hold the store lock, so Txn is trivially serialized.
type MemStore struct {
	mu   sync.Mutex
	docs map[string]Document

	subMu  sync.Mutex
	subs   map[int]*memSub
	nextID int
}

type memSub struct {
	prefix string
	fn     SubscribeFunc
}

func NewMemStore() *MemStore {
	return &MemStore{
		docs: make(map[string]Document),
		subs: make(map[int]*memSub),
	}
}

func (m *MemStore) Get(ctx context.Context, path string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[path]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDoc(doc), nil
}

func (m *MemStore) Set(ctx context.Context, path string, doc Document) error {
	m.mu.Lock()
	m.docs[path] = cloneDoc(doc)
	m.mu.Unlock()
	m.notify(path, doc)
	return nil
}

func (m *MemStore) Update(ctx context.Context, path string, fields Document) error {
	m.mu.Lock()
	doc, ok := m.docs[path]
	if !ok {
		doc = Document{}
	} else {
		doc = cloneDoc(doc)
	}
	for k, v := range fields {
		doc[k] = v
	}
	m.docs[path] = doc
	m.mu.Unlock()
	m.notify(path, doc)
	return nil
}

func (m *MemStore) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	delete(m.docs, path)
	m.mu.Unlock()
	m.notify(path, nil)
	return nil
}

func (m *MemStore) Txn(ctx context.Context, path string, fn TxnFunc) error {
	m.mu.Lock()
	var current Document
	if doc, ok := m.docs[path]; ok {
		current = cloneDoc(doc)
	}
	next, err := fn(current)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.docs[path] = cloneDoc(next)
	m.mu.Unlock()
	m.notify(path, next)
	return nil
}

func (m *MemStore) List(ctx context.Context, prefix string) (map[string]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]Document)
	for path, doc := range m.docs {
		if strings.HasPrefix(path, prefix) {
			out[path] = cloneDoc(doc)
		}
	}
	return out, nil
}

func (m *MemStore) Subscribe(prefix string, fn SubscribeFunc) (func(), error) {
	m.subMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = &memSub{prefix: prefix, fn: fn}
	m.subMu.Unlock()
	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}, nil
}

// notify runs outside the store lock so subscribers may call back into the
// store.
func (m *MemStore) notify(path string, doc Document) {
	m.subMu.Lock()
	var fns []SubscribeFunc
	for _, s := range m.subs {
		if strings.HasPrefix(path, s.prefix) {
			fns = append(fns, s.fn)
		}
	}
	m.subMu.Unlock()
	for _, fn := range fns {
		fn(path, cloneDoc(doc))
	}
}

func cloneDoc(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
