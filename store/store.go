package store

import (
	"context"
	"encoding/json"
	"errors"
)

// Document is one JSON document in the path-addressed store.
type Document map[string]interface{}

// ErrNotFound is returned by Get when no document exists at the path.
var ErrNotFound = errors.New("document not found")

// TxnFunc receives the current document (nil when the path is empty) and
// returns its replacement. Returning an error aborts the transaction.
type TxnFunc func(current Document) (Document, error)

// SubscribeFunc receives the document written at path after every
// successful write under the subscribed prefix. A delete delivers nil.
type SubscribeFunc func(path string, doc Document)

// Store is a path-addressed document store: point reads, point writes,
// field-level merges, serialized read-modify-write transactions, prefix
// listing and change subscriptions.
type Store interface {
	Get(ctx context.Context, path string) (Document, error)
	Set(ctx context.Context, path string, doc Document) error
	// Update merges fields into the document at path, creating it when
	// absent. Only top-level fields are replaced.
	Update(ctx context.Context, path string, fields Document) error
	Delete(ctx context.Context, path string) error
	// Txn runs fn against the current document at path and writes the
	// result. Concurrent Txn calls on the same path are serialized, so
	// read-modify-write sequences inside fn cannot lose updates.
	Txn(ctx context.Context, path string, fn TxnFunc) error
	// List returns every document whose path starts with prefix, keyed by
	// full path.
	List(ctx context.Context, prefix string) (map[string]Document, error)
	// Subscribe registers fn for change notifications under prefix and
	// returns a cancel function.
	Subscribe(prefix string, fn SubscribeFunc) (func(), error)
}

// Encode converts a typed value into a Document via its JSON form.
func Encode(v interface{}) (Document, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Decode fills a typed value from a Document via its JSON form.
func Decode(doc Document, v interface{}) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
