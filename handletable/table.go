// Package handletable maps opaque handle IDs to the resources they stand for, so a
// host can pass IDs around instead of pointers. Releasing an ID closes its resource
// exactly once.
package handletable

import (
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrorUnknownHandle is returned for IDs that were never added or already released
	ErrorUnknownHandle = errors.New("Unknown handle")
	// ErrorClosed is returned by Add after Close
	ErrorClosed = errors.New("Handle table is closed")
)

type Table struct {
	sync.Mutex

	entries map[string]io.Closer
	closed  bool
}

func New() *Table {
	return &Table{
		entries: make(map[string]io.Closer),
	}
}

// Add stores r and returns a new ID for it
func (t *Table) Add(r io.Closer) (string, error) {
	t.Lock()
	defer t.Unlock()

	if t.closed {
		return "", ErrorClosed
	}

	id := uuid.New().String()
	t.entries[id] = r

	return id, nil
}

func (t *Table) Get(id string) (io.Closer, bool) {
	t.Lock()
	defer t.Unlock()

	r, ok := t.entries[id]
	return r, ok
}

func (t *Table) Len() int {
	t.Lock()
	defer t.Unlock()

	return len(t.entries)
}

// Release removes id from the table and closes its resource
func (t *Table) Release(id string) error {
	t.Lock()
	r, ok := t.entries[id]
	delete(t.entries, id)
	t.Unlock()

	if !ok {
		return ErrorUnknownHandle
	}

	return r.Close()
}

// Close releases every remaining resource and returns the first error
func (t *Table) Close() error {
	t.Lock()
	t.closed = true
	entries := t.entries
	t.entries = make(map[string]io.Closer)
	t.Unlock()

	var result error
	for _, r := range entries {
		if err := r.Close(); err != nil && result == nil {
			result = err
		}
	}

	return result
}
