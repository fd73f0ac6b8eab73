// SPDX-License-Identifier: MPL-2.0

package staticfact

import (
	"errors"
	"maps"
	"slices"
	"sync"
)

const (
	// Inserted means the fact was added to the table.
	Inserted InsertResult = iota
	// Duplicate means the name was already defined; the table is unchanged.
	Duplicate
	// InvalidKey means the name is empty or starts with a decimal digit.
	InvalidKey
)

var (
	// ErrDuplicateKey is the cause attached to duplicate_key diagnostics.
	ErrDuplicateKey = errors.New("fact already defined")
	// ErrInvalidKey is the cause attached to invalid_key diagnostics.
	ErrInvalidKey = errors.New("invalid fact name")
)

type (
	// InsertResult is the outcome of Table.Insert.
	InsertResult int

	// Table maps fact names to values. The first value inserted for a name
	// is kept for the lifetime of the table. The zero value is empty and
	// ready to use; a Table is safe for concurrent use.
	Table struct {
		mu    sync.Mutex
		facts map[string]string
	}
)

// String returns a human-readable outcome name.
func (r InsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case Duplicate:
		return "duplicate"
	case InvalidKey:
		return "invalid key"
	default:
		return "unknown"
	}
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{facts: make(map[string]string)}
}

// ValidName reports whether name can be published as a fact: it must be
// non-empty and must not start with a decimal digit.
func ValidName(name string) bool {
	return name != "" && (name[0] < '0' || name[0] > '9')
}

// Insert adds name=value unless name is invalid or already present.
func (t *Table) Insert(name, value string) InsertResult {
	if !ValidName(name) {
		return InvalidKey
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.facts[name]; exists {
		return Duplicate
	}
	if t.facts == nil {
		t.facts = make(map[string]string)
	}
	t.facts[name] = value
	return Inserted
}

// Get returns the value for name.
func (t *Table) Get(name string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.facts[name]
	return v, ok
}

// Len returns the number of facts.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.facts)
}

// Facts returns a copy of the table contents.
func (t *Table) Facts() map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return maps.Clone(t.facts)
}

// Keys returns the fact names in lexical order.
func (t *Table) Keys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return slices.Sorted(maps.Keys(t.facts))
}
