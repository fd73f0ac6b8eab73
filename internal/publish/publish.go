// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// ErrUnknownFormat is returned by ForFormat for unsupported format names.
var ErrUnknownFormat = errors.New("unknown output format")

type (
	// Fact is one published name/value pair.
	Fact struct {
		Name  string
		Value string
	}

	// FactSet is a list of facts sorted by name.
	FactSet []Fact

	// Publisher writes a FactSet to w in one output format.
	Publisher interface {
		Publish(w io.Writer, facts FactSet) error
	}

	// UnknownFormatError reports an unsupported format name.
	// It wraps ErrUnknownFormat for errors.Is() compatibility.
	UnknownFormatError struct {
		Format string
	}
)

var publishers = map[string]Publisher{
	"text": textPublisher{},
	"json": jsonPublisher{},
	"toml": tomlPublisher{},
	"yaml": yamlPublisher{},
	"env":  envPublisher{},
}

// NewFactSet builds a sorted FactSet from facts, prepending prefix to every name.
func NewFactSet(facts map[string]string, prefix string) FactSet {
	set := make(FactSet, 0, len(facts))
	for _, name := range slices.Sorted(maps.Keys(facts)) {
		set = append(set, Fact{Name: prefix + name, Value: facts[name]})
	}
	return set
}

// Map returns the facts as a name to value map.
func (s FactSet) Map() map[string]string {
	m := make(map[string]string, len(s))
	for _, f := range s {
		m[f.Name] = f.Value
	}
	return m
}

// Formats returns the supported format names in sorted order.
func Formats() []string {
	return slices.Sorted(maps.Keys(publishers))
}

// ForFormat returns the publisher for a format name.
func ForFormat(format string) (Publisher, error) {
	p, ok := publishers[strings.ToLower(format)]
	if !ok {
		return nil, &UnknownFormatError{Format: format}
	}
	return p, nil
}

// Error implements the error interface for UnknownFormatError.
func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown output format %q (valid: %s)", e.Format, strings.Join(Formats(), ", "))
}

// Unwrap returns ErrUnknownFormat for errors.Is() compatibility.
func (e *UnknownFormatError) Unwrap() error { return ErrUnknownFormat }
