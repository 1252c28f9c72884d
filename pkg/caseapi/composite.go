package caseapi

import (
	"errors"
	"fmt"
	"strings"
)

// CompositeIDSeparator joins the parts of a composite id.
const CompositeIDSeparator = "--"

// Static errors for err113 compliance.
var (
	ErrEmptyCompositeID = errors.New("composite id is empty")
	ErrEmptyIDPart      = errors.New("composite id has an empty part")
	ErrIDPartSeparator  = errors.New("composite id part contains the separator")
)

// CompositeID identifies join-like or scoped resources, formatted as
// "{a}--{b}--{c}", e.g. a participant default type keyed by action type and
// participant type.
type CompositeID struct {
	parts []string
}

// NewCompositeID builds a composite id from its parts.
func NewCompositeID(parts ...string) (CompositeID, error) {
	if len(parts) == 0 {
		return CompositeID{}, ErrEmptyCompositeID
	}

	for i, p := range parts {
		if p == "" {
			return CompositeID{}, fmt.Errorf("%w at position %d", ErrEmptyIDPart, i)
		}

		if strings.Contains(p, CompositeIDSeparator) {
			return CompositeID{}, fmt.Errorf("%w: %q", ErrIDPartSeparator, p)
		}
	}

	return CompositeID{parts: append([]string(nil), parts...)}, nil
}

// MustCompositeID is NewCompositeID for parts known to be valid.
func MustCompositeID(parts ...string) CompositeID {
	id, err := NewCompositeID(parts...)
	if err != nil {
		panic(err)
	}

	return id
}

// ParseCompositeID parses "{a}--{b}[--{c}...]".
func ParseCompositeID(s string) (CompositeID, error) {
	if strings.TrimSpace(s) == "" {
		return CompositeID{}, ErrEmptyCompositeID
	}

	return NewCompositeID(strings.Split(s, CompositeIDSeparator)...)
}

// String formats the id with the separator.
func (c CompositeID) String() string {
	return strings.Join(c.parts, CompositeIDSeparator)
}

// ID returns the composite id as a record ID.
func (c CompositeID) ID() ID {
	return ID(c.String())
}

// Len returns the number of parts.
func (c CompositeID) Len() int {
	return len(c.parts)
}

// Part returns the i-th part, or "" when out of range.
func (c CompositeID) Part(i int) string {
	if i < 0 || i >= len(c.parts) {
		return ""
	}

	return c.parts[i]
}

// Parts returns a copy of all parts.
func (c CompositeID) Parts() []string {
	return append([]string(nil), c.parts...)
}

// IsZero reports whether the id has no parts.
func (c CompositeID) IsZero() bool {
	return len(c.parts) == 0
}

// Equal reports whether two composite ids have the same parts.
func (c CompositeID) Equal(other CompositeID) bool {
	return c.String() == other.String()
}
