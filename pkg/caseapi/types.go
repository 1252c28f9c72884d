package caseapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Static errors for err113 compliance.
var (
	ErrInvalidID     = errors.New("invalid id value")
	ErrInvalidPaging = errors.New("invalid paging value")
)

// ID is a record identifier. The API emits ids both as JSON numbers and as
// strings, so ID accepts either and always marshals as a string.
type ID string

// UnmarshalJSON accepts a JSON string, number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""

		return nil
	}

	if data[0] == '"' {
		var s string

		err := json.Unmarshal(data, &s)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidID, err)
		}

		*id = ID(s)

		return nil
	}

	var n json.Number

	err := json.Unmarshal(data, &n)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, string(data))
	}

	*id = ID(n.String())

	return nil
}

// String returns the id as a plain string.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the id is empty.
func (id ID) IsZero() bool {
	return id == ""
}

// Paging describes the full result set and the current slice of it.
type Paging struct {
	RecordCount int `json:"recordCount" yaml:"record_count"`
	PageCount   int `json:"pageCount"   yaml:"page_count"`
	Page        int `json:"page"        yaml:"page"`
	PageSize    int `json:"pageSize"    yaml:"page_size"`
}

// UnmarshalJSON tolerates string-encoded numbers.
func (p *Paging) UnmarshalJSON(data []byte) error {
	var aux struct {
		RecordCount json.Number `json:"recordCount"`
		PageCount   json.Number `json:"pageCount"`
		Page        json.Number `json:"page"`
		PageSize    json.Number `json:"pageSize"`
	}

	err := json.Unmarshal(data, &aux)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPaging, err)
	}

	values := []struct {
		raw json.Number
		dst *int
	}{
		{aux.RecordCount, &p.RecordCount},
		{aux.PageCount, &p.PageCount},
		{aux.Page, &p.Page},
		{aux.PageSize, &p.PageSize},
	}

	for _, v := range values {
		if v.raw == "" {
			*v.dst = 0

			continue
		}

		n, err := strconv.Atoi(v.raw.String())
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidPaging, v.raw)
		}

		*v.dst = n
	}

	return nil
}

// HasMorePages reports whether the server reported more than one page.
func (p Paging) HasMorePages() bool {
	return p.PageCount > 1
}

// Record is an opaque API record: a bag of named fields plus a links map of
// foreign-key-like references to other records.
type Record struct {
	ID     string         `json:"-" yaml:"id"`
	Fields map[string]any `json:"-" yaml:"fields"`
	Links  map[string]any `json:"-" yaml:"links,omitempty"`
}

// UnmarshalJSON splits a raw API object into Fields and Links.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any

	err := dec.Decode(&raw)
	if err != nil {
		return fmt.Errorf("decoding record: %w", err)
	}

	r.Links = nil

	if links, ok := raw["links"].(map[string]any); ok {
		r.Links = links
	}

	delete(raw, "links")

	r.Fields = raw
	r.ID = stringValue(raw["id"])

	return nil
}

// MarshalJSON re-assembles the record in API shape.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		out[k] = v
	}

	if r.ID != "" {
		if _, ok := out["id"]; !ok {
			out["id"] = r.ID
		}
	}

	if len(r.Links) > 0 {
		out["links"] = r.Links
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}

	return data, nil
}

// Field returns a field rendered as a string ("" when absent or null).
func (r Record) Field(name string) string {
	return stringValue(r.Fields[name])
}

// Link returns the id referenced by the named link ("" when absent or null).
func (r Record) Link(name string) string {
	return stringValue(r.Links[name])
}

// Decode maps the record onto a struct using its json tags.
func (r Record) Decode(out any) error {
	input := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		input[k] = normalizeNumber(v)
	}

	if r.Links != nil {
		links := make(map[string]any, len(r.Links))
		for k, v := range r.Links {
			links[k] = normalizeNumber(v)
		}

		input["links"] = links
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("creating record decoder: %w", err)
	}

	err = decoder.Decode(input)
	if err != nil {
		return fmt.Errorf("decoding record %s: %w", r.ID, err)
	}

	return nil
}

// normalizeNumber turns json.Number into a string so weakly typed decoding
// can target string and numeric fields alike.
func normalizeNumber(v any) any {
	if n, ok := v.(json.Number); ok {
		return n.String()
	}

	return v
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// PagedCollection is the normalised result of a list call.
type PagedCollection[T any] struct {
	Primary []T                 `json:"primary"          yaml:"primary"`
	Linked  map[string][]Record `json:"linked"           yaml:"linked"`
	Links   json.RawMessage     `json:"links,omitempty"  yaml:"-"`
	Paging  Paging              `json:"paging"           yaml:"paging"`
}

// NewEmptyCollection returns a collection with zero records and zero paging.
func NewEmptyCollection[T any]() *PagedCollection[T] {
	return &PagedCollection[T]{
		Primary: []T{},
		Linked:  map[string][]Record{},
	}
}

// Len returns the number of primary records.
func (c *PagedCollection[T]) Len() int {
	if c == nil {
		return 0
	}

	return len(c.Primary)
}

// First returns the first primary record, if any.
func (c *PagedCollection[T]) First() (T, bool) {
	var zero T
	if c == nil || len(c.Primary) == 0 {
		return zero, false
	}

	return c.Primary[0], true
}

// LinkedRecords returns the side-loaded records for a related entity.
func (c *PagedCollection[T]) LinkedRecords(name string) []Record {
	if c == nil {
		return nil
	}

	return c.Linked[name]
}

// Single is the result of a single-record call.
type Single[T any] struct {
	Record T                   `json:"record"           yaml:"record"`
	Linked map[string][]Record `json:"linked,omitempty" yaml:"linked,omitempty"`
}
