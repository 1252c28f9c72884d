package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

// Static errors for err113 compliance.
var (
	ErrUnexpectedShape = errors.New("unexpected JSON shape")
	ErrNoRecord        = errors.New("response contained no record")
)

// Envelope is a response body in canonical shape: the primary collection is
// always an array, whether the server sent one object or many.
type Envelope struct {
	Key     string
	Primary []json.RawMessage
	Links   json.RawMessage
	Meta    json.RawMessage
	// Linked is nil when the body had no "linked" member.
	Linked map[string][]json.RawMessage
	Paging caseapi.Paging
}

// Normalize parses a response body for resourceKey. An empty body yields an
// empty envelope. Normalizing the output of MarshalJSON gives the same
// envelope back.
func Normalize(resourceKey string, body []byte) (*Envelope, error) {
	env := &Envelope{Key: resourceKey, Primary: []json.RawMessage{}}

	if len(bytes.TrimSpace(body)) == 0 {
		return env, nil
	}

	var raw map[string]json.RawMessage

	err := json.Unmarshal(body, &raw)
	if err != nil {
		return nil, caseapi.NewValidationError(resourceKey, err)
	}

	env.Primary, err = asArray(raw[resourceKey])
	if err != nil {
		return nil, caseapi.NewValidationError(resourceKey, err)
	}

	if links, ok := raw["links"]; ok && !isNull(links) {
		env.Links = links
	}

	if linkedRaw, ok := raw["linked"]; ok && !isNull(linkedRaw) {
		var linked map[string]json.RawMessage

		err = json.Unmarshal(linkedRaw, &linked)
		if err != nil {
			return nil, caseapi.NewValidationError(resourceKey+".linked", err)
		}

		env.Linked = make(map[string][]json.RawMessage, len(linked))

		for name, value := range linked {
			env.Linked[name], err = asArray(value)
			if err != nil {
				return nil, caseapi.NewValidationError(resourceKey+".linked."+name, err)
			}
		}
	}

	if meta, ok := raw["meta"]; ok && !isNull(meta) {
		env.Meta = meta

		env.Paging, err = pagingFromMeta(resourceKey, meta)
		if err != nil {
			return nil, caseapi.NewValidationError(resourceKey+".meta", err)
		}
	}

	return env, nil
}

// MarshalJSON emits the canonical API shape.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, 4)

	primary := e.Primary
	if primary == nil {
		primary = []json.RawMessage{}
	}

	out[e.Key] = primary

	if e.Links != nil {
		out["links"] = e.Links
	}

	if e.Linked != nil {
		out["linked"] = e.Linked
	}

	if e.Meta != nil {
		out["meta"] = e.Meta
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encoding envelope: %w", err)
	}

	return data, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)

	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// asArray wraps a bare object into a one-element array.
func asArray(raw json.RawMessage) ([]json.RawMessage, error) {
	if isNull(raw) {
		return []json.RawMessage{}, nil
	}

	trimmed := bytes.TrimSpace(raw)

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage

		err := json.Unmarshal(trimmed, &items)
		if err != nil {
			return nil, fmt.Errorf("decoding array: %w", err)
		}

		if items == nil {
			items = []json.RawMessage{}
		}

		return items, nil
	case '{':
		return []json.RawMessage{json.RawMessage(trimmed)}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedShape, truncate(trimmed))
	}
}

func pagingFromMeta(resourceKey string, meta json.RawMessage) (caseapi.Paging, error) {
	var doc struct {
		Paging map[string]json.RawMessage `json:"paging"`
	}

	err := json.Unmarshal(meta, &doc)
	if err != nil {
		return caseapi.Paging{}, fmt.Errorf("decoding meta: %w", err)
	}

	raw, ok := doc.Paging[resourceKey]
	if !ok || isNull(raw) {
		return caseapi.Paging{}, nil
	}

	var paging caseapi.Paging

	err = json.Unmarshal(raw, &paging)
	if err != nil {
		return caseapi.Paging{}, fmt.Errorf("decoding paging: %w", err)
	}

	return paging, nil
}

func truncate(b []byte) string {
	const limit = 64
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}

	return string(b)
}

// EmptyCollection is the result of a 204 No Content list call.
func EmptyCollection[T any]() *caseapi.PagedCollection[T] {
	return caseapi.NewEmptyCollection[T]()
}

// decodeCollection turns an envelope into a typed, validated collection.
func decodeCollection[T any](env *Envelope, validate Validator[T]) (*caseapi.PagedCollection[T], error) {
	coll := caseapi.NewEmptyCollection[T]()
	coll.Links = env.Links
	coll.Paging = env.Paging
	coll.Primary = make([]T, 0, len(env.Primary))

	for i, raw := range env.Primary {
		var item T

		err := json.Unmarshal(raw, &item)
		if err != nil {
			return nil, caseapi.NewValidationError(fmt.Sprintf("%s[%d]", env.Key, i), err)
		}

		if validate != nil {
			err = validate(&item)
			if err != nil {
				return nil, caseapi.NewValidationError(fmt.Sprintf("%s[%d]", env.Key, i), err)
			}
		}

		coll.Primary = append(coll.Primary, item)
	}

	for name, items := range env.Linked {
		records := make([]caseapi.Record, 0, len(items))

		for i, raw := range items {
			var rec caseapi.Record

			err := json.Unmarshal(raw, &rec)
			if err != nil {
				return nil, caseapi.NewValidationError(fmt.Sprintf("linked.%s[%d]", name, i), err)
			}

			records = append(records, rec)
		}

		coll.Linked[name] = records
	}

	return coll, nil
}
