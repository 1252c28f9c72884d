package client

import (
	"context"
	"fmt"
	"reflect"

	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

// EqualFunc decides whether two records are duplicates.
type EqualFunc[T any] func(a, b T) bool

// DeepEqual treats records as duplicates only when every field matches.
func DeepEqual[T any]() EqualFunc[T] {
	return func(a, b T) bool {
		return reflect.DeepEqual(a, b)
	}
}

// KeyEqual treats records with the same key as duplicates.
func KeyEqual[T any](key func(T) string) EqualFunc[T] {
	return func(a, b T) bool {
		return key(a) == key(b)
	}
}

// MergeUnique appends each incoming element not equal to any element already
// in acc. Existing elements keep their position; new ones are appended in
// encounter order. A nil eq means DeepEqual.
func MergeUnique[T any](acc, incoming []T, eq EqualFunc[T]) []T {
	if eq == nil {
		eq = DeepEqual[T]()
	}

	for _, candidate := range incoming {
		duplicate := false

		for _, existing := range acc {
			if eq(existing, candidate) {
				duplicate = true

				break
			}
		}

		if !duplicate {
			acc = append(acc, candidate)
		}
	}

	return acc
}

// IndexedMerger is MergeUnique for key-based equality in O(n+m).
type IndexedMerger[T any] struct {
	key   func(T) string
	seen  map[string]struct{}
	items []T
}

// NewIndexedMerger creates a merger seeded with initial.
func NewIndexedMerger[T any](key func(T) string, initial []T) *IndexedMerger[T] {
	m := &IndexedMerger[T]{
		key:   key,
		seen:  make(map[string]struct{}, len(initial)),
		items: make([]T, 0, len(initial)),
	}
	m.Add(initial...)

	return m
}

// Add appends items whose key has not been seen.
func (m *IndexedMerger[T]) Add(items ...T) {
	for _, item := range items {
		k := m.key(item)
		if _, ok := m.seen[k]; ok {
			continue
		}

		m.seen[k] = struct{}{}
		m.items = append(m.items, item)
	}
}

// Items returns the merged sequence.
func (m *IndexedMerger[T]) Items() []T {
	return m.items
}

// PageFetcher fetches one page of a list.
type PageFetcher[T any] func(ctx context.Context, page int) (*caseapi.PagedCollection[T], error)

// AggregateOptions tunes Aggregate.
type AggregateOptions[T any] struct {
	// Resource names the list in logs and metrics.
	Resource string
	// Equal dedups primary records; nil means DeepEqual.
	Equal EqualFunc[T]
	// Key, when set, dedups primary records by key using an IndexedMerger
	// and takes precedence over Equal.
	Key func(T) string
	// LinkedEqual dedups side-loaded records; nil means DeepEqual.
	LinkedEqual EqualFunc[caseapi.Record]
	Logger      caseapi.Logger
	Metrics     *caseapi.Metrics
}

// Aggregate walks pages 2..first.Paging.PageCount one at a time and merges
// them into a single logical page. The first failing page aborts the walk;
// no partial collection is returned. The result reports the server's
// original record count with pageCount = page = 1 and pageSize = recordCount.
func Aggregate[T any](ctx context.Context, first *caseapi.PagedCollection[T], fetch PageFetcher[T], opts AggregateOptions[T]) (*caseapi.PagedCollection[T], error) {
	logger := opts.Logger
	if logger == nil {
		logger = caseapi.NopLogger{}
	}

	var (
		primary []T
		indexed *IndexedMerger[T]
	)

	if opts.Key != nil {
		indexed = NewIndexedMerger(opts.Key, first.Primary)
	} else {
		primary = append(make([]T, 0, len(first.Primary)), first.Primary...)
	}

	linked := make(map[string][]caseapi.Record, len(first.Linked))
	for name, records := range first.Linked {
		linked[name] = append([]caseapi.Record(nil), records...)
	}

	pageCount := first.Paging.PageCount

	for page := 2; page <= pageCount; page++ {
		next, err := fetch(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("fetching %s page %d of %d: %w", opts.Resource, page, pageCount, err)
		}

		opts.Metrics.ObservePage(opts.Resource)
		logger.Debug("fetched page", map[string]interface{}{
			"resource": opts.Resource,
			"page":     page,
			"pages":    pageCount,
			"records":  next.Len(),
		})

		if indexed != nil {
			indexed.Add(next.Primary...)
		} else {
			primary = MergeUnique(primary, next.Primary, opts.Equal)
		}

		for name, records := range next.Linked {
			linked[name] = MergeUnique(linked[name], records, opts.LinkedEqual)
		}
	}

	if indexed != nil {
		primary = indexed.Items()
	}

	recordCount := first.Paging.RecordCount

	logger.Info("aggregated pages", map[string]interface{}{
		"resource":     opts.Resource,
		"pages":        pageCount,
		"record_count": recordCount,
		"merged":       len(primary),
	})

	return &caseapi.PagedCollection[T]{
		Primary: primary,
		Linked:  linked,
		Links:   first.Links,
		Paging: caseapi.Paging{
			RecordCount: recordCount,
			PageCount:   1,
			Page:        1,
			PageSize:    recordCount,
		},
	}, nil
}
