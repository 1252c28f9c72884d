package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

var errPageFailed = errors.New("page failed")

type widget struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func widgetKey(w widget) string {
	return w.Name
}

func TestMergeUnique(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		acc      []widget
		incoming []widget
		want     []widget
	}{
		{
			name:     "appends new elements in order",
			acc:      []widget{{1, "a"}},
			incoming: []widget{{2, "b"}, {3, "c"}},
			want:     []widget{{1, "a"}, {2, "b"}, {3, "c"}},
		},
		{
			name:     "skips elements already present",
			acc:      []widget{{1, "a"}, {2, "b"}},
			incoming: []widget{{2, "b"}, {3, "c"}, {1, "a"}},
			want:     []widget{{1, "a"}, {2, "b"}, {3, "c"}},
		},
		{
			name:     "same id with different fields is distinct",
			acc:      []widget{{1, "a"}},
			incoming: []widget{{1, "changed"}},
			want:     []widget{{1, "a"}, {1, "changed"}},
		},
		{
			name:     "empty incoming",
			acc:      []widget{{1, "a"}},
			incoming: nil,
			want:     []widget{{1, "a"}},
		},
		{
			name:     "duplicates within incoming collapse",
			acc:      nil,
			incoming: []widget{{1, "a"}, {1, "a"}},
			want:     []widget{{1, "a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := MergeUnique(append([]widget(nil), tt.acc...), tt.incoming, nil)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMergeUniqueIsIdempotent(t *testing.T) {
	t.Parallel()

	page := []widget{{1, "a"}, {2, "b"}, {3, "c"}}

	once := MergeUnique(nil, page, nil)
	twice := MergeUnique(append([]widget(nil), once...), page, nil)

	assert.Equal(t, once, twice)
}

func TestMergeUniqueWithKeyEqual(t *testing.T) {
	t.Parallel()

	got := MergeUnique(
		[]widget{{1, "a"}},
		[]widget{{2, "a"}, {3, "b"}},
		KeyEqual(widgetKey),
	)

	assert.Equal(t, []widget{{1, "a"}, {3, "b"}}, got)
}

func TestIndexedMergerMatchesMergeUnique(t *testing.T) {
	t.Parallel()

	first := []widget{{1, "a"}, {2, "b"}}
	second := []widget{{3, "b"}, {4, "c"}, {5, "a"}, {6, "d"}}

	merger := NewIndexedMerger(widgetKey, first)
	merger.Add(second...)

	want := MergeUnique(append([]widget(nil), first...), second, KeyEqual(widgetKey))
	assert.Equal(t, want, merger.Items())
}

// pagedWidgets serves pages of widgets keyed by page number.
func pagedWidgets(pages map[int][]widget, recordCount int) PageFetcher[widget] {
	return func(_ context.Context, page int) (*caseapi.PagedCollection[widget], error) {
		coll := caseapi.NewEmptyCollection[widget]()
		coll.Primary = pages[page]
		coll.Paging = caseapi.Paging{RecordCount: recordCount, PageCount: len(pages), Page: page, PageSize: 2}

		return coll, nil
	}
}

func TestAggregateCollapsesPaging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		pages map[int][]widget
		want  int
	}{
		{
			name:  "one page",
			pages: map[int][]widget{1: {{1, "a"}, {2, "b"}}},
			want:  2,
		},
		{
			name:  "two pages",
			pages: map[int][]widget{1: {{1, "a"}, {2, "b"}}, 2: {{3, "c"}}},
			want:  3,
		},
		{
			name: "five pages with a repeated record",
			pages: map[int][]widget{
				1: {{1, "a"}, {2, "b"}},
				2: {{3, "c"}, {4, "d"}},
				3: {{4, "d"}, {5, "e"}},
				4: {{6, "f"}, {7, "g"}},
				5: {{8, "h"}},
			},
			want: 8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fetch := pagedWidgets(tt.pages, 9)

			first, err := fetch(context.Background(), 1)
			require.NoError(t, err)

			got, err := Aggregate(context.Background(), first, fetch, AggregateOptions[widget]{Resource: "widgets"})
			require.NoError(t, err)

			assert.Len(t, got.Primary, tt.want)
			assert.Equal(t, caseapi.Paging{RecordCount: 9, PageCount: 1, Page: 1, PageSize: 9}, got.Paging)
		})
	}
}

func TestAggregateMergesLinkedRecords(t *testing.T) {
	t.Parallel()

	owner := caseapi.Record{ID: "9", Fields: map[string]any{"id": "9"}}
	tag := caseapi.Record{ID: "1", Fields: map[string]any{"id": "1"}}

	first := caseapi.NewEmptyCollection[widget]()
	first.Primary = []widget{{1, "a"}}
	first.Linked["owners"] = []caseapi.Record{owner}
	first.Paging = caseapi.Paging{RecordCount: 2, PageCount: 2, Page: 1, PageSize: 1}

	fetch := func(_ context.Context, page int) (*caseapi.PagedCollection[widget], error) {
		next := caseapi.NewEmptyCollection[widget]()
		next.Primary = []widget{{2, "b"}}
		next.Linked["owners"] = []caseapi.Record{owner}
		next.Linked["tags"] = []caseapi.Record{tag}

		return next, nil
	}

	got, err := Aggregate(context.Background(), first, fetch, AggregateOptions[widget]{Resource: "widgets"})
	require.NoError(t, err)

	assert.Len(t, got.Linked["owners"], 1)
	assert.Len(t, got.Linked["tags"], 1)
}

func TestAggregateAbortsOnFirstError(t *testing.T) {
	t.Parallel()

	var fetched []int

	first := caseapi.NewEmptyCollection[widget]()
	first.Primary = []widget{{1, "a"}}
	first.Paging = caseapi.Paging{RecordCount: 4, PageCount: 4, Page: 1, PageSize: 1}

	fetch := func(_ context.Context, page int) (*caseapi.PagedCollection[widget], error) {
		fetched = append(fetched, page)
		if page == 3 {
			return nil, errPageFailed
		}

		next := caseapi.NewEmptyCollection[widget]()
		next.Primary = []widget{{page, "x"}}

		return next, nil
	}

	got, err := Aggregate(context.Background(), first, fetch, AggregateOptions[widget]{Resource: "widgets"})
	require.ErrorIs(t, err, errPageFailed)
	assert.Nil(t, got)
	assert.Equal(t, []int{2, 3}, fetched)
	assert.Contains(t, err.Error(), "widgets page 3 of 4")
}

func TestAggregateWithKeyUsesIndexedMerge(t *testing.T) {
	t.Parallel()

	fetch := pagedWidgets(map[int][]widget{
		1: {{1, "a"}},
		2: {{2, "a"}, {3, "b"}},
	}, 3)

	first, err := fetch(context.Background(), 1)
	require.NoError(t, err)

	got, err := Aggregate(context.Background(), first, fetch, AggregateOptions[widget]{
		Resource: "widgets",
		Key:      widgetKey,
	})
	require.NoError(t, err)

	assert.Equal(t, []widget{{1, "a"}, {3, "b"}}, got.Primary)
}

func TestAggregateLogsPages(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}
	metrics, err := caseapi.NewMetrics(nil)
	require.NoError(t, err)

	fetch := pagedWidgets(map[int][]widget{1: {{1, "a"}}, 2: {{2, "b"}}, 3: {{3, "c"}}}, 3)

	first, err := fetch(context.Background(), 1)
	require.NoError(t, err)

	_, err = Aggregate(context.Background(), first, fetch, AggregateOptions[widget]{
		Resource: "widgets",
		Logger:   logger,
		Metrics:  metrics,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"fetched page", "fetched page"}, logger.messages("debug"))
	assert.Equal(t, []string{"aggregated pages"}, logger.messages("info"))
}
