package caseapi

import (
	"net/url"
	"strconv"
	"strings"
)

// PageSizeAll is the sentinel page size that asks the client to walk every
// page and return one aggregated collection.
const PageSizeAll = "All"

// Query parameter names understood by the API.
const (
	ParamFilter   = "filter"
	ParamInclude  = "include"
	ParamPage     = "page"
	ParamPageSize = "pageSize"
	ParamSort     = "sort"
)

// QueryParams is the FilterQuery passed to list and get calls.
type QueryParams struct {
	// Filter is a filter expression, e.g. "action = 123 AND status = 'Incomplete'".
	Filter string
	// Include names related entities to side-load into Linked.
	Include []string
	// Page is the 1-based page to fetch; zero leaves it to the server.
	Page int
	// PageSize is an integer as string, or PageSizeAll.
	PageSize string
	// Sort is a comma-separated sort expression.
	Sort string
	// Extra carries any additional raw parameters.
	Extra url.Values
}

// NewQueryParams creates empty query parameters.
func NewQueryParams() *QueryParams {
	return &QueryParams{}
}

// WithFilter sets the filter expression.
func (q *QueryParams) WithFilter(filter string) *QueryParams {
	q.Filter = filter

	return q
}

// WithInclude appends related entities to side-load.
func (q *QueryParams) WithInclude(include ...string) *QueryParams {
	q.Include = append(q.Include, include...)

	return q
}

// WithPage sets the page number.
func (q *QueryParams) WithPage(page int) *QueryParams {
	q.Page = page

	return q
}

// WithPageSize sets a numeric page size.
func (q *QueryParams) WithPageSize(size int) *QueryParams {
	q.PageSize = strconv.Itoa(size)

	return q
}

// All requests the complete result set.
func (q *QueryParams) All() *QueryParams {
	q.PageSize = PageSizeAll

	return q
}

// WantsAll reports whether the caller asked for every page.
func (q *QueryParams) WantsAll() bool {
	return q != nil && strings.EqualFold(q.PageSize, PageSizeAll)
}

// Clone returns a deep copy.
func (q *QueryParams) Clone() *QueryParams {
	if q == nil {
		return NewQueryParams()
	}

	clone := *q
	clone.Include = append([]string(nil), q.Include...)

	if q.Extra != nil {
		clone.Extra = make(url.Values, len(q.Extra))
		for k, v := range q.Extra {
			clone.Extra[k] = append([]string(nil), v...)
		}
	}

	return &clone
}

// ToValues converts the parameters to url.Values.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}
	if q == nil {
		return values
	}

	for k, v := range q.Extra {
		values[k] = append([]string(nil), v...)
	}

	if q.Filter != "" {
		values.Set(ParamFilter, q.Filter)
	}

	if len(q.Include) > 0 {
		values.Set(ParamInclude, strings.Join(q.Include, ","))
	}

	if q.Page > 0 {
		values.Set(ParamPage, strconv.Itoa(q.Page))
	}

	if q.PageSize != "" {
		values.Set(ParamPageSize, q.PageSize)
	}

	if q.Sort != "" {
		values.Set(ParamSort, q.Sort)
	}

	return values
}

// Eq builds a "field = value" filter term. Strings are single-quoted with
// embedded quotes doubled; ID values are emitted bare.
func Eq(field string, value any) string {
	return field + " = " + filterLiteral(value)
}

// And joins filter terms with AND, skipping empty terms.
func And(terms ...string) string {
	parts := make([]string, 0, len(terms))

	for _, t := range terms {
		if strings.TrimSpace(t) != "" {
			parts = append(parts, t)
		}
	}

	return strings.Join(parts, " AND ")
}

func filterLiteral(value any) string {
	switch v := value.(type) {
	case ID:
		return string(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	default:
		return "'" + strings.ReplaceAll(stringValue(v), "'", "''") + "'"
	}
}
