package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/fivetwenty-io/caseapi-client/internal/constants"
	internalhttp "github.com/fivetwenty-io/caseapi-client/internal/http"
	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

// Validator checks a decoded record.
type Validator[T any] func(*T) error

// ValidatableValidator uses the record's own Validate method when it has one.
func ValidatableValidator[T any]() Validator[T] {
	return func(item *T) error {
		if v, ok := any(item).(validation.Validatable); ok {
			return v.Validate()
		}

		return nil
	}
}

// resourceBase is what every resource client shares.
type resourceBase struct {
	httpClient  *internalhttp.Client
	logger      caseapi.Logger
	metrics     *caseapi.Metrics
	maxPageSize int
}

func (b *resourceBase) pageSize() int {
	if b.maxPageSize > 0 {
		return b.maxPageSize
	}

	return constants.DefaultMaxPageSize
}

// ResourceClient implements the verb methods for one resource key, which is
// both the URL noun and the envelope member name.
type ResourceClient[T any] struct {
	base     *resourceBase
	key      string
	validate Validator[T]
}

// NewResourceClient creates a client for resourceKey.
func NewResourceClient[T any](base *resourceBase, resourceKey string, validate Validator[T]) *ResourceClient[T] {
	if validate == nil {
		validate = ValidatableValidator[T]()
	}

	return &ResourceClient[T]{base: base, key: resourceKey, validate: validate}
}

// Key returns the resource key.
func (c *ResourceClient[T]) Key() string {
	return c.key
}

func (c *ResourceClient[T]) path() string {
	return "/" + c.key
}

func (c *ResourceClient[T]) itemPath(id caseapi.ID) string {
	return c.path() + "/" + url.PathEscape(id.String())
}

// Get retrieves one record by id.
func (c *ResourceClient[T]) Get(ctx context.Context, id caseapi.ID, params *caseapi.QueryParams) (*caseapi.Single[T], error) {
	return getSingle(ctx, c.base, c.key, c.itemPath(id), params, c.validate)
}

// GetRecord retrieves one record by id without decoding it.
func (c *ResourceClient[T]) GetRecord(ctx context.Context, id caseapi.ID, params *caseapi.QueryParams) (*caseapi.Single[caseapi.Record], error) {
	return getSingle[caseapi.Record](ctx, c.base, c.key, c.itemPath(id), params, nil)
}

// List lists records, walking every page when params asks for PageSizeAll.
func (c *ResourceClient[T]) List(ctx context.Context, params *caseapi.QueryParams) (*caseapi.PagedCollection[T], error) {
	return listCollection(ctx, c.base, c.key, params, c.validate)
}

// ListRecords lists records without decoding them.
func (c *ResourceClient[T]) ListRecords(ctx context.Context, params *caseapi.QueryParams) (*caseapi.PagedCollection[caseapi.Record], error) {
	return listCollection[caseapi.Record](ctx, c.base, c.key, params, nil)
}

// Create creates a record.
func (c *ResourceClient[T]) Create(ctx context.Context, body *T) (*caseapi.Single[T], error) {
	resp, err := c.base.httpClient.Post(ctx, c.path(), map[string]interface{}{c.key: body})
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", c.key, err)
	}

	return decodeSingle(c.key, resp, c.validate)
}

// Update replaces a record.
func (c *ResourceClient[T]) Update(ctx context.Context, id caseapi.ID, body *T) (*caseapi.Single[T], error) {
	resp, err := c.base.httpClient.Put(ctx, c.itemPath(id), map[string]interface{}{c.key: body})
	if err != nil {
		return nil, fmt.Errorf("updating %s %s: %w", c.key, id, err)
	}

	return decodeSingle(c.key, resp, c.validate)
}

// Delete deletes a record.
func (c *ResourceClient[T]) Delete(ctx context.Context, id caseapi.ID) error {
	_, err := c.base.httpClient.Delete(ctx, c.itemPath(id))
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", c.key, id, err)
	}

	return nil
}

func getSingle[E any](ctx context.Context, base *resourceBase, key, path string, params *caseapi.QueryParams, validate Validator[E]) (*caseapi.Single[E], error) {
	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	resp, err := base.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", path, err)
	}

	return decodeSingle(key, resp, validate)
}

func decodeSingle[E any](key string, resp *internalhttp.Response, validate Validator[E]) (*caseapi.Single[E], error) {
	env, err := Normalize(key, resp.Body)
	if err != nil {
		return nil, err
	}

	coll, err := decodeCollection(env, validate)
	if err != nil {
		return nil, err
	}

	record, ok := coll.First()
	if !ok {
		return nil, caseapi.NewValidationError(key, ErrNoRecord)
	}

	return &caseapi.Single[E]{Record: record, Linked: coll.Linked}, nil
}

func listPage[E any](ctx context.Context, base *resourceBase, key string, params *caseapi.QueryParams, validate Validator[E]) (*caseapi.PagedCollection[E], error) {
	resp, err := base.httpClient.Get(ctx, "/"+key, params.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", key, err)
	}

	if resp.StatusCode == http.StatusNoContent {
		return EmptyCollection[E](), nil
	}

	env, err := Normalize(key, resp.Body)
	if err != nil {
		return nil, err
	}

	return decodeCollection(env, validate)
}

func listCollection[E any](ctx context.Context, base *resourceBase, key string, params *caseapi.QueryParams, validate Validator[E]) (*caseapi.PagedCollection[E], error) {
	query := params.Clone()
	wantsAll := query.WantsAll()

	if wantsAll {
		query.PageSize = strconv.Itoa(base.pageSize())
		query.Page = 1
	}

	first, err := listPage(ctx, base, key, query, validate)
	if err != nil {
		return nil, err
	}

	if !wantsAll || !first.Paging.HasMorePages() {
		return first, nil
	}

	fetch := func(ctx context.Context, page int) (*caseapi.PagedCollection[E], error) {
		pageQuery := query.Clone()
		pageQuery.Page = page

		return listPage(ctx, base, key, pageQuery, validate)
	}

	return Aggregate(ctx, first, fetch, AggregateOptions[E]{
		Resource: key,
		Logger:   base.logger,
		Metrics:  base.metrics,
	})
}
