// Package caseapi defines the public types and interfaces of the case-management
// API client.
//
// The case-management API exposes dozens of resource types (actions, tasks,
// participants, data-collection records, documents, ...) through one access
// pattern: authenticate, issue a request, normalise a possibly-singular response
// envelope and, when the caller asks for the complete result set, walk and merge
// every page.
//
// # Paged collections
//
// Every list call returns a *PagedCollection[T]. The Primary slice holds the
// requested resource in API order, Linked holds side-loaded records keyed by
// related-entity name, and Paging carries the server's page metadata. When a
// query sets PageSize to PageSizeAll the client walks every page and returns a
// single logical page whose Paging is {RecordCount, 1, 1, RecordCount}.
//
// # Errors
//
// All errors returned by the client can be classified with errors.Is against
// ErrUnauthorized, ErrNotFound, ErrValidationFailed, ErrRequestFailed and
// ErrPreconditionFailed, or with the IsNotFound family of helpers.
//
// Use github.com/fivetwenty-io/caseapi-client/pkg/caseclient to construct a
// Client.
package caseapi
