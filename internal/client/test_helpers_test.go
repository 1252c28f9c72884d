package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/caseapi-client/internal/constants"
	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

// logEntry is one captured log call.
type logEntry struct {
	Level  string
	Msg    string
	Fields map[string]interface{}
}

// recordingLogger captures log calls for assertions.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) log(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, logEntry{Level: level, Msg: msg, Fields: fields})
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) { l.log("debug", msg, fields) }
func (l *recordingLogger) Info(msg string, fields map[string]interface{})  { l.log("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields map[string]interface{})  { l.log("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) { l.log("error", msg, fields) }

// messages returns the messages logged at level.
func (l *recordingLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []string

	for _, e := range l.entries {
		if e.Level == level {
			out = append(out, e.Msg)
		}
	}

	return out
}

// recordedRequest is one request seen by a fakeAPI.
type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
	Header http.Header
}

// fakeAPI routes "METHOD /path" to handlers and records every request.
type fakeAPI struct {
	t        *testing.T
	server   *httptest.Server
	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	requests []recordedRequest
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	api := &fakeAPI{t: t, handlers: map[string]http.HandlerFunc{}}
	api.server = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.server.Close)

	return api
}

func (a *fakeAPI) handle(method, path string, handler http.HandlerFunc) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.handlers[method+" "+path] = handler
}

func (a *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	a.mu.Lock()
	a.requests = append(a.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Body:   body,
		Header: r.Header.Clone(),
	})
	handler, ok := a.handlers[r.Method+" "+r.URL.Path]
	a.mu.Unlock()

	if !ok {
		a.t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)

		return
	}

	handler(w, r)
}

// calls returns the recorded requests matching method and path.
func (a *fakeAPI) calls(method, path string) []recordedRequest {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out []recordedRequest

	for _, r := range a.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}

	return out
}

// callsByMethod returns every recorded request with method.
// sequence returns "METHOD /path" for every request in arrival order.
func (a *fakeAPI) sequence() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]string, 0, len(a.requests))
	for _, r := range a.requests {
		out = append(out, r.Method+" "+r.Path)
	}

	return out
}

func (a *fakeAPI) callsByMethod(method string) []recordedRequest {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out []recordedRequest

	for _, r := range a.requests {
		if r.Method == method {
			out = append(out, r)
		}
	}

	return out
}

// respondJSON writes v as a JSON:API body.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", constants.MediaTypeJSONAPI)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// jsonHandler always answers with v.
func jsonHandler(status int, v interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, status, v)
	}
}

// statusHandler answers with an empty body.
func statusHandler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}
}

// pagingMeta builds the meta member for a list response.
func pagingMeta(key string, recordCount, pageCount, page, pageSize int) map[string]interface{} {
	return map[string]interface{}{
		"paging": map[string]interface{}{
			key: map[string]interface{}{
				"recordCount": recordCount,
				"pageCount":   pageCount,
				"page":        page,
				"pageSize":    pageSize,
			},
		},
	}
}

func atoi(t *testing.T, s string) int {
	t.Helper()

	n, err := strconv.Atoi(s)
	require.NoError(t, err)

	return n
}

// NewTestClient creates a client for baseURL with a static token and a
// recording logger.
func NewTestClient(t *testing.T, baseURL string) (*Client, *recordingLogger) {
	t.Helper()

	logger := &recordingLogger{}

	client, err := New(context.Background(), &caseapi.Config{
		APIEndpoint: baseURL,
		AccessToken: "test-token",
		Logger:      logger,

		RetryMax:                       1,
		RetryWaitMin:                   time.Millisecond,
		RetryWaitMax:                   2 * time.Millisecond,
		AuthFailureBackoffInitialDelay: time.Millisecond,
	})
	require.NoError(t, err)

	return client, logger
}

// decodeEnvelopeBody reads the single member of a request envelope.
func decodeEnvelopeBody(t *testing.T, body []byte, key string) map[string]interface{} {
	t.Helper()

	var envelope map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &envelope))

	member, ok := envelope[key]
	require.True(t, ok, "request body has no %q member: %s", key, body)

	return member
}

// TestGetOperation is a table row for a Get call.
type TestGetOperation struct {
	Name         string
	ID           caseapi.ID
	ExpectedPath string
	StatusCode   int
	Response     interface{}
	WantErr      error
}

// RunGetTests runs Get table rows against getFunc.
func RunGetTests[T any](t *testing.T, tests []TestGetOperation, getFunc func(*Client) func(context.Context, caseapi.ID, *caseapi.QueryParams) (*caseapi.Single[T], error)) {
	t.Helper()

	for _, testCase := range tests {
		t.Run(testCase.Name, func(t *testing.T) {
			t.Parallel()

			api := newFakeAPI(t)
			api.handle(http.MethodGet, testCase.ExpectedPath, func(w http.ResponseWriter, _ *http.Request) {
				if testCase.Response == nil {
					w.WriteHeader(testCase.StatusCode)

					return
				}

				respondJSON(w, testCase.StatusCode, testCase.Response)
			})

			client, _ := NewTestClient(t, api.server.URL)

			result, err := getFunc(client)(context.Background(), testCase.ID, nil)

			if testCase.WantErr != nil {
				require.ErrorIs(t, err, testCase.WantErr)
				assert.Nil(t, result)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, result)
		})
	}
}

// TestDeleteOperation is a table row for a Delete call.
type TestDeleteOperation struct {
	Name         string
	ID           caseapi.ID
	ExpectedPath string
	StatusCode   int
	WantErr      error
}

// RunDeleteTests runs Delete table rows against deleteFunc.
func RunDeleteTests(t *testing.T, tests []TestDeleteOperation, deleteFunc func(*Client) func(context.Context, caseapi.ID) error) {
	t.Helper()

	for _, testCase := range tests {
		t.Run(testCase.Name, func(t *testing.T) {
			t.Parallel()

			api := newFakeAPI(t)
			api.handle(http.MethodDelete, testCase.ExpectedPath, statusHandler(testCase.StatusCode))

			client, _ := NewTestClient(t, api.server.URL)

			err := deleteFunc(client)(context.Background(), testCase.ID)

			if testCase.WantErr != nil {
				require.ErrorIs(t, err, testCase.WantErr)

				return
			}

			require.NoError(t, err)
			assert.Len(t, api.calls(http.MethodDelete, testCase.ExpectedPath), 1)
		})
	}
}
