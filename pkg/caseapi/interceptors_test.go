package caseapi_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/caseapi-client/pkg/caseapi"
)

var errInterceptor = errors.New("interceptor failed")

type logLine struct {
	level  string
	msg    string
	fields map[string]interface{}
}

type captureLogger struct {
	lines []logLine
}

func (l *captureLogger) log(level, msg string, fields map[string]interface{}) {
	l.lines = append(l.lines, logLine{level: level, msg: msg, fields: fields})
}

func (l *captureLogger) Debug(msg string, fields map[string]interface{}) { l.log("debug", msg, fields) }
func (l *captureLogger) Info(msg string, fields map[string]interface{})  { l.log("info", msg, fields) }
func (l *captureLogger) Warn(msg string, fields map[string]interface{})  { l.log("warn", msg, fields) }
func (l *captureLogger) Error(msg string, fields map[string]interface{}) { l.log("error", msg, fields) }

func TestInterceptorChain_RequestInterceptors(t *testing.T) {
	t.Parallel()

	chain := caseapi.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	chain.AddRequestInterceptor(func(ctx context.Context, req *caseapi.Request) error {
		executionOrder = append(executionOrder, "first")

		return nil
	})

	chain.AddRequestInterceptor(func(ctx context.Context, req *caseapi.Request) error {
		executionOrder = append(executionOrder, "second")

		return nil
	})

	require.NoError(t, chain.ExecuteRequestInterceptors(ctx, &caseapi.Request{Method: http.MethodGet, Path: "/actions"}))
	assert.Equal(t, []string{"first", "second"}, executionOrder)
}

func TestInterceptorChain_StopsOnError(t *testing.T) {
	t.Parallel()

	chain := caseapi.NewInterceptorChain()
	called := false

	chain.AddRequestInterceptor(func(ctx context.Context, req *caseapi.Request) error {
		return errInterceptor
	})
	chain.AddRequestInterceptor(func(ctx context.Context, req *caseapi.Request) error {
		called = true

		return nil
	})
	chain.AddResponseInterceptor(func(ctx context.Context, req *caseapi.Request, resp *caseapi.Response) error {
		return errInterceptor
	})

	err := chain.ExecuteRequestInterceptors(context.Background(), &caseapi.Request{})
	require.ErrorIs(t, err, errInterceptor)
	assert.False(t, called)

	err = chain.ExecuteResponseInterceptors(context.Background(), &caseapi.Request{}, &caseapi.Response{})
	require.ErrorIs(t, err, errInterceptor)
}

func TestHeaderInterceptor(t *testing.T) {
	t.Parallel()

	req := &caseapi.Request{}

	err := caseapi.HeaderInterceptor(map[string]string{"X-Tenant": "acme"})(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "acme", req.Headers.Get("X-Tenant"))
}

func TestLoggingResponseInterceptor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		resp      *caseapi.Response
		wantLevel string
	}{
		{name: "success", resp: &caseapi.Response{StatusCode: http.StatusOK}},
		{name: "client error", resp: &caseapi.Response{StatusCode: http.StatusNotFound}},
		{name: "server error", resp: &caseapi.Response{StatusCode: http.StatusBadGateway}, wantLevel: "warn"},
		{name: "transport error", resp: &caseapi.Response{Error: errInterceptor}, wantLevel: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			logger := &captureLogger{}
			req := &caseapi.Request{Method: http.MethodGet, Path: "/tasks"}

			require.NoError(t, caseapi.LoggingResponseInterceptor(logger)(context.Background(), req, tt.resp))

			if tt.wantLevel == "" {
				assert.Empty(t, logger.lines)

				return
			}

			require.Len(t, logger.lines, 1)
			assert.Equal(t, tt.wantLevel, logger.lines[0].level)
			assert.Equal(t, "API Response Error", logger.lines[0].msg)
			assert.Equal(t, "/tasks", logger.lines[0].fields["path"])
		})
	}
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()

	metrics, err := caseapi.NewMetrics(registry)
	require.NoError(t, err)

	chain := caseapi.NewInterceptorChain()
	metrics.Install(chain)

	ctx := context.Background()
	req := &caseapi.Request{Method: http.MethodGet, Path: "/actions"}

	require.NoError(t, chain.ExecuteRequestInterceptors(ctx, req))
	assert.Contains(t, req.Metadata, "start_time")

	require.NoError(t, chain.ExecuteResponseInterceptors(ctx, req, &caseapi.Response{StatusCode: http.StatusOK}))
	require.NoError(t, chain.ExecuteResponseInterceptors(ctx, req, &caseapi.Response{Error: errInterceptor}))

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Requests.WithLabelValues(http.MethodGet, "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.Requests.WithLabelValues(http.MethodGet, "error")), 0)

	metrics.ObservePage("tasks")
	metrics.ObservePage("tasks")
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.PagesFetched.WithLabelValues("tasks")), 0)

	_, err = caseapi.NewMetrics(registry)
	require.Error(t, err, "collectors are already registered")

	var nilMetrics *caseapi.Metrics

	assert.NotPanics(t, func() { nilMetrics.ObservePage("tasks") })
}
