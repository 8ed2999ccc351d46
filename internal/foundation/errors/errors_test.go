package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "formtrack.yaml").
			Build()

		assert.Equal(t, CategoryConfig, err.Category())
		assert.Equal(t, SeverityFatal, err.Severity())
		assert.Equal(t, "invalid configuration", err.Message())
		assert.Equal(t, "[config:fatal] invalid configuration", err.Error())

		file, ok := err.Context().GetString("file")
		require.True(t, ok)
		assert.Equal(t, "formtrack.yaml", file)
	})

	t.Run("Wrapped in fmt.Errorf", func(t *testing.T) {
		inner := SinkError("publish failed").Build()
		err := fmt.Errorf("emit: %w", inner)

		assert.True(t, IsClassified(err))
		assert.True(t, HasCategory(err, CategorySink))
		assert.True(t, IsRetryable(err))
		assert.Equal(t, CategorySink, GetCategory(err))
	})

	t.Run("Unclassified defaults", func(t *testing.T) {
		err := stderrors.New("plain")
		assert.False(t, IsClassified(err))
		assert.False(t, IsRetryable(err))
		assert.Equal(t, CategoryInternal, GetCategory(err))
	})

	t.Run("WithContext copies", func(t *testing.T) {
		base := ParseError("bad markup").Build()
		withPath := base.WithContext("path", "page.html")

		_, ok := base.Context().Get("path")
		assert.False(t, ok)
		path, _ := withPath.Context().GetString("path")
		assert.Equal(t, "page.html", path)
		assert.ErrorIs(t, withPath, base)
	})
}

func TestErrorBuilder(t *testing.T) {
	originalErr := stderrors.New("connection refused")
	err := WrapError(originalErr, CategoryNetwork, "nats unreachable").
		Warning().
		Retryable().
		WithContext("url", "nats://localhost:4222").
		Build()

	assert.Equal(t, SeverityWarning, err.Severity())
	assert.Equal(t, RetryBackoff, err.RetryStrategy())
	assert.ErrorIs(t, err, originalErr)
	assert.Same(t, originalErr, err.Cause())
	assert.True(t, err.CanRetry())
	assert.False(t, err.IsFatal())
	assert.Contains(t, err.Error(), "connection refused")
}

func TestErrorContextMerge(t *testing.T) {
	var empty ErrorContext
	other := ErrorContext{"a": 1}
	assert.Equal(t, other, empty.Merge(other))

	merged := ErrorContext{"a": 1, "b": 2}.Merge(ErrorContext{"b": 3})
	assert.Equal(t, ErrorContext{"a": 1, "b": 3}, merged)
}

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"validation", ValidationError("bad args").Build(), 2},
		{"config", ConfigError("missing file").Build(), 7},
		{"sink", SinkError("publish").Build(), 8},
		{"parse", ParseError("html").Build(), 9},
		{"eventstore", EventStoreError("insert").Build(), 11},
		{"internal", InternalError("boom").Build(), 10},
		{"plain", stderrors.New("x"), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, adapter.ExitCodeFor(tc.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, nil)
	verbose := NewCLIErrorAdapter(true, nil)

	cause := stderrors.New("timeout")
	err := WrapError(cause, CategorySink, "publish failed").Build()

	assert.Equal(t, "Error: publish failed (use -v for details)", quiet.FormatError(err))
	assert.Equal(t, "[sink:error] publish failed: timeout", verbose.FormatError(err))
	assert.Equal(t, "Error: no such file", quiet.FormatError(FileSystemError("no such file").Build()))
	assert.Equal(t, "Error: x", quiet.FormatError(stderrors.New("x")))
	assert.Empty(t, quiet.FormatError(nil))
}

func TestHTTPErrorAdapter(t *testing.T) {
	var logs bytes.Buffer
	adapter := NewHTTPErrorAdapter(slog.New(slog.NewTextHandler(&logs, nil)))

	t.Run("status codes", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, adapter.StatusCodeFor(nil))
		assert.Equal(t, http.StatusBadRequest, adapter.StatusCodeFor(ParseError("x").Build()))
		assert.Equal(t, http.StatusBadRequest, adapter.StatusCodeFor(ValidationError("x").Build()))
		assert.Equal(t, http.StatusNotFound, adapter.StatusCodeFor(NewError(CategoryNotFound, "x").Build()))
		assert.Equal(t, http.StatusBadGateway, adapter.StatusCodeFor(SinkError("x").Build()))
		assert.Equal(t, http.StatusInternalServerError, adapter.StatusCodeFor(EventStoreError("x").Build()))
		assert.Equal(t, http.StatusInternalServerError, adapter.StatusCodeFor(stderrors.New("x")))
	})

	t.Run("json payload", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/pages", nil)
		err := SinkError("publish failed").WithContext("subject", "formtrack.events").Build()

		adapter.WriteErrorResponse(rec, req, err)

		require.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body HTTPErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "publish failed", body.Error)
		assert.Equal(t, "sink", body.Code)
		assert.True(t, body.Retryable)
		assert.Equal(t, "formtrack.events", body.Details["subject"])
		assert.Contains(t, logs.String(), "publish failed")
	})
}
