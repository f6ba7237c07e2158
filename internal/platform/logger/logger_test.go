package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" warn "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}

func TestNewLogger_formats(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "info", "json", false).Debug("hidden")
	newLogger(&buf, "info", "json", false).Info("shown", slog.String("k", "v"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "v", line["k"])

	buf.Reset()
	newLogger(&buf, "debug", "text", false).Debug("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}

func TestRequestLogger_logs_route_pattern(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "info", "json", false)

	r := chi.NewRouter()
	r.Use(RequestLogger(log))
	r.Get("/compositions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("hi"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/compositions/abc", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "/compositions/abc", line["path"])
	assert.Equal(t, "/compositions/{id}", line["route"])
	assert.EqualValues(t, http.StatusTeapot, line["status"])
	assert.EqualValues(t, 2, line["size"])
}

func TestNewNop_discards(t *testing.T) {
	log := NewNop()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}
