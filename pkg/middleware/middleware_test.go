package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shortlink/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.GetCorrelationID(r.Context())
	})

	rec := httptest.NewRecorder()
	CorrelationID(next).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Correlation-ID"))
}

func TestTimeoutSetsDeadline(t *testing.T) {
	var deadline time.Time
	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
	})

	rec := httptest.NewRecorder()
	Timeout(100*time.Millisecond)(next).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(100*time.Millisecond), deadline, 50*time.Millisecond)
}

func TestTimeoutExpires(t *testing.T) {
	done := make(chan error, 1)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			done <- r.Context().Err()
		case <-time.After(time.Second):
			done <- nil
		}
	})

	rec := httptest.NewRecorder()
	Timeout(10*time.Millisecond)(next).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.ErrorIs(t, <-done, context.DeadlineExceeded)
}

func TestRequestLoggerPreservesStatus(t *testing.T) {
	logger := logging.NewLogger(logging.LevelError)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	RequestLogger(logger)(next).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
