package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shortlink/pkg/logging"
	"shortlink/pkg/service"
	"shortlink/pkg/storage"
	"shortlink/pkg/storage/storagetest"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() (*chi.Mux, *storagetest.Store) {
	store := storagetest.New()
	logger := logging.NewLogger(logging.LevelError)
	registry := service.NewRegistry(store, nil, logger)
	resolver := service.NewResolver(store, nil, logger)
	handler := NewHandler(registry, resolver, "http://sho.rt", logger)

	r := chi.NewRouter()
	SetupRoutes(r, handler, logger, 5*time.Second)
	return r, store
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndRedirectScenario(t *testing.T) {
	r, _ := newTestRouter()

	rec := doJSON(t, r, "POST", "/links", map[string]string{"url": "https://example.com/a/b"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created createLinkResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Len(t, created.Code, 7)
	assert.Equal(t, "http://sho.rt/"+created.Code, created.ShortURL)
	assert.Equal(t, "https://example.com/a/b", created.TargetURL)
	assert.Equal(t, int64(0), created.Clicks)

	// First redirect.
	rec = doJSON(t, r, "GET", "/"+created.Code, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://example.com/a/b", rec.Header().Get("Location"))

	rec = doJSON(t, r, "GET", "/links/"+created.Code, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats storage.Link
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, int64(1), stats.Clicks)
	require.NotNil(t, stats.LastClickedAt)
	firstClick := *stats.LastClickedAt

	// Second redirect bumps the counter and moves the timestamp forward.
	rec = doJSON(t, r, "GET", "/"+created.Code, nil)
	require.Equal(t, http.StatusFound, rec.Code)

	rec = doJSON(t, r, "GET", "/links/"+created.Code, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, int64(2), stats.Clicks)
	require.NotNil(t, stats.LastClickedAt)
	assert.False(t, stats.LastClickedAt.Before(firstClick))
}

func TestCustomCodeCaseInsensitiveConflict(t *testing.T) {
	r, _ := newTestRouter()

	rec := doJSON(t, r, "POST", "/links", map[string]string{"url": "https://example.com", "code": "PROMO1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created createLinkResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "PROMO1", created.Code)

	rec = doJSON(t, r, "POST", "/links", map[string]string{"url": "https://example.com", "code": "promo1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	var errResp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, "code already taken", errResp.Error)
}

func TestCreateLinkValidation(t *testing.T) {
	r, _ := newTestRouter()

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
	}{
		{"missing url", map[string]string{}, http.StatusBadRequest},
		{"invalid url", map[string]string{"url": "not a url"}, http.StatusBadRequest},
		{"scheme only", map[string]string{"url": "https://"}, http.StatusBadRequest},
		{"bad custom code", map[string]string{"url": "https://example.com", "code": "ab"}, http.StatusBadRequest},
		{"custom code with symbols", map[string]string{"url": "https://example.com", "code": "PROMO-2024"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, r, "POST", "/links", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestListLinksNewestFirst(t *testing.T) {
	r, _ := newTestRouter()

	rec := doJSON(t, r, "POST", "/links", map[string]string{"url": "https://example.com/1", "code": "FIRST1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, r, "POST", "/links", map[string]string{"url": "https://example.com/2", "code": "SECOND2"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, "GET", "/links", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var links []storage.Link
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&links))
	require.Len(t, links, 2)
	assert.Equal(t, "SECOND2", links[0].Code)
	assert.Equal(t, "FIRST1", links[1].Code)
}

func TestDeleteLink(t *testing.T) {
	r, _ := newTestRouter()

	rec := doJSON(t, r, "POST", "/links", map[string]string{"url": "https://example.com", "code": "GONE99"})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Missing code query parameter.
	rec = doJSON(t, r, "DELETE", "/links", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, "DELETE", "/links?code=gone99", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, "GET", "/links/GONE99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Deleting again reports not-found instead of failing hard.
	rec = doJSON(t, r, "DELETE", "/links?code=GONE99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRedirectNotFoundAndMalformed(t *testing.T) {
	r, _ := newTestRouter()

	rec := doJSON(t, r, "GET", "/NOSUCHCODE", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, r, "GET", "/ab", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStoreFailureReturns500(t *testing.T) {
	down := errors.New("connection refused")

	assertStoreUnavailable := func(t *testing.T, rec *httptest.ResponseRecorder) {
		t.Helper()
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		var errResp errorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
		assert.Equal(t, "store unavailable", errResp.Error)
	}

	t.Run("redirect", func(t *testing.T) {
		r, store := newTestRouter()
		store.IncrementErr = down
		assertStoreUnavailable(t, doJSON(t, r, "GET", "/NOSUCHCODE", nil))
	})

	t.Run("create", func(t *testing.T) {
		r, store := newTestRouter()
		store.InsertErr = down
		assertStoreUnavailable(t, doJSON(t, r, "POST", "/links",
			map[string]string{"url": "https://example.com", "code": "PROMO1"}))
	})

	t.Run("list", func(t *testing.T) {
		r, store := newTestRouter()
		store.ListErr = down
		assertStoreUnavailable(t, doJSON(t, r, "GET", "/links", nil))
	})

	t.Run("delete", func(t *testing.T) {
		r, store := newTestRouter()
		store.DeleteErr = down
		assertStoreUnavailable(t, doJSON(t, r, "DELETE", "/links?code=PROMO1", nil))
	})
}

func TestHealthzReflectsStore(t *testing.T) {
	r, store := newTestRouter()

	rec := doJSON(t, r, "GET", "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	store.PingErr = errors.New("connection refused")
	rec = doJSON(t, r, "GET", "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
