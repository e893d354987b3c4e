package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"shortlink/pkg/logging"
	"shortlink/pkg/service"
	"shortlink/pkg/storage"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	registry *service.Registry
	resolver *service.Resolver
	baseURL  string
	logger   *logging.Logger
}

func NewHandler(registry *service.Registry, resolver *service.Resolver, baseURL string, logger *logging.Logger) *Handler {
	return &Handler{
		registry: registry,
		resolver: resolver,
		baseURL:  baseURL,
		logger:   logger,
	}
}

type createLinkRequest struct {
	URL  string `json:"url"`
	Code string `json:"code,omitempty"`
}

type createLinkResponse struct {
	Code      string    `json:"code"`
	ShortURL  string    `json:"shortUrl"`
	TargetURL string    `json:"targetUrl"`
	Clicks    int64     `json:"clicks"`
	CreatedAt time.Time `json:"createdAt"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	var link *storage.Link
	var err error
	if req.Code != "" {
		link, err = h.registry.CreateWithCustomCode(r.Context(), req.URL, req.Code)
	} else {
		link, err = h.registry.CreateWithGeneratedCode(r.Context(), req.URL)
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createLinkResponse{
		Code:      link.Code,
		ShortURL:  h.baseURL + "/" + link.Code,
		TargetURL: link.TargetURL,
		Clicks:    link.Clicks,
		CreatedAt: link.CreatedAt,
	})
}

func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.registry.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	link, err := h.registry.Lookup(r.Context(), code)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	if err := h.registry.Delete(r.Context(), code); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	targetURL, err := h.resolver.Resolve(r.Context(), code)
	if err != nil {
		// Malformed and unknown codes both render as not-found on the
		// redirect surface.
		if errors.Is(err, service.ErrInvalidCode) || errors.Is(err, service.ErrNotFound) {
			writeError(w, http.StatusNotFound, "link not found")
			return
		}
		h.logger.Error(r.Context(), "redirect failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}
	http.Redirect(w, r, targetURL, http.StatusFound)
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// writeServiceError maps registry errors to transport responses with
// machine-stable reason strings. Store-specific error text never leaks to
// callers.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidURL):
		writeError(w, http.StatusBadRequest, "invalid url")
	case errors.Is(err, service.ErrInvalidCodeFormat):
		writeError(w, http.StatusBadRequest, "custom code must be 6-12 letters or digits")
	case errors.Is(err, service.ErrCodeTaken):
		writeError(w, http.StatusConflict, "code already taken")
	case errors.Is(err, service.ErrInvalidCode), errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "link not found")
	case errors.Is(err, service.ErrExhaustedAttempts):
		h.logger.Error(r.Context(), "code generation exhausted")
		writeError(w, http.StatusInternalServerError, "could not allocate code")
	default:
		h.logger.Error(r.Context(), "store error", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "store unavailable")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, reason string) {
	writeJSON(w, status, errorResponse{Error: reason})
}
