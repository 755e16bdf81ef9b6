// Package http provides the HTTP boundary for the secret lifecycle:
// create, reveal, list, delete, and the cleanup trigger.
package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mkravets/secretdrop/internal/middleware"
	"github.com/mkravets/secretdrop/internal/models"
	"github.com/mkravets/secretdrop/internal/service"
)

// SecretService defines the lifecycle operations required by the HTTP
// handlers.
type SecretService interface {
	// Create validates, encrypts, and persists a new secret.
	Create(ctx context.Context, p service.CreateParams) (*service.CreateResult, error)
	// Reveal runs the gated read of a secret.
	Reveal(ctx context.Context, id, password string) (*models.RevealResult, error)
	// List returns the owner's secret summaries.
	List(ctx context.Context, ownerID, search string) ([]models.SecretSummary, error)
	// Delete removes one of the caller's secrets.
	Delete(ctx context.Context, id, ownerID string) error
	// Sweep bulk-deletes expired secrets.
	Sweep(ctx context.Context) (int64, error)
}

// SecretHandler handles HTTP requests for the secret lifecycle.
type SecretHandler struct {
	// Service performs the underlying lifecycle operations.
	Service SecretService
	// CronToken guards the cleanup endpoint; empty disables the check.
	CronToken string
	// Logger records internal failures without payload contents.
	Logger *zap.Logger
}

// CreateRequest is the JSON payload for creating a secret. OwnerHint lets
// an unauthenticated client attach an explicit anonymous-owner id; an
// authenticated session always wins over it.
type CreateRequest struct {
	Text      string `json:"text"`
	OneTime   bool   `json:"oneTime"`
	ExpiresIn int64  `json:"expiresIn"`
	Password  string `json:"password,omitempty"`
	OwnerHint string `json:"userId,omitempty"`
}

// RevealRequest is the optional JSON payload for a reveal call.
type RevealRequest struct {
	Password string `json:"password,omitempty"`
}

// Create handles POST /api/secrets.
func (h *SecretHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	ownerID := middleware.GetUserIDFromContext(r.Context())
	if ownerID == "" {
		ownerID = req.OwnerHint
	}

	result, err := h.Service.Create(r.Context(), service.CreateParams{
		Text:      req.Text,
		OneTime:   req.OneTime,
		ExpiresIn: req.ExpiresIn,
		Password:  req.Password,
		OwnerID:   ownerID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// Reveal handles POST /api/secrets/{id}/reveal. The body is optional; it
// carries the password on a retry of a password-protected secret.
func (h *SecretHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	var req RevealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	result, err := h.Service.Reveal(r.Context(), chi.URLParam(r, "id"), req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// List handles GET /api/secrets. Requires an authenticated caller.
func (h *SecretHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserIDFromContext(r.Context())

	summaries, err := h.Service.List(r.Context(), ownerID, r.URL.Query().Get("search"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if summaries == nil {
		summaries = []models.SecretSummary{}
	}

	writeJSON(w, http.StatusOK, summaries)
}

// Delete handles DELETE /api/secrets/{id}. Requires an authenticated
// caller owning the secret.
func (h *SecretHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserIDFromContext(r.Context())

	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id"), ownerID); err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Cleanup handles POST /api/cron/cleanup, the external trigger for the
// expiry sweep. When a cron token is configured the caller must present
// it as a bearer token.
func (h *SecretHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	if h.CronToken != "" {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(raw), []byte(h.CronToken)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	deleted, err := h.Service.Sweep(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deletedCount": deleted})
}

// writeError maps the service error taxonomy onto HTTP statuses. Expired
// and consumed secrets share the "gone" class with unknown ids so callers
// cannot probe for existence.
func (h *SecretHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrExpired), errors.Is(err, service.ErrConsumed):
		http.Error(w, err.Error(), http.StatusGone)
	case errors.Is(err, service.ErrWrongPassword), errors.Is(err, service.ErrUnauthorized):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, service.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		if h.Logger != nil {
			h.Logger.Error("internal error", zap.Error(err))
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
