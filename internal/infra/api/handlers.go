package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"adalbertofjr/desafio-login-lockout/ajun/middleware/lockout"
	"adalbertofjr/desafio-login-lockout/ajun/middleware/sanitizer"
	"adalbertofjr/desafio-login-lockout/internal/lib/logger/sl"
)

type Tracker interface {
	RecordFailedLogin(ctx context.Context, identifier string) error
	ResetLoginAttempts(ctx context.Context, identifier string) error
	IsAccountLocked(ctx context.Context, identifier string) (lockout.LockStatus, error)
	GetRemainingAttempts(ctx context.Context, identifier string) (int, error)
}

type AttemptStatus struct {
	Identifier        string `json:"identifier"`
	Locked            bool   `json:"locked"`
	RemainingSeconds  int    `json:"remaining_seconds"`
	RemainingAttempts int    `json:"remaining_attempts"`
}

type AttemptsHandler struct {
	log     *slog.Logger
	tracker Tracker
}

func NewAttemptsHandler(log *slog.Logger, tracker Tracker) *AttemptsHandler {
	return &AttemptsHandler{log: log, tracker: tracker}
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"OK"}`))
}

func (h *AttemptsHandler) Register(handle func(pattern string, handler func(http.ResponseWriter, *http.Request))) {
	handle("GET /attempts/{id}", h.Status)
	handle("POST /attempts/{id}/failures", h.RecordFailure)
	handle("DELETE /attempts/{id}", h.Reset)
}

func (h *AttemptsHandler) identifier(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := sanitizer.Digits(r.PathValue("id"))
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "identifier must contain digits"})
		return "", false
	}
	return id, true
}

func (h *AttemptsHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identifier(w, r)
	if !ok {
		return
	}
	h.writeStatus(w, r, id, http.StatusOK)
}

func (h *AttemptsHandler) RecordFailure(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identifier(w, r)
	if !ok {
		return
	}

	if err := h.tracker.RecordFailedLogin(r.Context(), id); err != nil {
		h.internalError(w, err)
		return
	}

	h.writeStatus(w, r, id, http.StatusOK)
}

func (h *AttemptsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identifier(w, r)
	if !ok {
		return
	}

	if err := h.tracker.ResetLoginAttempts(r.Context(), id); err != nil {
		h.internalError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AttemptsHandler) writeStatus(w http.ResponseWriter, r *http.Request, id string, code int) {
	lock, err := h.tracker.IsAccountLocked(r.Context(), id)
	if err != nil {
		h.internalError(w, err)
		return
	}

	remaining, err := h.tracker.GetRemainingAttempts(r.Context(), id)
	if err != nil {
		h.internalError(w, err)
		return
	}

	if lock.Locked {
		w.Header().Set("Retry-After", strconv.Itoa(lock.RemainingSeconds))
	}

	writeJSON(w, code, AttemptStatus{
		Identifier:        id,
		Locked:            lock.Locked,
		RemainingSeconds:  lock.RemainingSeconds,
		RemainingAttempts: remaining,
	})
}

func (h *AttemptsHandler) internalError(w http.ResponseWriter, err error) {
	h.log.Error("attempt tracker failure", sl.Err(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
