package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackzampolin/careplan/internal/clinical"
	"github.com/jackzampolin/careplan/internal/session"
	"github.com/jackzampolin/careplan/internal/svcctx"
)

// ErrorResponse is a standard error response. Session carries the state
// after a failed session action so clients can render it.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Kind    string            `json:"kind,omitempty"`
	Session *session.Snapshot `json:"session,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeActionError maps a session action error to a status code.
func writeActionError(w http.ResponseWriter, err error, snap *session.Snapshot) {
	resp := ErrorResponse{Error: err.Error(), Session: snap}
	var opErr *clinical.OperationError
	if errors.As(err, &opErr) {
		resp.Error = opErr.Message
		resp.Kind = string(opErr.Kind)
	}
	writeJSON(w, statusFor(err), resp)
}

// writeSnapshot writes snap, or its operation error when the last operation failed.
func writeSnapshot(w http.ResponseWriter, snap session.Snapshot) {
	if snap.State == session.StateFailed && snap.Error != nil {
		writeJSON(w, statusForKind(snap.Error.Kind), ErrorResponse{
			Error:   snap.Error.Message,
			Kind:    string(snap.Error.Kind),
			Session: &snap,
		})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func statusFor(err error) int {
	if errors.Is(err, session.ErrBusy) {
		return http.StatusConflict
	}
	if kind, ok := clinical.KindOf(err); ok {
		return statusForKind(kind)
	}
	return http.StatusInternalServerError
}

func statusForKind(kind clinical.ErrorKind) int {
	switch kind {
	case clinical.KindValidation:
		return http.StatusUnprocessableEntity
	case clinical.KindFileRead:
		return http.StatusBadRequest
	case clinical.KindExtraction, clinical.KindTransport, clinical.KindResponseShape:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// lookupSession resolves the {id} path value. It writes the error response
// and returns nil when the session cannot be used.
func lookupSession(w http.ResponseWriter, r *http.Request) *session.Controller {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return nil
	}

	sessions := svcctx.SessionsFrom(r.Context())
	if sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "session manager not initialized")
		return nil
	}

	c, err := sessions.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return nil
	}
	return c
}

// decodeJSON decodes the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
