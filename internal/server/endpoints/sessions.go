package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/careplan/internal/api"
	"github.com/jackzampolin/careplan/internal/session"
	"github.com/jackzampolin/careplan/internal/svcctx"
)

// CreateSessionEndpoint handles POST /api/sessions.
type CreateSessionEndpoint struct{}

func (e *CreateSessionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions", e.handler
}

func (e *CreateSessionEndpoint) RequiresInit() bool { return true }

func (e *CreateSessionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sessions := svcctx.SessionsFrom(r.Context())
	if sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "session manager not initialized")
		return
	}
	c := sessions.Create()
	writeJSON(w, http.StatusCreated, c.Snapshot())
}

func (e *CreateSessionEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Start a new session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp session.Snapshot
			if err := client.Post(cmd.Context(), "/api/sessions", nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ListSessionsResponse lists live session IDs.
type ListSessionsResponse struct {
	Sessions []string `json:"sessions"`
}

// ListSessionsEndpoint handles GET /api/sessions.
type ListSessionsEndpoint struct{}

func (e *ListSessionsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/sessions", e.handler
}

func (e *ListSessionsEndpoint) RequiresInit() bool { return true }

func (e *ListSessionsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sessions := svcctx.SessionsFrom(r.Context())
	if sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "session manager not initialized")
		return
	}
	writeJSON(w, http.StatusOK, ListSessionsResponse{Sessions: sessions.List()})
}

func (e *ListSessionsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List live sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ListSessionsResponse
			if err := client.Get(cmd.Context(), "/api/sessions", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// GetSessionEndpoint handles GET /api/sessions/{id}.
type GetSessionEndpoint struct{}

func (e *GetSessionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/sessions/{id}", e.handler
}

func (e *GetSessionEndpoint) RequiresInit() bool { return true }

func (e *GetSessionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	c := lookupSession(w, r)
	if c == nil {
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

func (e *GetSessionEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp session.Snapshot
			if err := client.Get(cmd.Context(), "/api/sessions/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// DeleteSessionEndpoint handles DELETE /api/sessions/{id}.
type DeleteSessionEndpoint struct{}

func (e *DeleteSessionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/sessions/{id}", e.handler
}

func (e *DeleteSessionEndpoint) RequiresInit() bool { return true }

func (e *DeleteSessionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sessions := svcctx.SessionsFrom(r.Context())
	if sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "session manager not initialized")
		return
	}
	if !sessions.Delete(id) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *DeleteSessionEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/api/sessions/"+args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted session %s\n", args[0])
			return nil
		},
	}
}

// ClearSessionEndpoint handles POST /api/sessions/{id}/clear.
type ClearSessionEndpoint struct{}

func (e *ClearSessionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/clear", e.handler
}

func (e *ClearSessionEndpoint) RequiresInit() bool { return true }

func (e *ClearSessionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	c := lookupSession(w, r)
	if c == nil {
		return
	}
	writeJSON(w, http.StatusOK, c.ClearAll())
}

func (e *ClearSessionEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <id>",
		Short: "Reset every field of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp session.Snapshot
			if err := client.Post(cmd.Context(), "/api/sessions/"+args[0]+"/clear", nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
