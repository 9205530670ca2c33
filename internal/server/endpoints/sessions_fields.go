package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/careplan/internal/api"
	"github.com/jackzampolin/careplan/internal/session"
	"github.com/jackzampolin/careplan/internal/vocab"
)

// EditFieldRequest replaces a field's text.
type EditFieldRequest struct {
	Text string `json:"text"`
}

// EditFieldEndpoint handles PUT /api/sessions/{id}/fields/{field}.
type EditFieldEndpoint struct{}

func (e *EditFieldEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/sessions/{id}/fields/{field}", e.handler
}

func (e *EditFieldEndpoint) RequiresInit() bool { return true }

func (e *EditFieldEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	c := lookupSession(w, r)
	if c == nil {
		return
	}

	field, err := vocab.ParseField(r.PathValue("field"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req EditFieldRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	snap, err := c.EditField(field, req.Text)
	if err != nil {
		writeActionError(w, err, &snap)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (e *EditFieldEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <field> <text>",
		Short: "Replace a field (patient_name, symptoms, medical_history)",
		Long: `Replace the text of a session field and show the resulting suggestions.

Symptoms and medical history are matched case-insensitively against the
vocabulary; patient names have no suggestions.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp session.Snapshot
			path := fmt.Sprintf("/api/sessions/%s/fields/%s", args[0], args[1])
			if err := client.Put(cmd.Context(), path, EditFieldRequest{Text: args[2]}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// SelectSuggestionRequest picks a suggested term.
type SelectSuggestionRequest struct {
	Term string `json:"term"`
}

// SelectSuggestionEndpoint handles POST /api/sessions/{id}/fields/{field}/select.
type SelectSuggestionEndpoint struct{}

func (e *SelectSuggestionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/fields/{field}/select", e.handler
}

func (e *SelectSuggestionEndpoint) RequiresInit() bool { return true }

func (e *SelectSuggestionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	c := lookupSession(w, r)
	if c == nil {
		return
	}

	field, err := vocab.ParseField(r.PathValue("field"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req SelectSuggestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	snap, err := c.SelectSuggestion(field, req.Term)
	if err != nil {
		writeActionError(w, err, &snap)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (e *SelectSuggestionEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "select <id> <field> <term>",
		Short: "Replace a field with a suggested term",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp session.Snapshot
			path := fmt.Sprintf("/api/sessions/%s/fields/%s/select", args[0], args[1])
			if err := client.Post(cmd.Context(), path, SelectSuggestionRequest{Term: args[2]}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
