package endpoints

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/careplan/internal/api"
	"github.com/jackzampolin/careplan/internal/svcctx"
	"github.com/jackzampolin/careplan/internal/vocab"
)

// GetVocabularyEndpoint handles GET /api/vocabulary.
type GetVocabularyEndpoint struct{}

func (e *GetVocabularyEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/vocabulary", e.handler
}

func (e *GetVocabularyEndpoint) RequiresInit() bool { return false }

func (e *GetVocabularyEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, svcctx.VocabularyFrom(r.Context()))
}

func (e *GetVocabularyEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the symptom and medical history vocabularies",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp vocab.Set
			if err := client.Get(cmd.Context(), "/api/vocabulary", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// SuggestResponse lists vocabulary matches for a partial input.
type SuggestResponse struct {
	Field       vocab.Field `json:"field"`
	Query       string      `json:"query"`
	Suggestions []string    `json:"suggestions"`
}

// SuggestEndpoint handles GET /api/vocabulary/{field}/suggest?q=.
type SuggestEndpoint struct{}

func (e *SuggestEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/vocabulary/{field}/suggest", e.handler
}

func (e *SuggestEndpoint) RequiresInit() bool { return false }

func (e *SuggestEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	field, err := vocab.ParseField(r.PathValue("field"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query().Get("q")
	set := svcctx.VocabularyFrom(r.Context())
	matches := vocab.Match(q, set.For(field))
	if matches == nil {
		matches = []string{}
	}

	writeJSON(w, http.StatusOK, SuggestResponse{Field: field, Query: q, Suggestions: matches})
}

func (e *SuggestEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <field> <partial>",
		Short: "List vocabulary terms matching a partial input",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp SuggestResponse
			path := fmt.Sprintf("/api/vocabulary/%s/suggest?q=%s", url.PathEscape(args[0]), url.QueryEscape(args[1]))
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
