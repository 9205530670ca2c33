package endpoints

import (
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/careplan/internal/api"
	"github.com/jackzampolin/careplan/internal/session"
)

// ExtractEndpoint handles POST /api/sessions/{id}/extract.
type ExtractEndpoint struct{}

func (e *ExtractEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/extract", e.handler
}

func (e *ExtractEndpoint) RequiresInit() bool { return true }

func (e *ExtractEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	c := lookupSession(w, r)
	if c == nil {
		return
	}
	done, err := c.ExtractText()
	if err != nil {
		snap := c.Snapshot()
		writeActionError(w, err, &snap)
		return
	}
	respondOperation(w, r, c, done)
}

func (e *ExtractEndpoint) Command(getServerURL func() string) *cobra.Command {
	return operationCommand(getServerURL, "extract", "Extract text from the session's lab report")
}

// PlanEndpoint handles POST /api/sessions/{id}/plan.
type PlanEndpoint struct{}

func (e *PlanEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/plan", e.handler
}

func (e *PlanEndpoint) RequiresInit() bool { return true }

func (e *PlanEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	c := lookupSession(w, r)
	if c == nil {
		return
	}
	done, err := c.GeneratePlan()
	if err != nil {
		snap := c.Snapshot()
		writeActionError(w, err, &snap)
		return
	}
	respondOperation(w, r, c, done)
}

func (e *PlanEndpoint) Command(getServerURL func() string) *cobra.Command {
	return operationCommand(getServerURL, "plan", "Generate a treatment plan for the session")
}

// respondOperation waits for the operation unless the client asked not to
// (?wait=false). A client that goes away stops waiting; the operation keeps
// running and its result lands in the session.
func respondOperation(w http.ResponseWriter, r *http.Request, c *session.Controller, done <-chan session.Snapshot) {
	if wait, err := strconv.ParseBool(r.URL.Query().Get("wait")); err == nil && !wait {
		writeJSON(w, http.StatusAccepted, c.Snapshot())
		return
	}

	select {
	case snap := <-done:
		writeSnapshot(w, snap)
	case <-r.Context().Done():
		writeJSON(w, http.StatusAccepted, c.Snapshot())
	}
}

func operationCommand(getServerURL func() string, op, short string) *cobra.Command {
	var noWait bool
	cmd := &cobra.Command{
		Use:   op + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			path := "/api/sessions/" + args[0] + "/" + op
			if noWait {
				path += "?wait=false"
			}
			var resp session.Snapshot
			if err := client.Post(cmd.Context(), path, nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "Return as soon as the operation starts")
	return cmd
}
