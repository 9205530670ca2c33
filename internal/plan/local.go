package plan

import (
	"github.com/jackzampolin/careplan/internal/clinical"
	"github.com/jackzampolin/careplan/internal/localplan"
	"github.com/jackzampolin/careplan/internal/vocab"
)

// Local resolves c against the suggestion table. The same input
// precondition applies as for inference; the lookup itself cannot fail.
func Local(c clinical.Context, table []vocab.Suggestion) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Result{
		Text:   localplan.Resolve(c.PatientName, c.Symptoms, table),
		Source: SourceLocal,
	}, nil
}
