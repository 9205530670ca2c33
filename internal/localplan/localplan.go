// Package localplan resolves a treatment suggestion from the static
// symptom table. It is the offline mode used when no inference service is
// configured: no network I/O, and it never fails.
package localplan

import (
	"fmt"
	"strings"

	"github.com/jackzampolin/careplan/internal/vocab"
)

// Resolve returns the suggestion of the first table entry (in table order)
// whose symptom occurs in symptoms, case-insensitively. When nothing
// matches it returns a doctor-referral message that echoes the patient
// name and the symptoms exactly as given.
func Resolve(patientName, symptoms string, table []vocab.Suggestion) string {
	haystack := strings.ToLower(symptoms)
	for _, entry := range table {
		if entry.Symptom == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(entry.Symptom)) {
			return fmt.Sprintf("Treatment plan for %s: %s", patientName, entry.Suggestion)
		}
	}
	return fmt.Sprintf("No specific suggestion for %s with symptoms \"%s\". Please consult a doctor.", patientName, symptoms)
}
