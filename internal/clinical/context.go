// Package clinical holds the session-scoped clinical data types: the
// normalized context passed to plan generation, the uploaded lab report
// image, and the classified operation errors.
package clinical

import "strings"

// Context is the normalized bundle of patient-provided fields passed to plan
// generation. It is a value type; copies handed to other components cannot
// alter the original.
type Context struct {
	PatientName    string `json:"patient_name"`
	Symptoms       string `json:"symptoms"`
	MedicalHistory string `json:"medical_history"`
	ExtractedText  string `json:"extracted_text"`
}

// Build merges the patient inputs into a Context. Empty fields stay empty;
// renderers downstream decide how to show "not provided".
func Build(patientName, symptoms, medicalHistory, extractedText string) Context {
	return Context{
		PatientName:    patientName,
		Symptoms:       symptoms,
		MedicalHistory: medicalHistory,
		ExtractedText:  extractedText,
	}
}

// HasClinicalInput reports whether at least one of symptoms, medical history
// or extracted text is non-empty. Whitespace-only fields count as empty.
// The patient name alone is never enough.
func (c Context) HasClinicalInput() bool {
	return strings.TrimSpace(c.Symptoms) != "" ||
		strings.TrimSpace(c.MedicalHistory) != "" ||
		strings.TrimSpace(c.ExtractedText) != ""
}

// Validate returns a ValidationError when the context cannot be used for
// plan generation.
func (c Context) Validate() error {
	if !c.HasClinicalInput() {
		return NewValidationError("Please provide symptoms, medical history, or a lab report.")
	}
	return nil
}
