// Package vocab holds the controlled vocabularies used for input
// autocompletion and the static symptom→suggestion table used by the
// offline plan mode.
package vocab

import "fmt"

// Field identifies a free-text input field of a session.
type Field string

const (
	FieldPatientName    Field = "patient_name"
	FieldSymptoms       Field = "symptoms"
	FieldMedicalHistory Field = "medical_history"
)

// ParseField converts a path/flag value into a Field.
func ParseField(s string) (Field, error) {
	switch Field(s) {
	case FieldPatientName, FieldSymptoms, FieldMedicalHistory:
		return Field(s), nil
	default:
		return "", fmt.Errorf("unknown field %q (want patient_name, symptoms or medical_history)", s)
	}
}

// Suggestion maps a symptom to a canned treatment suggestion.
type Suggestion struct {
	Symptom    string `json:"symptom" yaml:"symptom"`
	Suggestion string `json:"suggestion" yaml:"suggestion"`
}

// Set bundles the vocabularies and the suggestion table. It is loaded once
// and treated as read-only afterwards.
type Set struct {
	Symptoms       []string     `json:"symptoms" yaml:"symptoms"`
	MedicalHistory []string     `json:"medical_history" yaml:"medical_history"`
	Suggestions    []Suggestion `json:"suggestions" yaml:"suggestions"`
}

// For returns the vocabulary attached to a field. Patient names have none.
func (s *Set) For(field Field) []string {
	switch field {
	case FieldSymptoms:
		return s.Symptoms
	case FieldMedicalHistory:
		return s.MedicalHistory
	default:
		return nil
	}
}

// Default returns the built-in vocabularies.
func Default() *Set {
	return &Set{
		Symptoms: []string{
			"fever",
			"cough",
			"fatigue",
			"headache",
			"nausea",
			"dizziness",
			"chest pain",
			"shortness of breath",
			"abdominal pain",
			"diarrhea",
			"joint pain",
			"swelling",
		},
		MedicalHistory: []string{
			"diabetes",
			"hypertension",
			"asthma",
			"migraine",
			"anemia",
			"arthritis",
			"high cholesterol",
			"irritable bowel syndrome (IBS)",
			"obesity",
		},
		Suggestions: []Suggestion{
			{Symptom: "fever", Suggestion: "rest, fluids, and an over-the-counter antipyretic such as paracetamol"},
			{Symptom: "cough", Suggestion: "warm fluids, honey, and a cough suppressant if the cough disrupts sleep"},
			{Symptom: "headache", Suggestion: "rest in a quiet, dark room, hydration, and a mild analgesic"},
			{Symptom: "nausea", Suggestion: "small bland meals, clear fluids, and avoiding strong odors"},
			{Symptom: "fatigue", Suggestion: "regular sleep, balanced meals, and light daily activity"},
			{Symptom: "diarrhea", Suggestion: "oral rehydration solution and a bland diet"},
			{Symptom: "joint pain", Suggestion: "rest, cold compresses, and gentle range-of-motion exercises"},
		},
	}
}
