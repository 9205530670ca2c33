package session

import (
	"github.com/jackzampolin/careplan/internal/clinical"
	"github.com/jackzampolin/careplan/internal/plan"
)

// State is the controller's lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateFailed  State = "failed"
)

// Operation names an asynchronous action.
type Operation string

const (
	OpNone    Operation = ""
	OpExtract Operation = "extract"
	OpPlan    Operation = "plan"
)

// NoImageNotice is shown when extraction is requested without a lab report.
const NoImageNotice = "No lab report selected. You may proceed without a lab report."

// ErrorView is the user-facing part of an OperationError.
type ErrorView struct {
	Kind    clinical.ErrorKind `json:"kind"`
	Message string             `json:"message"`
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	ID        string      `json:"id"`
	State     State       `json:"state"`
	Busy      bool        `json:"busy"`
	Operation Operation   `json:"operation,omitempty"`
	Mode      plan.Source `json:"mode"`

	PatientName    string `json:"patient_name"`
	Symptoms       string `json:"symptoms"`
	MedicalHistory string `json:"medical_history"`

	SymptomSuggestions []string `json:"symptom_suggestions"`
	HistorySuggestions []string `json:"history_suggestions"`

	Image         *clinical.UploadedImage `json:"image,omitempty"`
	ExtractedText string                  `json:"extracted_text"`
	Plan          *plan.Result            `json:"plan,omitempty"`

	Error  *ErrorView `json:"error,omitempty"`
	Notice string     `json:"notice,omitempty"`
}
