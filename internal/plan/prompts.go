package plan

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"

	"github.com/jackzampolin/careplan/internal/clinical"
)

// NotProvided is rendered in place of an empty field.
const NotProvided = "not provided"

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPromptTmpl string

var userTemplate = template.Must(template.New("user").Funcs(template.FuncMap{
	"placeholder": placeholder,
}).Parse(userPromptTmpl))

func placeholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotProvided
	}
	return s
}

// SystemPrompt returns the system directive sent with every request.
func SystemPrompt() string {
	return strings.TrimSpace(systemPrompt)
}

// UserPrompt renders the clinical context into the user message. Empty
// fields are shown as "not provided"; others are included verbatim.
func UserPrompt(c clinical.Context) (string, error) {
	var buf bytes.Buffer
	if err := userTemplate.Execute(&buf, c); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
