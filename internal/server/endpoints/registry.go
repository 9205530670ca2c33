package endpoints

import (
	"github.com/jackzampolin/careplan/internal/api"
)

// SessionsGroup places session commands under "api sessions".
var SessionsGroup = api.Group{Name: "sessions", Short: "Create and drive treatment plan sessions"}

// VocabularyGroup places vocabulary commands under "api vocabulary".
var VocabularyGroup = api.Group{Name: "vocabulary", Short: "Inspect the autocomplete vocabularies"}

// Register adds every endpoint to reg.
func Register(reg *api.Registry) {
	reg.Register(&HealthEndpoint{})
	reg.Register(&StatusEndpoint{})

	reg.RegisterGroup(VocabularyGroup,
		&GetVocabularyEndpoint{},
		&SuggestEndpoint{},
	)

	reg.RegisterGroup(SessionsGroup,
		&CreateSessionEndpoint{},
		&ListSessionsEndpoint{},
		&GetSessionEndpoint{},
		&DeleteSessionEndpoint{},
		&EditFieldEndpoint{},
		&SelectSuggestionEndpoint{},
		&SelectImageEndpoint{},
		&ExtractEndpoint{},
		&PlanEndpoint{},
		&ClearSessionEndpoint{},
	)
}
