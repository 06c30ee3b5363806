package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// Scope selects which sections a command needs
type Scope int

const (
	// ScopeServe is the long-running bot: Telegram, Google and schedules
	ScopeServe Scope = iota
	// ScopeConcept previews concepts: the document source only
	ScopeConcept
	// ScopeQuiz previews quizzes: the sheet source only
	ScopeQuiz
)

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate, trans, nil
}

// ValidateFor checks the sections required by scope and reports every
// problem in one error
func (c *Config) ValidateFor(scope Scope) error {
	validate, trans, err := newValidator()
	if err != nil {
		return err
	}

	var sections []interface{}
	switch scope {
	case ScopeServe:
		sections = []interface{}{c.Telegram, c.Google, c.Quiz, c.Schedule, c.Database}
	case ScopeConcept:
		sections = []interface{}{
			struct {
				CredentialsJSON string `mapstructure:"google.credentials_json" validate:"required,json"`
				DocID           string `mapstructure:"google.doc_id" validate:"required"`
			}{c.Google.CredentialsJSON, c.Google.DocID},
			c.Schedule,
		}
	case ScopeQuiz:
		sections = []interface{}{
			struct {
				CredentialsJSON string `mapstructure:"google.credentials_json" validate:"required,json"`
				SheetID         string `mapstructure:"google.sheet_id" validate:"required"`
				SheetRange      string `mapstructure:"google.sheet_range" validate:"required"`
			}{c.Google.CredentialsJSON, c.Google.SheetID, c.Google.SheetRange},
		}
	default:
		return fmt.Errorf("unknown validation scope %d", scope)
	}

	var messages []string
	for _, section := range sections {
		err := validate.Struct(section)
		if err == nil {
			continue
		}
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return fmt.Errorf("failed to validate configuration: %w", err)
		}
		for _, fe := range validationErrors {
			messages = append(messages, fe.Translate(trans))
		}
	}

	if len(messages) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(messages, "\n  - "))
	}
	return nil
}
