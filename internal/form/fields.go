package form

import (
	"strings"

	"leadbot/internal/i18n"
	"leadbot/internal/models"
)

// Tariff ids
const (
	TariffStart     = "start"
	TariffBusiness  = "business"
	TariffCorporate = "corporate"
)

// Choice is one fixed option of a choice field
type Choice struct {
	ID       string
	LabelKey i18n.Key
}

// FieldDefinition describes one step of the form
type FieldDefinition struct {
	Name       string
	PromptKey  i18n.Key
	InvalidKey i18n.Key
	// Validator is used for free-text fields, Choices for choice fields
	Validator Validator
	Choices   []Choice
	AllowBack bool
	Confirm   bool
}

// Validate normalizes raw input for the field. A choice field stores the
// choice label in the session language.
func (d FieldDefinition) Validate(table *i18n.Table, lang models.Language, raw string) (string, error) {
	if len(d.Choices) == 0 {
		return d.Validator(raw)
	}

	choice, ok := MatchChoice(table, d.Choices, raw)
	if !ok {
		return "", &ValidationError{Field: d.Name, Reason: ReasonUnknownChoice}
	}
	return table.Text(lang, choice.LabelKey), nil
}

// MatchChoice finds the choice whose id or label in any language equals input, ignoring case
func MatchChoice(table *i18n.Table, choices []Choice, input string) (Choice, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Choice{}, false
	}
	for _, c := range choices {
		if strings.EqualFold(c.ID, input) || table.Matches(c.LabelKey, input) {
			return c, true
		}
	}
	return Choice{}, false
}

// Options switch optional form features
type Options struct {
	AskEmail    bool
	Confirm     bool
	AllowBack   bool
	CountryCode string
}

// DefaultFields builds the lead form: name, phone, company, tariff and optionally email
func DefaultFields(opts Options) []FieldDefinition {
	fields := []FieldDefinition{
		{
			Name:       FieldName,
			PromptKey:  i18n.KeyAskName,
			InvalidKey: i18n.KeyInvalidName,
			Validator:  ValidateName,
			Confirm:    opts.Confirm,
		},
		{
			Name:       FieldPhone,
			PromptKey:  i18n.KeyAskPhone,
			InvalidKey: i18n.KeyInvalidPhone,
			Validator:  PhoneValidator(opts.CountryCode),
			Confirm:    opts.Confirm,
		},
		{
			Name:       FieldCompany,
			PromptKey:  i18n.KeyAskCompany,
			InvalidKey: i18n.KeyInvalidCompany,
			Validator:  ValidateCompany,
			Confirm:    opts.Confirm,
		},
		{
			Name:       FieldTariff,
			PromptKey:  i18n.KeyAskTariff,
			InvalidKey: i18n.KeyInvalidTariff,
			Choices: []Choice{
				{ID: TariffStart, LabelKey: i18n.TariffKey(TariffStart)},
				{ID: TariffBusiness, LabelKey: i18n.TariffKey(TariffBusiness)},
				{ID: TariffCorporate, LabelKey: i18n.TariffKey(TariffCorporate)},
			},
		},
	}

	if opts.AskEmail {
		fields = append(fields, FieldDefinition{
			Name:       FieldEmail,
			PromptKey:  i18n.KeyAskEmail,
			InvalidKey: i18n.KeyInvalidEmail,
			Validator:  ValidateEmail,
			Confirm:    opts.Confirm,
		})
	}

	for i := range fields {
		fields[i].AllowBack = opts.AllowBack
	}
	return fields
}

// FieldNames lists field names in form order
func FieldNames(fields []FieldDefinition) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}
