// Package i18n holds every user-visible string of the bot, per language.
package i18n

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"leadbot/internal/models"
)

// Key identifies one localized text
type Key string

const (
	KeyChooseLanguage    Key = "choose_language"
	KeyInvalidLanguage   Key = "invalid_language"
	KeyLanguageName      Key = "language_name"
	KeyAskName           Key = "ask_name"
	KeyInvalidName       Key = "invalid_name"
	KeyAskPhone          Key = "ask_phone"
	KeyInvalidPhone      Key = "invalid_phone"
	KeyAskCompany        Key = "ask_company"
	KeyInvalidCompany    Key = "invalid_company"
	KeyAskTariff         Key = "ask_tariff"
	KeyInvalidTariff     Key = "invalid_tariff"
	KeyAskEmail          Key = "ask_email"
	KeyInvalidEmail      Key = "invalid_email"
	KeyConfirmValue      Key = "confirm_value"
	KeyConfirmPending    Key = "confirm_pending"
	KeyYes               Key = "yes"
	KeyNo                Key = "no"
	KeyBack              Key = "back"
	KeyCancel            Key = "cancel"
	KeyBackUnavailable   Key = "back_unavailable"
	KeyThankYou          Key = "thank_you"
	KeyChatError         Key = "chat_error"
	KeySheetError        Key = "sheet_error"
	KeyCancelled         Key = "cancelled"
	KeyFallback          Key = "fallback"
	KeyHelp              Key = "help"
	KeyInternalError     Key = "internal_error"
	KeyNotificationTitle Key = "notification_title"
	KeyEmptyValue        Key = "empty_value"
)

// LabelKey is the key of a field caption in the group notification
func LabelKey(field string) Key {
	return Key("label_" + field)
}

// TariffKey is the key of a tariff button label
func TariffKey(id string) Key {
	return Key("tariff_" + id)
}

// DefaultLanguage is used for missing languages and keys
const DefaultLanguage = models.LanguageRU

// Table maps (language, key) to text. It is read-only after construction.
type Table struct {
	languages []models.Language
	texts     map[models.Language]map[Key]string
}

// New returns the built-in ru and uz texts
func New() *Table {
	t := &Table{texts: make(map[models.Language]map[Key]string)}
	t.add(models.LanguageRU, defaultRU)
	t.add(models.LanguageUZ, defaultUZ)
	return t
}

func (t *Table) add(lang models.Language, texts map[Key]string) {
	if _, ok := t.texts[lang]; !ok {
		t.languages = append(t.languages, lang)
		t.texts[lang] = make(map[Key]string, len(texts))
	}
	for k, v := range texts {
		t.texts[lang][k] = v
	}
}

// LoadFile merges YAML overrides of the form {language: {key: text}} into the table.
// Unknown languages are added as new languages.
func (t *Table) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read locale file: %w", err)
	}

	var overrides map[string]map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("failed to decode locale file %s: %w", path, err)
	}

	// New languages are appended in code order, not map order
	langs := make([]string, 0, len(overrides))
	for lang := range overrides {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	for _, lang := range langs {
		texts := overrides[lang]
		converted := make(map[Key]string, len(texts))
		for k, v := range texts {
			converted[Key(k)] = v
		}
		t.add(models.Language(strings.ToLower(lang)), converted)
	}
	return nil
}

// Languages returns the supported languages, default first
func (t *Table) Languages() []models.Language {
	return append([]models.Language(nil), t.languages...)
}

// Supports reports whether the table has texts for lang
func (t *Table) Supports(lang models.Language) bool {
	_, ok := t.texts[lang]
	return ok
}

// Text returns the text for key in lang, falling back to the default language
// and then to the key itself
func (t *Table) Text(lang models.Language, key Key) string {
	if texts, ok := t.texts[lang]; ok {
		if s, ok := texts[key]; ok {
			return s
		}
	}
	if s, ok := t.texts[DefaultLanguage][key]; ok {
		return s
	}
	return string(key)
}

// Textf formats the text for key with args
func (t *Table) Textf(lang models.Language, key Key, args ...interface{}) string {
	return fmt.Sprintf(t.Text(lang, key), args...)
}

// Matches reports whether input equals the text for key in any language, ignoring case
func (t *Table) Matches(key Key, input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}
	for _, lang := range t.languages {
		if s, ok := t.texts[lang][key]; ok && strings.EqualFold(s, input) {
			return true
		}
	}
	return false
}

// ParseLanguage resolves a language code or a language's own name
func (t *Table) ParseLanguage(input string) (models.Language, bool) {
	input = strings.TrimSpace(input)
	for _, lang := range t.languages {
		if strings.EqualFold(string(lang), input) {
			return lang, true
		}
		if name, ok := t.texts[lang][KeyLanguageName]; ok && strings.EqualFold(name, input) {
			return lang, true
		}
	}
	return "", false
}
