package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emiratesIDPattern = regexp.MustCompile(`^\d{15}$`)

// NormalizeEmiratesID strips separators and checks for exactly 15 digits
func NormalizeEmiratesID(raw string) (string, error) {
	id := strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(raw))
	if !emiratesIDPattern.MatchString(id) {
		return "", ErrInvalidEmiratesID
	}
	return id, nil
}

// FieldType is the input kind of a registration question
type FieldType string

const (
	FieldText            FieldType = "text"
	FieldEmail           FieldType = "email"
	FieldTel             FieldType = "tel"
	FieldTextarea        FieldType = "textarea"
	FieldSelect          FieldType = "select"
	FieldDependentSelect FieldType = "dependent_select"
	FieldCheckbox        FieldType = "checkbox"
	FieldFile            FieldType = "file"
	FieldPassword        FieldType = "password"
)

// Valid reports whether t is a supported field type
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldEmail, FieldTel, FieldTextarea, FieldSelect,
		FieldDependentSelect, FieldCheckbox, FieldFile, FieldPassword:
		return true
	}
	return false
}

// DependentOption lists the child options shown for one parent value
type DependentOption struct {
	ParentValue string   `json:"parentValue"`
	Children    []string `json:"children"`
}

// Question describes one entry of the dynamic registration form
type Question struct {
	Key               string
	Label             string
	FieldType         FieldType
	Options           []string
	DependentOn       string
	DependentOptions  []DependentOption
	Required          bool
	MinLength         int
	MaxLength         int
	ValidationPattern string
	ShowWhenField     string
	ShowWhenValue     string
}

// Visible reports whether the question is shown for the given answers
func (q Question) Visible(answers map[string]string) bool {
	if q.ShowWhenField == "" {
		return true
	}
	return answers[q.ShowWhenField] == q.ShowWhenValue
}

// ChildOptions returns the allowed options of a dependent select for a parent value
func (q Question) ChildOptions(parentValue string) []string {
	for _, d := range q.DependentOptions {
		if d.ParentValue == parentValue {
			return d.Children
		}
	}
	return nil
}

// AnswerError reports which question failed validation
type AnswerError struct {
	Key   string
	Label string
	Err   error
}

func (e *AnswerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Label, e.Err)
}

func (e *AnswerError) Unwrap() error { return e.Err }

// ValidateAnswers checks answers against the question list and returns only the
// answers of visible questions, trimmed. Hidden questions are never required.
func ValidateAnswers(questions []Question, answers map[string]string) (map[string]string, error) {
	cleaned := make(map[string]string, len(questions))
	for _, q := range questions {
		if !q.Visible(answers) {
			continue
		}
		value := strings.TrimSpace(answers[q.Key])
		if err := q.check(value, answers); err != nil {
			return nil, &AnswerError{Key: q.Key, Label: q.Label, Err: err}
		}
		if value != "" {
			cleaned[q.Key] = value
		}
	}
	return cleaned, nil
}

func (q Question) check(value string, answers map[string]string) error {
	if q.FieldType == FieldCheckbox {
		if q.Required && value != "true" {
			return ErrAnswerRequired
		}
		return nil
	}
	if value == "" {
		if q.Required {
			return ErrAnswerRequired
		}
		return nil
	}

	n := utf8.RuneCountInString(value)
	if q.MinLength > 0 && n < q.MinLength {
		return ErrAnswerTooShort
	}
	if q.MaxLength > 0 && n > q.MaxLength {
		return ErrAnswerTooLong
	}
	if q.ValidationPattern != "" {
		re, err := regexp.Compile(q.ValidationPattern)
		if err != nil || !re.MatchString(value) {
			return ErrAnswerPattern
		}
	}

	switch q.FieldType {
	case FieldSelect:
		if !contains(q.Options, value) {
			return ErrAnswerOption
		}
	case FieldDependentSelect:
		if !contains(q.ChildOptions(strings.TrimSpace(answers[q.DependentOn])), value) {
			return ErrAnswerOption
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
