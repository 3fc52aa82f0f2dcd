package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MaxDisplayNameLength = 50
	MaxTextLength        = 10000
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateDisplayName checks a persona name: 1-50 characters, no control characters.
func ValidateDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLength {
		return &ValidationError{Field: "name", Message: "name must be at most 50 characters"}
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return &ValidationError{Field: "name", Message: "name must not contain control characters"}
		}
	}
	return nil
}

// ValidateText checks free text sent to the text utilities.
func ValidateText(field, text string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Field: field, Message: field + " is required"}
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return &ValidationError{Field: field, Message: field + " is too long"}
	}
	return nil
}
