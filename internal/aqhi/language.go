package aqhi

import (
	"fmt"
	"strings"
)

// Language selects condition labels and the forecast period names.
type Language string

const (
	English Language = "english"
	French  Language = "french"
)

// DefaultLanguage is used when no language is given.
const DefaultLanguage = English

// ParseLanguage normalizes a language name, mapping empty to DefaultLanguage.
func ParseLanguage(s string) (Language, error) {
	lang := Language(strings.ToLower(strings.TrimSpace(s)))
	if lang == "" {
		return DefaultLanguage, nil
	}
	if !lang.Supported() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, s)
	}
	return lang, nil
}

// Supported reports whether every condition carries a label in l.
func (l Language) Supported() bool {
	for _, meta := range conditionsMeta {
		if _, ok := meta.labels[l]; !ok {
			return false
		}
	}
	return true
}

// Code returns the two-letter code matched against the forecast period lang attribute.
func (l Language) Code() string {
	s := string(l)
	if len(s) > 2 {
		s = s[:2]
	}
	return strings.ToUpper(s)
}
