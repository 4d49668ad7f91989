package validate

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func IsNonEmptyString(v string) bool {
	return strings.TrimSpace(v) != ""
}

func IsValidEmail(v string) bool {
	return IsNonEmptyString(v) && emailRe.MatchString(strings.TrimSpace(v))
}

// Errors collects field-level validation messages so every invalid field
// surfaces in a single 400 response.
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e Errors) Any() bool {
	return len(e) > 0
}
