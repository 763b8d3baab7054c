package validation

import (
	"regexp"
)

// Domain field constraints.
var (
	// ActivityNamePattern allows letters, digits, spaces and hyphens.
	ActivityNamePattern = `^[A-Za-z0-9][A-Za-z0-9 \-]*$`

	ActivityNameMinLength = 2
	ActivityNameMaxLength = 64
)

// CompiledPatterns caches compiled regex patterns.
var CompiledPatterns = struct {
	ActivityName *regexp.Regexp
}{
	ActivityName: regexp.MustCompile(ActivityNamePattern),
}

// StringValidation checks a string field against length and pattern rules.
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation.
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    value,
		Required: true,
	}
}

// WithMinLength sets minimum length.
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length.
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets a regex pattern.
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if the field is required.
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation.
func (v *StringValidation) Validate() bool {
	if v.Required && v.Value == "" {
		return false
	}
	if !v.Required && v.Value == "" {
		return true
	}
	if v.MinLen > 0 && len(v.Value) < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && len(v.Value) > v.MaxLen {
		return false
	}
	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}
	return true
}

// ValidActivityName reports whether name is usable as a catalog activity
// name.
func ValidActivityName(name string) bool {
	return NewStringValidation(name).
		WithMinLength(ActivityNameMinLength).
		WithMaxLength(ActivityNameMaxLength).
		WithPattern(CompiledPatterns.ActivityName).
		Validate()
}
