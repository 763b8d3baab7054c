package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidActivityName(t *testing.T) {
	valid := []string{"Lecture", "Guest Lecture", "Lab-2", "Seminar"}
	for _, name := range valid {
		assert.True(t, ValidActivityName(name), "name %q", name)
	}

	invalid := []string{"", "X", "-Lecture", "Lecture!", "Övning"}
	for _, name := range invalid {
		assert.False(t, ValidActivityName(name), "name %q", name)
	}
}

func TestStringValidationOptionalField(t *testing.T) {
	v := NewStringValidation("").WithRequired(false).WithMinLength(2)
	assert.True(t, v.Validate())

	v = NewStringValidation("").WithMinLength(2)
	assert.False(t, v.Validate())
}
