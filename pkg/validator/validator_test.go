package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"123", false},
		{"9999999999", true},
		{"+919999999999", true},
		{"+91 99999-99999", true},
		{"(999) 999-9999", true},
		{"99999999999", false},
		{"", false},
		{"phone", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPhone(tt.phone))
		})
	}
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "919999999999", Digits("+91 (99999) 99999"))
	assert.Equal(t, "", Digits("n/a"))
}

type sample struct {
	Name     string  `json:"patient_name" validate:"required,max=5"`
	Phone    string  `json:"phone" validate:"required,phone"`
	Language string  `json:"language" validate:"oneof=en hi"`
	Status   *string `json:"status" validate:"omitnil,oneof=pending done"`
}

func TestCheck(t *testing.T) {
	v := New()

	t.Run("valid", func(t *testing.T) {
		assert.Nil(t, v.Check(sample{Name: "Asha", Phone: "9999999999", Language: "en"}))
	})

	t.Run("field messages keyed by json name", func(t *testing.T) {
		bad := "archived"
		fields := v.Check(sample{Name: "Too long a name", Phone: "123", Language: "fr", Status: &bad})
		assert.Equal(t, map[string]string{
			"patient_name": "Ensure this value has at most 5 characters.",
			"phone":        "Enter a valid phone number.",
			"language":     "Select a valid choice.",
			"status":       "Select a valid choice.",
		}, fields)
	})

	t.Run("required", func(t *testing.T) {
		fields := v.Check(sample{Language: "hi"})
		assert.Equal(t, "This field is required.", fields["patient_name"])
		assert.Equal(t, "This field is required.", fields["phone"])
	})
}
