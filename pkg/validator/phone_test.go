package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhoneValidator_Validate(t *testing.T) {
	v := NewPhoneValidator()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"plain number", "9876543210", "9876543210", nil},
		{"with country code", "+91 98765 43210", "9876543210", nil},
		{"with trunk zero", "09876543210", "9876543210", nil},
		{"with separators", "98765-43210", "9876543210", nil},
		{"starts with 6", "6123456789", "6123456789", nil},
		{"empty", "", "", ErrEmptyPhone},
		{"too short", "98765", "", ErrInvalidLength},
		{"too long", "98765432101", "", ErrInvalidLength},
		{"letters", "98765abcde", "", ErrInvalidFormat},
		{"bad prefix", "1234567890", "", ErrInvalidPrefix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPhoneValidator_Format(t *testing.T) {
	v := NewPhoneValidator()

	formatted, err := v.Format("9876543210")
	assert.NoError(t, err)
	assert.Equal(t, "98765 43210", formatted)

	_, err = v.Format("12345")
	assert.Error(t, err)
}

func TestValidateEmail(t *testing.T) {
	got, err := ValidateEmail("  Vendor@Example.COM ")
	assert.NoError(t, err)
	assert.Equal(t, "vendor@example.com", got)

	for _, bad := range []string{"", "plain", "a@b", "a b@c.com", "@example.com"} {
		_, err := ValidateEmail(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestValidatePincode(t *testing.T) {
	got, err := ValidatePincode("560001")
	assert.NoError(t, err)
	assert.Equal(t, "560001", got)

	for _, bad := range []string{"", "12345", "1234567", "060001", "56000a"} {
		_, err := ValidatePincode(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}
