package validate

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
)

func TestReferralCode(t *testing.T) {
	code := NewReferralCode()
	assert.Len(t, code, ReferralCodeLength)
	assert.True(t, IsReferralCode(code))

	tests := []struct {
		name     string
		code     string
		expected bool
	}{
		{name: "Wrong length", code: "79927398713", expected: false},
		{name: "Letters", code: "abcdefghij", expected: false},
		{name: "Empty", code: "", expected: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsReferralCode(tt.code))
		})
	}
	assert.True(t, IsLuhn("79927398713"))
	assert.False(t, IsLuhn("79927398710"))
}

type sample struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	Role     string `validate:"omitempty,oneof=user admin"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name        string
		input       sample
		expectError bool
		message     string
	}{
		{
			name:  "Valid",
			input: sample{Email: "a@b.com", Password: "secret123"},
		},
		{
			name:        "Bad email and short password",
			input:       sample{Email: "nope", Password: "short"},
			expectError: true,
			message:     "email: must be a valid email; password: min 8",
		},
		{
			name:        "Unknown role",
			input:       sample{Email: "a@b.com", Password: "secret123", Role: "root"},
			expectError: true,
			message:     "role: must be one of user admin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			if !tt.expectError {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.message, Message(err))
		})
	}
}

func TestReadImage(t *testing.T) {
	const max = 5 << 20

	tests := []struct {
		name    string
		data    []byte
		ext     string
		err     error
		message string
	}{
		{name: "PNG", data: pngHeader, ext: ".png"},
		{name: "JPEG", data: jpegHeader, ext: ".jpg"},
		{name: "PDF", data: []byte("%PDF-1.4\n"), err: ErrImageType, message: "Please upload a JPEG or PNG image"},
		{
			name:    "Six megabytes",
			data:    append(append([]byte{}, pngHeader...), make([]byte, 6<<20)...),
			err:     ErrImageTooLarge,
			message: "Please upload an image smaller than 5MB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, ext, err := ReadImage(bytes.NewReader(tt.data), max)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Equal(t, tt.message, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ext, ext)
			assert.Equal(t, tt.data, data)
		})
	}
}
