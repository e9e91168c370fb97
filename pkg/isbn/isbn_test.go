package isbn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{"isbn13", "9780316769488", "9780316769488"},
		{"isbn13 with hyphens", "978-0-316-76948-8", "9780316769488"},
		{"isbn13 with prefix", "ISBN: 978-0-316-76948-8", "9780316769488"},
		{"isbn10 converted", "0316769487", "9780316769488"},
		{"isbn10 with X check", "080442957X", "9780804429573"},
		{"isbn10 lowercase x", "080442957x", "9780804429573"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalize_Invalid(t *testing.T) {
	for _, value := range []string{"", "12345", "9780316769489", "0316769488", "X316769487", "97803167694881"} {
		_, err := Normalize(value)
		assert.ErrorIs(t, err, ErrInvalid, value)
	}
}

func TestValid10(t *testing.T) {
	assert.True(t, Valid10("0316769487"))
	assert.True(t, Valid10("080442957X"))
	assert.False(t, Valid10("08044295X7"))
	assert.False(t, Valid10("031676948"))
}

func TestValid13(t *testing.T) {
	assert.True(t, Valid13("9780306406157"))
	assert.False(t, Valid13("9780306406158"))
	assert.False(t, Valid13("978030640615X"))
}
