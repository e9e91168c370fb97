package sortname

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title    string
		language string
		expected string
	}{
		{"The Hobbit", "en", "Hobbit, The"},
		{"A Tale of Two Cities", "en", "Tale of Two Cities, A"},
		{"An American Tragedy", "EN", "American Tragedy, An"},
		{"the lowercase title", "en", "lowercase title, the"},
		{"Lord of the Rings", "en", "Lord of the Rings"},
		{"  The   Spaced   Title ", "en", "Spaced Title, The"},
		{"The", "en", "The"},
		{"", "en", ""},
		{"Theory of Everything", "en", "Theory of Everything"},
		{"Der Process", "de", "Process, Der"},
		{"Die Verwandlung", "de", "Verwandlung, Die"},
		{"Les Misérables", "fr", "Misérables, Les"},
		{"El Aleph", "es", "Aleph, El"},
		{"Il nome della rosa", "it", "nome della rosa, Il"},
		{"The Trial", "cs", "Trial, The"},
		{"Die Hard", "en", "Die Hard"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.title, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ForTitle(tt.title, tt.language))
		})
	}
}
