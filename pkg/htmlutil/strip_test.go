package htmlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"plain text", "A desert planet", "A desert planet"},
		{"plain text whitespace", "  A   desert\tplanet  ", "A desert planet"},
		{"paragraph", "<p>A desert planet</p>", "A desert planet"},
		{"paragraphs", "<p>First</p><p>Second</p>", "First\nSecond"},
		{"nested inline", "<p><strong>Spice</strong> must <em>flow</em></p>", "Spice must flow"},
		{"line breaks", "One<br>Two<br/>Three<br />Four", "One\nTwo\nThree\nFour"},
		{"attributes", `<div class="blurb" style="color: red">House Atreides</div>`, "House Atreides"},
		{"entities", "<p>Fear &amp; the mind&#39;s killer &lt;3</p>", "Fear & the mind's killer <3"},
		{"named entities", "&ldquo;Dune&rdquo; &hellip;", "\u201cDune\u201d \u2026"},
		{"list", "<ul><li>Paul</li><li>Jessica</li></ul>", "Paul\nJessica"},
		{"headings", "<h1>Dune</h1><h2>Book One</h2>Text", "Dune\nBook One\nText"},
		{"script dropped", "<p>Safe</p><script>alert('x')</script><p>Text</p>", "Safe\nText"},
		{"style dropped", "<style>p { color: red }</style>Body", "Body"},
		{"empty blocks", "<p></p><p>  </p><div>Kept</div>", "Kept"},
		{"uppercase tags", "<P>Upper</P><BR>Case", "Upper\nCase"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, StripTags(tt.input))
		})
	}
}
