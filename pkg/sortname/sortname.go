// Package sortname derives catalogue sort keys for publication titles. A
// leading article is moved behind the title, the way library catalogues file
// "The Hobbit" under H.
package sortname

import "strings"

// articles per ISO 639-1 language code. Titles in other languages fall back to
// English.
var articles = map[string][]string{
	"en": {"the", "an", "a"},
	"de": {"der", "die", "das", "ein", "eine"},
	"fr": {"les", "le", "la", "une", "un"},
	"es": {"los", "las", "el", "la", "una", "un"},
	"it": {"gli", "il", "lo", "la", "una", "uno", "un"},
}

// ForTitle returns the sort form of title in the given language.
//   - "The Hobbit" -> "Hobbit, The"
//   - "Der Process" (de) -> "Process, Der"
//   - "Lord of the Rings" -> "Lord of the Rings"
func ForTitle(title, language string) string {
	title = strings.Join(strings.Fields(title), " ")
	first, rest, ok := strings.Cut(title, " ")
	if !ok {
		return title
	}

	list, known := articles[strings.ToLower(strings.TrimSpace(language))]
	if !known {
		list = articles["en"]
	}
	for _, article := range list {
		if strings.EqualFold(first, article) {
			return rest + ", " + first
		}
	}
	return title
}
