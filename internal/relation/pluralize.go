package relation

import "strings"

// irregularPlurals covers the common English nouns whose plural cannot be
// derived by suffix rules. Collection naming in the wild leans on these
// heavily (people, children, media).
var irregularPlurals = map[string]string{
	"person":    "people",
	"child":     "children",
	"man":       "men",
	"woman":     "women",
	"foot":      "feet",
	"tooth":     "teeth",
	"goose":     "geese",
	"mouse":     "mice",
	"medium":    "media",
	"datum":     "data",
	"analysis":  "analyses",
	"criterion": "criteria",
	"leaf":      "leaves",
	"life":      "lives",
	"half":      "halves",
	"shelf":     "shelves",
}

// Pluralize returns the plural form of a singular noun. Irregulars come
// from the built-in table; everything else follows common suffix rules
// with a generic +s fallback. Input is expected lowercase.
func Pluralize(word string) string {
	if word == "" {
		return word
	}
	if plural, ok := irregularPlurals[word]; ok {
		return plural
	}
	switch {
	case strings.HasSuffix(word, "y") && len(word) > 1 && !isVowel(word[len(word)-2]):
		return word[:len(word)-1] + "ies"
	case strings.HasSuffix(word, "s"),
		strings.HasSuffix(word, "x"),
		strings.HasSuffix(word, "z"),
		strings.HasSuffix(word, "ch"),
		strings.HasSuffix(word, "sh"):
		return word + "es"
	default:
		return word + "s"
	}
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
