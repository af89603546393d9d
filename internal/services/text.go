package services

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldAccents removes combining marks: "Jesús María" becomes "Jesus Maria".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// normalize lowercases, folds accents and collapses whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(foldAccents(strings.ToLower(s))), " ")
}

// titleCase capitalizes every word the way district names are displayed.
func titleCase(s string) string {
	return cases.Title(language.Spanish).String(strings.TrimSpace(s))
}

// words splits normalized text on anything that is not a letter or digit.
func words(s string) []string {
	return strings.FieldsFunc(normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsAny reports whether any needle, normalized, occurs in text.
func containsAny(text string, needles []string) bool {
	n := normalize(text)
	for _, needle := range needles {
		if needle = normalize(needle); needle != "" && strings.Contains(n, needle) {
			return true
		}
	}
	return false
}

// containsWords reports whether phrase occurs as a run of consecutive words.
func containsWords(ws, phrase []string) bool {
	if len(phrase) == 0 {
		return false
	}
	for i := 0; i+len(phrase) <= len(ws); i++ {
		match := true
		for j, p := range phrase {
			if ws[i+j] != p {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func formatSoles(amount float64) string {
	return fmt.Sprintf("S/ %.2f", amount)
}
