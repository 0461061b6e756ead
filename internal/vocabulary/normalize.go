package vocabulary

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize collapses internal whitespace and title-cases the result.
func Normalize(value string) string {
	collapsed := strings.Join(strings.Fields(value), " ")
	if collapsed == "" {
		return ""
	}
	// Casers keep state, so each call gets its own.
	return cases.Title(language.Und).String(collapsed)
}
