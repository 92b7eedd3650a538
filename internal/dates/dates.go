// Package dates converts locale-specific date strings into the canonical
// YYYY.MM.DD form used as the document date tag.
package dates

import "regexp"

// Matches dates like 2024年04月06日(土); the weekday annotation is optional.
var jpDate = regexp.MustCompile(`^(\d{4})年(\d{2})月(\d{2})日(?:\([^)]*\))?$`)

// Normalize converts a recognized locale date into "YYYY.MM.DD".
// Unrecognized input is returned unchanged, so the canonical form is a
// fixed point: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	m := jpDate.FindStringSubmatch(raw)
	if m == nil {
		return raw
	}
	return m[1] + "." + m[2] + "." + m[3]
}
