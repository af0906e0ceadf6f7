package textutil

import (
	"regexp"
	"strings"
)

var ignoredRegex = regexp.MustCompile(`[\s.'\x60,-]+`)

// NormalizeName lowercases a player name and removes the whitespace and
// punctuation that upstream sources disagree on ("J.D. Martinez" vs "JD Martinez").
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	return ignoredRegex.ReplaceAllString(name, "")
}
