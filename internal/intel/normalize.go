package intel

import "strings"

// spokenDigits maps number words to digits, applied in order.
var spokenDigits = []struct {
	word  string
	digit string
}{
	{"zero", "0"},
	{"one", "1"},
	{"two", "2"},
	{"three", "3"},
	{"four", "4"},
	{"five", "5"},
	{"six", "6"},
	{"seven", "7"},
	{"eight", "8"},
	{"nine", "9"},
}

// Normalize rewrites transcribed speech so identifiers become matchable:
// lowercase, number words to digits, " at " to "@" and " dot " to ".".
//
// Number words are replaced as plain substrings, so words that merely contain
// one are rewritten too ("someone" becomes "some1"). Callers that need the
// original wording must keep the raw text.
func Normalize(text string) string {
	out := strings.ToLower(text)
	for _, d := range spokenDigits {
		out = strings.ReplaceAll(out, d.word, d.digit)
	}
	out = strings.ReplaceAll(out, " at ", "@")
	out = strings.ReplaceAll(out, " dot ", ".")
	return out
}
