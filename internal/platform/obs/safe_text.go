package obs

import "strings"

const defaultSafeTextLen = 48

// SafeText collapses whitespace and bounds the length of user-entered text
// (addresses, place names) before it is logged.
func SafeText(v string) string {
	return SafeTextN(v, defaultSafeTextLen)
}

// SafeTextN is SafeText with an explicit maximum length in runes.
func SafeTextN(v string, maxLen int) string {
	s := strings.Join(strings.Fields(v), " ")

	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
