package utils

// Truncate shortens s to at most maxLen runes followed by "...". Questions
// and record text pass through it before being logged.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
