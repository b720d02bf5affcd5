// Package transcript normalizes recognized speech before it reaches chat.
package transcript

import "strings"

// Whisper segments arrive with leading spaces and occasional bracketed
// non-speech annotations like [BLANK_AUDIO] or (wind noise).

// Normalize collapses whitespace and strips non-speech annotations. An input
// holding nothing speakable normalizes to the empty string.
func Normalize(text string) string {
	fields := strings.Fields(text)
	kept := fields[:0]
	for _, field := range fields {
		if isAnnotation(field) {
			continue
		}
		kept = append(kept, field)
	}
	return strings.Join(kept, " ")
}

// isAnnotation matches whole tokens wrapped in [] or (), the shapes whisper
// uses for noise markers.
func isAnnotation(token string) bool {
	if len(token) < 2 {
		return false
	}
	first, last := token[0], token[len(token)-1]
	return (first == '[' && last == ']') || (first == '(' && last == ')')
}
