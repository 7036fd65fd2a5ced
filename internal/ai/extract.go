package ai

import "strings"

// ExtractJSON returns the last top-level balanced {...} region of s, so prose or code fences
// around the object are ignored. Braces inside JSON strings are skipped. If s contains no
// balanced region the trimmed input is returned and left for the decoder to reject.
func ExtractJSON(s string) string {
	var (
		depth    int
		start    = -1
		inString bool
		escaped  bool
		last     string
	)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			// quotes only delimit strings inside an object; prose apostrophes and quotes are ignored
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				last = s[start : i+1]
			}
		}
	}
	if last == "" {
		return strings.TrimSpace(s)
	}
	return last
}
