package format

import "strings"

// Ellipse shortens s keeping n characters at each end joined by "...". When s starts with prefix, the prefix is kept
// and not counted (ie. Ellipse("0x1234567890abcdef", 4, "0x") is "0x1234...cdef"). Strings shorter than 2n+3 are
// returned unchanged, as is s when n is not positive.
func Ellipse(s string, n int, prefix string) string {
	if s == "" || n <= 0 || len(s) < 2*n+3 {
		return s
	}

	lead := ""
	if prefix != "" && strings.HasPrefix(s, prefix) {
		lead = prefix
		s = s[len(prefix):]
	}

	head, tail := s, s
	if len(s) > n {
		head = s[:n]
		tail = s[len(s)-n:]
	}

	return lead + head + "..." + tail
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
