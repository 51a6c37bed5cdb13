// Package util contains helper functions used around the code.
package util

import "strings"

// InFold returns true if s is found in ss comparing case-insensitively, false otherwise.
func InFold(ss []string, s string) bool {
	for _, v := range ss {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// HasAnyPrefix returns true if s starts with any of the non-empty prefixes given.
func HasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
