package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// EqualFold compares category labels ignoring case and surrounding space.
// A Caser is stateful, so each call gets its own.
func EqualFold(a, b string) bool {
	c := cases.Fold()
	return c.String(strings.TrimSpace(a)) == c.String(strings.TrimSpace(b))
}

func containsFold(opts []string, s string) bool {
	for _, o := range opts {
		if EqualFold(o, s) {
			return true
		}
	}
	return false
}
