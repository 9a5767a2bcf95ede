package utils

import "strings"

// Pluralize returns the suffix to append to a word counted n times.
// arg is either a plural suffix ("s") or a "singular,plural" pair ("y,ies").
func Pluralize(n int, arg string) string {
	singular, plural := "", arg
	if i := strings.Index(arg, ","); i >= 0 {
		singular, plural = arg[:i], arg[i+1:]
	}
	if n == 1 {
		return singular
	}
	return plural
}

func PluralizeS(n int) string {
	return Pluralize(n, "s")
}
