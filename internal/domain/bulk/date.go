package bulk

import (
	"fmt"
	"strings"
)

// yearThreshold is the smallest value treated as a four-digit year
const yearThreshold = 2000

// NormalizeDate turns a day-first or year-first date using "/" or "-" into
// YYYY-MM-DD. Strings it cannot place are returned unchanged.
//
//	27-09-2024 -> 2024-09-27
//	2024-27-09 -> 2024-09-27 (middle part above 12 is the day)
//	13/01/2025 -> 2025-01-13
//
// Day and month ranges are not validated.
func NormalizeDate(raw string) string {
	out, _ := ResolveDate(raw)
	return out
}

// ResolveDate is NormalizeDate that also reports whether the date was placed.
func ResolveDate(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	parts := strings.Split(strings.ReplaceAll(raw, "/", "-"), "-")
	if len(parts) != 3 {
		return raw, false
	}

	p0, ok0 := leadingInt(parts[0])
	p1, ok1 := leadingInt(parts[1])
	p2, ok2 := leadingInt(parts[2])
	if !ok0 || !ok1 || !ok2 {
		return raw, false
	}

	switch {
	case p2 > yearThreshold:
		return isoDate(p2, p1, p0), true
	case p0 > yearThreshold:
		if p1 > 12 {
			return isoDate(p0, p2, p1), true
		}
		return isoDate(p0, p1, p2), true
	}
	return raw, false
}

func isoDate(year, month, day int) string {
	return fmt.Sprintf("%d-%02d-%02d", year, month, day)
}
