package generator

import "strings"

// ParseNumberedList splits a raw completion into individual lines, dropping
// blanks and stripping any leading enumeration prefix ("12.", "12)", "12-").
// Services drift on formatting; the parser accepts all common variants.
func ParseNumberedList(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = stripEnumPrefix(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// stripEnumPrefix removes a leading run of digits followed by '.', ')' or
// '-' separators, then trims whitespace. A line that is nothing but a number
// collapses to empty and is discarded by the caller.
func stripEnumPrefix(line string) string {
	trimmed := strings.TrimLeft(line, "0123456789")
	if trimmed == line {
		return line
	}
	trimmed = strings.TrimLeft(trimmed, ". )-")
	return strings.TrimSpace(trimmed)
}
