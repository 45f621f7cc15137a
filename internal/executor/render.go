// Package executor runs external tools for pipeline steps.
package executor

import "strings"

// Placeholder is replaced by the current input file path.
const Placeholder = "{}"

// Placeholders counts placeholder occurrences in template.
func Placeholders(template string) int {
	return strings.Count(template, Placeholder)
}

// Render substitutes input for the first placeholder in template. A
// template without a placeholder is returned unchanged. Inputs that the
// shell would split or expand are single-quoted.
func Render(template, input string) string {
	if !strings.Contains(template, Placeholder) {
		return template
	}
	return strings.Replace(template, Placeholder, Quote(input), 1)
}

// Quote returns s unchanged when it is safe as a single shell word.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !isSafe(r) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("-_./=:+,@%", r)
}
