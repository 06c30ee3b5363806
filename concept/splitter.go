package concept

import (
	"strings"
	"unicode"
)

// isSeparator reports whether line holds three or more hyphens and nothing
// else but Unicode whitespace (vertical tab and no-break space included).
func isSeparator(line string) bool {
	hyphens := strings.TrimFunc(line, isSpace)
	if len(hyphens) < 3 {
		return false
	}
	return strings.Trim(hyphens, "-") == ""
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// Split cuts raw text into trimmed, non-empty blocks at separator lines.
// Block order follows the source text.
func Split(raw string) []string {
	blocks := make([]string, 0)
	var current []string

	flush := func() {
		block := strings.TrimSpace(strings.Join(current, "\n"))
		if block != "" {
			blocks = append(blocks, block)
		}
		current = current[:0]
	}

	for _, line := range strings.Split(raw, "\n") {
		if isSeparator(line) {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return blocks
}
