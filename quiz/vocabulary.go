package quiz

import (
	"fmt"
	"strings"

	"github.com/korjavin/dailystudybot/models"
)

// ErrEmptySource is returned by Normalize when the source returned no rows
var ErrEmptySource = fmt.Errorf("quiz: vocabulary: %w", models.ErrEmptySource)

// Normalize cleans raw source rows into vocabulary entries.
// Rows with a missing or blank cell are dropped, both cells are trimmed and
// only the first row of each meaning is kept. Source order is preserved.
func Normalize(rows []models.RawRow) ([]models.VocabularyEntry, error) {
	if len(rows) == 0 {
		return nil, ErrEmptySource
	}

	entries := make([]models.VocabularyEntry, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if row.Word == nil || row.Meaning == nil {
			continue
		}

		word := strings.TrimSpace(*row.Word)
		meaning := strings.TrimSpace(*row.Meaning)
		if word == "" || meaning == "" {
			continue
		}

		if seen[meaning] {
			continue
		}
		seen[meaning] = true

		entries = append(entries, models.VocabularyEntry{Word: word, Meaning: meaning})
	}

	return entries, nil
}
