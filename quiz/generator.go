package quiz

import (
	"fmt"
	"slices"

	"github.com/korjavin/dailystudybot/models"
)

// OptionCount is the number of options in every question
const OptionCount = 4

// Generator builds multiple-choice questions from a vocabulary table
type Generator struct {
	rng Rand
}

// NewGenerator creates a generator drawing from rng.
// A nil rng uses the process-wide source.
func NewGenerator(rng Rand) *Generator {
	if rng == nil {
		rng = processRand{}
	}
	return &Generator{rng: rng}
}

// NewSeededGenerator creates a deterministic generator for previews and tests
func NewSeededGenerator(seed uint64) *Generator {
	return NewGenerator(NewSeededRand(seed))
}

// Generate samples up to count entries and turns each into a question whose
// distractors are other meanings from the table. Entries without three
// distinct distractors are skipped, so the result may be shorter than
// min(count, len(table)). Questions keep the order their entries were drawn in.
func (g *Generator) Generate(table []models.VocabularyEntry, count int) []models.QuizQuestion {
	questions := make([]models.QuizQuestion, 0)
	if count <= 0 || len(table) == 0 {
		return questions
	}

	meanings := distinctMeanings(table)
	for _, i := range sampleIndices(g.rng, len(table), min(count, len(table))) {
		entry := table[i]

		pool := make([]string, 0, len(meanings))
		for _, m := range meanings {
			if m != entry.Meaning {
				pool = append(pool, m)
			}
		}
		if len(pool) < OptionCount-1 {
			continue
		}

		options := make([]string, 0, OptionCount)
		for _, j := range sampleIndices(g.rng, len(pool), OptionCount-1) {
			options = append(options, pool[j])
		}
		options = append(options, entry.Meaning)
		g.rng.Shuffle(len(options), func(a, b int) {
			options[a], options[b] = options[b], options[a]
		})

		questions = append(questions, models.QuizQuestion{
			Word:         entry.Word,
			Prompt:       Prompt(entry.Word),
			Options:      options,
			CorrectIndex: slices.Index(options, entry.Meaning),
		})
	}

	return questions
}

// Prompt is the question text shown for a word
func Prompt(word string) string {
	return fmt.Sprintf("What is the meaning of '%s'?", word)
}

// distinctMeanings lists each meaning once, in table order
func distinctMeanings(table []models.VocabularyEntry) []string {
	seen := make(map[string]bool, len(table))
	meanings := make([]string, 0, len(table))
	for _, e := range table {
		if seen[e.Meaning] {
			continue
		}
		seen[e.Meaning] = true
		meanings = append(meanings, e.Meaning)
	}
	return meanings
}
