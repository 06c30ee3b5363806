package models

// RawRow is a (word, meaning) pair as returned by the vocabulary source.
// A nil field means the source had no cell for it.
type RawRow struct {
	Word    *string
	Meaning *string
}

// NewRawRow builds a row with both cells present
func NewRawRow(word, meaning string) RawRow {
	return RawRow{Word: &word, Meaning: &meaning}
}

// VocabularyEntry is a normalized word and its meaning
type VocabularyEntry struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
}
