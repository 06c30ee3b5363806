package models

import "time"

// DateLayout is the ISO-8601 calendar date format used for persisted dates
const DateLayout = "2006-01-02"

// SchedulerState holds the immutable anchor date of the concept rotation
type SchedulerState struct {
	StartDate string `json:"start_date" db:"start_date"`
}

// Start parses the anchor date
func (s SchedulerState) Start() (time.Time, error) {
	return time.Parse(DateLayout, s.StartDate)
}

// ConceptDelivery records which concept block was sent on which day
type ConceptDelivery struct {
	Day        string `db:"day"`
	BlockIndex int    `db:"block_index"`
	BlockCount int    `db:"block_count"`
	SentAt     int64  `db:"sent_at"`
}
