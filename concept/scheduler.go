package concept

import (
	"fmt"
	"time"

	"github.com/korjavin/dailystudybot/models"
)

const (
	daysPerWeek = 7
	// weeksPerBlock is how many consecutive weeks repeat the same seven indices
	weeksPerBlock = 2
)

// ErrInvalidInput is returned by Index when there are no blocks to choose from
var ErrInvalidInput = fmt.Errorf("concept: %w", models.ErrInvalidInput)

// Index returns the block index to show on today for a rotation anchored at start.
// Days before the anchor use floored division, so the result is always in [0, n).
func Index(n int, start, today time.Time) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: block count must be positive, got %d", ErrInvalidInput, n)
	}

	days := DaysBetween(start, today)
	week := floorDiv(days, daysPerWeek)
	dayInWeek := floorMod(days, daysPerWeek)
	base := floorDiv(week, weeksPerBlock) * daysPerWeek

	return floorMod(base+dayInWeek, n), nil
}

// DaysBetween counts whole calendar days from start to today.
// Only the calendar date of each value matters; clock time and zone are ignored.
func DaysBetween(start, today time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	// time.Duration overflows past ~292 years, Unix seconds do not
	return int((t.Unix() - s.Unix()) / 86400)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}

// ErrNoBlocks is returned by Select when the document has no blocks
var ErrNoBlocks = fmt.Errorf("concept: no blocks: %w", models.ErrEmptySource)

// Select returns today's block and its index.
func Select(blocks []string, start, today time.Time) (string, int, error) {
	if len(blocks) == 0 {
		return "", 0, ErrNoBlocks
	}
	idx, err := Index(len(blocks), start, today)
	if err != nil {
		return "", 0, err
	}
	return blocks[idx], idx, nil
}
