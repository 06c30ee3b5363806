package bot

import (
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram Bot API limits, counted in characters
const (
	maxMessageLength      = 4096
	maxPollQuestionLength = 300
	maxPollOptionLength   = 100
)

// sendMessage sends a plain text message
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

// truncate shortens s to at most limit characters, marking the cut with an ellipsis
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}

// pollOptions truncates quiz options to the poll limit.
// Options that become identical once cut are rejected.
func pollOptions(options []string) ([]string, error) {
	out := make([]string, len(options))
	seen := make(map[string]struct{}, len(options))
	for i, o := range options {
		out[i] = truncate(o, maxPollOptionLength)
		if _, ok := seen[out[i]]; ok {
			return nil, fmt.Errorf("option %d is not distinct after truncation to %d characters", i+1, maxPollOptionLength)
		}
		seen[out[i]] = struct{}{}
	}
	return out, nil
}

// splitMessage breaks text into parts of at most limit characters,
// preferring to cut at line breaks
func splitMessage(text string, limit int) []string {
	var parts []string
	runes := []rune(text)
	for len(runes) > limit {
		cut := limit
		if i := strings.LastIndex(string(runes[:limit]), "\n"); i > 0 {
			cut = utf8.RuneCountInString(string(runes[:limit])[:i])
		}
		part := strings.TrimRight(string(runes[:cut]), "\n")
		if part != "" {
			parts = append(parts, part)
		}
		runes = []rune(strings.TrimLeft(string(runes[cut:]), "\n"))
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
