package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/korjavin/dailystudybot/models"
)

const (
	cmdStart      = "start"
	cmdQuizNow    = "quiz_now"
	cmdConceptNow = "concept_now"
	cmdStat       = "stat"
	cmdHelp       = "help"

	missedWordsLimit = 3
)

const helpText = `Commands:
/quiz_now - Send a vocabulary quiz now
/concept_now - Send today's concept now
/stat - View your quiz statistics
/help - Show this message`

// Start listens for updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) {
	log.Println("Starting bot polling...")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			log.Println("Stopped bot polling")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.PollAnswer != nil:
		b.handlePollAnswer(ctx, update.PollAnswer)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// handleMessage processes incoming messages
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if !message.IsCommand() {
		return
	}

	userName := ""
	if message.From != nil {
		userName = message.From.UserName
	}
	log.Printf("Received command from %s (chat %d): %s", userName, message.Chat.ID, message.Text)

	switch message.Command() {
	case cmdStart:
		b.handleStartCommand(message)
	case cmdQuizNow:
		if err := b.SendQuiz(ctx); err != nil {
			log.Printf("Error sending quiz: %v", err)
			// SendQuiz already warned the chat
			if errors.Is(err, models.ErrEmptySource) {
				return
			}
			b.sendMessage(b.chatID, "Sorry, I couldn't send the quiz. Please try again later.")
		}
	case cmdConceptNow:
		if err := b.SendConcept(ctx); err != nil {
			log.Printf("Error sending concept: %v", err)
			if errors.Is(err, models.ErrEmptySource) {
				return
			}
			b.sendMessage(b.chatID, "Sorry, I couldn't send the concept. Please try again later.")
		}
	case cmdStat:
		b.handleStatCommand(ctx, message)
	case cmdHelp:
		b.sendMessage(message.Chat.ID, helpText)
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see what I can do.")
	}
}

// handleStartCommand handles the /start command
func (b *Bot) handleStartCommand(message *tgbotapi.Message) {
	b.sendMessage(message.Chat.ID, "Bot is active.\n"+
		"Quiz and concept are sent daily.\n\n"+
		helpText)
}

// handleStatCommand handles the /stat command
func (b *Bot) handleStatCommand(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil {
		return
	}

	correct, incorrect, err := b.db.GetUserStats(ctx, message.From.ID)
	if err != nil {
		log.Printf("Error getting user stats: %v", err)
		b.sendMessage(message.Chat.ID, "Sorry, I couldn't retrieve your statistics. Please try again later.")
		return
	}

	var missed []models.MissedWord
	if correct+incorrect > 0 {
		missed, err = b.db.GetMostMissedWords(ctx, message.From.ID, missedWordsLimit)
		if err != nil {
			log.Printf("Error getting missed words: %v", err)
		}
	}

	b.sendMessage(message.Chat.ID, formatStats(correct, incorrect, missed))
}

func formatStats(correct, incorrect int, missed []models.MissedWord) string {
	total := correct + incorrect
	var accuracy float64
	if total > 0 {
		accuracy = float64(correct) / float64(total) * 100
	}

	var b strings.Builder
	fmt.Fprintf(&b, `📊 Your Statistics:

Total Answers: %d
Correct Answers: %d ✅
Incorrect Answers: %d ❌
Accuracy: %.1f%%`, total, correct, incorrect, accuracy)

	if len(missed) > 0 {
		b.WriteString("\n\nMost Missed Words:\n")
		for i, w := range missed {
			fmt.Fprintf(&b, "%d. %s: %s (missed %d)\n", i+1, w.Word, w.Answer, w.Misses)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// handlePollAnswer scores an answer to one of the bot's quiz polls
func (b *Bot) handlePollAnswer(ctx context.Context, answer *tgbotapi.PollAnswer) {
	// An empty selection means the vote was retracted
	if len(answer.OptionIDs) == 0 {
		return
	}

	poll, err := b.db.GetQuizPoll(ctx, answer.PollID)
	if err != nil {
		log.Printf("Error loading quiz poll %s: %v", answer.PollID, err)
		return
	}
	if poll == nil {
		log.Printf("Ignoring answer to unknown poll %s", answer.PollID)
		return
	}

	optionID := answer.OptionIDs[0]
	correct := optionID == poll.CorrectIndex
	if err := b.db.SaveQuizAnswer(ctx, models.QuizAnswer{
		PollID:    poll.PollID,
		UserID:    answer.User.ID,
		OptionID:  optionID,
		Correct:   correct,
		Timestamp: b.now().Unix(),
	}); err != nil {
		log.Printf("Error saving quiz answer: %v", err)
		return
	}

	log.Printf("User %d answered %q: option %d (correct: %v)", answer.User.ID, poll.Word, optionID, correct)
}
