package bot

//go:generate mockgen -destination=../mocks/mock_messenger.go -package=mocks github.com/korjavin/dailystudybot/bot Messenger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/korjavin/dailystudybot/concept"
	"github.com/korjavin/dailystudybot/config"
	"github.com/korjavin/dailystudybot/database"
	"github.com/korjavin/dailystudybot/models"
	"github.com/korjavin/dailystudybot/quiz"
	"github.com/korjavin/dailystudybot/sources"
)

// Messenger is the part of the Telegram Bot API the bot uses
type Messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// VocabularySource returns the raw vocabulary rows
type VocabularySource interface {
	FetchRows(ctx context.Context) ([]models.RawRow, error)
}

// ConceptSource returns the full concept document text
type ConceptSource interface {
	FetchText(ctx context.Context) (string, error)
}

// Store persists the rotation anchor, deliveries and poll answers
type Store interface {
	EnsureStartDate(ctx context.Context, today time.Time) (models.SchedulerState, error)
	SaveConceptDelivery(ctx context.Context, delivery models.ConceptDelivery) error
	SaveQuizPoll(ctx context.Context, poll models.QuizPoll) error
	GetQuizPoll(ctx context.Context, pollID string) (*models.QuizPoll, error)
	SaveQuizAnswer(ctx context.Context, answer models.QuizAnswer) error
	GetUserStats(ctx context.Context, userID int64) (correct int, incorrect int, err error)
	GetMostMissedWords(ctx context.Context, userID int64, limit int) ([]models.MissedWord, error)
}

// Bot represents the Telegram bot
type Bot struct {
	api        Messenger
	db         Store
	vocabulary VocabularySource
	concepts   ConceptSource
	generator  *quiz.Generator
	chatID     int64
	quizCount  int
	location   *time.Location
	now        func() time.Time
}

// ErrNotEnoughVocabulary is returned when no question could be built
var ErrNotEnoughVocabulary = fmt.Errorf("not enough distinct meanings for a quiz: %w", models.ErrEmptySource)

// New creates a new bot instance from configuration
func New(ctx context.Context, cfg *config.Config, db *database.DB) (*Bot, error) {
	// Create bot API
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	// Set bot debugging mode
	botAPI.Debug = cfg.Debug

	vocabulary, concepts, err := NewSources(ctx, cfg)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", botAPI.Self.UserName)

	return newBot(botAPI, db, vocabulary, concepts, quiz.NewGenerator(nil), cfg.Telegram.ChatID, cfg.Quiz.Count, loc), nil
}

// NewSources creates the Google Sheets and Docs clients sharing one set of credentials
func NewSources(ctx context.Context, cfg *config.Config) (*sources.SheetSource, *sources.DocSource, error) {
	creds := option.WithCredentialsJSON([]byte(cfg.Google.CredentialsJSON))

	vocabulary, err := sources.NewSheetSource(ctx, cfg.Google.SheetID, cfg.Google.SheetRange, creds)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create sheet source: %w", err)
	}

	concepts, err := sources.NewDocSource(ctx, cfg.Google.DocID, creds)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create doc source: %w", err)
	}

	return vocabulary, concepts, nil
}

func newBot(
	api Messenger,
	db Store,
	vocabulary VocabularySource,
	concepts ConceptSource,
	generator *quiz.Generator,
	chatID int64,
	quizCount int,
	location *time.Location,
) *Bot {
	return &Bot{
		api:        api,
		db:         db,
		vocabulary: vocabulary,
		concepts:   concepts,
		generator:  generator,
		chatID:     chatID,
		quizCount:  quizCount,
		location:   location,
		now:        time.Now,
	}
}

// today is the current time in the configured zone
func (b *Bot) today() time.Time {
	return b.now().In(b.location)
}

// SendQuiz fetches the vocabulary and sends one quiz poll per generated question
func (b *Bot) SendQuiz(ctx context.Context) error {
	rows, err := b.vocabulary.FetchRows(ctx)
	if err != nil {
		if errors.Is(err, models.ErrEmptySource) {
			b.sendMessage(b.chatID, "⚠️ The vocabulary sheet has no data, skipping today's quiz.")
		}
		return fmt.Errorf("failed to load vocabulary: %w", err)
	}

	table, err := quiz.Normalize(rows)
	if err != nil {
		b.sendMessage(b.chatID, "⚠️ The vocabulary sheet has no data, skipping today's quiz.")
		return err
	}
	log.Printf("Loaded %d vocabulary entries from %d rows", len(table), len(rows))

	generated := b.generator.Generate(table, b.quizCount)
	questions := generated[:0]
	for _, q := range generated {
		if _, err := pollOptions(q.Options); err != nil {
			log.Printf("Skipping quiz question for %q: %v", q.Word, err)
			continue
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		b.sendMessage(b.chatID, "⚠️ Not enough distinct meanings in the vocabulary sheet for a quiz (at least 4 are needed).")
		return ErrNotEnoughVocabulary
	}
	if want := min(b.quizCount, len(table)); len(questions) < want {
		log.Printf("Generated %d of %d requested questions", len(questions), want)
	}

	b.sendMessage(b.chatID, fmt.Sprintf("📝 Today’s Quiz (%d Questions)", len(questions)))

	runID := uuid.NewString()
	sent := 0
	for _, q := range questions {
		if err := b.sendQuizPoll(ctx, runID, q); err != nil {
			log.Printf("Error sending quiz poll for %q: %v", q.Word, err)
			continue
		}
		sent++
	}

	log.Printf("Sent %d/%d quiz polls (run %s)", sent, len(questions), runID)
	return nil
}

// sendQuizPoll sends a single question as a Telegram quiz poll and records it
func (b *Bot) sendQuizPoll(ctx context.Context, runID string, q models.QuizQuestion) error {
	options, err := pollOptions(q.Options)
	if err != nil {
		return err
	}

	poll := tgbotapi.NewPoll(b.chatID, truncate(q.Prompt, maxPollQuestionLength), options...)
	poll.Type = "quiz"
	poll.CorrectOptionID = int64(q.CorrectIndex)
	// Answers to anonymous polls are not delivered to bots
	poll.IsAnonymous = false

	msg, err := b.api.Send(poll)
	if err != nil {
		return err
	}
	if msg.Poll == nil {
		return nil
	}

	if err := b.db.SaveQuizPoll(ctx, models.QuizPoll{
		PollID:       msg.Poll.ID,
		RunID:        runID,
		Word:         q.Word,
		Answer:       q.Answer(),
		CorrectIndex: q.CorrectIndex,
		SentAt:       b.now().Unix(),
	}); err != nil {
		log.Printf("Error saving quiz poll %s: %v", msg.Poll.ID, err)
	}
	return nil
}

// SendConcept sends today's concept block
func (b *Bot) SendConcept(ctx context.Context) error {
	today := b.today()

	state, err := b.db.EnsureStartDate(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to load scheduler state: %w", err)
	}
	start, err := state.Start()
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", state.StartDate, err)
	}

	text, err := b.concepts.FetchText(ctx)
	if err != nil {
		return fmt.Errorf("failed to load concept document: %w", err)
	}

	blocks := concept.Split(text)
	block, idx, err := concept.Select(blocks, start, today)
	if err != nil {
		b.sendMessage(b.chatID, "⚠️ The concept document has no blocks, skipping today's concept.")
		return err
	}
	log.Printf("Selected concept %d of %d (start %s, day %d)",
		idx, len(blocks), state.StartDate, concept.DaysBetween(start, today))

	for _, part := range splitMessage("🧠 Today’s Concept\n\n"+block, maxMessageLength) {
		b.sendMessage(b.chatID, part)
	}

	if err := b.db.SaveConceptDelivery(ctx, models.ConceptDelivery{
		Day:        today.Format(models.DateLayout),
		BlockIndex: idx,
		BlockCount: len(blocks),
		SentAt:     b.now().Unix(),
	}); err != nil {
		log.Printf("Error saving concept delivery: %v", err)
	}
	return nil
}
