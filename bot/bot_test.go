package bot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/korjavin/dailystudybot/database"
	"github.com/korjavin/dailystudybot/mocks"
	"github.com/korjavin/dailystudybot/models"
	"github.com/korjavin/dailystudybot/quiz"
)

const testChatID = int64(4242)

var ist = time.FixedZone("IST", 5*3600+1800)

type fakeVocabulary struct {
	rows []models.RawRow
	err  error
}

func (f fakeVocabulary) FetchRows(context.Context) ([]models.RawRow, error) {
	return f.rows, f.err
}

type fakeConcepts struct {
	text string
	err  error
}

func (f fakeConcepts) FetchText(context.Context) (string, error) {
	return f.text, f.err
}

func vocabularyRows(n int) []models.RawRow {
	rows := make([]models.RawRow, n)
	for i := range rows {
		rows[i] = models.NewRawRow(fmt.Sprintf(" word%d ", i), fmt.Sprintf("meaning%d", i))
	}
	return rows
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestBot(t *testing.T, api Messenger, db Store, vocabulary VocabularySource, concepts ConceptSource) *Bot {
	t.Helper()
	b := newBot(api, db, vocabulary, concepts, quiz.NewSeededGenerator(1), testChatID, 5, ist)
	b.now = func() time.Time { return time.Date(2024, 1, 15, 20, 5, 0, 0, ist) }
	return b
}

func textOf(t *testing.T, c tgbotapi.Chattable) string {
	t.Helper()
	msg, ok := c.(tgbotapi.MessageConfig)
	require.True(t, ok, "expected a text message, got %T", c)
	assert.Equal(t, testChatID, msg.ChatID)
	return msg.Text
}

func TestBot_SendQuiz(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMessenger(ctrl)
	db := newTestDB(t)

	var sent []tgbotapi.Chattable
	pollCount := 0
	api.EXPECT().Send(gomock.Any()).DoAndReturn(func(c tgbotapi.Chattable) (tgbotapi.Message, error) {
		sent = append(sent, c)
		if _, ok := c.(tgbotapi.SendPollConfig); ok {
			pollCount++
			return tgbotapi.Message{Poll: &tgbotapi.Poll{ID: fmt.Sprintf("poll-%d", pollCount)}}, nil
		}
		return tgbotapi.Message{}, nil
	}).Times(6)

	b := newTestBot(t, api, db, fakeVocabulary{rows: vocabularyRows(8)}, fakeConcepts{})
	require.NoError(t, b.SendQuiz(ctx))

	require.Len(t, sent, 6)
	assert.Equal(t, "📝 Today’s Quiz (5 Questions)", textOf(t, sent[0]))

	for i, c := range sent[1:] {
		poll, ok := c.(tgbotapi.SendPollConfig)
		require.True(t, ok)
		assert.Equal(t, testChatID, poll.ChatID)
		assert.Equal(t, "quiz", poll.Type)
		assert.False(t, poll.IsAnonymous)
		require.Len(t, poll.Options, 4)

		word := strings.TrimSuffix(strings.TrimPrefix(poll.Question, "What is the meaning of '"), "'?")
		want := "meaning" + strings.TrimPrefix(word, "word")
		assert.Equal(t, want, poll.Options[poll.CorrectOptionID])

		saved, err := db.GetQuizPoll(ctx, fmt.Sprintf("poll-%d", i+1))
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, word, saved.Word)
		assert.Equal(t, want, saved.Answer)
		assert.Equal(t, int(poll.CorrectOptionID), saved.CorrectIndex)
	}
}

func TestBot_SendQuiz_PollFailureContinues(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMessenger(ctrl)

	polls := 0
	api.EXPECT().Send(gomock.Any()).DoAndReturn(func(c tgbotapi.Chattable) (tgbotapi.Message, error) {
		if _, ok := c.(tgbotapi.SendPollConfig); ok {
			polls++
			if polls == 2 {
				return tgbotapi.Message{}, errors.New("Bad Request: poll options length must not exceed 100")
			}
			return tgbotapi.Message{Poll: &tgbotapi.Poll{ID: fmt.Sprintf("p%d", polls)}}, nil
		}
		return tgbotapi.Message{}, nil
	}).Times(6)

	b := newTestBot(t, api, newTestDB(t), fakeVocabulary{rows: vocabularyRows(10)}, fakeConcepts{})
	require.NoError(t, b.SendQuiz(context.Background()))
	assert.Equal(t, 5, polls)
}

// longMeanings returns rows whose meanings differ only past the poll option limit
func longMeanings(n int) []models.RawRow {
	prefix := strings.Repeat("to move slowly and carefully ", 4)
	rows := make([]models.RawRow, n)
	for i := range rows {
		rows[i] = models.NewRawRow(fmt.Sprintf("long%d", i), fmt.Sprintf("%s(sense %d)", prefix, i))
	}
	return rows
}

func TestBot_SendQuiz_SkipsOptionsIndistinctAfterTruncation(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMessenger(ctrl)

	var sent []tgbotapi.Chattable
	api.EXPECT().Send(gomock.Any()).DoAndReturn(func(c tgbotapi.Chattable) (tgbotapi.Message, error) {
		sent = append(sent, c)
		if _, ok := c.(tgbotapi.SendPollConfig); ok {
			return tgbotapi.Message{Poll: &tgbotapi.Poll{ID: fmt.Sprintf("p%d", len(sent))}}, nil
		}
		return tgbotapi.Message{}, nil
	}).AnyTimes()

	rows := append(longMeanings(2), vocabularyRows(8)...)
	b := newTestBot(t, api, newTestDB(t), fakeVocabulary{rows: rows}, fakeConcepts{})
	err := b.SendQuiz(context.Background())

	polls := 0
	for _, c := range sent {
		poll, ok := c.(tgbotapi.SendPollConfig)
		if !ok {
			continue
		}
		polls++
		seen := make(map[string]bool)
		for _, option := range poll.Options {
			assert.False(t, seen[option], "duplicate option %q", option)
			seen[option] = true
		}
	}

	if polls == 0 {
		assert.ErrorIs(t, err, ErrNotEnoughVocabulary)
		return
	}
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("📝 Today’s Quiz (%d Questions)", polls), textOf(t, sent[0]))
}

func TestBot_SendQuiz_AllOptionsIndistinctAfterTruncation(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMessenger(ctrl)

	api.EXPECT().Send(gomock.Any()).DoAndReturn(func(c tgbotapi.Chattable) (tgbotapi.Message, error) {
		assert.Contains(t, textOf(t, c), "Not enough distinct meanings")
		return tgbotapi.Message{}, nil
	}).Times(1)

	b := newTestBot(t, api, newTestDB(t), fakeVocabulary{rows: longMeanings(6)}, fakeConcepts{})
	err := b.SendQuiz(context.Background())
	assert.ErrorIs(t, err, ErrNotEnoughVocabulary)
}

func TestBot_SendQuiz_Failures(t *testing.T) {
	tests := []struct {
		name        string
		vocabulary  fakeVocabulary
		wantSends   int
		wantErrIs   error
		wantWarning string
	}{
		{
			name:        "too few meanings",
			vocabulary:  fakeVocabulary{rows: vocabularyRows(3)},
			wantSends:   1,
			wantErrIs:   models.ErrEmptySource,
			wantWarning: "Not enough distinct meanings",
		},
		{
			name:        "rows collapse to nothing",
			vocabulary:  fakeVocabulary{rows: []models.RawRow{models.NewRawRow(" ", "x")}},
			wantSends:   1,
			wantErrIs:   ErrNotEnoughVocabulary,
			wantWarning: "Not enough distinct meanings",
		},
		{
			name:        "empty sheet",
			vocabulary:  fakeVocabulary{err: fmt.Errorf("sheet has no data: %w", models.ErrEmptySource)},
			wantSends:   1,
			wantErrIs:   models.ErrEmptySource,
			wantWarning: "no data",
		},
		{
			name:       "fetch failure",
			vocabulary: fakeVocabulary{err: errors.New("googleapi: Error 403")},
			wantSends:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			api := mocks.NewMockMessenger(ctrl)

			var texts []string
			api.EXPECT().Send(gomock.Any()).DoAndReturn(func(c tgbotapi.Chattable) (tgbotapi.Message, error) {
				texts = append(texts, textOf(t, c))
				return tgbotapi.Message{}, nil
			}).Times(tt.wantSends)

			b := newTestBot(t, api, newTestDB(t), tt.vocabulary, fakeConcepts{})
			err := b.SendQuiz(context.Background())
			require.Error(t, err)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
			}
			if tt.wantWarning != "" {
				require.Len(t, texts, 1)
				assert.Contains(t, texts[0], tt.wantWarning)
			}
		})
	}
}

func conceptDoc(n int) string {
	blocks := make([]string, n)
	for i := range blocks {
		blocks[i] = fmt.Sprintf("Block %d\nbody", i)
	}
	return strings.Join(blocks, "\n---\n")
}

func TestBot_SendConcept(t *testing.T) {
	tests := []struct {
		name      string
		preset    string
		blocks    int
		wantText  string
		wantIndex int
		wantStart string
	}{
		{
			name:      "first run anchors today",
			blocks:    10,
			wantText:  "🧠 Today’s Concept\n\nBlock 0\nbody",
			wantIndex: 0,
			wantStart: "2024-01-15",
		},
		{
			name:      "third week shows next seven",
			preset:    "2024-01-01",
			blocks:    10,
			wantText:  "🧠 Today’s Concept\n\nBlock 7\nbody",
			wantIndex: 7,
			wantStart: "2024-01-01",
		},
		{
			name:      "wraps around short documents",
			preset:    "2024-01-01",
			blocks:    4,
			wantText:  "🧠 Today’s Concept\n\nBlock 3\nbody",
			wantIndex: 3,
			wantStart: "2024-01-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			ctrl := gomock.NewController(t)
			api := mocks.NewMockMessenger(ctrl)
			db := newTestDB(t)

			if tt.preset != "" {
				start, err := time.Parse(models.DateLayout, tt.preset)
				require.NoError(t, err)
				_, err = db.EnsureStartDate(ctx, start)
				require.NoError(t, err)
			}

			var text string
			api.EXPECT().Send(gomock.Any()).DoAndReturn(func(c tgbotapi.Chattable) (tgbotapi.Message, error) {
				text = textOf(t, c)
				return tgbotapi.Message{}, nil
			})

			b := newTestBot(t, api, db, fakeVocabulary{}, fakeConcepts{text: conceptDoc(tt.blocks)})
			require.NoError(t, b.SendConcept(ctx))
			assert.Equal(t, tt.wantText, text)

			state, err := db.GetState(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, state.StartDate)

			deliveries, err := db.RecentConceptDeliveries(ctx, 1)
			require.NoError(t, err)
			require.Len(t, deliveries, 1)
			assert.Equal(t, "2024-01-15", deliveries[0].Day)
			assert.Equal(t, tt.wantIndex, deliveries[0].BlockIndex)
			assert.Equal(t, tt.blocks, deliveries[0].BlockCount)
		})
	}
}

func TestBot_SendConcept_Failures(t *testing.T) {
	t.Run("empty document", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		api := mocks.NewMockMessenger(ctrl)
		api.EXPECT().Send(gomock.Any()).DoAndReturn(func(c tgbotapi.Chattable) (tgbotapi.Message, error) {
			assert.Contains(t, textOf(t, c), "no blocks")
			return tgbotapi.Message{}, nil
		})

		b := newTestBot(t, api, newTestDB(t), fakeVocabulary{}, fakeConcepts{text: "\n---\n  \n"})
		err := b.SendConcept(context.Background())
		assert.ErrorIs(t, err, models.ErrEmptySource)
	})

	t.Run("fetch failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		api := mocks.NewMockMessenger(ctrl)

		b := newTestBot(t, api, newTestDB(t), fakeVocabulary{}, fakeConcepts{err: errors.New("timeout")})
		err := b.SendConcept(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "concept document")
	})
}

func TestBot_SendConcept_LongBlockIsSplit(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockMessenger(ctrl)

	line := strings.Repeat("x", 1000)
	doc := strings.TrimSuffix(strings.Repeat(line+"\n", 6), "\n")

	var parts []string
	api.EXPECT().Send(gomock.Any()).DoAndReturn(func(c tgbotapi.Chattable) (tgbotapi.Message, error) {
		parts = append(parts, textOf(t, c))
		return tgbotapi.Message{}, nil
	}).Times(2)

	b := newTestBot(t, api, newTestDB(t), fakeVocabulary{}, fakeConcepts{text: doc})
	require.NoError(t, b.SendConcept(context.Background()))
	for _, p := range parts {
		assert.LessOrEqual(t, len([]rune(p)), maxMessageLength)
	}
}
