package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/korjavin/dailystudybot/bot"
	"github.com/korjavin/dailystudybot/concept"
	"github.com/korjavin/dailystudybot/config"
	"github.com/korjavin/dailystudybot/database"
	"github.com/korjavin/dailystudybot/models"
	"github.com/korjavin/dailystudybot/quiz"
)

func newConceptCommand() *cobra.Command {
	var dateFlag, startFlag string

	command := &cobra.Command{
		Use:   "concept",
		Short: "Print the concept block scheduled for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(config.ScopeConcept)
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			day := time.Now().In(loc)
			if dateFlag != "" {
				if day, err = time.Parse(models.DateLayout, dateFlag); err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
			}

			ctx := contextOf(cmd)
			start, err := resolveStart(ctx, cfg.Database.Path, startFlag, day)
			if err != nil {
				return err
			}

			_, concepts, err := bot.NewSources(ctx, cfg)
			if err != nil {
				return err
			}
			text, err := concepts.FetchText(ctx)
			if err != nil {
				return err
			}

			return printConcept(cmd.OutOrStdout(), concept.Split(text), start, day)
		},
	}

	command.Flags().StringVar(&dateFlag, "date", "", "day to preview (YYYY-MM-DD, default today)")
	command.Flags().StringVar(&startFlag, "start", "", "rotation start date (YYYY-MM-DD, default the anchor stored by the bot)")

	return command
}

// resolveStart picks the rotation anchor for a preview: the --start flag,
// then the anchor stored in the bot's database, then the previewed day.
func resolveStart(ctx context.Context, dbPath, startFlag string, day time.Time) (time.Time, error) {
	if startFlag != "" {
		start, err := time.Parse(models.DateLayout, startFlag)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --start: %w", err)
		}
		return start, nil
	}

	// Previews never create the database
	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		return day, nil
	}

	db, err := database.New(dbPath)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	state, err := db.GetState(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return day, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to load scheduler state: %w", err)
	}
	start, err := state.Start()
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start date %q: %w", state.StartDate, err)
	}
	return start, nil
}

func printConcept(w io.Writer, blocks []string, start, day time.Time) error {
	block, idx, err := concept.Select(blocks, start, day)
	if err != nil {
		return err
	}

	heading := color.New(color.FgCyan, color.Bold)
	_, _ = heading.Fprintf(w, "Concept %d of %d for %s (day %d since %s)\n\n",
		idx+1, len(blocks), day.Format(models.DateLayout),
		concept.DaysBetween(start, day), start.Format(models.DateLayout))
	_, err = fmt.Fprintln(w, block)
	return err
}

func newQuizCommand() *cobra.Command {
	var count int
	var seed int64

	command := &cobra.Command{
		Use:   "quiz",
		Short: "Print a quiz generated from the vocabulary sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(config.ScopeQuiz)
			if err != nil {
				return err
			}
			if count <= 0 {
				count = cfg.Quiz.Count
			}

			ctx := contextOf(cmd)
			vocabulary, _, err := bot.NewSources(ctx, cfg)
			if err != nil {
				return err
			}
			rows, err := vocabulary.FetchRows(ctx)
			if err != nil {
				return err
			}
			table, err := quiz.Normalize(rows)
			if err != nil {
				return err
			}

			generator := quiz.NewGenerator(nil)
			if cmd.Flags().Changed("seed") {
				generator = quiz.NewSeededGenerator(uint64(seed))
			}

			questions := generator.Generate(table, count)
			printQuiz(cmd.OutOrStdout(), questions, len(table))
			return nil
		},
	}

	command.Flags().IntVar(&count, "count", 0, "number of questions (default from config)")
	command.Flags().Int64Var(&seed, "seed", 0, "seed for a reproducible quiz")

	return command
}

func printQuiz(w io.Writer, questions []models.QuizQuestion, tableSize int) {
	faint := color.New(color.Faint)
	correct := color.New(color.FgGreen, color.Bold)

	_, _ = faint.Fprintf(w, "%d questions from %d entries\n", len(questions), tableSize)
	for i, q := range questions {
		fmt.Fprintf(w, "\n%d. %s\n", i+1, q.Prompt)
		for j, option := range q.Options {
			line := fmt.Sprintf("   %c) %s", 'A'+j, option)
			if j == q.CorrectIndex {
				_, _ = correct.Fprintln(w, line)
				continue
			}
			fmt.Fprintln(w, line)
		}
	}
}

func loadConfig(scope config.Scope) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.ValidateFor(scope); err != nil {
		return nil, err
	}
	return cfg, nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
