package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/korjavin/dailystudybot/bot"
	"github.com/korjavin/dailystudybot/config"
	"github.com/korjavin/dailystudybot/database"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot with the daily quiz and concept schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(contextOf(cmd))
		},
	}
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("Starting dailystudybot...")

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.ValidateFor(config.ScopeServe); err != nil {
		return err
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if cfg.State.ImportFile != "" {
		imported, err := db.ImportStartDate(ctx, cfg.State.ImportFile)
		if err != nil {
			return fmt.Errorf("failed to import state: %w", err)
		}
		if imported {
			log.Printf("Imported start date from %s", cfg.State.ImportFile)
		}
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	// Anchor the rotation before any trigger can race to create it
	state, err := db.EnsureStartDate(ctx, time.Now().In(loc))
	if err != nil {
		return fmt.Errorf("failed to initialize scheduler state: %w", err)
	}
	log.Printf("Concept rotation anchored at %s", state.StartDate)

	b, err := bot.New(ctx, cfg, db)
	if err != nil {
		return fmt.Errorf("failed to initialize bot: %w", err)
	}

	scheduler, err := b.Schedule(ctx, cfg.Schedule.QuizCron, cfg.Schedule.ConceptCron)
	if err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		<-scheduler.Stop().Done()
	}()

	log.Println("Bot running…")
	b.Start(ctx)
	return nil
}
