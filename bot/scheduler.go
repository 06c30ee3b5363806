package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/robfig/cron/v3"
)

// jobTimeout bounds a single scheduled delivery
const jobTimeout = 5 * time.Minute

// Schedule registers the daily quiz and concept jobs on a cron in the bot's zone.
// The caller starts and stops the returned cron.
func (b *Bot) Schedule(ctx context.Context, quizSpec, conceptSpec string) (*cron.Cron, error) {
	logger := cron.PrintfLogger(log.New(os.Stdout, "cron: ", log.Ldate|log.Ltime))
	c := cron.New(
		cron.WithLocation(b.location),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger)),
	)

	jobs := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{name: "quiz", spec: quizSpec, run: b.SendQuiz},
		{name: "concept", spec: conceptSpec, run: b.SendConcept},
	}

	for _, job := range jobs {
		if _, err := c.AddFunc(job.spec, b.job(ctx, job.name, job.run)); err != nil {
			return nil, fmt.Errorf("invalid %s schedule %q: %w", job.name, job.spec, err)
		}
		log.Printf("Scheduled %s job at %q (%s)", job.name, job.spec, b.location)
	}

	return c, nil
}

func (b *Bot) job(ctx context.Context, name string, run func(context.Context) error) func() {
	return func() {
		jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
		defer cancel()

		log.Printf("Running scheduled %s job", name)
		if err := run(jobCtx); err != nil {
			log.Printf("Scheduled %s job failed: %v", name, err)
		}
	}
}
