// Command frontdesk is a text-mode front-desk agent. Each stdin line is a
// caller question; known questions are answered, others are escalated.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/frontdesk-supervisor/internal/app"
	"github.com/spec-kit/frontdesk-supervisor/internal/config"
	"github.com/spec-kit/frontdesk-supervisor/internal/observability"
)

func main() {
	caller := pflag.String("caller", "555-0000", "caller reference attached to escalated tickets")
	session := pflag.String("session", "", "session reference attached to escalated tickets")
	sweep := pflag.Bool("sweep", false, "sweep timed-out tickets before reading questions")
	logLevel := pflag.String("log-level", "", "override LOG_LEVEL")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *logLevel != "" {
		cfg.Logger.Level = *logLevel
	}
	// stdout carries the conversation.
	cfg.Logger.Output = "stderr"
	cfg.Logger.Format = "console"
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	c, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build services", zap.Error(err))
	}
	defer c.Close()

	if *sweep {
		timedOut, err := c.Tickets.SweepTimeouts(ctx)
		if err != nil {
			logger.Fatal("sweep failed", zap.Error(err))
		}
		fmt.Printf("marked %d ticket(s) unresolved\n", len(timedOut))
	}

	questions := pflag.Args()
	if len(questions) > 0 {
		for _, q := range questions {
			answer(ctx, c, *caller, *session, q)
		}
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		q := strings.TrimSpace(scanner.Text())
		if q == "quit" || q == "exit" {
			return
		}
		if q != "" {
			answer(ctx, c, *caller, *session, q)
		}
		fmt.Print("> ")
	}
	if err := scanner.Err(); err != nil {
		logger.Error("read stdin", zap.Error(err))
	}
}

func answer(ctx context.Context, c *app.Container, caller, session, question string) {
	outcome, err := c.FrontDesk.HandleQuestion(ctx, caller, session, question)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	fmt.Println(outcome.Reply)
	if outcome.Ticket != nil {
		fmt.Printf("  (escalated as ticket %s, times out at %s)\n", outcome.Ticket.ID, outcome.Ticket.TimeoutAt.Format("15:04:05 MST"))
	}
}
