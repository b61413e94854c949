// Command travelctl is a terminal client for the travel service: sign in,
// search and book flights and hotels, and keep track of trips and spending.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"travel_smart/internal/adapters/observability"
	"travel_smart/internal/adapters/tokenstore"
	"travel_smart/internal/domain"
	"travel_smart/internal/shared"
	"travel_smart/internal/ui"
)

func rootCommand() *command {
	return &command{
		name:    "travelctl",
		summary: "Plan trips, search and book flights and hotels",
		subcommands: []*command{
			loginCommand(),
			logoutCommand(),
			statusCommand(),
			registerCommand(),
			resetPasswordCommand(),
			flightsCommand(),
			airportsCommand(),
			hotelsCommand(),
			tripsCommand(),
			expensesCommand(),
			summaryCommand(),
		},
	}
}

func main() {
	cfg, err := shared.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.Error(err.Error()))
		os.Exit(1)
	}

	level := cfg.LogLevel
	if os.Getenv("LOG_LEVEL") == "" {
		level = "warn"
	}
	log.Logger = observability.NewLogger("dev", level, os.Stderr)

	tokenFile := cfg.TokenFile
	if tokenFile == "" {
		tokenFile = tokenstore.DefaultPath()
	}
	e, err := newEnv(cfg, tokenstore.NewFile(tokenFile), tokenstore.NewFile(sessionPath()), os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.Error(err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCommand().execute(ctx, e, "", os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, ui.Error(domain.UserMessage(err, err.Error())))
		stop()
		os.Exit(1)
	}
}
