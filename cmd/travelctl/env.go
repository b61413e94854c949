package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"travel_smart/internal/adapters/observability"
	"travel_smart/internal/adapters/travelapi"
	"travel_smart/internal/app"
	"travel_smart/internal/domain"
	"travel_smart/internal/shared"
)

// env is what every command runs against.
type env struct {
	api      *travelapi.Client
	auth     *app.AuthService
	trips    *app.TripService
	expenses *app.ExpenseService
	airports *app.AirportService

	out    io.Writer
	in     *bufio.Reader
	prompt func(label string) (string, error)
}

func newEnv(cfg shared.Config, persistent, session domain.TokenStore, out io.Writer) (*env, error) {
	api, err := travelapi.New(cfg.TravelBase, cfg.TravelRPS, cfg.TravelTimeout(),
		travelapi.WithAuthScheme(cfg.TravelAuthScheme))
	if err != nil {
		return nil, err
	}
	auth := app.NewAuthService(api, persistent, session)
	e := &env{
		api:      api,
		auth:     auth,
		trips:    app.NewTripService(api, auth, cfg.SummaryWorkers),
		expenses: app.NewExpenseService(api, auth),
		airports: app.NewAirportService(api, nil, 0),
		out:      out,
		in:       bufio.NewReader(os.Stdin),
	}
	e.prompt = e.readSecret
	return e, nil
}

func (e *env) workflowOptions() []app.WorkflowOption {
	return []app.WorkflowOption{
		app.WithTokens(e.auth),
		app.RequireAuth(true),
		app.OnTransition(func(kind, state string) {
			observability.ObserveTransition(kind, state)
			log.Debug().Str("kind", kind).Str("state", state).Msg("workflow")
		}),
	}
}

// token returns the current token or "" when signed out.
func (e *env) token(ctx context.Context) string {
	tok, err := e.auth.Token(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("token lookup")
	}
	return tok
}

// readSecret prompts on the terminal with echo off. Without a terminal
// it reads one line from stdin so passwords can be piped in.
func (e *env) readSecret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, label+": ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
		}
		return string(b), nil
	}
	line, err := e.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// sessionPath is the token file for sign-ins without --remember. It lives
// in the per-login runtime directory so it goes away with the user session.
func sessionPath() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "travel-smart-"+strconv.Itoa(os.Getuid()))
	}
	return filepath.Join(dir, "travel-smart", "session.json")
}

func (e *env) printf(format string, a ...any) { fmt.Fprintf(e.out, format, a...) }

func (e *env) println(s string) { fmt.Fprintln(e.out, s) }
