package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"travel_smart/internal/domain"
)

func loginCommand() *command {
	var (
		email        string
		remember     bool
		passwordFile string
	)
	return &command{
		name:    "login",
		summary: "Sign in and store the token",
		usage:   "travelctl login --email <address> [--remember] [--password-file <path>]",
		flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
			fs.StringVar(&email, "email", "", "account email")
			fs.BoolVar(&remember, "remember", false, "keep the token after the login session ends")
			fs.StringVar(&passwordFile, "password-file", "", "read the password from a file instead of prompting")
			return fs
		},
		run: func(ctx context.Context, e *env, args []string) error {
			pw, err := e.password(passwordFile, "Password")
			if err != nil {
				return err
			}
			if err := e.auth.Login(ctx, email, pw, remember); err != nil {
				return err
			}
			e.println("Signed in.")
			return nil
		},
	}
}

func logoutCommand() *command {
	return &command{
		name:    "logout",
		summary: "Forget the stored token",
		run: func(ctx context.Context, e *env, args []string) error {
			if _, err := e.auth.Logout(ctx); err != nil {
				return err
			}
			e.println("Signed out.")
			return nil
		},
	}
}

func statusCommand() *command {
	return &command{
		name:    "status",
		summary: "Check whether the stored token is still valid",
		run: func(ctx context.Context, e *env, args []string) error {
			st, err := e.auth.CheckStatus(ctx)
			if err != nil {
				return err
			}
			if !st.Authenticated {
				e.println("Not signed in.")
				return nil
			}
			p, err := e.auth.Profile(ctx)
			if err != nil {
				e.println("Signed in.")
				return nil
			}
			e.printf("Signed in as %s (%s).\n", p.Username, p.Email)
			return nil
		},
	}
}

func registerCommand() *command {
	var r domain.Registration
	return &command{
		name:    "register",
		summary: "Create an account",
		usage:   "travelctl register --username <name> --email <address> --first-name <name> --last-name <name>",
		flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("register", pflag.ContinueOnError)
			fs.StringVar(&r.Username, "username", "", "user name")
			fs.StringVar(&r.Email, "email", "", "email address")
			fs.StringVar(&r.FirstName, "first-name", "", "first name")
			fs.StringVar(&r.LastName, "last-name", "", "last name")
			return fs
		},
		run: func(ctx context.Context, e *env, args []string) error {
			var err error
			if r.Password, err = e.prompt("Password"); err != nil {
				return err
			}
			if r.Confirm, err = e.prompt("Confirm password"); err != nil {
				return err
			}
			if err := e.auth.Register(ctx, r); err != nil {
				return err
			}
			e.println("Account created. You can now sign in.")
			return nil
		},
	}
}

func resetPasswordCommand() *command {
	var email, uid, token string
	return &command{
		name:    "reset-password",
		summary: "Request a reset link, or set a new password from one",
		usage:   "travelctl reset-password --email <address>\n  travelctl reset-password --uid <uid> --token <token>",
		flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("reset-password", pflag.ContinueOnError)
			fs.StringVar(&email, "email", "", "send a reset link to this address")
			fs.StringVar(&uid, "uid", "", "uid from the reset link")
			fs.StringVar(&token, "token", "", "token from the reset link")
			return fs
		},
		run: func(ctx context.Context, e *env, args []string) error {
			if email != "" {
				if err := e.auth.RequestPasswordReset(ctx, email); err != nil {
					return err
				}
				e.println("If that address has an account, a reset link is on its way.")
				return nil
			}
			if uid == "" && token == "" {
				return fmt.Errorf("either --email or --uid and --token is required")
			}
			pw, err := e.prompt("New password")
			if err != nil {
				return err
			}
			confirm, err := e.prompt("Confirm password")
			if err != nil {
				return err
			}
			if err := e.auth.ConfirmPasswordReset(ctx, uid, token, pw, confirm); err != nil {
				return err
			}
			e.println("Password changed. You can now sign in.")
			return nil
		},
	}
}

func (e *env) password(file, label string) (string, error) {
	if file == "" || file == "-" {
		return e.prompt(label)
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", file, err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}
