package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"travel_smart/internal/domain"
	"travel_smart/internal/ui"
)

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", what, s)
	}
	return id, nil
}

func tripsCommand() *command {
	var (
		t      domain.Trip
		budget float64
	)
	return &command{
		name:    "trips",
		summary: "Manage trips",
		subcommands: []*command{
			{
				name:    "list",
				summary: "List trips with their spending",
				run: func(ctx context.Context, e *env, args []string) error {
					trips, err := e.trips.List(ctx)
					if err != nil {
						return err
					}
					if len(trips) == 0 {
						e.println("No trips yet.")
						return nil
					}
					e.println(ui.Trips(trips))
					return nil
				},
			},
			{
				name:    "show",
				summary: "Show a trip with its flights and hotels",
				usage:   "travelctl trips show <id>",
				run: func(ctx context.Context, e *env, args []string) error {
					s, err := oneArg(args, "trip id")
					if err != nil {
						return err
					}
					id, err := parseID(s, "trip id")
					if err != nil {
						return err
					}
					d, err := e.trips.Get(ctx, id)
					if err != nil {
						return err
					}
					e.println(ui.TripDetail(d))
					return nil
				},
			},
			{
				name:    "create",
				summary: "Create a trip",
				usage:   "travelctl trips create --name <name> --destination <place> --start YYYY-MM-DD --end YYYY-MM-DD [--budget N]",
				flags: func() *pflag.FlagSet {
					fs := pflag.NewFlagSet("trips create", pflag.ContinueOnError)
					fs.StringVar(&t.Name, "name", "", "trip name")
					fs.StringVar(&t.Destination, "destination", "", "destination")
					fs.StringVar(&t.StartDate, "start", "", "start date YYYY-MM-DD")
					fs.StringVar(&t.EndDate, "end", "", "end date YYYY-MM-DD")
					fs.Float64Var(&budget, "budget", 0, "budget")
					fs.StringVar(&t.Notes, "notes", "", "notes")
					return fs
				},
				run: func(ctx context.Context, e *env, args []string) error {
					t.Budget = domain.Amount(budget)
					created, err := e.trips.Create(ctx, t)
					if err != nil {
						return err
					}
					e.printf("Created trip %d (%s).\n", created.ID, created.Name)
					return nil
				},
			},
			{
				name:    "delete",
				summary: "Delete a trip",
				usage:   "travelctl trips delete <id>",
				run: func(ctx context.Context, e *env, args []string) error {
					s, err := oneArg(args, "trip id")
					if err != nil {
						return err
					}
					id, err := parseID(s, "trip id")
					if err != nil {
						return err
					}
					if err := e.trips.Delete(ctx, id); err != nil {
						return err
					}
					e.printf("Deleted trip %d.\n", id)
					return nil
				},
			},
		},
	}
}

func expensesCommand() *command {
	var (
		trip   int64
		x      domain.Expense
		amount float64
	)
	return &command{
		name:    "expenses",
		summary: "Track spending on a trip",
		subcommands: []*command{
			{
				name:    "list",
				summary: "List a trip's expenses",
				usage:   "travelctl expenses list --trip <id>",
				flags: func() *pflag.FlagSet {
					fs := pflag.NewFlagSet("expenses list", pflag.ContinueOnError)
					fs.Int64Var(&trip, "trip", 0, "trip id")
					return fs
				},
				run: func(ctx context.Context, e *env, args []string) error {
					if trip <= 0 {
						return fmt.Errorf("--trip is required")
					}
					es, err := e.expenses.List(ctx, trip)
					if err != nil {
						return err
					}
					e.println(ui.Expenses(es))
					return nil
				},
			},
			{
				name:    "add",
				summary: "Record an expense",
				usage:   "travelctl expenses add --trip <id> --amount 12.50 --category Food [--title ...] [--date YYYY-MM-DD]",
				flags: func() *pflag.FlagSet {
					fs := pflag.NewFlagSet("expenses add", pflag.ContinueOnError)
					fs.Int64Var(&x.Trip, "trip", 0, "trip id")
					fs.Float64Var(&amount, "amount", 0, "amount")
					fs.StringVar(&x.Category, "category", "", "Flights, Hotels, Food, Transport, Shopping or Misc")
					fs.StringVar(&x.Title, "title", "", "short description")
					fs.StringVar(&x.Currency, "currency", "", "currency code (default USD)")
					fs.StringVar(&x.Date, "date", "", "date YYYY-MM-DD (default today)")
					fs.StringVar(&x.Note, "note", "", "note")
					return fs
				},
				run: func(ctx context.Context, e *env, args []string) error {
					x.Amount = domain.Amount(amount)
					saved, err := e.expenses.Save(ctx, x)
					if err != nil {
						return err
					}
					e.printf("Recorded %s %s for %s on %s.\n", saved.Amount, saved.Currency, saved.Category, saved.Date)
					return nil
				},
			},
		},
	}
}

func summaryCommand() *command {
	return &command{
		name:    "summary",
		summary: "Show budget and spending by category for a trip",
		usage:   "travelctl summary <trip id>",
		run: func(ctx context.Context, e *env, args []string) error {
			s, err := oneArg(args, "trip id")
			if err != nil {
				return err
			}
			id, err := parseID(s, "trip id")
			if err != nil {
				return err
			}
			sum, err := e.trips.Summary(ctx, id)
			if err != nil {
				return err
			}
			e.println(ui.Summary(sum))
			return nil
		},
	}
}
