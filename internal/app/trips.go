package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"travel_smart/internal/domain"
)

type TripService struct {
	api     domain.TripAPI
	tokens  TokenSource
	workers int64
}

func NewTripService(api domain.TripAPI, tokens TokenSource, workers int) *TripService {
	if workers <= 0 {
		workers = 4
	}
	return &TripService{api: api, tokens: tokens, workers: int64(workers)}
}

func requireToken(ctx context.Context, ts TokenSource) (string, error) {
	tok, err := ts.Token(ctx)
	if err != nil {
		return "", err
	}
	if tok == "" {
		return "", domain.ErrNoToken
	}
	return tok, nil
}

// List returns the user's trips, each with its spending summary. A summary
// that fails to load leaves that trip's Summary nil.
func (s *TripService) List(ctx context.Context) ([]domain.Trip, error) {
	tok, err := requireToken(ctx, s.tokens)
	if err != nil {
		return nil, err
	}
	trips, err := s.api.ListTrips(ctx, tok)
	if err != nil {
		return nil, err
	}

	sem := semaphore.NewWeighted(s.workers)
	var wg sync.WaitGroup
	for i := range trips {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			sum, err := s.api.TripSummary(ctx, tok, trips[i].ID)
			if err != nil {
				log.Warn().Int64("trip", trips[i].ID).Err(err).Msg("trip summary failed")
				return
			}
			trips[i].Summary = &sum
		}(i)
	}
	wg.Wait()
	return trips, ctx.Err()
}

// Get loads a trip with its flights and hotels in parallel.
func (s *TripService) Get(ctx context.Context, id int64) (domain.TripDetail, error) {
	tok, err := requireToken(ctx, s.tokens)
	if err != nil {
		return domain.TripDetail{}, err
	}
	var d domain.TripDetail
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Trip, err = s.api.GetTrip(gctx, tok, id)
		return err
	})
	g.Go(func() (err error) {
		d.Flights, err = s.api.ListTripFlights(gctx, tok, id)
		return err
	})
	g.Go(func() (err error) {
		d.Hotels, err = s.api.ListTripHotels(gctx, tok, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.TripDetail{}, err
	}
	return d, nil
}

func (s *TripService) Create(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	t.ID = 0
	if err := checkTrip(&t); err != nil {
		return domain.Trip{}, err
	}
	tok, err := requireToken(ctx, s.tokens)
	if err != nil {
		return domain.Trip{}, err
	}
	return s.api.CreateTrip(ctx, tok, t)
}

func (s *TripService) Update(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	if t.ID <= 0 {
		return domain.Trip{}, domain.Invalid("id", "Trip id is required.")
	}
	if err := checkTrip(&t); err != nil {
		return domain.Trip{}, err
	}
	tok, err := requireToken(ctx, s.tokens)
	if err != nil {
		return domain.Trip{}, err
	}
	return s.api.UpdateTrip(ctx, tok, t)
}

func checkTrip(t *domain.Trip) error {
	t.Name = strings.TrimSpace(t.Name)
	t.Destination = strings.TrimSpace(t.Destination)
	if err := check(*t); err != nil {
		return err
	}
	return checkDateOrder("end_date", t.StartDate, t.EndDate)
}

func (s *TripService) Delete(ctx context.Context, id int64) error {
	tok, err := requireToken(ctx, s.tokens)
	if err != nil {
		return err
	}
	return s.api.DeleteTrip(ctx, tok, id)
}

func (s *TripService) Summary(ctx context.Context, id int64) (domain.TripSummary, error) {
	tok, err := requireToken(ctx, s.tokens)
	if err != nil {
		return domain.TripSummary{}, err
	}
	return s.api.TripSummary(ctx, tok, id)
}

// SaveFlight creates f, or updates it when f.ID is set.
func (s *TripService) SaveFlight(ctx context.Context, f domain.TripFlight) (domain.TripFlight, error) {
	f.DepartureAirport = strings.ToUpper(strings.TrimSpace(f.DepartureAirport))
	f.ArrivalAirport = strings.ToUpper(strings.TrimSpace(f.ArrivalAirport))
	if err := check(f); err != nil {
		return domain.TripFlight{}, err
	}
	tok, err := requireToken(ctx, s.tokens)
	if err != nil {
		return domain.TripFlight{}, err
	}
	return s.api.SaveTripFlight(ctx, tok, f)
}

func (s *TripService) DeleteFlight(ctx context.Context, id int64) error {
	tok, err := requireToken(ctx, s.tokens)
	if err != nil {
		return err
	}
	return s.api.DeleteTripFlight(ctx, tok, id)
}

func (s *TripService) SaveHotel(ctx context.Context, h domain.TripHotel) (domain.TripHotel, error) {
	if err := check(h); err != nil {
		return domain.TripHotel{}, err
	}
	if err := checkDateOrder("check_out", h.CheckIn, h.CheckOut); err != nil {
		return domain.TripHotel{}, err
	}
	tok, err := requireToken(ctx, s.tokens)
	if err != nil {
		return domain.TripHotel{}, err
	}
	return s.api.SaveTripHotel(ctx, tok, h)
}

func (s *TripService) DeleteHotel(ctx context.Context, id int64) error {
	tok, err := requireToken(ctx, s.tokens)
	if err != nil {
		return err
	}
	return s.api.DeleteTripHotel(ctx, tok, id)
}

type ExpenseService struct {
	api    domain.ExpenseAPI
	tokens TokenSource
	now    func() time.Time
}

func NewExpenseService(api domain.ExpenseAPI, tokens TokenSource) *ExpenseService {
	return &ExpenseService{api: api, tokens: tokens, now: time.Now}
}

// List returns expenses for tripID, or all of the user's expenses when tripID is 0.
func (s *ExpenseService) List(ctx context.Context, tripID int64) ([]domain.Expense, error) {
	tok, err := requireToken(ctx, s.tokens)
	if err != nil {
		return nil, err
	}
	return s.api.ListExpenses(ctx, tok, tripID)
}

// Save creates e, or updates it when e.ID is set. Currency defaults to USD
// and the date to today.
func (s *ExpenseService) Save(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	e.Currency = strings.ToUpper(strings.TrimSpace(e.Currency))
	if e.Currency == "" {
		e.Currency = "USD"
	}
	if e.Date == "" {
		e.Date = s.now().Format(time.DateOnly)
	}
	e.Title = strings.TrimSpace(e.Title)
	if err := check(e); err != nil {
		return domain.Expense{}, err
	}
	tok, err := requireToken(ctx, s.tokens)
	if err != nil {
		return domain.Expense{}, err
	}
	return s.api.SaveExpense(ctx, tok, e)
}

func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	tok, err := requireToken(ctx, s.tokens)
	if err != nil {
		return err
	}
	return s.api.DeleteExpense(ctx, tok, id)
}
