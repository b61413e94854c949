package app

import (
	"context"
	"strings"
	"time"

	"travel_smart/internal/domain"
)

// FlightBooker searches flight offers and books them with a tokenized card.
type FlightBooker struct {
	api   domain.FlightAPI
	today func() time.Time
}

func NewFlightBooker(api domain.FlightAPI) *FlightBooker {
	return &FlightBooker{api: api, today: time.Now}
}

type FlightWorkflow = Workflow[domain.SearchCriteria, domain.FlightOffer]

func NewFlightWorkflow(api domain.FlightAPI, opts ...WorkflowOption) *FlightWorkflow {
	return NewWorkflow[domain.SearchCriteria, domain.FlightOffer](NewFlightBooker(api), opts...)
}

func (b *FlightBooker) Kind() domain.BookingKind { return domain.KindFlight }

func (b *FlightBooker) Prepare(c domain.SearchCriteria) (domain.SearchCriteria, error) {
	c.Origin = strings.ToUpper(strings.TrimSpace(c.Origin))
	c.Destination = strings.ToUpper(strings.TrimSpace(c.Destination))
	c.CabinClass = strings.ToUpper(strings.TrimSpace(c.CabinClass))
	c.DepartureDate = strings.TrimSpace(c.DepartureDate)
	c.ReturnDate = strings.TrimSpace(c.ReturnDate)
	if err := check(c); err != nil {
		return c, err
	}
	if dep, _ := time.Parse(time.DateOnly, c.DepartureDate); dep.Before(midnight(b.today())) {
		return c, domain.Invalid("departure_date", "Departure date cannot be in the past.")
	}
	if err := checkDateOrder("return_date", c.DepartureDate, c.ReturnDate); err != nil {
		return c, err
	}
	return c, nil
}

func (b *FlightBooker) Search(ctx context.Context, token string, c domain.SearchCriteria) ([]domain.FlightOffer, error) {
	rows, err := b.api.SearchFlights(ctx, token, c)
	if err != nil {
		return nil, err
	}
	return mapFlightOffers(rows), nil
}

func (b *FlightBooker) CheckForm(travelers []domain.Traveler, p domain.PaymentDetails) error {
	for _, t := range travelers {
		if err := checkVar("dateOfBirth", t.DateOfBirth, "required,datetime=2006-01-02"); err != nil {
			return err
		}
		if err := checkVar("gender", t.Gender, "required,oneof=MALE FEMALE"); err != nil {
			return err
		}
		if err := checkGuest(t); err != nil {
			return err
		}
		if len(t.Documents) == 0 {
			return domain.Invalid("documents", "A passport is required for every traveler.")
		}
		for _, d := range t.Documents {
			if err := check(d); err != nil {
				return err
			}
		}
	}
	return check(p)
}

// Book tokenizes the card first so raw card data never reaches the booking endpoint.
func (b *FlightBooker) Book(ctx context.Context, token string, o domain.FlightOffer, travelers []domain.Traveler, p domain.PaymentDetails) (domain.Confirmation, error) {
	payTok, err := b.api.TokenizePayment(ctx, token, p)
	if err != nil {
		return domain.Confirmation{}, err
	}
	resp, err := b.api.BookFlight(ctx, token, o.Raw, travelers, payTok)
	if err != nil {
		return domain.Confirmation{}, err
	}
	return mapConfirmation(resp), nil
}

func checkGuest(t domain.Traveler) error {
	if err := check(t.Name); err != nil {
		return err
	}
	return check(t.Contact)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
