package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"travel_smart/internal/app"
	"travel_smart/internal/domain"
	"travel_smart/internal/ui"
)

// bookingForm is the YAML file handed to the book commands. Keys follow
// the service's JSON field names.
type bookingForm struct {
	Travelers []domain.Traveler    `json:"travelers"`
	Payment   domain.PaymentDetails `json:"payment"`
}

// loadForm reads a YAML booking form. YAML is decoded generically and
// re-encoded as JSON so the domain json tags apply.
func loadForm(path string) (bookingForm, error) {
	var f bookingForm
	b, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("failed to read form: %w", err)
	}
	var raw any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return f, fmt.Errorf("failed to parse form: %w", err)
	}
	j, err := json.Marshal(raw)
	if err != nil {
		return f, fmt.Errorf("failed to parse form: %w", err)
	}
	if err := json.Unmarshal(j, &f); err != nil {
		return f, fmt.Errorf("failed to parse form: %w", err)
	}
	return f, nil
}

type bookFlags struct {
	offer   int
	offerID string
	form    string
}

func (b *bookFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&b.offer, "offer", 0, "result number to book, as listed by search")
	fs.StringVar(&b.offerID, "offer-id", "", "offer id to book")
	fs.StringVar(&b.form, "form", "", "YAML file with travelers and payment")
}

// book runs select → fill → submit on a workflow that already holds results.
func book[C app.Criteria, O app.Offer](ctx context.Context, e *env, w *app.Workflow[C, O], kind domain.BookingKind, b bookFlags) error {
	if b.form == "" {
		return fmt.Errorf("--form is required")
	}
	form, err := loadForm(b.form)
	if err != nil {
		return err
	}

	switch {
	case b.offerID != "":
		err = w.SelectOfferID(b.offerID)
	case b.offer > 0:
		err = w.SelectOffer(b.offer - 1)
	default:
		return fmt.Errorf("--offer or --offer-id is required")
	}
	if err != nil {
		return err
	}

	need := len(w.Snapshot().Travelers)
	if len(form.Travelers) != need {
		return domain.Invalid("travelers", fmt.Sprintf("The booking needs %d traveler(s); the form has %d.", need, len(form.Travelers)))
	}
	for i, t := range form.Travelers {
		if err := w.SetTraveler(i, t); err != nil {
			return err
		}
	}
	if form.Payment.CVV == "" {
		if form.Payment.CVV, err = e.prompt("CVV"); err != nil {
			return err
		}
	}
	if err := w.SetPayment(form.Payment); err != nil {
		return err
	}

	conf, err := w.SubmitBooking(ctx)
	if err != nil {
		return err
	}
	e.println(ui.Confirmation(kind, conf))
	return nil
}

func flightCriteriaFlags(fs *pflag.FlagSet, c *domain.SearchCriteria) {
	fs.StringVar(&c.Origin, "from", "", "origin airport (IATA)")
	fs.StringVar(&c.Destination, "to", "", "destination airport (IATA)")
	fs.StringVar(&c.DepartureDate, "date", "", "departure date YYYY-MM-DD")
	fs.StringVar(&c.ReturnDate, "return", "", "return date YYYY-MM-DD")
	fs.IntVar(&c.Adults, "adults", 1, "adult passengers")
	fs.IntVar(&c.Children, "children", 0, "child passengers")
	fs.StringVar(&c.CabinClass, "cabin", "", "ECONOMY, PREMIUM_ECONOMY, BUSINESS or FIRST")
}

func searchFlights(ctx context.Context, e *env, w *app.FlightWorkflow, c domain.SearchCriteria) error {
	offers, err := w.Search(ctx, c)
	if err != nil {
		return workflowErr(err, w.Snapshot().Error)
	}
	if len(offers) == 0 {
		e.println("No flights found.")
		return nil
	}
	e.println(ui.FlightOffers(offers))
	return nil
}

func flightsCommand() *command {
	var (
		c domain.SearchCriteria
		b bookFlags
	)
	return &command{
		name:    "flights",
		summary: "Search and book flights",
		subcommands: []*command{
			{
				name:    "search",
				summary: "List flight offers",
				usage:   "travelctl flights search --from LHR --to CDG --date 2030-01-10 [--return 2030-01-17] [--adults 1]",
				flags: func() *pflag.FlagSet {
					fs := pflag.NewFlagSet("flights search", pflag.ContinueOnError)
					flightCriteriaFlags(fs, &c)
					return fs
				},
				run: func(ctx context.Context, e *env, args []string) error {
					return searchFlights(ctx, e, app.NewFlightWorkflow(e.api, e.workflowOptions()...), c)
				},
			},
			{
				name:    "book",
				summary: "Search again and book one of the offers",
				usage:   "travelctl flights book <search flags> --offer 2 --form booking.yaml",
				flags: func() *pflag.FlagSet {
					fs := pflag.NewFlagSet("flights book", pflag.ContinueOnError)
					flightCriteriaFlags(fs, &c)
					b.register(fs)
					return fs
				},
				run: func(ctx context.Context, e *env, args []string) error {
					w := app.NewFlightWorkflow(e.api, e.workflowOptions()...)
					if err := searchFlights(ctx, e, w, c); err != nil {
						return err
					}
					return book(ctx, e, w, domain.KindFlight, b)
				},
			},
		},
	}
}

func airportsCommand() *command {
	return &command{
		name:    "airports",
		summary: "Look up airports by name or code",
		usage:   "travelctl airports <keyword>",
		run: func(ctx context.Context, e *env, args []string) error {
			kw, err := oneArg(args, "keyword")
			if err != nil {
				return err
			}
			as, err := e.airports.Lookup(ctx, e.token(ctx), kw)
			if err != nil {
				return err
			}
			if len(as) == 0 {
				e.println("No airports found.")
				return nil
			}
			e.println(ui.Airports(as))
			return nil
		},
	}
}

func hotelCriteriaFlags(fs *pflag.FlagSet, c *domain.HotelSearchCriteria) {
	fs.StringVar(&c.CityCode, "city", "", "city code (IATA)")
	fs.StringVar(&c.CheckIn, "check-in", "", "check-in date YYYY-MM-DD")
	fs.StringVar(&c.CheckOut, "check-out", "", "check-out date YYYY-MM-DD")
	fs.IntVar(&c.Adults, "adults", 1, "guests")
	fs.IntVar(&c.Rooms, "rooms", 1, "rooms")
	fs.IntSliceVar(&c.Ratings, "ratings", nil, "star ratings to include, e.g. 4,5")
	fs.StringSliceVar(&c.Amenities, "amenities", nil, "required amenities, e.g. WIFI,PARKING")
}

func searchHotels(ctx context.Context, e *env, w *app.HotelWorkflow, c domain.HotelSearchCriteria) error {
	offers, err := w.Search(ctx, c)
	if err != nil {
		return workflowErr(err, w.Snapshot().Error)
	}
	if len(offers) == 0 {
		e.println("No rooms found.")
		return nil
	}
	e.println(ui.HotelOffers(offers))
	if !c.HasDates() {
		e.println("Add --check-in and --check-out to see bookable rooms.")
	}
	return nil
}

func hotelsCommand() *command {
	var (
		c domain.HotelSearchCriteria
		b bookFlags
	)
	return &command{
		name:    "hotels",
		summary: "Search and book hotel rooms",
		subcommands: []*command{
			{
				name:    "search",
				summary: "List hotels, or room offers when dates are given",
				usage:   "travelctl hotels search --city PAR --check-in 2030-03-01 --check-out 2030-03-04",
				flags: func() *pflag.FlagSet {
					fs := pflag.NewFlagSet("hotels search", pflag.ContinueOnError)
					hotelCriteriaFlags(fs, &c)
					return fs
				},
				run: func(ctx context.Context, e *env, args []string) error {
					return searchHotels(ctx, e, app.NewHotelWorkflow(e.api, e.workflowOptions()...), c)
				},
			},
			{
				name:    "book",
				summary: "Search again and book one of the rooms",
				usage:   "travelctl hotels book <search flags> --offer-id <id> --form booking.yaml",
				flags: func() *pflag.FlagSet {
					fs := pflag.NewFlagSet("hotels book", pflag.ContinueOnError)
					hotelCriteriaFlags(fs, &c)
					b.register(fs)
					return fs
				},
				run: func(ctx context.Context, e *env, args []string) error {
					w := app.NewHotelWorkflow(e.api, e.workflowOptions()...)
					if err := searchHotels(ctx, e, w, c); err != nil {
						return err
					}
					return book(ctx, e, w, domain.KindHotel, b)
				},
			},
			{
				name:    "bookings",
				summary: "List past hotel bookings",
				run: func(ctx context.Context, e *env, args []string) error {
					bs, err := app.NewHotelBooker(e.api).Bookings(ctx, e.token(ctx))
					if err != nil {
						return err
					}
					rows := make([][]string, 0, len(bs))
					for _, bk := range bs {
						rows = append(rows, []string{bk.BookingID, bk.HotelName, bk.CheckIn, bk.CheckOut, strconv.Itoa(bk.Guests), bk.Status})
					}
					e.println(ui.Table([]string{"BOOKING", "HOTEL", "CHECK-IN", "CHECK-OUT", "GUESTS", "STATUS"}, rows))
					return nil
				},
			},
		},
	}
}

// workflowErr prefers the message the workflow shows the user.
func workflowErr(err error, shown string) error {
	if shown == "" {
		return err
	}
	return &shownError{msg: shown, err: err}
}

type shownError struct {
	msg string
	err error
}

func (e *shownError) Error() string { return e.msg }
func (e *shownError) Unwrap() error { return e.err }
