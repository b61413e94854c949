package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"travel_smart/internal/domain"
)

type State string

const (
	StateIdle       State = "idle"
	StateSearching  State = "searching"
	StateResults    State = "results-shown"
	StateBooking    State = "booking-open"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// ErrSuperseded is returned to a search whose results arrived after a newer search started.
var ErrSuperseded = errors.New("search superseded by a newer search")

type Criteria interface {
	Passengers() int
}

type Offer interface {
	OfferID() string
	OfferPrice() domain.Price
}

// Booker holds the product-specific steps of a workflow.
type Booker[C Criteria, O Offer] interface {
	Kind() domain.BookingKind
	// Prepare normalizes and validates criteria before any request is made.
	Prepare(c C) (C, error)
	Search(ctx context.Context, token string, c C) ([]O, error)
	CheckForm(travelers []domain.Traveler, p domain.PaymentDetails) error
	Book(ctx context.Context, token string, o O, travelers []domain.Traveler, p domain.PaymentDetails) (domain.Confirmation, error)
}

// TokenSource yields the current auth token, "" when signed out.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// OwnerSource names the account a booking attempt is journaled under.
type OwnerSource interface {
	Owner(ctx context.Context) (string, error)
}

type workflowSettings struct {
	tokens       TokenSource
	owner        OwnerSource
	requireAuth  bool
	journal      domain.Journal
	events       domain.EventPublisher
	onTransition func(kind, state string)
	now          func() time.Time
}

type WorkflowOption func(*workflowSettings)

func WithTokens(ts TokenSource) WorkflowOption {
	return func(s *workflowSettings) { s.tokens = ts }
}

// WithOwner tags journal rows and events with the signed-in account.
func WithOwner(o OwnerSource) WorkflowOption {
	return func(s *workflowSettings) { s.owner = o }
}

// RequireAuth makes SubmitBooking fail with domain.ErrNoToken when signed out.
func RequireAuth(on bool) WorkflowOption {
	return func(s *workflowSettings) { s.requireAuth = on }
}

func WithJournal(j domain.Journal) WorkflowOption {
	return func(s *workflowSettings) { s.journal = j }
}

func WithEvents(p domain.EventPublisher) WorkflowOption {
	return func(s *workflowSettings) { s.events = p }
}

func OnTransition(fn func(kind, state string)) WorkflowOption {
	return func(s *workflowSettings) { s.onTransition = fn }
}

// Snapshot is a copy of the workflow's state for rendering.
type Snapshot[C Criteria, O Offer] struct {
	State        State                `json:"state"`
	Criteria     *C                   `json:"criteria,omitempty"`
	Offers       []O                  `json:"offers"`
	Selected     *O                   `json:"selected,omitempty"`
	Travelers    []domain.Traveler    `json:"travelers,omitempty"`
	HasPayment   bool                 `json:"has_payment"`
	Error        string               `json:"error,omitempty"`
	Confirmation *domain.Confirmation `json:"confirmation,omitempty"`
}

// Workflow is the search → select → book controller for one user.
// It is safe for concurrent use.
type Workflow[C Criteria, O Offer] struct {
	booker Booker[C, O]
	cfg    workflowSettings

	mu        sync.Mutex
	state     State
	criteria  *C
	offers    []O
	selected  *O
	travelers []domain.Traveler
	payment   domain.PaymentDetails
	errMsg    string
	conf      *domain.Confirmation
	gen       uint64
	cancel    context.CancelFunc
}

func NewWorkflow[C Criteria, O Offer](b Booker[C, O], opts ...WorkflowOption) *Workflow[C, O] {
	cfg := workflowSettings{now: time.Now}
	for _, o := range opts {
		o(&cfg)
	}
	return &Workflow[C, O]{booker: b, cfg: cfg, state: StateIdle}
}

func (w *Workflow[C, O]) setState(s State) {
	w.state = s
	if w.cfg.onTransition != nil {
		w.cfg.onTransition(string(w.booker.Kind()), string(s))
	}
}

func (w *Workflow[C, O]) searchMessage(err error) string {
	if errors.Is(err, domain.ErrNoResults) {
		return fmt.Sprintf("No %ss found for the given criteria.", w.booker.Kind())
	}
	return domain.UserMessage(err, fmt.Sprintf("Error fetching %s data. Please try again.", w.booker.Kind()))
}

const bookingFallback = "Booking failed. Please try again."

func (w *Workflow[C, O]) token(ctx context.Context) (string, error) {
	if w.cfg.tokens == nil {
		return "", nil
	}
	return w.cfg.tokens.Token(ctx)
}

// Search replaces the current results with offers for c. A search started
// while another is in flight cancels the older one; its late results are
// dropped and it returns ErrSuperseded.
func (w *Workflow[C, O]) Search(ctx context.Context, c C) ([]O, error) {
	w.mu.Lock()
	if w.state == StateSubmitting {
		w.mu.Unlock()
		return nil, domain.Invalid("", "A booking is being submitted. Please wait.")
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.gen++
	gen := w.gen
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.criteria = &c
	w.offers, w.selected, w.travelers = nil, nil, nil
	w.payment = domain.PaymentDetails{}
	w.errMsg, w.conf = "", nil
	w.setState(StateSearching)
	w.mu.Unlock()
	defer cancel()

	prepared, err := w.booker.Prepare(c)
	var offers []O
	if err == nil {
		var tok string
		if tok, err = w.token(ctx); err == nil {
			offers, err = w.booker.Search(ctx, tok, prepared)
		}
	}

	w.mu.Lock()
	if gen != w.gen {
		w.mu.Unlock()
		log.Debug().Str("kind", string(w.booker.Kind())).Msg("dropping superseded search results")
		return nil, ErrSuperseded
	}
	w.cancel = nil
	w.criteria = &prepared
	if err != nil {
		w.offers = nil
		w.errMsg = w.searchMessage(err)
		w.setState(StateIdle)
	} else {
		if offers == nil {
			offers = []O{}
		}
		w.offers = offers
		w.setState(StateResults)
	}
	out := append([]O(nil), w.offers...)
	w.mu.Unlock()

	w.recordSearch(ctx, prepared, len(out), err)
	return out, err
}

// SelectOffer opens the booking form for the i-th result with one traveler
// form per passenger. Forms already filled in are kept.
func (w *Workflow[C, O]) SelectOffer(i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case StateResults, StateBooking, StateFailed, StateSucceeded:
	default:
		return domain.Invalid("offer", "There are no search results to choose from.")
	}
	if i < 0 || i >= len(w.offers) {
		return domain.Invalid("offer", "Please choose one of the listed offers.")
	}
	o := w.offers[i]
	if o.OfferID() == "" {
		return domain.Invalid("offer", "Search with check-in and check-out dates to book.")
	}
	w.selected = &o
	w.travelers = domain.ResizeTravelers(w.travelers, (*w.criteria).Passengers())
	w.payment = domain.PaymentDetails{}
	w.errMsg, w.conf = "", nil
	w.setState(StateBooking)
	return nil
}

// SelectOfferID is SelectOffer by offer id.
func (w *Workflow[C, O]) SelectOfferID(id string) error {
	w.mu.Lock()
	idx := -1
	for i, o := range w.offers {
		if id != "" && o.OfferID() == id {
			idx = i
			break
		}
	}
	w.mu.Unlock()
	if idx < 0 {
		return domain.Invalid("offer", "Please choose one of the listed offers.")
	}
	return w.SelectOffer(idx)
}

// Reopen returns to the booking form after a failed submit, keeping the
// offer and traveler details. Card details must be entered again.
func (w *Workflow[C, O]) Reopen() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateFailed || w.selected == nil {
		return domain.Invalid("", "There is no failed booking to retry.")
	}
	w.errMsg = ""
	w.setState(StateBooking)
	return nil
}

// CloseBooking discards the booking form and goes back to the results.
func (w *Workflow[C, O]) CloseBooking() {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case StateBooking, StateFailed, StateSucceeded:
	default:
		return
	}
	w.selected, w.travelers = nil, nil
	w.payment = domain.PaymentDetails{}
	w.errMsg, w.conf = "", nil
	w.setState(StateResults)
}

// UpdateTraveler edits traveler i in place while the booking form is open.
func (w *Workflow[C, O]) UpdateTraveler(i int, fn func(*domain.Traveler)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateBooking {
		return domain.Invalid("", "The booking form is not open.")
	}
	if i < 0 || i >= len(w.travelers) {
		return domain.Invalid("traveler", "No such traveler.")
	}
	id := w.travelers[i].ID
	fn(&w.travelers[i])
	w.travelers[i].ID = id
	return nil
}

func (w *Workflow[C, O]) SetTraveler(i int, t domain.Traveler) error {
	return w.UpdateTraveler(i, func(dst *domain.Traveler) { *dst = t })
}

func (w *Workflow[C, O]) SetPayment(p domain.PaymentDetails) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateBooking {
		return domain.Invalid("", "The booking form is not open.")
	}
	w.payment = p
	return nil
}

// SubmitBooking sends the selected offer, travelers and payment to the
// service. It is not retried; on failure the workflow moves to StateFailed.
// Card details are dropped after the attempt either way.
func (w *Workflow[C, O]) SubmitBooking(ctx context.Context) (domain.Confirmation, error) {
	w.mu.Lock()
	if w.state != StateBooking || w.selected == nil {
		w.mu.Unlock()
		return domain.Confirmation{}, domain.Invalid("offer", "Choose an offer before booking.")
	}
	want := (*w.criteria).Passengers()
	if len(w.travelers) != want {
		err := domain.Invalid("travelers", fmt.Sprintf("Expected details for %d travelers, got %d.", want, len(w.travelers)))
		w.errMsg = domain.UserMessage(err, bookingFallback)
		w.mu.Unlock()
		return domain.Confirmation{}, err
	}
	if err := w.booker.CheckForm(w.travelers, w.payment); err != nil {
		w.errMsg = domain.UserMessage(err, bookingFallback)
		w.mu.Unlock()
		return domain.Confirmation{}, err
	}
	offer := *w.selected
	travelers := append([]domain.Traveler(nil), w.travelers...)
	payment := w.payment
	w.errMsg = ""
	w.setState(StateSubmitting)
	w.mu.Unlock()

	tok, err := w.token(ctx)
	if err == nil && tok == "" && w.cfg.requireAuth {
		err = domain.ErrNoToken
	}
	if err != nil {
		w.mu.Lock()
		w.errMsg = domain.UserMessage(err, bookingFallback)
		w.setState(StateBooking)
		w.mu.Unlock()
		return domain.Confirmation{}, err
	}

	conf, err := w.booker.Book(ctx, tok, offer, travelers, payment)

	w.mu.Lock()
	w.payment = domain.PaymentDetails{}
	if err != nil {
		w.errMsg = domain.UserMessage(err, bookingFallback)
		w.setState(StateFailed)
	} else {
		w.conf = &conf
		w.setState(StateSucceeded)
	}
	msg := w.errMsg
	w.mu.Unlock()

	w.recordBooking(ctx, offer, len(travelers), conf, err, msg)
	return conf, err
}

func (w *Workflow[C, O]) Snapshot() Snapshot[C, O] {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := Snapshot[C, O]{
		State:      w.state,
		Offers:     append([]O{}, w.offers...),
		Travelers:  append([]domain.Traveler(nil), w.travelers...),
		HasPayment: !w.payment.IsZero(),
		Error:      w.errMsg,
	}
	if w.criteria != nil {
		c := *w.criteria
		s.Criteria = &c
	}
	if w.selected != nil {
		o := *w.selected
		s.Selected = &o
	}
	if w.conf != nil {
		c := *w.conf
		s.Confirmation = &c
	}
	return s
}

func (w *Workflow[C, O]) recordSearch(ctx context.Context, c C, n int, err error) {
	if w.cfg.journal == nil || errors.Is(err, context.Canceled) {
		return
	}
	rec := domain.SearchRecord{
		ID:        uuid.NewString(),
		Kind:      w.booker.Kind(),
		Query:     fmt.Sprintf("%+v", c),
		Results:   n,
		CreatedAt: w.cfg.now().UTC(),
	}
	if err != nil {
		rec.Message = w.searchMessage(err)
	}
	if jerr := w.cfg.journal.RecordSearch(context.WithoutCancel(ctx), rec); jerr != nil {
		log.Warn().Err(jerr).Str("kind", string(rec.Kind)).Msg("journal search failed")
	}
}

func (w *Workflow[C, O]) recordBooking(ctx context.Context, o O, passengers int, conf domain.Confirmation, err error, msg string) {
	ctx = context.WithoutCancel(ctx)
	price := o.OfferPrice()
	outcome := domain.OutcomeSucceeded
	if err != nil {
		outcome = domain.OutcomeFailed
	}
	at := w.cfg.now().UTC()
	id := uuid.NewString()
	owner := ""
	if w.cfg.owner != nil && (w.cfg.journal != nil || w.cfg.events != nil) {
		var oerr error
		if owner, oerr = w.cfg.owner.Owner(ctx); oerr != nil {
			log.Warn().Err(oerr).Str("offer", o.OfferID()).Msg("booking owner unknown")
		}
	}

	if w.cfg.journal != nil {
		rec := domain.BookingRecord{
			ID:         id,
			Owner:      owner,
			Kind:       w.booker.Kind(),
			OfferID:    o.OfferID(),
			Passengers: passengers,
			Total:      price.Total,
			Currency:   price.Currency,
			Outcome:    outcome,
			Reference:  conf.Reference,
			Message:    msg,
			CreatedAt:  at,
		}
		if jerr := w.cfg.journal.RecordBooking(ctx, rec); jerr != nil {
			log.Warn().Err(jerr).Str("offer", rec.OfferID).Msg("journal booking failed")
		}
	}
	if w.cfg.events != nil {
		ev := domain.BookingEvent{
			ID:         id,
			Owner:      owner,
			Type:       "booking." + outcome,
			Kind:       w.booker.Kind(),
			OfferID:    o.OfferID(),
			Passengers: passengers,
			Total:      price.Total,
			Currency:   price.Currency,
			Reference:  conf.Reference,
			Status:     outcome,
			Message:    msg,
			At:         at,
		}
		if perr := w.cfg.events.PublishBooking(ctx, ev); perr != nil {
			log.Warn().Err(perr).Str("offer", ev.OfferID).Msg("publish booking event failed")
		}
	}
}
