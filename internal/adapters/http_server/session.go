package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"travel_smart/internal/adapters/observability"
	"travel_smart/internal/app"
	"travel_smart/internal/domain"
)

const (
	sessionCookie  = "travel_session"
	rememberCookie = "travel_remember"
)

// TravelAPI is everything a browser session needs from the travel service.
type TravelAPI interface {
	domain.AuthAPI
	domain.FlightAPI
	domain.HotelAPI
	domain.TripAPI
	domain.ExpenseAPI
}

// Deps builds the per-session services. Stores returns the persistent token
// store for a browser's remember key and the session store for a session id.
type Deps struct {
	API            TravelAPI
	Stores         func(sid, rememberKey string) (persistent, session domain.TokenStore)
	Journal        domain.Journal
	Events         domain.EventPublisher
	SummaryWorkers int
	OnTransition   func(kind, state string)
}

// Session is one browser's state: its token and a flight and hotel workflow.
type Session struct {
	ID       string
	Remember string
	Auth     *app.AuthService
	Flights  *app.FlightWorkflow
	Hotels   *app.HotelWorkflow
	Trips    *app.TripService
	Expenses *app.ExpenseService

	lastSeen time.Time
}

func NewSession(id, rememberKey string, d Deps) *Session {
	persistent, session := d.Stores(id, rememberKey)
	auth := app.NewAuthService(d.API, persistent, session)
	opts := []app.WorkflowOption{app.WithTokens(auth), app.WithOwner(auth), app.RequireAuth(true)}
	if d.Journal != nil {
		opts = append(opts, app.WithJournal(d.Journal))
	}
	if d.Events != nil {
		opts = append(opts, app.WithEvents(d.Events))
	}
	if d.OnTransition != nil {
		opts = append(opts, app.OnTransition(d.OnTransition))
	}
	return &Session{
		ID:       id,
		Remember: rememberKey,
		Auth:     auth,
		Flights:  app.NewFlightWorkflow(d.API, opts...),
		Hotels:   app.NewHotelWorkflow(d.API, opts...),
		Trips:    app.NewTripService(d.API, auth, d.SummaryWorkers),
		Expenses: app.NewExpenseService(d.API, auth),
	}
}

// Registry maps session cookies to live sessions and forgets idle ones.
// Each browser also carries a long-lived remember cookie; its value keys the
// persistent token store, so a remembered login outlives the session.
type Registry struct {
	mu       sync.Mutex
	byID     map[string]*Session
	idle     time.Duration
	remember time.Duration
	build    func(sid, rememberKey string) *Session
	now      func() time.Time
}

func NewRegistry(idle, remember time.Duration, build func(sid, rememberKey string) *Session) *Registry {
	return &Registry{byID: map[string]*Session{}, idle: idle, remember: remember, build: build, now: time.Now}
}

// Resolve returns the caller's session, starting a new one (and setting the
// cookies) when the request has none or its session expired.
func (g *Registry) Resolve(w http.ResponseWriter, r *http.Request) *Session {
	now := g.now()
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, err := r.Cookie(sessionCookie); err == nil {
		if s, ok := g.byID[c.Value]; ok && now.Sub(s.lastSeen) < g.idle {
			s.lastSeen = now
			return s
		}
	}
	key := ""
	if c, err := r.Cookie(rememberCookie); err == nil {
		if _, perr := uuid.Parse(c.Value); perr == nil {
			key = c.Value
		}
	}
	if key == "" {
		key = uuid.NewString()
		http.SetCookie(w, browserCookie(r, rememberCookie, key, g.remember))
	}

	id := uuid.NewString()
	s := g.build(id, key)
	s.lastSeen = now
	g.byID[id] = s
	observability.Sessions.Set(float64(len(g.byID)))

	http.SetCookie(w, browserCookie(r, sessionCookie, id, g.idle))
	return s
}

func browserCookie(r *http.Request, name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	}
}

// Sweep drops sessions idle for longer than the idle window and reports how many went.
func (g *Registry) Sweep() int {
	now := g.now()
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for id, s := range g.byID {
		if now.Sub(s.lastSeen) >= g.idle {
			delete(g.byID, id)
			n++
		}
	}
	observability.Sessions.Set(float64(len(g.byID)))
	return n
}

func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.byID)
}

// Run sweeps every interval until ctx is done.
func (g *Registry) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := g.Sweep(); n > 0 {
				log.Debug().Int("expired", n).Msg("sessions swept")
			}
		}
	}
}
