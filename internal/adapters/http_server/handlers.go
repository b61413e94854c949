package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"travel_smart/internal/app"
	"travel_smart/internal/domain"
)

const maxBody = 1 << 20

type Handlers struct {
	Sessions    *Registry
	Airports    *app.AirportService
	HotelBooker *app.HotelBooker
	Journal     domain.Journal
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Field  string `json:"field,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.login)
			r.Post("/logout", h.logout)
			r.Get("/status", h.status)
			r.Post("/register", h.register)
			r.Post("/password-reset", h.requestReset)
			r.Post("/password-reset/{uid}/{token}", h.confirmReset)
			r.Get("/profile", h.profile)
			r.Put("/profile", h.updateProfile)
		})

		flightRoutes.mount(r, "/flights", h, func(r chi.Router) {
			r.Get("/airports", h.airports)
		})
		hotelRoutes.mount(r, "/hotels", h, func(r chi.Router) {
			r.Get("/offers/{id}", h.hotelOffer)
			r.Get("/bookings", h.hotelBookings)
		})

		r.Route("/trips", func(r chi.Router) {
			r.Get("/", h.listTrips)
			r.Post("/", h.createTrip)
			r.Get("/{id}", h.getTrip)
			r.Put("/{id}", h.updateTrip)
			r.Delete("/{id}", h.deleteTrip)
			r.Get("/{id}/summary", h.tripSummary)
			r.Post("/{id}/flights", h.saveTripFlight)
			r.Put("/{id}/flights/{fid}", h.saveTripFlight)
			r.Delete("/{id}/flights/{fid}", h.deleteTripFlight)
			r.Post("/{id}/hotels", h.saveTripHotel)
			r.Put("/{id}/hotels/{hid}", h.saveTripHotel)
			r.Delete("/{id}/hotels/{hid}", h.deleteTripHotel)
		})
		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", h.listExpenses)
			r.Post("/", h.saveExpense)
			r.Put("/{id}", h.saveExpense)
			r.Delete("/{id}", h.deleteExpense)
		})
		r.Get("/bookings/recent", h.recentBookings)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemField(w, status, title, detail, "")
}

func writeProblemField(w http.ResponseWriter, status int, title, detail, field string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail, Field: field}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps the client error taxonomy onto problem responses.
// fallback is the user-facing text when err carries none.
func writeError(w http.ResponseWriter, err error, fallback string) {
	msg := domain.UserMessage(err, fallback)
	var ve *domain.ValidationError
	var se *domain.ServiceError
	switch {
	case errors.As(err, &ve):
		writeProblemField(w, http.StatusUnprocessableEntity, "Invalid input", msg, ve.Field)
	case errors.Is(err, domain.ErrNoToken), errors.Is(err, domain.ErrUnauthorized):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", msg)
	case errors.Is(err, domain.ErrForbidden):
		writeProblem(w, http.StatusForbidden, "Forbidden", msg)
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", msg)
	case errors.Is(err, domain.ErrNoResults):
		writeProblem(w, http.StatusNotFound, "No results", msg)
	case errors.Is(err, app.ErrSuperseded):
		writeProblem(w, http.StatusConflict, "Superseded", "A newer search replaced this one.")
	case errors.As(err, &se) && se.Status < 500:
		writeProblem(w, http.StatusBadRequest, "Rejected by travel service", msg)
	case errors.As(err, &se), errors.Is(err, domain.ErrTransport):
		writeProblem(w, http.StatusBadGateway, "Travel service unavailable", msg)
	case errors.Is(err, context.DeadlineExceeded):
		writeProblem(w, http.StatusGatewayTimeout, "Timeout", msg)
	default:
		log.Error().Err(err).Msg("unhandled error")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", msg)
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached writes v with a weak ETag and honours If-None-Match.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON body")
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "request body must be valid JSON")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", name+" must be a positive number")
		return 0, false
	}
	return id, true
}

/********** auth **********/

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if !decode(w, r, &in) {
		return
	}
	s := h.Sessions.Resolve(w, r)
	if err := s.Auth.Login(r.Context(), in.Email, in.Password, in.Remember); err != nil {
		writeError(w, err, "Login failed. Please try again.")
		return
	}
	writeJSON(w, http.StatusOK, domain.AuthStatus{Authenticated: true, Next: domain.ScreenHome})
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Resolve(w, r)
	next, err := s.Auth.Logout(r.Context())
	if err != nil {
		log.Warn().Err(err).Str("session", s.ID).Msg("logout: clearing token failed")
	}
	writeJSON(w, http.StatusOK, domain.AuthStatus{Next: next})
}

func (h *Handlers) status(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Resolve(w, r)
	st, err := s.Auth.CheckStatus(r.Context())
	if err != nil {
		writeError(w, err, "Unable to check your session.")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var in domain.Registration
	if !decode(w, r, &in) {
		return
	}
	s := h.Sessions.Resolve(w, r)
	if err := s.Auth.Register(r.Context(), in); err != nil {
		writeError(w, err, "Registration failed. Please try again.")
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handlers) requestReset(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &in) {
		return
	}
	s := h.Sessions.Resolve(w, r)
	if err := s.Auth.RequestPasswordReset(r.Context(), in.Email); err != nil {
		writeError(w, err, "Unable to send the reset email. Please try again.")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) confirmReset(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Password string `json:"new_password"`
		Confirm  string `json:"confirm_password"`
	}
	if !decode(w, r, &in) {
		return
	}
	s := h.Sessions.Resolve(w, r)
	err := s.Auth.ConfirmPasswordReset(r.Context(), chi.URLParam(r, "uid"), chi.URLParam(r, "token"), in.Password, in.Confirm)
	if err != nil {
		writeError(w, err, "Password reset failed. Please try again.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) profile(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Resolve(w, r)
	p, err := s.Auth.Profile(r.Context())
	if err != nil {
		writeError(w, err, "Unable to load your profile.")
		return
	}
	writeCached(w, r, p)
}

func (h *Handlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in domain.Profile
	if !decode(w, r, &in) {
		return
	}
	s := h.Sessions.Resolve(w, r)
	p, err := s.Auth.UpdateProfile(r.Context(), in)
	if err != nil {
		writeError(w, err, "Unable to save your profile.")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) recentBookings(w http.ResponseWriter, r *http.Request) {
	if h.Journal == nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "booking journal is not configured")
		return
	}
	s := h.Sessions.Resolve(w, r)
	owner, err := s.Auth.Owner(r.Context())
	if err != nil {
		writeError(w, err, "Unable to check your session.")
		return
	}
	limit := 20
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		limit = l
	}
	out, err := h.Journal.RecentBookings(r.Context(), owner, limit)
	if err != nil {
		writeError(w, err, "Unable to load recent bookings.")
		return
	}
	writeJSON(w, http.StatusOK, out)
}
