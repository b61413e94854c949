package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"travel_smart/internal/app"
	"travel_smart/internal/domain"
)

// workflowRoutes serves one booking workflow (flights or hotels) of the
// caller's session.
type workflowRoutes[C app.Criteria, O app.Offer] struct {
	pick func(*Session) *app.Workflow[C, O]
}

var (
	flightRoutes = workflowRoutes[domain.SearchCriteria, domain.FlightOffer]{
		pick: func(s *Session) *app.FlightWorkflow { return s.Flights },
	}
	hotelRoutes = workflowRoutes[domain.HotelSearchCriteria, domain.HotelOffer]{
		pick: func(s *Session) *app.HotelWorkflow { return s.Hotels },
	}
)

func (wr workflowRoutes[C, O]) mount(r chi.Router, prefix string, h *Handlers, extra func(chi.Router)) {
	r.Route(prefix, func(r chi.Router) {
		r.Post("/search", wr.search(h))
		r.Get("/workflow", wr.snapshot(h))
		r.Post("/select", wr.selectOffer(h))
		r.Delete("/select", wr.closeBooking(h))
		r.Put("/travelers/{i}", wr.traveler(h))
		r.Post("/book", wr.book(h))
		r.Post("/reopen", wr.reopen(h))
		if extra != nil {
			extra(r)
		}
	})
}

func (wr workflowRoutes[C, O]) search(h *Handlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c C
		if !decode(w, r, &c) {
			return
		}
		wf := wr.pick(h.Sessions.Resolve(w, r))
		if _, err := wf.Search(r.Context(), c); err != nil {
			writeError(w, err, wf.Snapshot().Error)
			return
		}
		writeJSON(w, http.StatusOK, wf.Snapshot())
	}
}

func (wr workflowRoutes[C, O]) snapshot(h *Handlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeCached(w, r, wr.pick(h.Sessions.Resolve(w, r)).Snapshot())
	}
}

type selectRequest struct {
	Index   *int   `json:"index,omitempty"`
	OfferID string `json:"offer_id,omitempty"`
}

func (wr workflowRoutes[C, O]) selectOffer(h *Handlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in selectRequest
		if !decode(w, r, &in) {
			return
		}
		wf := wr.pick(h.Sessions.Resolve(w, r))
		var err error
		switch {
		case in.OfferID != "":
			err = wf.SelectOfferID(in.OfferID)
		case in.Index != nil:
			err = wf.SelectOffer(*in.Index)
		default:
			err = domain.Invalid("offer", "Please choose one of the listed offers.")
		}
		if err != nil {
			writeError(w, err, "")
			return
		}
		writeJSON(w, http.StatusOK, wf.Snapshot())
	}
}

func (wr workflowRoutes[C, O]) closeBooking(h *Handlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wf := wr.pick(h.Sessions.Resolve(w, r))
		wf.CloseBooking()
		writeJSON(w, http.StatusOK, wf.Snapshot())
	}
}

func (wr workflowRoutes[C, O]) traveler(h *Handlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		i, err := strconv.Atoi(chi.URLParam(r, "i"))
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid index", "traveler index must be a number")
			return
		}
		var t domain.Traveler
		if !decode(w, r, &t) {
			return
		}
		wf := wr.pick(h.Sessions.Resolve(w, r))
		if err := wf.SetTraveler(i, t); err != nil {
			writeError(w, err, "")
			return
		}
		writeJSON(w, http.StatusOK, wf.Snapshot())
	}
}

type bookRequest struct {
	Travelers []domain.Traveler     `json:"travelers,omitempty"`
	Payment   domain.PaymentDetails `json:"payment"`
}

func (wr workflowRoutes[C, O]) book(h *Handlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in bookRequest
		if !decode(w, r, &in) {
			return
		}
		wf := wr.pick(h.Sessions.Resolve(w, r))
		for i, t := range in.Travelers {
			if err := wf.SetTraveler(i, t); err != nil {
				writeError(w, err, "")
				return
			}
		}
		if err := wf.SetPayment(in.Payment); err != nil {
			writeError(w, err, "")
			return
		}
		if _, err := wf.SubmitBooking(r.Context()); err != nil {
			writeError(w, err, wf.Snapshot().Error)
			return
		}
		writeJSON(w, http.StatusCreated, wf.Snapshot())
	}
}

func (wr workflowRoutes[C, O]) reopen(h *Handlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wf := wr.pick(h.Sessions.Resolve(w, r))
		if err := wf.Reopen(); err != nil {
			writeError(w, err, "")
			return
		}
		writeJSON(w, http.StatusOK, wf.Snapshot())
	}
}

/********** lookups outside the workflow **********/

func (h *Handlers) airports(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Resolve(w, r)
	tok, err := s.Auth.Token(r.Context())
	if err != nil {
		writeError(w, err, "")
		return
	}
	out, err := h.Airports.Lookup(r.Context(), tok, r.URL.Query().Get("keyword"))
	if err != nil {
		writeError(w, err, "Unable to load airports.")
		return
	}
	if out == nil {
		out = []domain.Airport{}
	}
	writeCached(w, r, out)
}

func (h *Handlers) hotelOffer(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Resolve(w, r)
	tok, err := s.Auth.Token(r.Context())
	if err != nil {
		writeError(w, err, "")
		return
	}
	out, err := h.HotelBooker.OfferDetails(r.Context(), tok, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "Unable to load this offer.")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) hotelBookings(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Resolve(w, r)
	tok, err := s.Auth.Token(r.Context())
	if err != nil {
		writeError(w, err, "")
		return
	}
	out, err := h.HotelBooker.Bookings(r.Context(), tok)
	if err != nil {
		writeError(w, err, "Unable to load your bookings.")
		return
	}
	if out == nil {
		out = []domain.HotelBooking{}
	}
	writeJSON(w, http.StatusOK, out)
}
