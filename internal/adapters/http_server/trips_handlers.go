package httpserver

import (
	"net/http"
	"strconv"

	"travel_smart/internal/domain"
)

func (h *Handlers) listTrips(w http.ResponseWriter, r *http.Request) {
	out, err := h.Sessions.Resolve(w, r).Trips.List(r.Context())
	if err != nil {
		writeError(w, err, "Unable to load your trips.")
		return
	}
	if out == nil {
		out = []domain.Trip{}
	}
	writeCached(w, r, out)
}

func (h *Handlers) getTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	d, err := h.Sessions.Resolve(w, r).Trips.Get(r.Context(), id)
	if err != nil {
		writeError(w, err, "Unable to load this trip.")
		return
	}
	writeCached(w, r, d)
}

func (h *Handlers) createTrip(w http.ResponseWriter, r *http.Request) {
	var in domain.Trip
	if !decode(w, r, &in) {
		return
	}
	t, err := h.Sessions.Resolve(w, r).Trips.Create(r.Context(), in)
	if err != nil {
		writeError(w, err, "Unable to create the trip.")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handlers) updateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in domain.Trip
	if !decode(w, r, &in) {
		return
	}
	in.ID = id
	t, err := h.Sessions.Resolve(w, r).Trips.Update(r.Context(), in)
	if err != nil {
		writeError(w, err, "Unable to save the trip.")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) deleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Sessions.Resolve(w, r).Trips.Delete(r.Context(), id); err != nil {
		writeError(w, err, "Unable to delete the trip.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) tripSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	sum, err := h.Sessions.Resolve(w, r).Trips.Summary(r.Context(), id)
	if err != nil {
		writeError(w, err, "Unable to load the trip summary.")
		return
	}
	writeCached(w, r, sum)
}

// saveTripFlight serves both POST /trips/{id}/flights and PUT /trips/{id}/flights/{fid}.
func (h *Handlers) saveTripFlight(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in domain.TripFlight
	if !decode(w, r, &in) {
		return
	}
	in.Trip, in.ID = tripID, 0
	if r.Method == http.MethodPut {
		if in.ID, ok = pathID(w, r, "fid"); !ok {
			return
		}
	}
	f, err := h.Sessions.Resolve(w, r).Trips.SaveFlight(r.Context(), in)
	if err != nil {
		writeError(w, err, "Unable to save the flight.")
		return
	}
	writeJSON(w, savedStatus(r), f)
}

func (h *Handlers) deleteTripFlight(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "fid")
	if !ok {
		return
	}
	if err := h.Sessions.Resolve(w, r).Trips.DeleteFlight(r.Context(), id); err != nil {
		writeError(w, err, "Unable to delete the flight.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) saveTripHotel(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in domain.TripHotel
	if !decode(w, r, &in) {
		return
	}
	in.Trip, in.ID = tripID, 0
	if r.Method == http.MethodPut {
		if in.ID, ok = pathID(w, r, "hid"); !ok {
			return
		}
	}
	out, err := h.Sessions.Resolve(w, r).Trips.SaveHotel(r.Context(), in)
	if err != nil {
		writeError(w, err, "Unable to save the hotel.")
		return
	}
	writeJSON(w, savedStatus(r), out)
}

func (h *Handlers) deleteTripHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "hid")
	if !ok {
		return
	}
	if err := h.Sessions.Resolve(w, r).Trips.DeleteHotel(r.Context(), id); err != nil {
		writeError(w, err, "Unable to delete the hotel.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

/********** expenses **********/

func (h *Handlers) listExpenses(w http.ResponseWriter, r *http.Request) {
	var tripID int64
	if ts := r.URL.Query().Get("trip"); ts != "" {
		id, err := strconv.ParseInt(ts, 10, 64)
		if err != nil || id <= 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid trip", "trip must be a positive number")
			return
		}
		tripID = id
	}
	out, err := h.Sessions.Resolve(w, r).Expenses.List(r.Context(), tripID)
	if err != nil {
		writeError(w, err, "Unable to load expenses.")
		return
	}
	if out == nil {
		out = []domain.Expense{}
	}
	writeCached(w, r, out)
}

func (h *Handlers) saveExpense(w http.ResponseWriter, r *http.Request) {
	var in domain.Expense
	if !decode(w, r, &in) {
		return
	}
	in.ID = 0
	if r.Method == http.MethodPut {
		var ok bool
		if in.ID, ok = pathID(w, r, "id"); !ok {
			return
		}
	}
	e, err := h.Sessions.Resolve(w, r).Expenses.Save(r.Context(), in)
	if err != nil {
		writeError(w, err, "Unable to save the expense.")
		return
	}
	writeJSON(w, savedStatus(r), e)
}

func (h *Handlers) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Sessions.Resolve(w, r).Expenses.Delete(r.Context(), id); err != nil {
		writeError(w, err, "Unable to delete the expense.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func savedStatus(r *http.Request) int {
	if r.Method == http.MethodPost {
		return http.StatusCreated
	}
	return http.StatusOK
}
