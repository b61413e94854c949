package travelapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"travel_smart/internal/domain"
)

func (c *Client) ListTrips(ctx context.Context, token string) ([]domain.Trip, error) {
	var out []domain.Trip
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "trips.list", path: "/api/trips/", token: token}, &out)
	return out, err
}

func (c *Client) GetTrip(ctx context.Context, token string, id int64) (domain.Trip, error) {
	var out domain.Trip
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "trips.get", path: fmt.Sprintf("/api/trips/%d/", id), token: token}, &out)
	return out, err
}

func (c *Client) CreateTrip(ctx context.Context, token string, t domain.Trip) (domain.Trip, error) {
	t.Summary = nil
	var out domain.Trip
	err := c.do(ctx, call{method: http.MethodPost, endpoint: "trips.create", path: "/api/trips/", token: token, body: t}, &out)
	return out, err
}

func (c *Client) UpdateTrip(ctx context.Context, token string, t domain.Trip) (domain.Trip, error) {
	t.Summary = nil
	var out domain.Trip
	err := c.do(ctx, call{method: http.MethodPut, endpoint: "trips.update", path: fmt.Sprintf("/api/trips/%d/", t.ID), token: token, body: t}, &out)
	return out, err
}

func (c *Client) DeleteTrip(ctx context.Context, token string, id int64) error {
	return c.do(ctx, call{method: http.MethodDelete, endpoint: "trips.delete", path: fmt.Sprintf("/api/trips/%d/", id), token: token}, nil)
}

func (c *Client) TripSummary(ctx context.Context, token string, id int64) (domain.TripSummary, error) {
	var out domain.TripSummary
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "trips.summary", path: fmt.Sprintf("/expenses/trips/%d/summary/", id), token: token}, &out)
	return out, err
}

func tripQuery(tripID int64) url.Values {
	q := url.Values{}
	if tripID > 0 {
		q.Set("trip", strconv.FormatInt(tripID, 10))
	}
	return q
}

func (c *Client) ListTripFlights(ctx context.Context, token string, tripID int64) ([]domain.TripFlight, error) {
	var out []domain.TripFlight
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "trip_flights.list", path: "/api/flights/", query: tripQuery(tripID), token: token}, &out)
	return out, err
}

// SaveTripFlight creates f, or replaces it when f.ID is set.
func (c *Client) SaveTripFlight(ctx context.Context, token string, f domain.TripFlight) (domain.TripFlight, error) {
	rq := call{method: http.MethodPost, endpoint: "trip_flights.create", path: "/api/flights/", token: token, body: f}
	if f.ID > 0 {
		rq.method, rq.endpoint, rq.path = http.MethodPut, "trip_flights.update", fmt.Sprintf("/api/flights/%d/", f.ID)
	}
	var out domain.TripFlight
	err := c.do(ctx, rq, &out)
	return out, err
}

func (c *Client) DeleteTripFlight(ctx context.Context, token string, id int64) error {
	return c.do(ctx, call{method: http.MethodDelete, endpoint: "trip_flights.delete", path: fmt.Sprintf("/api/flights/%d/", id), token: token}, nil)
}

func (c *Client) ListTripHotels(ctx context.Context, token string, tripID int64) ([]domain.TripHotel, error) {
	var out []domain.TripHotel
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "trip_hotels.list", path: "/api/hotels/", query: tripQuery(tripID), token: token}, &out)
	return out, err
}

func (c *Client) SaveTripHotel(ctx context.Context, token string, h domain.TripHotel) (domain.TripHotel, error) {
	rq := call{method: http.MethodPost, endpoint: "trip_hotels.create", path: "/api/hotels/", token: token, body: h}
	if h.ID > 0 {
		rq.method, rq.endpoint, rq.path = http.MethodPut, "trip_hotels.update", fmt.Sprintf("/api/hotels/%d/", h.ID)
	}
	var out domain.TripHotel
	err := c.do(ctx, rq, &out)
	return out, err
}

func (c *Client) DeleteTripHotel(ctx context.Context, token string, id int64) error {
	return c.do(ctx, call{method: http.MethodDelete, endpoint: "trip_hotels.delete", path: fmt.Sprintf("/api/hotels/%d/", id), token: token}, nil)
}

func (c *Client) ListExpenses(ctx context.Context, token string, tripID int64) ([]domain.Expense, error) {
	var out []domain.Expense
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "expenses.list", path: "/expenses/expenses/", query: tripQuery(tripID), token: token}, &out)
	return out, err
}

func (c *Client) SaveExpense(ctx context.Context, token string, e domain.Expense) (domain.Expense, error) {
	rq := call{method: http.MethodPost, endpoint: "expenses.create", path: "/expenses/expenses/", token: token, body: e}
	if e.ID > 0 {
		rq.method, rq.endpoint, rq.path = http.MethodPut, "expenses.update", fmt.Sprintf("/expenses/expenses/%d/", e.ID)
	}
	var out domain.Expense
	err := c.do(ctx, rq, &out)
	return out, err
}

func (c *Client) DeleteExpense(ctx context.Context, token string, id int64) error {
	return c.do(ctx, call{method: http.MethodDelete, endpoint: "expenses.delete", path: fmt.Sprintf("/expenses/expenses/%d/", id), token: token}, nil)
}
