package travelapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"travel_smart/internal/domain"
)

// SearchFlights returns offer rows as sent by the service. The service
// answers with either a bare list or {"data": [...]}.
func (c *Client) SearchFlights(ctx context.Context, token string, sc domain.SearchCriteria) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("origin", sc.Origin)
	q.Set("destination", sc.Destination)
	q.Set("departure_date", sc.DepartureDate)
	if sc.ReturnDate != "" {
		q.Set("return_date", sc.ReturnDate)
	}
	q.Set("adults", strconv.Itoa(sc.Adults))
	q.Set("kids", strconv.Itoa(sc.Children))
	if sc.CabinClass != "" {
		q.Set("cabin_class", sc.CabinClass)
	}
	var raw json.RawMessage
	if err := c.do(ctx, call{method: http.MethodGet, endpoint: "flights.search", path: "/flights/search/", query: q, token: token}, &raw); err != nil {
		return nil, err
	}
	return rows(raw, "data", "results", "offers")
}

func (c *Client) SearchAirports(ctx context.Context, token, keyword string) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("keyword", keyword)
	var raw json.RawMessage
	if err := c.do(ctx, call{method: http.MethodGet, endpoint: "flights.airports", path: "/flights/airports/", query: q, token: token}, &raw); err != nil {
		return nil, err
	}
	return rows(raw, "data", "results")
}

// TokenizePayment exchanges card data for a single-use payment token.
func (c *Client) TokenizePayment(ctx context.Context, token string, p domain.PaymentDetails) (string, error) {
	body := struct {
		CardNumber string `json:"cardNumber"`
		ExpiryDate string `json:"expiryDate"`
		CVV        string `json:"cvv"`
	}{p.CardNumber, p.ExpiryDate, p.CVV}
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, call{method: http.MethodPost, endpoint: "flights.tokenize", path: "/flights/payments/tokenize/", token: token, body: body}, &out)
	if err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", &domain.ServiceError{Status: http.StatusOK, Message: "Payment could not be processed."}
	}
	return out.Token, nil
}

func (c *Client) BookFlight(ctx context.Context, token string, offer json.RawMessage, travelers []domain.Traveler, paymentToken string) (map[string]any, error) {
	body := struct {
		Flight       json.RawMessage   `json:"flight"`
		Traveler     []domain.Traveler `json:"traveler"`
		PaymentToken string            `json:"paymentToken,omitempty"`
	}{offer, travelers, paymentToken}
	var out map[string]any
	err := c.do(ctx, call{method: http.MethodPost, endpoint: "flights.book", path: "/flights/book/", token: token, body: body}, &out)
	return out, err
}

// rows accepts a JSON array of objects, or an object wrapping one under any of keys.
func rows(raw json.RawMessage, keys ...string) ([]map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			if err := json.Unmarshal(v, &list); err != nil {
				return nil, err
			}
			return list, nil
		}
	}
	return nil, nil
}
