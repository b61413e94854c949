package domain

import "time"

type BookingKind string

const (
	KindFlight BookingKind = "flight"
	KindHotel  BookingKind = "hotel"
)

// Confirmation is what the service hands back for a successful booking.
type Confirmation struct {
	Reference              string         `json:"reference"`
	ProviderConfirmationID string         `json:"provider_confirmation_id,omitempty"`
	Status                 string         `json:"status,omitempty"`
	Raw                    map[string]any `json:"raw,omitempty"`
}

const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// BookingRecord is a local journal entry for one submit attempt.
type BookingRecord struct {
	ID         string      `json:"id"`
	Owner      string      `json:"owner,omitempty"`
	Kind       BookingKind `json:"kind"`
	OfferID    string      `json:"offer_id"`
	Passengers int         `json:"passengers"`
	Total      string      `json:"total,omitempty"`
	Currency   string      `json:"currency,omitempty"`
	Outcome    string      `json:"outcome"`
	Reference  string      `json:"reference,omitempty"`
	Message    string      `json:"message,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// SearchRecord is a local journal entry for one search.
type SearchRecord struct {
	ID        string      `json:"id"`
	Kind      BookingKind `json:"kind"`
	Query     string      `json:"query"`
	Results   int         `json:"results"`
	Message   string      `json:"message,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// BookingEvent is published after every submit attempt. ID matches the
// journal record written for the same attempt.
type BookingEvent struct {
	ID         string      `json:"id"`
	Owner      string      `json:"owner,omitempty"`
	Type       string      `json:"type"`
	Kind       BookingKind `json:"kind"`
	OfferID    string      `json:"offer_id"`
	Passengers int         `json:"passengers"`
	Total      string      `json:"total,omitempty"`
	Currency   string      `json:"currency,omitempty"`
	Reference  string      `json:"reference,omitempty"`
	Status     string      `json:"status"`
	Message    string      `json:"message,omitempty"`
	At         time.Time   `json:"at"`
}

// Record is the journal entry equivalent of e.
func (e BookingEvent) Record() BookingRecord {
	return BookingRecord{
		ID:         e.ID,
		Owner:      e.Owner,
		Kind:       e.Kind,
		OfferID:    e.OfferID,
		Passengers: e.Passengers,
		Total:      e.Total,
		Currency:   e.Currency,
		Outcome:    e.Status,
		Reference:  e.Reference,
		Message:    e.Message,
		CreatedAt:  e.At,
	}
}
