package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Outbound ports onto the travel service. token is the caller's auth token
// and may be empty for anonymous calls.

type AuthAPI interface {
	Login(ctx context.Context, c Credentials) (string, error)
	Register(ctx context.Context, r Registration) error
	Status(ctx context.Context, token string) (bool, error)
	Profile(ctx context.Context, token string) (Profile, error)
	UpdateProfile(ctx context.Context, token string, p Profile) (Profile, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, uid, resetToken, password string) error
}

// FlightAPI returns raw payloads; mapping to domain types happens in app.
type FlightAPI interface {
	SearchFlights(ctx context.Context, token string, c SearchCriteria) ([]map[string]any, error)
	SearchAirports(ctx context.Context, token, keyword string) ([]map[string]any, error)
	TokenizePayment(ctx context.Context, token string, p PaymentDetails) (string, error)
	BookFlight(ctx context.Context, token string, offer json.RawMessage, travelers []Traveler, paymentToken string) (map[string]any, error)
}

type HotelAPI interface {
	ListHotels(ctx context.Context, token string, c HotelSearchCriteria) ([]map[string]any, error)
	HotelOffers(ctx context.Context, token string, hotelIDs []string, c HotelSearchCriteria) ([]map[string]any, error)
	HotelOffer(ctx context.Context, token, offerID string) (map[string]any, error)
	BookHotel(ctx context.Context, token, offerID string, guests []Traveler, p PaymentDetails) (map[string]any, error)
	HotelBookings(ctx context.Context, token string) ([]HotelBooking, error)
}

type TripAPI interface {
	ListTrips(ctx context.Context, token string) ([]Trip, error)
	GetTrip(ctx context.Context, token string, id int64) (Trip, error)
	CreateTrip(ctx context.Context, token string, t Trip) (Trip, error)
	UpdateTrip(ctx context.Context, token string, t Trip) (Trip, error)
	DeleteTrip(ctx context.Context, token string, id int64) error
	TripSummary(ctx context.Context, token string, id int64) (TripSummary, error)

	ListTripFlights(ctx context.Context, token string, tripID int64) ([]TripFlight, error)
	SaveTripFlight(ctx context.Context, token string, f TripFlight) (TripFlight, error)
	DeleteTripFlight(ctx context.Context, token string, id int64) error
	ListTripHotels(ctx context.Context, token string, tripID int64) ([]TripHotel, error)
	SaveTripHotel(ctx context.Context, token string, h TripHotel) (TripHotel, error)
	DeleteTripHotel(ctx context.Context, token string, id int64) error
}

type ExpenseAPI interface {
	ListExpenses(ctx context.Context, token string, tripID int64) ([]Expense, error)
	SaveExpense(ctx context.Context, token string, e Expense) (Expense, error)
	DeleteExpense(ctx context.Context, token string, id int64) error
}

// TokenStore holds one auth token. Load returns "" when nothing is stored.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type Journal interface {
	RecordSearch(ctx context.Context, r SearchRecord) error
	RecordBooking(ctx context.Context, r BookingRecord) error
	// RecentBookings lists one owner's attempts, newest first.
	RecentBookings(ctx context.Context, owner string, limit int) ([]BookingRecord, error)
}

type EventPublisher interface {
	PublishBooking(ctx context.Context, e BookingEvent) error
}
