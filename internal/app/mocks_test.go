package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"travel_smart/internal/domain"
)

type mockFlightAPI struct{ mock.Mock }

func (m *mockFlightAPI) SearchFlights(ctx context.Context, token string, c domain.SearchCriteria) ([]map[string]any, error) {
	args := m.Called(ctx, token, c)
	rows, _ := args.Get(0).([]map[string]any)
	return rows, args.Error(1)
}

func (m *mockFlightAPI) SearchAirports(ctx context.Context, token, keyword string) ([]map[string]any, error) {
	args := m.Called(ctx, token, keyword)
	rows, _ := args.Get(0).([]map[string]any)
	return rows, args.Error(1)
}

func (m *mockFlightAPI) TokenizePayment(ctx context.Context, token string, p domain.PaymentDetails) (string, error) {
	args := m.Called(ctx, token, p)
	return args.String(0), args.Error(1)
}

func (m *mockFlightAPI) BookFlight(ctx context.Context, token string, offer json.RawMessage, travelers []domain.Traveler, paymentToken string) (map[string]any, error) {
	args := m.Called(ctx, token, offer, travelers, paymentToken)
	out, _ := args.Get(0).(map[string]any)
	return out, args.Error(1)
}

type mockHotelAPI struct{ mock.Mock }

func (m *mockHotelAPI) ListHotels(ctx context.Context, token string, c domain.HotelSearchCriteria) ([]map[string]any, error) {
	args := m.Called(ctx, token, c)
	rows, _ := args.Get(0).([]map[string]any)
	return rows, args.Error(1)
}

func (m *mockHotelAPI) HotelOffers(ctx context.Context, token string, ids []string, c domain.HotelSearchCriteria) ([]map[string]any, error) {
	args := m.Called(ctx, token, ids, c)
	rows, _ := args.Get(0).([]map[string]any)
	return rows, args.Error(1)
}

func (m *mockHotelAPI) HotelOffer(ctx context.Context, token, offerID string) (map[string]any, error) {
	args := m.Called(ctx, token, offerID)
	out, _ := args.Get(0).(map[string]any)
	return out, args.Error(1)
}

func (m *mockHotelAPI) BookHotel(ctx context.Context, token, offerID string, guests []domain.Traveler, p domain.PaymentDetails) (map[string]any, error) {
	args := m.Called(ctx, token, offerID, guests, p)
	out, _ := args.Get(0).(map[string]any)
	return out, args.Error(1)
}

func (m *mockHotelAPI) HotelBookings(ctx context.Context, token string) ([]domain.HotelBooking, error) {
	args := m.Called(ctx, token)
	out, _ := args.Get(0).([]domain.HotelBooking)
	return out, args.Error(1)
}

type mockAuthAPI struct{ mock.Mock }

func (m *mockAuthAPI) Login(ctx context.Context, c domain.Credentials) (string, error) {
	args := m.Called(ctx, c)
	return args.String(0), args.Error(1)
}

func (m *mockAuthAPI) Register(ctx context.Context, r domain.Registration) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockAuthAPI) Status(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *mockAuthAPI) Profile(ctx context.Context, token string) (domain.Profile, error) {
	args := m.Called(ctx, token)
	p, _ := args.Get(0).(domain.Profile)
	return p, args.Error(1)
}

func (m *mockAuthAPI) UpdateProfile(ctx context.Context, token string, p domain.Profile) (domain.Profile, error) {
	args := m.Called(ctx, token, p)
	out, _ := args.Get(0).(domain.Profile)
	return out, args.Error(1)
}

func (m *mockAuthAPI) RequestPasswordReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAuthAPI) ConfirmPasswordReset(ctx context.Context, uid, resetToken, password string) error {
	return m.Called(ctx, uid, resetToken, password).Error(0)
}

type mockTripAPI struct{ mock.Mock }

func (m *mockTripAPI) ListTrips(ctx context.Context, token string) ([]domain.Trip, error) {
	args := m.Called(ctx, token)
	out, _ := args.Get(0).([]domain.Trip)
	return out, args.Error(1)
}

func (m *mockTripAPI) GetTrip(ctx context.Context, token string, id int64) (domain.Trip, error) {
	args := m.Called(ctx, token, id)
	out, _ := args.Get(0).(domain.Trip)
	return out, args.Error(1)
}

func (m *mockTripAPI) CreateTrip(ctx context.Context, token string, t domain.Trip) (domain.Trip, error) {
	args := m.Called(ctx, token, t)
	out, _ := args.Get(0).(domain.Trip)
	return out, args.Error(1)
}

func (m *mockTripAPI) UpdateTrip(ctx context.Context, token string, t domain.Trip) (domain.Trip, error) {
	args := m.Called(ctx, token, t)
	out, _ := args.Get(0).(domain.Trip)
	return out, args.Error(1)
}

func (m *mockTripAPI) DeleteTrip(ctx context.Context, token string, id int64) error {
	return m.Called(ctx, token, id).Error(0)
}

func (m *mockTripAPI) TripSummary(ctx context.Context, token string, id int64) (domain.TripSummary, error) {
	args := m.Called(ctx, token, id)
	out, _ := args.Get(0).(domain.TripSummary)
	return out, args.Error(1)
}

func (m *mockTripAPI) ListTripFlights(ctx context.Context, token string, tripID int64) ([]domain.TripFlight, error) {
	args := m.Called(ctx, token, tripID)
	out, _ := args.Get(0).([]domain.TripFlight)
	return out, args.Error(1)
}

func (m *mockTripAPI) SaveTripFlight(ctx context.Context, token string, f domain.TripFlight) (domain.TripFlight, error) {
	args := m.Called(ctx, token, f)
	out, _ := args.Get(0).(domain.TripFlight)
	return out, args.Error(1)
}

func (m *mockTripAPI) DeleteTripFlight(ctx context.Context, token string, id int64) error {
	return m.Called(ctx, token, id).Error(0)
}

func (m *mockTripAPI) ListTripHotels(ctx context.Context, token string, tripID int64) ([]domain.TripHotel, error) {
	args := m.Called(ctx, token, tripID)
	out, _ := args.Get(0).([]domain.TripHotel)
	return out, args.Error(1)
}

func (m *mockTripAPI) SaveTripHotel(ctx context.Context, token string, h domain.TripHotel) (domain.TripHotel, error) {
	args := m.Called(ctx, token, h)
	out, _ := args.Get(0).(domain.TripHotel)
	return out, args.Error(1)
}

func (m *mockTripAPI) DeleteTripHotel(ctx context.Context, token string, id int64) error {
	return m.Called(ctx, token, id).Error(0)
}

type mockExpenseAPI struct{ mock.Mock }

func (m *mockExpenseAPI) ListExpenses(ctx context.Context, token string, tripID int64) ([]domain.Expense, error) {
	args := m.Called(ctx, token, tripID)
	out, _ := args.Get(0).([]domain.Expense)
	return out, args.Error(1)
}

func (m *mockExpenseAPI) SaveExpense(ctx context.Context, token string, e domain.Expense) (domain.Expense, error) {
	args := m.Called(ctx, token, e)
	out, _ := args.Get(0).(domain.Expense)
	return out, args.Error(1)
}

func (m *mockExpenseAPI) DeleteExpense(ctx context.Context, token string, id int64) error {
	return m.Called(ctx, token, id).Error(0)
}

// memStore is a TokenStore that counts clears.
type memStore struct {
	mu     sync.Mutex
	tok    string
	clears int
}

func (s *memStore) Load(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tok, nil
}

func (s *memStore) Save(_ context.Context, tok string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = tok
	return nil
}

func (s *memStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = ""
	s.clears++
	return nil
}

type staticTokens string

func (t staticTokens) Token(context.Context) (string, error) { return string(t), nil }

type fakeJournal struct {
	mu       sync.Mutex
	searches []domain.SearchRecord
	bookings []domain.BookingRecord
}

func (j *fakeJournal) RecordSearch(_ context.Context, r domain.SearchRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.searches = append(j.searches, r)
	return nil
}

func (j *fakeJournal) RecordBooking(_ context.Context, r domain.BookingRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, b := range j.bookings {
		if r.ID != "" && b.ID == r.ID {
			return domain.ErrDuplicate
		}
	}
	j.bookings = append(j.bookings, r)
	return nil
}

func (j *fakeJournal) RecentBookings(_ context.Context, owner string, limit int) ([]domain.BookingRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []domain.BookingRecord
	for _, b := range j.bookings {
		if b.Owner == owner && len(out) < limit {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []domain.BookingEvent
}

func (p *fakeEvents) PublishBooking(_ context.Context, e domain.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

type mapCache struct {
	mu sync.Mutex
	m  map[string][]byte
}

func (c *mapCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.m[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *mapCache) Set(_ context.Context, key string, v any, _ time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m == nil {
		c.m = map[string][]byte{}
	}
	c.m[key] = b
	return nil
}

func (c *mapCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
	return nil
}

/********** fixtures **********/

func flightRow(id, total string) map[string]any {
	return map[string]any{
		"price": map[string]any{"total": total, "currency": "EUR"},
		"outbound": map[string]any{
			"duration": "PT2H",
			"segments": []any{map[string]any{
				"departure":    map[string]any{"airport": "LHR", "time": "2099-01-10T08:00:00"},
				"arrival":      map[string]any{"airport": "CDG", "time": "2099-01-10T10:00:00"},
				"carrierCode":  "AF",
				"flightNumber": "1081",
			}},
		},
		"offer": map[string]any{"id": id, "type": "flight-offer"},
	}
}

func validTraveler(i int) domain.Traveler {
	t := domain.NewTraveler(i)
	t.DateOfBirth = "1990-05-01"
	t.Gender = "FEMALE"
	t.Name = domain.Name{FirstName: "Ada", LastName: "Lovelace"}
	t.Contact.EmailAddress = "ada@example.com"
	t.Contact.Phones[0].CountryCallingCode = "44"
	t.Contact.Phones[0].Number = "7700900123"
	t.Documents[0].Number = "X1234567"
	t.Documents[0].ExpiryDate = "2031-01-01"
	t.Documents[0].IssuanceCountry = "GB"
	t.Documents[0].Nationality = "GB"
	return t
}

func validCard() domain.PaymentDetails {
	return domain.PaymentDetails{
		HolderName: "Ada Lovelace",
		CardNumber: "4111111111111111",
		ExpiryDate: "2030-12",
		CVV:        "123",
		VendorCode: "VI",
	}
}
