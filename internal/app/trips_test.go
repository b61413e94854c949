package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"travel_smart/internal/domain"
)

func TestTripList_AttachesSummaries(t *testing.T) {
	api := new(mockTripAPI)
	api.On("ListTrips", mock.Anything, "tok").Return([]domain.Trip{{ID: 1, Name: "Paris"}, {ID: 2, Name: "Rome"}, {ID: 3, Name: "Oslo"}}, nil)
	api.On("TripSummary", mock.Anything, "tok", int64(1)).Return(domain.TripSummary{Budget: 1000, TotalSpent: 250, Remaining: 750}, nil)
	api.On("TripSummary", mock.Anything, "tok", int64(2)).Return(domain.TripSummary{}, errors.New("boom"))
	api.On("TripSummary", mock.Anything, "tok", int64(3)).Return(domain.TripSummary{Budget: 10}, nil)

	svc := NewTripService(api, staticTokens("tok"), 2)
	trips, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, trips, 3)
	require.NotNil(t, trips[0].Summary)
	assert.Equal(t, domain.Amount(750), trips[0].Summary.Remaining)
	assert.Nil(t, trips[1].Summary, "a failed summary does not fail the list")
	require.NotNil(t, trips[2].Summary)
	api.AssertExpectations(t)
}

func TestTripList_SignedOut(t *testing.T) {
	api := new(mockTripAPI)
	_, err := NewTripService(api, staticTokens(""), 0).List(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoToken)
	api.AssertNotCalled(t, "ListTrips", mock.Anything, mock.Anything)
}

func TestTripGet_LoadsAttachments(t *testing.T) {
	api := new(mockTripAPI)
	api.On("GetTrip", mock.Anything, "tok", int64(7)).Return(domain.Trip{ID: 7, Name: "Lisbon"}, nil)
	api.On("ListTripFlights", mock.Anything, "tok", int64(7)).Return([]domain.TripFlight{{ID: 1, Trip: 7}}, nil)
	api.On("ListTripHotels", mock.Anything, "tok", int64(7)).Return([]domain.TripHotel{{ID: 2, Trip: 7}, {ID: 3, Trip: 7}}, nil)

	d, err := NewTripService(api, staticTokens("tok"), 0).Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", d.Trip.Name)
	assert.Len(t, d.Flights, 1)
	assert.Len(t, d.Hotels, 2)
}

func TestTripGet_NotFound(t *testing.T) {
	api := new(mockTripAPI)
	api.On("GetTrip", mock.Anything, "tok", int64(9)).Return(domain.Trip{}, &domain.ServiceError{Status: 404})
	api.On("ListTripFlights", mock.Anything, "tok", int64(9)).Return([]domain.TripFlight{}, nil).Maybe()
	api.On("ListTripHotels", mock.Anything, "tok", int64(9)).Return([]domain.TripHotel{}, nil).Maybe()

	_, err := NewTripService(api, staticTokens("tok"), 0).Get(context.Background(), 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripCreate_DateOrder(t *testing.T) {
	api := new(mockTripAPI)
	svc := NewTripService(api, staticTokens("tok"), 0)

	_, err := svc.Create(context.Background(), domain.Trip{
		Name: "Paris", Destination: "Paris", StartDate: "2099-05-10", EndDate: "2099-05-01",
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "end_date", ve.Field)
	api.AssertNotCalled(t, "CreateTrip", mock.Anything, mock.Anything, mock.Anything)

	api.On("CreateTrip", mock.Anything, "tok", mock.Anything).Return(domain.Trip{ID: 4, Name: "Paris"}, nil)
	trip, err := svc.Create(context.Background(), domain.Trip{
		Name: " Paris ", Destination: "Paris", StartDate: "2099-05-01", EndDate: "2099-05-10", Budget: 900,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), trip.ID)
}

func TestTripUpdate_NeedsID(t *testing.T) {
	_, err := NewTripService(new(mockTripAPI), staticTokens("tok"), 0).Update(context.Background(), domain.Trip{Name: "x"})
	assert.Error(t, err)
}

func TestSaveFlight_UppercasesAirports(t *testing.T) {
	api := new(mockTripAPI)
	api.On("SaveTripFlight", mock.Anything, "tok", mock.MatchedBy(func(f domain.TripFlight) bool {
		return f.DepartureAirport == "LHR" && f.ArrivalAirport == "JFK"
	})).Return(domain.TripFlight{ID: 11}, nil)

	f, err := NewTripService(api, staticTokens("tok"), 0).SaveFlight(context.Background(), domain.TripFlight{
		Trip: 1, Airline: "BA", FlightNumber: "BA117", DepartureAirport: "lhr", ArrivalAirport: " jfk",
		DepartureTime: "2099-05-01T10:00", ArrivalTime: "2099-05-01T13:00",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), f.ID)
}

func TestExpenseSave_Defaults(t *testing.T) {
	api := new(mockExpenseAPI)
	svc := NewExpenseService(api, staticTokens("tok"))
	svc.now = func() time.Time { return time.Date(2099, 5, 2, 15, 0, 0, 0, time.UTC) }

	api.On("SaveExpense", mock.Anything, "tok", mock.MatchedBy(func(e domain.Expense) bool {
		return e.Currency == "USD" && e.Date == "2099-05-02"
	})).Return(domain.Expense{ID: 5}, nil)

	e, err := svc.Save(context.Background(), domain.Expense{Trip: 1, Amount: 12.5, Category: "Food"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), e.ID)
	api.AssertExpectations(t)
}

func TestExpenseSave_Invalid(t *testing.T) {
	api := new(mockExpenseAPI)
	svc := NewExpenseService(api, staticTokens("tok"))

	_, err := svc.Save(context.Background(), domain.Expense{Trip: 1, Amount: 0, Category: "Food"})
	assert.Error(t, err)
	_, err = svc.Save(context.Background(), domain.Expense{Trip: 1, Amount: 3, Category: "Gadgets"})
	assert.Equal(t, "Category must be one of: Flights, Hotels, Food, Transport, Shopping, Misc.", domain.UserMessage(err, ""))
	api.AssertNotCalled(t, "SaveExpense", mock.Anything, mock.Anything, mock.Anything)
}

func TestExpenseDelete(t *testing.T) {
	api := new(mockExpenseAPI)
	api.On("DeleteExpense", mock.Anything, "tok", int64(3)).Return(nil)
	require.NoError(t, NewExpenseService(api, staticTokens("tok")).Delete(context.Background(), 3))
	api.AssertExpectations(t)
}
