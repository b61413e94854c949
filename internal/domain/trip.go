package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Amount is a money value. The service sends decimals either as JSON
// numbers or as strings ("1250.00"); both decode.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*a = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*a = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*a = Amount(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*a = Amount(f)
	return nil
}

func (a Amount) String() string { return strconv.FormatFloat(float64(a), 'f', 2, 64) }

type Trip struct {
	ID          int64        `json:"id,omitempty"`
	Name        string       `json:"name" validate:"required,max=100"`
	Destination string       `json:"destination" validate:"required,max=100"`
	StartDate   string       `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string       `json:"end_date" validate:"required,datetime=2006-01-02"`
	Budget      Amount       `json:"budget" validate:"min=0"`
	Notes       string       `json:"notes,omitempty"`
	Summary     *TripSummary `json:"summary,omitempty"`
}

type TripFlight struct {
	ID               int64  `json:"id,omitempty"`
	Trip             int64  `json:"trip" validate:"required"`
	Airline          string `json:"airline" validate:"required"`
	FlightNumber     string `json:"flight_number" validate:"required"`
	DepartureAirport string `json:"departure_airport" validate:"required"`
	ArrivalAirport   string `json:"arrival_airport" validate:"required"`
	DepartureTime    string `json:"departure_time" validate:"required"`
	ArrivalTime      string `json:"arrival_time" validate:"required"`
	Notes            string `json:"notes,omitempty"`
}

type TripHotel struct {
	ID       int64  `json:"id,omitempty"`
	Trip     int64  `json:"trip" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Location string `json:"location" validate:"required"`
	CheckIn  string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02"`
	Notes    string `json:"notes,omitempty"`
}

// TripDetail is a trip with everything attached to it.
type TripDetail struct {
	Trip    Trip         `json:"trip"`
	Flights []TripFlight `json:"flights"`
	Hotels  []TripHotel  `json:"hotels"`
}

var ExpenseCategories = []string{"Flights", "Hotels", "Food", "Transport", "Shopping", "Misc"}

type Expense struct {
	ID       int64  `json:"id,omitempty"`
	Trip     int64  `json:"trip" validate:"required"`
	Title    string `json:"title,omitempty" validate:"max=100"`
	Amount   Amount `json:"amount" validate:"gt=0"`
	Currency string `json:"currency" validate:"required,len=3,alpha"`
	Category string `json:"category" validate:"required,oneof=Flights Hotels Food Transport Shopping Misc"`
	Note     string `json:"note,omitempty"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
}

type TripSummary struct {
	Trip              string            `json:"trip,omitempty"`
	Budget            Amount            `json:"budget"`
	TotalSpent        Amount            `json:"total_spent"`
	Remaining         Amount            `json:"remaining"`
	CategoryBreakdown map[string]Amount `json:"category_breakdown"`
}
