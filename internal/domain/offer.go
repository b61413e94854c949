package domain

import "encoding/json"

// SearchCriteria is one flight search as entered by the user.
type SearchCriteria struct {
	Origin        string `json:"origin" validate:"required,len=3,alpha"`
	Destination   string `json:"destination" validate:"required,len=3,alpha,nefield=Origin"`
	DepartureDate string `json:"departure_date" validate:"required,datetime=2006-01-02"`
	ReturnDate    string `json:"return_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Adults        int    `json:"adults" validate:"min=1,max=9"`
	Children      int    `json:"children" validate:"min=0,max=8"`
	CabinClass    string `json:"cabin_class,omitempty" validate:"omitempty,oneof=ECONOMY PREMIUM_ECONOMY BUSINESS FIRST"`
}

func (c SearchCriteria) Passengers() int { return c.Adults + c.Children }

type Price struct {
	Total    string `json:"total"`
	Base     string `json:"base,omitempty"`
	Currency string `json:"currency"`
}

type Segment struct {
	DepartureAirport  string `json:"departure_airport"`
	DepartureTerminal string `json:"departure_terminal,omitempty"`
	DepartureTime     string `json:"departure_time"`
	ArrivalAirport    string `json:"arrival_airport"`
	ArrivalTerminal   string `json:"arrival_terminal,omitempty"`
	ArrivalTime       string `json:"arrival_time"`
	CarrierCode       string `json:"carrier_code,omitempty"`
	FlightNumber      string `json:"flight_number,omitempty"`
	Aircraft          string `json:"aircraft,omitempty"`
	Duration          string `json:"duration,omitempty"`
}

type Itinerary struct {
	Duration string    `json:"duration,omitempty"`
	Segments []Segment `json:"segments"`
}

// Stops is the number of connections on the itinerary.
func (it Itinerary) Stops() int {
	if len(it.Segments) == 0 {
		return 0
	}
	return len(it.Segments) - 1
}

// FlightOffer is a priced itinerary returned by a search. Raw is the
// service's own representation, sent back untouched when booking.
type FlightOffer struct {
	ID       string          `json:"id"`
	Price    Price           `json:"price"`
	Outbound Itinerary       `json:"outbound"`
	Return   *Itinerary      `json:"return,omitempty"`
	Raw      json.RawMessage `json:"-"`
}

func (o FlightOffer) OfferID() string   { return o.ID }
func (o FlightOffer) OfferPrice() Price { return o.Price }

// Airport is a location suggestion from the airport lookup.
type Airport struct {
	IATACode string `json:"iata_code"`
	Name     string `json:"name"`
	CityName string `json:"city_name,omitempty"`
	Country  string `json:"country_code,omitempty"`
}
