package domain

// HotelSearchCriteria drives the two-step hotel search (list by city, then offers).
// Without dates only the first step runs.
type HotelSearchCriteria struct {
	CityCode  string   `json:"city_code" validate:"required,len=3,alpha"`
	CheckIn   string   `json:"check_in_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CheckOut  string   `json:"check_out_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Adults    int      `json:"adults" validate:"min=1,max=9"`
	Rooms     int      `json:"rooms" validate:"min=1,max=9"`
	Ratings   []int    `json:"ratings,omitempty" validate:"dive,min=1,max=5"`
	Amenities []string `json:"amenities,omitempty"`
}

func (c HotelSearchCriteria) Passengers() int { return c.Adults }

func (c HotelSearchCriteria) HasDates() bool { return c.CheckIn != "" && c.CheckOut != "" }

type Hotel struct {
	ID          string   `json:"hotel_id"`
	Name        string   `json:"name"`
	ChainCode   string   `json:"chain_code,omitempty"`
	IATACode    string   `json:"iata_code,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	CountryCode string   `json:"country_code,omitempty"`
}

type RoomOffer struct {
	ID                 string `json:"offer_id"`
	RoomType           string `json:"room_type,omitempty"`
	Description        string `json:"description,omitempty"`
	Price              Price  `json:"price"`
	CancellationPolicy string `json:"cancellation_policy,omitempty"`
	PaymentPolicy      string `json:"payment_policy,omitempty"`
}

// HotelOffer is one bookable room at one hotel; each is a single result row.
type HotelOffer struct {
	Hotel Hotel     `json:"hotel"`
	Room  RoomOffer `json:"room"`
}

func (o HotelOffer) OfferID() string   { return o.Room.ID }
func (o HotelOffer) OfferPrice() Price { return o.Room.Price }

// HotelBooking is a past booking as listed by the service.
type HotelBooking struct {
	BookingID              string `json:"booking_id"`
	ProviderConfirmationID string `json:"provider_confirmation_id,omitempty"`
	HotelID                string `json:"hotel_id"`
	HotelName              string `json:"hotel_name"`
	CheckIn                string `json:"check_in_date"`
	CheckOut               string `json:"check_out_date"`
	Guests                 int    `json:"number_of_guests"`
	RoomType               string `json:"room_type,omitempty"`
	Status                 string `json:"status"`
}
