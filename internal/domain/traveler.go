package domain

import (
	"strconv"
	"strings"
)

type Name struct {
	Title     string `json:"title,omitempty"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
}

type Phone struct {
	DeviceType         string `json:"deviceType"`
	CountryCallingCode string `json:"countryCallingCode" validate:"required,numeric,max=4"`
	Number             string `json:"number" validate:"required,numeric,min=4,max=15"`
}

type Contact struct {
	EmailAddress string  `json:"emailAddress" validate:"required,email"`
	Phones       []Phone `json:"phones" validate:"min=1,dive"`
}

type Document struct {
	DocumentType     string `json:"documentType"`
	BirthPlace       string `json:"birthPlace,omitempty"`
	IssuanceLocation string `json:"issuanceLocation,omitempty"`
	IssuanceDate     string `json:"issuanceDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Number           string `json:"number" validate:"required,alphanum"`
	ExpiryDate       string `json:"expiryDate" validate:"required,datetime=2006-01-02"`
	IssuanceCountry  string `json:"issuanceCountry" validate:"required,len=2,alpha"`
	ValidityCountry  string `json:"validityCountry,omitempty" validate:"omitempty,len=2,alpha"`
	Nationality      string `json:"nationality" validate:"required,len=2,alpha"`
	Holder           bool   `json:"holder"`
}

// Traveler is one passenger (or hotel guest) on a booking form.
type Traveler struct {
	ID          string     `json:"id"`
	DateOfBirth string     `json:"dateOfBirth,omitempty"`
	Name        Name       `json:"name"`
	Gender      string     `json:"gender,omitempty"`
	Contact     Contact    `json:"contact"`
	Documents   []Document `json:"documents,omitempty"`
}

// NewTraveler returns an empty form for passenger i (zero based).
func NewTraveler(i int) Traveler {
	return Traveler{
		ID: strconv.Itoa(i + 1),
		Contact: Contact{
			Phones: []Phone{{DeviceType: "MOBILE"}},
		},
		Documents: []Document{{DocumentType: "PASSPORT", Holder: true}},
	}
}

// ResizeTravelers returns exactly n forms. Filled-in entries are kept in
// place; missing ones are appended as blanks.
func ResizeTravelers(existing []Traveler, n int) []Traveler {
	if n < 0 {
		n = 0
	}
	out := make([]Traveler, n)
	for i := range out {
		if i < len(existing) {
			out[i] = existing[i]
			out[i].ID = strconv.Itoa(i + 1)
			continue
		}
		out[i] = NewTraveler(i)
	}
	return out
}

// PaymentDetails is card data typed into the booking form. It is never
// stored, logged or journaled.
type PaymentDetails struct {
	HolderName string `json:"holderName,omitempty"`
	CardNumber string `json:"cardNumber" validate:"required,credit_card"`
	ExpiryDate string `json:"expiryDate" validate:"required,yearmonth"`
	CVV        string `json:"cvv" validate:"required,numeric,min=3,max=4"`
	VendorCode string `json:"vendorCode,omitempty" validate:"omitempty,len=2,alpha"`
}

func (p PaymentDetails) IsZero() bool { return p == PaymentDetails{} }

// Last4 is the only part of the card that may be displayed.
func (p PaymentDetails) Last4() string {
	n := strings.ReplaceAll(p.CardNumber, " ", "")
	if len(n) < 4 {
		return ""
	}
	return n[len(n)-4:]
}

func (p PaymentDetails) String() string { return "card ****" + p.Last4() }
