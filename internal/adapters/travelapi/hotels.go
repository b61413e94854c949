package travelapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"travel_smart/internal/domain"
)

func (c *Client) ListHotels(ctx context.Context, token string, hc domain.HotelSearchCriteria) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("city_code", hc.CityCode)
	if len(hc.Ratings) > 0 {
		rs := make([]string, len(hc.Ratings))
		for i, r := range hc.Ratings {
			rs[i] = strconv.Itoa(r)
		}
		q.Set("ratings", strings.Join(rs, ","))
	}
	if len(hc.Amenities) > 0 {
		q.Set("amenities", strings.Join(hc.Amenities, ","))
	}
	var out struct {
		Hotels []map[string]any `json:"hotels"`
	}
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "hotels.list", path: "/hotels/list/", query: q, token: token}, &out)
	return out.Hotels, err
}

func (c *Client) HotelOffers(ctx context.Context, token string, hotelIDs []string, hc domain.HotelSearchCriteria) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("hotel_ids", strings.Join(hotelIDs, ","))
	q.Set("check_in_date", hc.CheckIn)
	q.Set("check_out_date", hc.CheckOut)
	q.Set("adults", strconv.Itoa(hc.Adults))
	q.Set("rooms", strconv.Itoa(hc.Rooms))
	var out struct {
		Offers []map[string]any `json:"offers"`
	}
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "hotels.offers", path: "/hotels/offers/", query: q, token: token}, &out)
	return out.Offers, err
}

func (c *Client) HotelOffer(ctx context.Context, token, offerID string) (map[string]any, error) {
	var out struct {
		Offer map[string]any `json:"offer"`
	}
	err := c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "hotels.offer",
		path:     fmt.Sprintf("/hotels/offers/%s/", url.PathEscape(offerID)),
		token:    token,
	}, &out)
	return out.Offer, err
}

type guest struct {
	Name    domain.Name `json:"name"`
	Contact struct {
		Phone string `json:"phone"`
		Email string `json:"email"`
	} `json:"contact"`
}

type cardPayment struct {
	Method string `json:"method"`
	Card   struct {
		VendorCode string `json:"vendorCode"`
		CardNumber string `json:"cardNumber"`
		ExpiryDate string `json:"expiryDate"`
	} `json:"card"`
}

// BookHotel posts guests and card details for offerID. The service answers {"booking": {...}}.
func (c *Client) BookHotel(ctx context.Context, token, offerID string, guests []domain.Traveler, p domain.PaymentDetails) (map[string]any, error) {
	gs := make([]guest, len(guests))
	for i, t := range guests {
		gs[i].Name = t.Name
		gs[i].Contact.Email = t.Contact.EmailAddress
		if len(t.Contact.Phones) > 0 {
			ph := t.Contact.Phones[0]
			gs[i].Contact.Phone = "+" + ph.CountryCallingCode + ph.Number
		}
	}
	var pay cardPayment
	pay.Method = "creditCard"
	pay.Card.VendorCode = p.VendorCode
	pay.Card.CardNumber = strings.ReplaceAll(p.CardNumber, " ", "")
	pay.Card.ExpiryDate = p.ExpiryDate

	body := struct {
		OfferID  string        `json:"offer_id"`
		Guests   []guest       `json:"guests"`
		Payments []cardPayment `json:"payments"`
	}{offerID, gs, []cardPayment{pay}}

	var out struct {
		Booking map[string]any `json:"booking"`
	}
	err := c.do(ctx, call{method: http.MethodPost, endpoint: "hotels.book", path: "/hotels/book/", token: token, body: body}, &out)
	return out.Booking, err
}

func (c *Client) HotelBookings(ctx context.Context, token string) ([]domain.HotelBooking, error) {
	var out []domain.HotelBooking
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "hotels.bookings", path: "/hotels/bookings/", token: token}, &out)
	return out, err
}
