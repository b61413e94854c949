package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"travel_smart/internal/domain"
)

// maxHotelsPerSearch caps the hotel ids sent to the offers lookup.
const maxHotelsPerSearch = 20

// HotelBooker runs the two-step hotel search and books a room with card details inline.
type HotelBooker struct {
	api   domain.HotelAPI
	today func() time.Time
}

func NewHotelBooker(api domain.HotelAPI) *HotelBooker {
	return &HotelBooker{api: api, today: time.Now}
}

type HotelWorkflow = Workflow[domain.HotelSearchCriteria, domain.HotelOffer]

func NewHotelWorkflow(api domain.HotelAPI, opts ...WorkflowOption) *HotelWorkflow {
	return NewWorkflow[domain.HotelSearchCriteria, domain.HotelOffer](NewHotelBooker(api), opts...)
}

func (b *HotelBooker) Kind() domain.BookingKind { return domain.KindHotel }

func (b *HotelBooker) Prepare(c domain.HotelSearchCriteria) (domain.HotelSearchCriteria, error) {
	c.CityCode = strings.ToUpper(strings.TrimSpace(c.CityCode))
	if c.Rooms == 0 {
		c.Rooms = 1
	}
	if c.Adults == 0 {
		c.Adults = 1
	}
	if err := check(c); err != nil {
		return c, err
	}
	switch {
	case c.CheckIn == "" && c.CheckOut == "":
		return c, nil
	case c.CheckIn == "":
		return c, domain.Invalid("check_in_date", "Check-in date is required with a check-out date.")
	case c.CheckOut == "":
		return c, domain.Invalid("check_out_date", "Check-out date is required with a check-in date.")
	}
	in, _ := time.Parse(time.DateOnly, c.CheckIn)
	out, _ := time.Parse(time.DateOnly, c.CheckOut)
	if in.Before(midnight(b.today())) {
		return c, domain.Invalid("check_in_date", "Check-in date cannot be in the past.")
	}
	if !out.After(in) {
		return c, domain.Invalid("check_out_date", "Check-out must be after check-in.")
	}
	return c, nil
}

// Search lists the city's hotels and, when dates are given, their room offers.
// Without dates each hotel comes back as a row with no room, which cannot be booked.
// An empty hotel list is domain.ErrNoResults.
func (b *HotelBooker) Search(ctx context.Context, token string, c domain.HotelSearchCriteria) ([]domain.HotelOffer, error) {
	rows, err := b.api.ListHotels(ctx, token, c)
	if err != nil {
		return nil, err
	}
	listed := make(map[string]domain.Hotel, len(rows))
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		h := mapHotel(r)
		if h.ID == "" {
			continue
		}
		if _, dup := listed[h.ID]; dup {
			continue
		}
		listed[h.ID] = h
		if len(ids) < maxHotelsPerSearch {
			ids = append(ids, h.ID)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("hotels in %s: %w", c.CityCode, domain.ErrNoResults)
	}
	if !c.HasDates() {
		out := make([]domain.HotelOffer, 0, len(ids))
		for _, id := range ids {
			out = append(out, domain.HotelOffer{Hotel: listed[id]})
		}
		return out, nil
	}
	offers, err := b.api.HotelOffers(ctx, token, ids, c)
	if err != nil {
		return nil, err
	}
	return mapHotelOffers(offers, listed), nil
}

func (b *HotelBooker) CheckForm(guests []domain.Traveler, p domain.PaymentDetails) error {
	for _, g := range guests {
		if err := checkGuest(g); err != nil {
			return err
		}
	}
	if err := check(p); err != nil {
		return err
	}
	return checkVar("vendorCode", p.VendorCode, "required,len=2,alpha")
}

func (b *HotelBooker) Book(ctx context.Context, token string, o domain.HotelOffer, guests []domain.Traveler, p domain.PaymentDetails) (domain.Confirmation, error) {
	resp, err := b.api.BookHotel(ctx, token, o.Room.ID, guests, p)
	if err != nil {
		return domain.Confirmation{}, err
	}
	return mapConfirmation(resp), nil
}

// OfferDetails re-reads one room offer, typically to confirm its price before booking.
func (b *HotelBooker) OfferDetails(ctx context.Context, token, offerID string) (map[string]any, error) {
	if strings.TrimSpace(offerID) == "" {
		return nil, domain.Invalid("offer_id", "Offer id is required.")
	}
	return b.api.HotelOffer(ctx, token, offerID)
}

func (b *HotelBooker) Bookings(ctx context.Context, token string) ([]domain.HotelBooking, error) {
	if token == "" {
		return nil, domain.ErrNoToken
	}
	return b.api.HotelBookings(ctx, token)
}
