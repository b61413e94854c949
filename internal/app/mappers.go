package app

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"travel_smart/internal/domain"
)

// The service returns flight offers in two shapes: a formatted row
// {price, outbound, return, offer} and the raw provider offer
// {id, price, itineraries}. Hotel rows come formatted by the service but
// field names still drift between versions. All lookups go through alias
// lists so both shapes map to the same domain types.

/********** alias registries (single source of truth) **********/

var segmentAliases = map[string][]string{
	"dep_airport":  {"departure.airport", "departure.iataCode", "departure_airport", "origin"},
	"dep_terminal": {"departure.terminal"},
	"dep_time":     {"departure.time", "departure.at", "departure_time"},
	"arr_airport":  {"arrival.airport", "arrival.iataCode", "arrival_airport", "destination"},
	"arr_terminal": {"arrival.terminal"},
	"arr_time":     {"arrival.time", "arrival.at", "arrival_time"},
	"carrier":      {"carrierCode", "carrier_code", "operating.carrierCode", "airline"},
	"number":       {"flightNumber", "number", "flight_number"},
	"aircraft":     {"aircraft.code", "aircraft"},
	"duration":     {"duration"},
}

var priceAliases = map[string][]string{
	"total":    {"price.total", "price.grandTotal", "total_price", "price"},
	"base":     {"price.base"},
	"currency": {"price.currency", "currency"},
}

var hotelAliases = map[string][]string{
	"id":      {"hotel_id", "hotelId", "hotel.hotelId", "id"},
	"name":    {"name", "hotel.name", "hotel_name"},
	"chain":   {"chain_code", "chainCode", "hotel.chainCode"},
	"iata":    {"iata_code", "iataCode", "hotel.iataCode", "cityCode"},
	"country": {"location.country_code", "location.countryCode", "address.countryCode", "country_code"},
}

var roomAliases = map[string][]string{
	"id":          {"offer_id", "id"},
	"room_type":   {"room_type", "room.typeEstimated.category", "room.type"},
	"description": {"description", "room.description.text", "description.text"},
	"payment":     {"payment_policy", "policies.paymentType"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the scalar at path as a string, or "".
func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	}
	return ""
}

// firstAlias: first non-empty string for a named alias set.
func firstAlias(m map[string]any, aliases map[string][]string, key string) string {
	for _, p := range aliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func lookupMap(m map[string]any, path string) map[string]any {
	v, _ := lookupAny(m, path).(map[string]any)
	return v
}

func lookupMaps(m map[string]any, path string) []map[string]any {
	raw, ok := lookupAny(m, path).([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, it := range raw {
		if mm, ok := it.(map[string]any); ok {
			out = append(out, mm)
		}
	}
	return out
}

/********** flight offer mapper **********/

func mapFlightOffers(rows []map[string]any) []domain.FlightOffer {
	out := make([]domain.FlightOffer, 0, len(rows))
	for i, r := range rows {
		out = append(out, mapFlightOffer(i, r))
	}
	return out
}

func mapFlightOffer(i int, r map[string]any) domain.FlightOffer {
	// provider offer: nested under "offer" in the formatted shape, the row itself otherwise
	provider := lookupMap(r, "offer")
	if provider == nil {
		provider = r
	}

	o := domain.FlightOffer{
		ID:    firstNonEmpty(lookupStr(provider, "id"), lookupStr(r, "id"), strconv.Itoa(i+1)),
		Price: mapPrice(r),
	}
	if o.Price.Total == "" {
		o.Price = mapPrice(provider)
	}

	if ob := lookupMap(r, "outbound"); ob != nil {
		o.Outbound = mapItinerary(ob)
		if rt := lookupMap(r, "return"); rt != nil {
			it := mapItinerary(rt)
			o.Return = &it
		}
	} else {
		its := lookupMaps(provider, "itineraries")
		if len(its) > 0 {
			o.Outbound = mapItinerary(its[0])
		}
		if len(its) > 1 {
			it := mapItinerary(its[1])
			o.Return = &it
		}
	}

	raw, err := json.Marshal(provider)
	if err != nil {
		log.Error().Err(err).Str("context", "mapFlightOffer").Msg("marshal provider offer failed")
	}
	o.Raw = raw
	return o
}

func mapPrice(m map[string]any) domain.Price {
	p := domain.Price{
		Total:    firstAlias(m, priceAliases, "total"),
		Base:     firstAlias(m, priceAliases, "base"),
		Currency: firstAlias(m, priceAliases, "currency"),
	}
	if p.Total != "" && p.Currency == "" {
		p.Currency = "USD"
	}
	return p
}

func mapItinerary(m map[string]any) domain.Itinerary {
	segs := lookupMaps(m, "segments")
	it := domain.Itinerary{
		Duration: lookupStr(m, "duration"),
		Segments: make([]domain.Segment, 0, len(segs)),
	}
	for _, s := range segs {
		it.Segments = append(it.Segments, domain.Segment{
			DepartureAirport:  firstAlias(s, segmentAliases, "dep_airport"),
			DepartureTerminal: firstAlias(s, segmentAliases, "dep_terminal"),
			DepartureTime:     firstAlias(s, segmentAliases, "dep_time"),
			ArrivalAirport:    firstAlias(s, segmentAliases, "arr_airport"),
			ArrivalTerminal:   firstAlias(s, segmentAliases, "arr_terminal"),
			ArrivalTime:       firstAlias(s, segmentAliases, "arr_time"),
			CarrierCode:       firstAlias(s, segmentAliases, "carrier"),
			FlightNumber:      firstAlias(s, segmentAliases, "number"),
			Aircraft:          firstAlias(s, segmentAliases, "aircraft"),
			Duration:          firstAlias(s, segmentAliases, "duration"),
		})
	}
	return it
}

/********** airport mapper **********/

func mapAirports(rows []map[string]any) []domain.Airport {
	out := make([]domain.Airport, 0, len(rows))
	for _, r := range rows {
		a := domain.Airport{
			IATACode: firstNonEmpty(lookupStr(r, "iataCode"), lookupStr(r, "iata_code")),
			Name:     firstNonEmpty(lookupStr(r, "name"), lookupStr(r, "detailedName")),
			CityName: firstNonEmpty(lookupStr(r, "address.cityName"), lookupStr(r, "city_name")),
			Country:  firstNonEmpty(lookupStr(r, "address.countryCode"), lookupStr(r, "country_code")),
		}
		if a.IATACode == "" {
			continue
		}
		out = append(out, a)
	}
	return out
}

/********** hotel mappers **********/

func mapHotel(r map[string]any) domain.Hotel {
	return domain.Hotel{
		ID:          firstAlias(r, hotelAliases, "id"),
		Name:        firstAlias(r, hotelAliases, "name"),
		ChainCode:   firstAlias(r, hotelAliases, "chain"),
		IATACode:    firstAlias(r, hotelAliases, "iata"),
		Rating:      getFloatFlexible(r, "rating", "hotel.rating"),
		Latitude:    getFloatFlexible(r, "location.latitude", "latitude", "geoCode.latitude"),
		Longitude:   getFloatFlexible(r, "location.longitude", "longitude", "geoCode.longitude"),
		CountryCode: firstAlias(r, hotelAliases, "country"),
	}
}

// mapHotelOffers flattens {hotel, offers:[...]} rows into one row per room.
// listed supplies names for hotels the offers payload leaves bare.
func mapHotelOffers(rows []map[string]any, listed map[string]domain.Hotel) []domain.HotelOffer {
	var out []domain.HotelOffer
	for _, r := range rows {
		h := mapHotel(r)
		if base, ok := listed[h.ID]; ok {
			if h.Name == "" {
				h.Name = base.Name
			}
			if h.ChainCode == "" {
				h.ChainCode = base.ChainCode
			}
			if h.Latitude == nil {
				h.Latitude, h.Longitude = base.Latitude, base.Longitude
			}
		}
		for _, ro := range lookupMaps(r, "offers") {
			room := domain.RoomOffer{
				ID:                 firstAlias(ro, roomAliases, "id"),
				RoomType:           firstAlias(ro, roomAliases, "room_type"),
				Description:        firstAlias(ro, roomAliases, "description"),
				Price:              mapPrice(ro),
				CancellationPolicy: cancellationText(ro),
				PaymentPolicy:      firstAlias(ro, roomAliases, "payment"),
			}
			if room.ID == "" {
				continue
			}
			out = append(out, domain.HotelOffer{Hotel: h, Room: room})
		}
	}
	return out
}

// cancellationText accepts a plain string or a list of provider policies.
func cancellationText(ro map[string]any) string {
	if s := lookupStr(ro, "cancellation_policy"); s != "" {
		return s
	}
	var parts []string
	for _, p := range append(lookupMaps(ro, "cancellation_policy"), lookupMaps(ro, "policies.cancellations")...) {
		switch {
		case lookupStr(p, "description.text") != "":
			parts = append(parts, lookupStr(p, "description.text"))
		case lookupStr(p, "deadline") != "":
			parts = append(parts, "Free cancellation until "+lookupStr(p, "deadline"))
		}
	}
	return strings.Join(parts, "; ")
}

/********** confirmation mapper **********/

func mapConfirmation(m map[string]any) domain.Confirmation {
	b := m
	if inner := lookupMap(m, "booking"); inner != nil {
		b = inner
	}
	return domain.Confirmation{
		Reference: firstNonEmpty(
			lookupStr(b, "booking_reference"), lookupStr(b, "booking_id"),
			lookupStr(b, "reference"), lookupStr(b, "id"),
		),
		ProviderConfirmationID: firstNonEmpty(lookupStr(b, "providerConfirmationId"), lookupStr(b, "provider_confirmation_id")),
		Status:                 firstNonEmpty(lookupStr(b, "status"), lookupStr(b, "bookingStatus")),
		Raw:                    m,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
