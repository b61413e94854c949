package app

import (
	"context"
	"strings"
	"time"

	"travel_smart/internal/domain"
)

// AirportService backs the origin/destination autocomplete. Suggestions are
// reference data, so they are cached (cache may be nil).
type AirportService struct {
	api      domain.FlightAPI
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewAirportService(api domain.FlightAPI, c domain.Cache, ttl time.Duration) *AirportService {
	return &AirportService{api: api, cache: c, cacheTTL: ttl}
}

// Lookup returns airports matching keyword. Keywords shorter than two
// characters return nothing without calling the service.
func (s *AirportService) Lookup(ctx context.Context, token, keyword string) ([]domain.Airport, error) {
	keyword = strings.TrimSpace(keyword)
	if len([]rune(keyword)) < 2 {
		return nil, nil
	}
	key := strings.ToLower(keyword)
	var out []domain.Airport
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}
	rows, err := s.api.SearchAirports(ctx, token, keyword)
	if err != nil {
		return nil, err
	}
	out = mapAirports(rows)
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, out, s.cacheTTL)
	}
	return out, nil
}
