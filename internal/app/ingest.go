package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"travel_smart/internal/domain"
)

// BookingIngestor copies published booking events into the journal. Events
// are delivered at least once, so an attempt already on file is not an error.
type BookingIngestor struct {
	journal domain.Journal
}

func NewBookingIngestor(j domain.Journal) *BookingIngestor {
	return &BookingIngestor{journal: j}
}

func (in *BookingIngestor) Ingest(ctx context.Context, e domain.BookingEvent) error {
	if e.ID == "" || e.OfferID == "" {
		return fmt.Errorf("booking event without id or offer: %w", errMalformedEvent)
	}
	if e.Status != domain.OutcomeSucceeded && e.Status != domain.OutcomeFailed {
		return fmt.Errorf("booking event %s has status %q: %w", e.ID, e.Status, errMalformedEvent)
	}
	err := in.journal.RecordBooking(ctx, e.Record())
	if errors.Is(err, domain.ErrDuplicate) {
		log.Debug().Str("id", e.ID).Msg("booking already journaled")
		return nil
	}
	if err != nil {
		return fmt.Errorf("journal booking %s: %w", e.ID, err)
	}
	return nil
}

var errMalformedEvent = errors.New("malformed booking event")

// IsMalformed reports whether err means the event can never be ingested
// and should be skipped rather than retried.
func IsMalformed(err error) bool { return errors.Is(err, errMalformedEvent) }
