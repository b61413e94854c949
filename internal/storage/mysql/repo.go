package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"

	"travel_smart/internal/adapters/observability"
	"travel_smart/internal/domain"
)

const maxRecent = 200

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// isDuplicate reports a primary key collision (ER_DUP_ENTRY).
func isDuplicate(err error) bool {
	var me *gomysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

func clampLimit(n int) int {
	if n <= 0 || n > maxRecent {
		return maxRecent
	}
	return n
}

// Journal records searches and booking attempts made through this client.
// Card data is never part of a record.
type Journal struct{ db *sql.DB }

func New(db *sql.DB) *Journal { return &Journal{db: db} }

func (j *Journal) RecordSearch(ctx context.Context, r domain.SearchRecord) error {
	_, err := j.db.ExecContext(ctx, insertSearchSQL,
		r.ID,
		string(r.Kind),
		r.Query,
		r.Results,
		valStr(r.Message),
		r.CreatedAt.UTC(),
	)
	observability.ObserveJournal("mysql", err)
	return err
}

func (j *Journal) RecordBooking(ctx context.Context, r domain.BookingRecord) error {
	_, err := j.db.ExecContext(ctx, insertBookingSQL,
		r.ID,
		r.Owner,
		string(r.Kind),
		r.OfferID,
		r.Passengers,
		valStr(r.Total),
		valStr(r.Currency),
		r.Outcome,
		valStr(r.Reference),
		valStr(r.Message),
		r.CreatedAt.UTC(),
	)
	observability.ObserveJournal("mysql", err)
	if isDuplicate(err) {
		return fmt.Errorf("booking %s: %w", r.ID, domain.ErrDuplicate)
	}
	return err
}

// RecentBookings returns owner's newest attempts first. Rows without an
// owner are never listed.
func (j *Journal) RecentBookings(ctx context.Context, owner string, limit int) ([]domain.BookingRecord, error) {
	if owner == "" {
		return []domain.BookingRecord{}, nil
	}
	rows, err := j.db.QueryContext(ctx, recentBookingsSQL, owner, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.BookingRecord{}
	for rows.Next() {
		var r domain.BookingRecord
		var kind string
		var total, currency, ref, msg sql.NullString
		var at time.Time
		if err := rows.Scan(&r.ID, &r.Owner, &kind, &r.OfferID, &r.Passengers, &total, &currency, &r.Outcome, &ref, &msg, &at); err != nil {
			return nil, err
		}
		r.Kind = domain.BookingKind(kind)
		r.Total, r.Currency = total.String, currency.String
		r.Reference, r.Message = ref.String, msg.String
		r.CreatedAt = at.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (j *Journal) RecentSearches(ctx context.Context, kind domain.BookingKind, limit int) ([]domain.SearchRecord, error) {
	rows, err := j.db.QueryContext(ctx, recentSearchesSQL, string(kind), clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.SearchRecord{}
	for rows.Next() {
		var r domain.SearchRecord
		var k string
		var msg sql.NullString
		var at time.Time
		if err := rows.Scan(&r.ID, &k, &r.Query, &r.Results, &msg, &at); err != nil {
			return nil, err
		}
		r.Kind = domain.BookingKind(k)
		r.Message = msg.String
		r.CreatedAt = at.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (j *Journal) Ping(ctx context.Context) error { return j.db.PingContext(ctx) }
