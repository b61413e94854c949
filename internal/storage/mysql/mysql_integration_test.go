//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"travel_smart/internal/domain"
	mysqlrepo "travel_smart/internal/storage/mysql"
)

func migrationsDir(t *testing.T) string {
	t.Helper()
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	// package dir is internal/storage/mysql
	return filepath.Join("..", "..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir(t)

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// startMySQL runs a throwaway MySQL and returns a migrated connection.
func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker not reachable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=travel",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/travel?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func TestJournal_MySQL_RecordAndList(t *testing.T) {
	db := startMySQL(t)
	j := mysqlrepo.New(db)
	ctx := context.Background()
	base := time.Date(2099, 1, 1, 12, 0, 0, 0, time.UTC)

	if err := j.RecordSearch(ctx, domain.SearchRecord{
		ID: "s-1", Kind: domain.KindFlight, Query: "LHR-CDG 2099-01-10", Results: 12, CreatedAt: base,
	}); err != nil {
		t.Fatalf("RecordSearch: %v", err)
	}
	if err := j.RecordSearch(ctx, domain.SearchRecord{
		ID: "s-2", Kind: domain.KindHotel, Query: "PAR", Message: "Error fetching hotel data. Please try again.", CreatedAt: base,
	}); err != nil {
		t.Fatalf("RecordSearch: %v", err)
	}

	attempts := []domain.BookingRecord{
		{ID: "b-1", Owner: "user:1", Kind: domain.KindFlight, OfferID: "1", Passengers: 2, Total: "120.50", Currency: "EUR",
			Outcome: domain.OutcomeFailed, Message: "Booking failed. Please try again.", CreatedAt: base},
		{ID: "b-2", Owner: "user:1", Kind: domain.KindFlight, OfferID: "1", Passengers: 2, Total: "120.50", Currency: "EUR",
			Outcome: domain.OutcomeSucceeded, Reference: "ABC123", CreatedAt: base.Add(time.Minute)},
		{ID: "b-3", Owner: "user:2", Kind: domain.KindHotel, OfferID: "R9", Passengers: 1, Total: "300.00", Currency: "EUR",
			Outcome: domain.OutcomeSucceeded, Reference: "OTHER", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "b-4", Kind: domain.KindHotel, OfferID: "R9", Passengers: 1,
			Outcome: domain.OutcomeFailed, CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, a := range attempts {
		if err := j.RecordBooking(ctx, a); err != nil {
			t.Fatalf("RecordBooking %s: %v", a.ID, err)
		}
	}

	got, err := j.RecentBookings(ctx, "user:1", 10)
	if err != nil {
		t.Fatalf("RecentBookings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 bookings for user:1, got %d", len(got))
	}
	if got[0].Owner != "user:1" || got[1].Owner != "user:1" {
		t.Fatalf("rows of another owner listed: %+v", got)
	}
	if none, err := j.RecentBookings(ctx, "", 10); err != nil || len(none) != 0 {
		t.Fatalf("rows without an owner must stay unlisted: %v %+v", err, none)
	}
	if got[0].ID != "b-2" || got[0].Reference != "ABC123" || !got[0].CreatedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected newest booking: %+v", got[0])
	}
	if got[1].Outcome != domain.OutcomeFailed || got[1].Reference != "" {
		t.Fatalf("unexpected failed booking: %+v", got[1])
	}

	hs, err := j.RecentSearches(ctx, domain.KindHotel, 5)
	if err != nil {
		t.Fatalf("RecentSearches: %v", err)
	}
	if len(hs) != 1 || hs[0].Results != 0 || hs[0].Message == "" {
		t.Fatalf("unexpected hotel searches: %+v", hs)
	}

	if err := j.RecordBooking(ctx, attempts[0]); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("duplicate booking id should be rejected with ErrDuplicate, got %v", err)
	}
}
