//go:build integration || !unit

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	server "travel_smart/internal/adapters/http_server"
	redisad "travel_smart/internal/adapters/redis"
	"travel_smart/internal/adapters/travelapi"
	"travel_smart/internal/app"
	"travel_smart/internal/domain"
	mysqlrepo "travel_smart/internal/storage/mysql"
)

// ---------- helpers ----------
func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir()

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

// travelService stands in for the remote travel API.
func travelService(t *testing.T) *httptest.Server {
	t.Helper()
	js := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	r := chi.NewRouter()
	r.Post("/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		js(w, map[string]string{"token": "tok-e2e"})
	})
	r.Get("/auth/user/", func(w http.ResponseWriter, r *http.Request) {
		js(w, map[string]any{"pk": 7, "username": "ada", "email": "ada@example.com"})
	})
	r.Get("/flights/search/", func(w http.ResponseWriter, r *http.Request) {
		js(w, map[string]any{"data": []any{map[string]any{
			"price": map[string]any{"total": "210.00", "currency": "EUR"},
			"outbound": map[string]any{"segments": []any{map[string]any{
				"departure": map[string]any{"airport": "LHR"},
				"arrival":   map[string]any{"airport": "CDG"},
			}}},
			"offer": map[string]any{"id": "77"},
		}}})
	})
	r.Post("/flights/payments/tokenize/", func(w http.ResponseWriter, r *http.Request) {
		js(w, map[string]string{"token": "pay-e2e"})
	})
	r.Post("/flights/book/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Token tok-e2e" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		js(w, map[string]any{"booking_reference": "E2E-REF", "status": "CONFIRMED"})
	})
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

type client struct {
	t    *testing.T
	base string
	hc   *http.Client
}

func (c *client) call(method, path string, body any, out any) int {
	c.t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		c.t.Fatalf("request: %v", err)
	}
	res, err := c.hc.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			c.t.Fatalf("decode %s: %v", path, err)
		}
	}
	return res.StatusCode
}

func traveler() domain.Traveler {
	t := domain.NewTraveler(0)
	t.DateOfBirth = "1990-05-01"
	t.Gender = "FEMALE"
	t.Name = domain.Name{FirstName: "Ada", LastName: "Lovelace"}
	t.Contact.EmailAddress = "ada@example.com"
	t.Contact.Phones[0].CountryCallingCode = "44"
	t.Contact.Phones[0].Number = "7700900123"
	t.Documents[0].Number = "X1234567"
	t.Documents[0].ExpiryDate = "2031-01-01"
	t.Documents[0].IssuanceCountry = "GB"
	t.Documents[0].Nationality = "GB"
	return t
}

// ---------- the test ----------
func TestHTTP_EndToEnd_FlightBookingIsJournaled(t *testing.T) {
	db := startMySQL(t)
	journal := mysqlrepo.New(db)
	mr := miniredis.RunT(t)
	rc := redisad.NewClient(mr.Addr(), "", 0)

	api, err := travelapi.New(travelService(t).URL, 100, 5*time.Second)
	if err != nil {
		t.Fatalf("travelapi: %v", err)
	}
	deps := server.Deps{
		API:     api,
		Journal: journal,
		Stores: func(sid, key string) (domain.TokenStore, domain.TokenStore) {
			return redisad.NewTokenStore(rc, "remember:"+key, time.Hour),
				redisad.NewTokenStore(rc, "session:"+sid, time.Minute)
		},
	}
	sessions := server.NewRegistry(time.Hour, time.Hour, func(sid, key string) *server.Session {
		return server.NewSession(sid, key, deps)
	})
	srv := server.New(10 * time.Second)
	srv.MountHandlers(&server.Handlers{
		Sessions:    sessions,
		Airports:    app.NewAirportService(api, redisad.NewCache(rc, "e2e:"), time.Minute),
		HotelBooker: app.NewHotelBooker(api),
		Journal:     journal,
	})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	jar, _ := cookiejar.New(nil)
	c := &client{t: t, base: ts.URL, hc: &http.Client{Jar: jar}}

	if code := c.call(http.MethodPost, "/v1/auth/login", map[string]any{
		"email": "ada@example.com", "password": "Secret#123", "remember": true,
	}, nil); code != http.StatusOK {
		t.Fatalf("login status %d", code)
	}
	var remembered bool
	for _, k := range mr.Keys() {
		if strings.HasPrefix(k, "remember:") && strings.HasSuffix(k, ":token") {
			remembered = true
		}
	}
	if !remembered {
		t.Fatalf("remembered token not in redis; keys=%v", mr.Keys())
	}

	var snap app.Snapshot[domain.SearchCriteria, domain.FlightOffer]
	if code := c.call(http.MethodPost, "/v1/flights/search", domain.SearchCriteria{
		Origin: "LHR", Destination: "CDG", DepartureDate: "2099-02-01", Adults: 1,
	}, &snap); code != http.StatusOK || len(snap.Offers) != 1 {
		t.Fatalf("search: status %d offers %d", code, len(snap.Offers))
	}
	if code := c.call(http.MethodPost, "/v1/flights/select", map[string]any{"offer_id": "77"}, nil); code != http.StatusOK {
		t.Fatalf("select status %d", code)
	}
	if code := c.call(http.MethodPost, "/v1/flights/book", map[string]any{
		"travelers": []domain.Traveler{traveler()},
		"payment": domain.PaymentDetails{
			HolderName: "Ada Lovelace", CardNumber: "4111111111111111", ExpiryDate: "2030-12", CVV: "123",
		},
	}, &snap); code != http.StatusCreated {
		t.Fatalf("book status %d (%s)", code, snap.Error)
	}
	if snap.Confirmation == nil || snap.Confirmation.Reference != "E2E-REF" {
		t.Fatalf("unexpected confirmation: %+v", snap.Confirmation)
	}

	var recent []domain.BookingRecord
	if code := c.call(http.MethodGet, "/v1/bookings/recent?limit=5", nil, &recent); code != http.StatusOK {
		t.Fatalf("recent status %d", code)
	}
	if len(recent) != 1 {
		t.Fatalf("want 1 journaled booking, got %d", len(recent))
	}
	got := recent[0]
	if got.Outcome != domain.OutcomeSucceeded || got.Reference != "E2E-REF" || got.OfferID != "77" || got.Passengers != 1 || got.Owner != "user:7" {
		t.Fatalf("unexpected journal row: %+v", got)
	}

	searches, err := journal.RecentSearches(context.Background(), domain.KindFlight, 5)
	if err != nil {
		t.Fatalf("RecentSearches: %v", err)
	}
	if len(searches) != 1 || searches[0].Results != 1 {
		t.Fatalf("unexpected searches: %+v", searches)
	}
}
