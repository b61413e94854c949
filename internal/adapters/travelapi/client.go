// internal/adapters/travelapi/client.go
package travelapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"travel_smart/internal/adapters/observability"
	"travel_smart/internal/domain"
)

const service = "travel"

// Client talks to the Travel Smart REST service. Calls are rate limited
// client-side and never retried: a failure is reported to the caller as is.
type Client struct {
	base   string
	scheme string
	hc     *http.Client
	rl     *rate.Limiter
}

type Option func(*Client)

// WithAuthScheme sets the Authorization scheme ("Token" by default, "Bearer" for JWT backends).
func WithAuthScheme(s string) Option {
	return func(c *Client) {
		if s != "" {
			c.scheme = s
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

func New(base string, rps int, timeout time.Duration, opts ...Option) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("travel API base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("travel API base URL: %w", err)
	}
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	// no cookie jar: one client serves every user of the process
	c := &Client{
		base:   strings.TrimRight(base, "/"),
		scheme: "Token",
		hc:     &http.Client{Timeout: timeout},
		rl:     rate.NewLimiter(rate.Limit(rps), rps),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// call describes one request. endpoint is the metrics/log label.
type call struct {
	method      string
	endpoint    string
	path        string
	query       url.Values
	token       string
	body        any
	header      http.Header
	cookies     []*http.Cookie
	keepCookies *[]*http.Cookie // receives the response cookies when set
}

func (c *Client) do(ctx context.Context, rq call, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	u := c.base + rq.path
	if len(rq.query) > 0 {
		u += "?" + rq.query.Encode()
	}

	var body io.Reader
	if rq.body != nil {
		b, err := json.Marshal(rq.body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", rq.endpoint, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, rq.method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "travel-smart/1.0")
	if rq.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if rq.token != "" {
		req.Header.Set("Authorization", c.scheme+" "+rq.token)
	}
	for k, vs := range rq.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for _, ck := range rq.cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(service, rq.endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Debug().Err(err).Str("endpoint", rq.endpoint).Msg("travel api unreachable")
		return fmt.Errorf("%w: %s: %w", domain.ErrTransport, rq.endpoint, err)
	}
	defer resp.Body.Close()
	if rq.keepCookies != nil {
		*rq.keepCookies = resp.Cookies()
	}
	observability.ObserveExternal(service, rq.endpoint, resp.StatusCode, time.Since(start))
	log.Debug().
		Str("method", rq.method).
		Str("endpoint", rq.endpoint).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("travel_api")

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", rq.endpoint, err)
		}
		return nil

	case http.StatusNoContent:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil

	default:
		// read a small error body for the user-facing message
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &domain.ServiceError{Status: resp.StatusCode, Message: errorMessage(b)}
	}
}

// errorMessage pulls a readable message out of an error body:
// {"detail": ...}, {"error": ...}, {"message": ...}, or per-field lists.
func errorMessage(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		s := string(b)
		if strings.HasPrefix(s, "<") {
			return "" // html error page
		}
		return s
	}
	switch t := v.(type) {
	case map[string]any:
		for _, k := range []string{"detail", "error", "message", "non_field_errors"} {
			if s := flatten(t[k]); s != "" {
				return s
			}
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var parts []string
		for _, k := range keys {
			if s := flatten(t[k]); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return flatten(t)
	}
}

func flatten(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		var parts []string
		for _, it := range t {
			if s := flatten(it); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		return errorMessage(mustJSON(t))
	}
	return ""
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
