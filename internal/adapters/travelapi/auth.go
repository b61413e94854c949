package travelapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"travel_smart/internal/domain"
)

func (c *Client) Login(ctx context.Context, cr domain.Credentials) (string, error) {
	var out struct {
		Token string `json:"token"`
		Key   string `json:"key"`
	}
	err := c.do(ctx, call{method: http.MethodPost, endpoint: "auth.login", path: "/auth/login/", body: cr}, &out)
	if err != nil {
		return "", err
	}
	if out.Token == "" {
		out.Token = out.Key
	}
	if out.Token == "" {
		return "", &domain.ServiceError{Status: http.StatusOK, Message: "Login response did not include a token."}
	}
	return out.Token, nil
}

func (c *Client) Register(ctx context.Context, r domain.Registration) error {
	return c.do(ctx, call{method: http.MethodPost, endpoint: "auth.registration", path: "/auth/registration/", body: r}, nil)
}

func (c *Client) Status(ctx context.Context, token string) (bool, error) {
	var out struct {
		IsAuthenticated bool `json:"is_authenticated"`
	}
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "auth.status", path: "/auth/status/", token: token}, &out)
	return out.IsAuthenticated, err
}

func (c *Client) Profile(ctx context.Context, token string) (domain.Profile, error) {
	var p domain.Profile
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "auth.user", path: "/auth/user/", token: token}, &p)
	return p, err
}

func (c *Client) UpdateProfile(ctx context.Context, token string, p domain.Profile) (domain.Profile, error) {
	var out domain.Profile
	err := c.do(ctx, call{method: http.MethodPut, endpoint: "settings.user", path: "/settings/user/", token: token, body: p}, &out)
	return out, err
}

// csrfToken is the token from the csrf endpoint plus the cookie it is bound
// to. Both go back on the one request that needs them.
type csrfToken struct {
	token   string
	cookies []*http.Cookie
}

func (c *Client) csrf(ctx context.Context) (csrfToken, error) {
	var out struct {
		Token string `json:"csrfToken"`
	}
	var ct csrfToken
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "auth.csrf", path: "/auth/api/csrf/", keepCookies: &ct.cookies}, &out)
	if err != nil {
		return csrfToken{}, err
	}
	ct.token = out.Token
	return ct, nil
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	ct, err := c.csrf(ctx)
	if err != nil {
		return err
	}
	return c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "auth.password_reset",
		path:     "/auth/api/password_reset/",
		body:     map[string]string{"email": email},
		header:   csrfHeader(ct.token),
		cookies:  ct.cookies,
	}, nil)
}

func (c *Client) ConfirmPasswordReset(ctx context.Context, uid, resetToken, password string) error {
	ct, err := c.csrf(ctx)
	if err != nil {
		return err
	}
	return c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "auth.password_reset_confirm",
		path:     fmt.Sprintf("/auth/api/reset/%s/%s/", url.PathEscape(uid), url.PathEscape(resetToken)),
		body:     map[string]string{"new_password": password},
		header:   csrfHeader(ct.token),
		cookies:  ct.cookies,
	}, nil)
}

func csrfHeader(tok string) http.Header {
	h := http.Header{}
	if tok != "" {
		h.Set("X-CSRFToken", tok)
	}
	return h
}
