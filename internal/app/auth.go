package app

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"travel_smart/internal/domain"
)

// AuthService owns the auth token. A "remembered" login goes to the
// persistent store and survives restarts; otherwise the token lives in the
// session store only.
type AuthService struct {
	api        domain.AuthAPI
	persistent domain.TokenStore
	session    domain.TokenStore

	mu       sync.Mutex
	ownerTok string
	owner    string
}

func NewAuthService(api domain.AuthAPI, persistent, session domain.TokenStore) *AuthService {
	return &AuthService{api: api, persistent: persistent, session: session}
}

// Token reads the persistent store first, then the session store.
func (s *AuthService) Token(ctx context.Context) (string, error) {
	tok, err := s.persistent.Load(ctx)
	if err != nil || tok != "" {
		return tok, err
	}
	return s.session.Load(ctx)
}

func (s *AuthService) requireToken(ctx context.Context) (string, error) {
	tok, err := s.Token(ctx)
	if err != nil {
		return "", err
	}
	if tok == "" {
		return "", domain.ErrNoToken
	}
	return tok, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string, remember bool) error {
	cr := domain.Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := check(cr); err != nil {
		return err
	}
	tok, err := s.api.Login(ctx, cr)
	if err != nil {
		return err
	}
	keep, drop := s.session, s.persistent
	if remember {
		keep, drop = s.persistent, s.session
	}
	// an older token in the other store would shadow this one
	if err := drop.Clear(ctx); err != nil {
		log.Warn().Err(err).Msg("clear stale token failed")
	}
	return keep.Save(ctx, tok)
}

// Logout forgets the token in both stores and sends the user home.
func (s *AuthService) Logout(ctx context.Context) (domain.Screen, error) {
	err := errors.Join(s.persistent.Clear(ctx), s.session.Clear(ctx))
	return domain.ScreenHome, err
}

// CheckStatus asks the service whether the stored token is still good.
// Without a token no request is made.
func (s *AuthService) CheckStatus(ctx context.Context) (domain.AuthStatus, error) {
	tok, err := s.Token(ctx)
	if err != nil {
		return domain.AuthStatus{}, err
	}
	if tok == "" {
		return domain.AuthStatus{Next: domain.ScreenSignIn}, nil
	}
	ok, err := s.api.Status(ctx, tok)
	if err != nil && !errors.Is(err, domain.ErrUnauthorized) {
		return domain.AuthStatus{}, err
	}
	if err != nil || !ok {
		if _, cerr := s.Logout(ctx); cerr != nil {
			log.Warn().Err(cerr).Msg("clear rejected token failed")
		}
		return domain.AuthStatus{Next: domain.ScreenSignIn}, nil
	}
	return domain.AuthStatus{Authenticated: true}, nil
}

// Register checks the form locally first; a mismatched confirmation never reaches the service.
func (s *AuthService) Register(ctx context.Context, r domain.Registration) error {
	if r.Password != r.Confirm {
		return domain.Invalid("password2", "Passwords do not match.")
	}
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	if err := check(r); err != nil {
		return err
	}
	return s.api.Register(ctx, r)
}

func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := checkVar("email", email, "required,email"); err != nil {
		return err
	}
	return s.api.RequestPasswordReset(ctx, email)
}

func (s *AuthService) ConfirmPasswordReset(ctx context.Context, uid, resetToken, password, confirm string) error {
	if uid == "" || resetToken == "" {
		return domain.Invalid("", "This password reset link is invalid.")
	}
	if password != confirm {
		return domain.Invalid("confirm_password", "Passwords do not match.")
	}
	if msg := PasswordProblem(password); msg != "" {
		return domain.Invalid("new_password", msg)
	}
	return s.api.ConfirmPasswordReset(ctx, uid, resetToken, password)
}

func (s *AuthService) Profile(ctx context.Context) (domain.Profile, error) {
	tok, err := s.requireToken(ctx)
	if err != nil {
		return domain.Profile{}, err
	}
	return s.api.Profile(ctx, tok)
}

// Owner identifies the signed-in account. The service is asked once per token,
// so a token that the service rejects never gets an owner.
func (s *AuthService) Owner(ctx context.Context) (string, error) {
	tok, err := s.requireToken(ctx)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	if s.ownerTok == tok {
		o := s.owner
		s.mu.Unlock()
		return o, nil
	}
	s.mu.Unlock()

	p, err := s.api.Profile(ctx, tok)
	if err != nil {
		return "", err
	}
	o := p.OwnerKey()
	if o == "" {
		return "", errors.New("profile carries no account identity")
	}
	s.mu.Lock()
	s.ownerTok, s.owner = tok, o
	s.mu.Unlock()
	return o, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	if err := check(p); err != nil {
		return domain.Profile{}, err
	}
	tok, err := s.requireToken(ctx)
	if err != nil {
		return domain.Profile{}, err
	}
	return s.api.UpdateProfile(ctx, tok, p)
}
