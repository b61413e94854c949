package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"travel_smart/internal/domain"
)

func newAuth() (*AuthService, *mockAuthAPI, *memStore, *memStore) {
	api := new(mockAuthAPI)
	persistent, session := &memStore{}, &memStore{}
	return NewAuthService(api, persistent, session), api, persistent, session
}

func TestLogin_RememberChoosesStore(t *testing.T) {
	ctx := context.Background()
	svc, api, persistent, session := newAuth()
	api.On("Login", mock.Anything, domain.Credentials{Email: "a@b.co", Password: "pw"}).Return("tok-1", nil)

	require.NoError(t, svc.Login(ctx, " a@b.co ", "pw", true))
	assert.Equal(t, "tok-1", persistent.tok)
	assert.Empty(t, session.tok)

	require.NoError(t, svc.Login(ctx, "a@b.co", "pw", false))
	assert.Empty(t, persistent.tok, "remembered token is dropped when signing in for this session only")
	assert.Equal(t, "tok-1", session.tok)

	tok, err := svc.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
}

func TestLogin_BadCredentialsStoreNothing(t *testing.T) {
	svc, api, persistent, session := newAuth()
	api.On("Login", mock.Anything, mock.Anything).
		Return("", &domain.ServiceError{Status: 400, Message: "Unable to log in with provided credentials."})

	err := svc.Login(context.Background(), "a@b.co", "nope", true)
	require.Error(t, err)
	assert.Equal(t, "Unable to log in with provided credentials.", domain.UserMessage(err, ""))
	assert.Empty(t, persistent.tok)
	assert.Empty(t, session.tok)
}

func TestLogout_ClearsBothStores(t *testing.T) {
	ctx := context.Background()
	svc, _, persistent, session := newAuth()
	persistent.tok, session.tok = "p", "s"

	next, err := svc.Logout(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ScreenHome, next)
	assert.Empty(t, persistent.tok)
	assert.Empty(t, session.tok)
	assert.Equal(t, 1, persistent.clears)
	assert.Equal(t, 1, session.clears)
}

func TestCheckStatus_NoTokenMakesNoRequest(t *testing.T) {
	svc, api, _, _ := newAuth()
	st, err := svc.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, st.Authenticated)
	assert.Equal(t, domain.ScreenSignIn, st.Next)
	api.AssertNotCalled(t, "Status", mock.Anything, mock.Anything)
}

func TestCheckStatus_RejectedTokenIsCleared(t *testing.T) {
	cases := map[string]struct {
		ok  bool
		err error
	}{
		"not authenticated": {ok: false},
		"unauthorized":      {err: &domain.ServiceError{Status: 401}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc, api, persistent, session := newAuth()
			session.tok = "old"
			api.On("Status", mock.Anything, "old").Return(tc.ok, tc.err)

			st, err := svc.CheckStatus(context.Background())
			require.NoError(t, err)
			assert.Equal(t, domain.ScreenSignIn, st.Next)
			assert.Empty(t, session.tok)
			assert.Equal(t, 1, persistent.clears)
		})
	}
}

func TestCheckStatus_Valid(t *testing.T) {
	svc, api, persistent, _ := newAuth()
	persistent.tok = "good"
	api.On("Status", mock.Anything, "good").Return(true, nil)

	st, err := svc.CheckStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Authenticated)
	assert.Equal(t, "good", persistent.tok)
}

func TestRegister_PasswordMismatchMakesNoRequest(t *testing.T) {
	svc, api, _, _ := newAuth()
	err := svc.Register(context.Background(), domain.Registration{
		Username: "ada", Email: "ada@example.com", FirstName: "Ada", LastName: "L",
		Password: "Secret#123", Confirm: "Secret#124",
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Passwords do not match.", ve.Msg)
	api.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, api, _, _ := newAuth()
	err := svc.Register(context.Background(), domain.Registration{
		Username: "ada", Email: "ada@example.com", FirstName: "Ada", LastName: "L",
		Password: "secret#123", Confirm: "secret#123",
	})
	require.Error(t, err)
	assert.Equal(t, "Password must contain at least one uppercase letter.", domain.UserMessage(err, ""))
	api.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegister_Valid(t *testing.T) {
	svc, api, _, _ := newAuth()
	api.On("Register", mock.Anything, mock.MatchedBy(func(r domain.Registration) bool {
		return r.Username == "ada"
	})).Return(nil)
	err := svc.Register(context.Background(), domain.Registration{
		Username: " ada ", Email: "ada@example.com", FirstName: "Ada", LastName: "L",
		Password: "Secret#123", Confirm: "Secret#123",
	})
	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestConfirmPasswordReset(t *testing.T) {
	svc, api, _, _ := newAuth()
	ctx := context.Background()

	assert.Error(t, svc.ConfirmPasswordReset(ctx, "", "t", "Secret#123", "Secret#123"))
	assert.Error(t, svc.ConfirmPasswordReset(ctx, "u", "t", "Secret#123", "Secret#12"))
	assert.Error(t, svc.ConfirmPasswordReset(ctx, "u", "t", "short", "short"))
	api.AssertNotCalled(t, "ConfirmPasswordReset", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	api.On("ConfirmPasswordReset", mock.Anything, "u", "t", "Secret#123").Return(nil)
	assert.NoError(t, svc.ConfirmPasswordReset(ctx, "u", "t", "Secret#123", "Secret#123"))
}

func TestOwner_AskedOncePerToken(t *testing.T) {
	svc, api, _, session := newAuth()
	ctx := context.Background()

	_, err := svc.Owner(ctx)
	assert.ErrorIs(t, err, domain.ErrNoToken)

	session.tok = "tok-a"
	api.On("Profile", mock.Anything, "tok-a").Return(domain.Profile{PK: 7, Username: "ada"}, nil).Once()
	for i := 0; i < 2; i++ {
		o, err := svc.Owner(ctx)
		require.NoError(t, err)
		assert.Equal(t, "user:7", o)
	}

	session.tok = "tok-b"
	api.On("Profile", mock.Anything, "tok-b").Return(domain.Profile{}, &domain.ServiceError{Status: 401}).Once()
	_, err = svc.Owner(ctx)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	api.AssertExpectations(t)
}

func TestProfile_OwnerKeyFallbacks(t *testing.T) {
	assert.Equal(t, "username:ada", domain.Profile{Username: "ada", Email: "a@b.co"}.OwnerKey())
	assert.Equal(t, "email:a@b.co", domain.Profile{Email: "a@b.co"}.OwnerKey())
	assert.Empty(t, domain.Profile{}.OwnerKey())
}

func TestProfile_NeedsToken(t *testing.T) {
	svc, api, _, session := newAuth()
	_, err := svc.Profile(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoToken)

	session.tok = "tok"
	api.On("Profile", mock.Anything, "tok").Return(domain.Profile{Username: "ada"}, nil)
	p, err := svc.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ada", p.Username)
}
