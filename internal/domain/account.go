package domain

import "strconv"

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Registration struct {
	Username          string `json:"username" validate:"required,min=3,max=150"`
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password1" validate:"required,password"`
	Confirm           string `json:"password2" validate:"required"`
	FirstName         string `json:"first_name" validate:"required"`
	LastName          string `json:"last_name" validate:"required"`
	DateOfBirth       string `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	PreferredLanguage string `json:"preferred_language,omitempty"`
	TravelPreferences string `json:"travel_preferences,omitempty"`
}

type Profile struct {
	PK                int64  `json:"pk,omitempty"`
	Username          string `json:"username,omitempty"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Email             string `json:"email" validate:"omitempty,email"`
	PhoneNumber       string `json:"phone_number,omitempty" validate:"omitempty,max=20"`
	Address           string `json:"address,omitempty"`
	PreferredLanguage string `json:"preferred_language,omitempty"`
	TravelPreferences string `json:"travel_preferences,omitempty"`
}

// OwnerKey identifies the account across tokens: the user's pk, or the
// username or email when the service does not send one.
func (p Profile) OwnerKey() string {
	switch {
	case p.PK > 0:
		return "user:" + strconv.FormatInt(p.PK, 10)
	case p.Username != "":
		return "username:" + p.Username
	case p.Email != "":
		return "email:" + p.Email
	}
	return ""
}

// Screen names a place the client should navigate to after an auth action.
type Screen string

const (
	ScreenHome   Screen = "home"
	ScreenSignIn Screen = "sign-in"
)

type AuthStatus struct {
	Authenticated bool   `json:"authenticated"`
	Next          Screen `json:"next,omitempty"`
}
