package protocol

import (
	"regexp"
	"strings"
	"time"
)

// User is a registered storefront account.
type User struct {
	ID           ObjectID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the client-facing presentation of a User.
type PublicUser struct {
	ID    ObjectID `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
}

// Public returns the PublicUser of the User.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims the Name and Email, and lower-cases the Email.
func (m *SignupRequest) Normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = NormalizeEmail(m.Email)
}

// Validate returns an error if the SignupRequest is not well-formed.
func (m *SignupRequest) Validate() error {
	var errs ValidationErrors
	errs.Add("name", ValidateLength(m.Name, "Name", 2, 60))
	errs.Add("email", ValidateEmail(m.Email))
	errs.Add("password", ValidatePassword(m.Password))
	return errs.OrNil()
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims and lower-cases the Email.
func (m *LoginRequest) Normalize() { m.Email = NormalizeEmail(m.Email) }

// Validate returns an error if the LoginRequest is not well-formed.
func (m *LoginRequest) Validate() error {
	var errs ValidationErrors
	errs.Add("email", ValidateEmail(m.Email))
	errs.Add("password", ValidatePassword(m.Password))
	return errs.OrNil()
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// ValidateEmail returns an error if |s| is not a plausible email address.
func ValidateEmail(s string) error {
	if s == "" || !reEmail.MatchString(s) ||
		strings.HasPrefix(s, ".") || strings.Contains(s, "..") {
		return NewValidationError("Invalid email address")
	}
	return nil
}

// ValidatePassword returns an error if |s| is not of an acceptable length.
// The upper bound is the number of bytes that bcrypt considers.
func ValidatePassword(s string) error {
	if l := len(s); l < minPasswordLen {
		return NewValidationError("Password must be at least %d characters", minPasswordLen)
	} else if l > maxPasswordLen {
		return NewValidationError("Password must be at most %d characters", maxPasswordLen)
	}
	return nil
}

const (
	minPasswordLen = 8
	maxPasswordLen = 72
)

var reEmail = regexp.MustCompile(`^[a-zA-Z0-9_'+\-.]*[a-zA-Z0-9_+\-]@([a-zA-Z0-9][a-zA-Z0-9\-]*\.)+[a-zA-Z]{2,}$`)
