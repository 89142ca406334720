package validation

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"
)

var (
	ErrEmailRequired   = errors.New("email is required")
	ErrEmailInvalid    = errors.New("email is invalid")
	ErrNameLength      = errors.New("name must be between 2 and 80 characters")
	ErrPasswordShort   = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")
)

// ValidateEmail checks that email is a bare address without display name
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if strings.ContainsAny(email, " \t\r\n") {
		return ErrEmailInvalid
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrEmailInvalid
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" {
		return ErrEmailInvalid
	}
	return nil
}

// ValidateName checks the display name given at sign up
func ValidateName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < 2 || n > 80 {
		return ErrNameLength
	}
	return nil
}

// ValidatePassword enforces the length bounds bcrypt can hash
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return ErrPasswordShort
	}
	if len(password) > 72 {
		return ErrPasswordTooLong
	}
	return nil
}

// IsValidationError reports whether err comes from one of the validators above
func IsValidationError(err error) bool {
	for _, target := range []error{ErrEmailRequired, ErrEmailInvalid, ErrNameLength, ErrPasswordShort, ErrPasswordTooLong} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
