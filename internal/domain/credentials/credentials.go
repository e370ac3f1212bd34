// Package credentials format-checks login input.
package credentials

import (
	"errors"
	"regexp"
	"strings"

	"github.com/okian/motionlab/internal/domain/model"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// Fields a FieldError can point at.
const (
	FieldEmail    = "email"
	FieldPassword = "password"
)

// User-facing validation messages, in check order.
const (
	MsgEmailRequired    = "Please enter your email address"
	MsgEmailInvalid     = "Please enter a valid email address"
	MsgPasswordRequired = "Please enter your password"
	MsgPasswordShort    = "Password must be at least 6 characters long"
)

// ErrInvalidFormat is the kind of every FieldError.
var ErrInvalidFormat = errors.New("invalid credential format")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`) //nolint:gochecknoglobals // compiled once

// FieldError names the offending field and the message to show next to it.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

// Unwrap lets errors.Is match ErrInvalidFormat.
func (e *FieldError) Unwrap() error { return ErrInvalidFormat }

// ValidateEmail reports whether s looks like local@domain.tld.
func ValidateEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidatePassword reports whether s is long enough.
func ValidatePassword(s string) bool {
	return len(s) >= MinPasswordLength
}

// Validate trims the email and checks, in order: email present, email well
// formed, password present, password long enough. It returns the normalized
// credentials or the first *FieldError.
func Validate(c model.Credentials) (model.Credentials, error) {
	c.Email = strings.TrimSpace(c.Email)
	switch {
	case c.Email == "":
		return c, &FieldError{Field: FieldEmail, Message: MsgEmailRequired}
	case !ValidateEmail(c.Email):
		return c, &FieldError{Field: FieldEmail, Message: MsgEmailInvalid}
	case c.Password == "":
		return c, &FieldError{Field: FieldPassword, Message: MsgPasswordRequired}
	case !ValidatePassword(c.Password):
		return c, &FieldError{Field: FieldPassword, Message: MsgPasswordShort}
	}
	return c, nil
}
