// Package login runs the mock login: validate, wait out a simulated round
// trip, compare against the single demo account and persist the session keys.
package login

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/motionlab/internal/domain/credentials"
	"github.com/okian/motionlab/internal/domain/model"
	"github.com/okian/motionlab/internal/domain/session"
)

// Defaults.
const (
	DefaultEmail         = "demo@example.com"
	DefaultPassword      = "password123"
	DefaultDelay         = 1500 * time.Millisecond
	DefaultRedirectDelay = 1500 * time.Millisecond
	DashboardPath        = "/dashboard.html"
	SuccessMessage       = "Login successful! Redirecting..."
)

// Errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnknownProvider    = errors.New("unknown login provider")
)

// MismatchError carries the message shown when credentials do not match.
type MismatchError struct {
	Message string
}

func (e *MismatchError) Error() string { return e.Message }

// Unwrap lets errors.Is match ErrInvalidCredentials.
func (e *MismatchError) Unwrap() error { return ErrInvalidCredentials }

// Outcome tells the client what to show and where to go next.
type Outcome struct {
	Message       string        `json:"message"`
	RedirectTo    string        `json:"redirectTo"`
	RedirectAfter time.Duration `json:"-"`
}

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Option applies a configuration option to the Flow.
type Option func(*Flow)

// WithAccount sets the accepted email and password.
func WithAccount(email, password string) Option {
	return func(f *Flow) {
		if email != "" && password != "" {
			f.email, f.password = email, password
		}
	}
}

// WithDelay sets the simulated round trip.
func WithDelay(d time.Duration) Option {
	return func(f *Flow) {
		if d >= 0 {
			f.delay = d
		}
	}
}

// WithRedirectDelay sets how long the client waits before navigating.
func WithRedirectDelay(d time.Duration) Option {
	return func(f *Flow) {
		if d >= 0 {
			f.redirectDelay = d
		}
	}
}

// WithSleeper replaces the pause implementation.
func WithSleeper(fn Sleeper) Option {
	return func(f *Flow) {
		if fn != nil {
			f.sleep = fn
		}
	}
}

// Flow is the login use case.
type Flow struct {
	email         string
	password      string
	delay         time.Duration
	redirectDelay time.Duration
	sleep         Sleeper
}

// NewFlow creates a flow for the demo account.
func NewFlow(opts ...Option) *Flow {
	f := &Flow{
		email:         DefaultEmail,
		password:      DefaultPassword,
		delay:         DefaultDelay,
		redirectDelay: DefaultRedirectDelay,
		sleep:         sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Submit validates c, waits the simulated delay and checks the account. A
// format problem returns a *credentials.FieldError before any delay and
// leaves the store untouched. A mismatch returns a *MismatchError.
func (f *Flow) Submit(ctx context.Context, store session.Store, c model.Credentials, remember bool) (Outcome, error) {
	c, err := credentials.Validate(c)
	if err != nil {
		return Outcome{}, err
	}
	if err := f.sleep(ctx, f.delay); err != nil {
		return Outcome{}, fmt.Errorf("login interrupted: %w", err)
	}
	if !f.matches(c) {
		return Outcome{}, &MismatchError{
			Message: fmt.Sprintf("Invalid email or password. Try: %s / %s", f.email, f.password),
		}
	}

	if remember {
		err = session.Remember(store, c.Email)
	} else {
		err = session.Forget(store)
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("persist remember me: %w", err)
	}
	if err := session.SetLoggedIn(store); err != nil {
		return Outcome{}, fmt.Errorf("persist session flag: %w", err)
	}
	return Outcome{
		Message:       SuccessMessage,
		RedirectTo:    DashboardPath,
		RedirectAfter: f.redirectDelay,
	}, nil
}

func (f *Flow) matches(c model.Credentials) bool {
	emailOK := subtle.ConstantTimeCompare([]byte(c.Email), []byte(f.email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(c.Password), []byte(f.password)) == 1
	return emailOK && passOK
}

// Prefill returns the remembered email, if any.
func (f *Flow) Prefill(store session.Store) (string, bool) {
	return session.RememberedEmail(store)
}

// Logout clears the session flag. The remembered email stays.
func (f *Flow) Logout(store session.Store) error {
	return session.ClearLoggedIn(store)
}

// SocialLogin returns the placeholder message for a provider button.
func (f *Flow) SocialLogin(provider string) (string, error) {
	var name string
	switch strings.ToLower(provider) {
	case "google":
		name = "Google"
	case "github":
		name = "GitHub"
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	return fmt.Sprintf("%s login clicked! In a real application, this would redirect to %s OAuth.", name, name), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil || d <= 0 {
		return err
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
