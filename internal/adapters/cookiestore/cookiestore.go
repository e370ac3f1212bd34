// Package cookiestore persists session keys as signed browser cookies.
//
// Each key lives in its own cookie whose value is an HS256 JWT binding the
// key to its value, so a cookie cannot be edited or renamed client side.
package cookiestore

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Defaults.
const (
	DefaultPrefix = "ml_"
	DefaultMaxAge = 365 * 24 * time.Hour
	issuer        = "motionlab"
)

// Errors.
var (
	ErrEmptySecret = errors.New("cookie secret must not be empty")
	ErrKeyMismatch = errors.New("cookie bound to another key")
)

type claims struct {
	Key   string `json:"k"`
	Value string `json:"v"`
	jwt.RegisteredClaims
}

// Option applies a configuration option to the Codec.
type Option func(*Codec)

// WithSecure marks cookies Secure.
func WithSecure(secure bool) Option {
	return func(c *Codec) { c.secure = secure }
}

// WithMaxAge sets cookie and token lifetime.
func WithMaxAge(d time.Duration) Option {
	return func(c *Codec) {
		if d > 0 {
			c.maxAge = d
		}
	}
}

// WithPrefix sets the cookie name prefix.
func WithPrefix(p string) Option {
	return func(c *Codec) {
		if p != "" {
			c.prefix = p
		}
	}
}

// WithClock sets the clock used for token timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// Codec signs and verifies cookie values.
type Codec struct {
	secret []byte
	secure bool
	maxAge time.Duration
	prefix string
	now    func() time.Time
}

// NewCodec creates a codec for secret.
func NewCodec(secret string, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	c := &Codec{
		secret: []byte(secret),
		maxAge: DefaultMaxAge,
		prefix: DefaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CookieName returns the cookie holding key.
func (c *Codec) CookieName(key string) string { return c.prefix + key }

// Encode signs value for key.
func (c *Codec) Encode(key, value string) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Key:   key,
		Value: value,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.maxAge)),
		},
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign cookie %s: %w", key, err)
	}
	return signed, nil
}

// Decode verifies raw and returns the value it binds to key.
func (c *Codec) Decode(key, raw string) (string, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(raw, &cl, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return "", fmt.Errorf("verify cookie %s: %w", key, err)
	}
	if cl.Key != key {
		return "", fmt.Errorf("%w: %q", ErrKeyMismatch, cl.Key)
	}
	return cl.Value, nil
}

// Bind returns a Store reading r's cookies and writing to w.
func (c *Codec) Bind(w http.ResponseWriter, r *http.Request) *Store {
	return &Store{codec: c, w: w, r: r, overlay: make(map[string]*string)}
}

// Store is a session.Store over one request/response pair. Writes are
// visible to later reads on the same Store.
type Store struct {
	codec   *Codec
	w       http.ResponseWriter
	r       *http.Request
	overlay map[string]*string
}

// Get returns the verified value for key. Tampered or expired cookies read
// as absent.
func (s *Store) Get(key string) (string, bool) {
	if v, ok := s.overlay[key]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	ck, err := s.r.Cookie(s.codec.CookieName(key))
	if err != nil || ck.Value == "" {
		return "", false
	}
	v, err := s.codec.Decode(key, ck.Value)
	if err != nil {
		return "", false
	}
	return v, true
}

// Set writes a signed cookie for key.
func (s *Store) Set(key, value string) error {
	signed, err := s.codec.Encode(key, value)
	if err != nil {
		return err
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     s.codec.CookieName(key),
		Value:    signed,
		Path:     "/",
		MaxAge:   int(s.codec.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.codec.secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.overlay[key] = &value
	return nil
}

// Delete expires the cookie for key.
func (s *Store) Delete(key string) error {
	http.SetCookie(s.w, &http.Cookie{
		Name:     s.codec.CookieName(key),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.codec.secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.overlay[key] = nil
	return nil
}
