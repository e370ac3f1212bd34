package cookiestore_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/motionlab/internal/adapters/cookiestore"
	"github.com/okian/motionlab/internal/domain/session"
	. "github.com/smartystreets/goconvey/convey"
)

// carry copies Set-Cookie headers from a response onto a new request.
func carry(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	return req
}

func TestCodec(t *testing.T) {
	Convey("Given a codec", t, func() {
		codec, err := cookiestore.NewCodec("test-secret")
		So(err, ShouldBeNil)

		Convey("Then values round trip for their own key only", func() {
			raw, err := codec.Encode(session.KeyLoggedIn, "true")
			So(err, ShouldBeNil)
			v, err := codec.Decode(session.KeyLoggedIn, raw)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "true")

			_, err = codec.Decode(session.KeyRememberMe, raw)
			So(errors.Is(err, cookiestore.ErrKeyMismatch), ShouldBeTrue)
		})

		Convey("Then another secret cannot verify the value", func() {
			raw, _ := codec.Encode(session.KeyLoggedIn, "true")
			other, _ := cookiestore.NewCodec("other-secret")
			_, err := other.Decode(session.KeyLoggedIn, raw)
			So(err, ShouldNotBeNil)
		})

		Convey("Then expired values are rejected", func() {
			past := time.Now().Add(-48 * time.Hour)
			old, _ := cookiestore.NewCodec("test-secret", cookiestore.WithMaxAge(time.Hour),
				cookiestore.WithClock(func() time.Time { return past }))
			raw, _ := old.Encode(session.KeyLoggedIn, "true")
			_, err := codec.Decode(session.KeyLoggedIn, raw)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given an empty secret", t, func() {
		_, err := cookiestore.NewCodec("")
		So(errors.Is(err, cookiestore.ErrEmptySecret), ShouldBeTrue)
	})
}

func TestStore(t *testing.T) {
	Convey("Given a store bound to a request", t, func() {
		codec, _ := cookiestore.NewCodec("test-secret", cookiestore.WithSecure(true))
		rec := httptest.NewRecorder()
		store := codec.Bind(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Convey("When the login keys are written", func() {
			So(session.SetLoggedIn(store), ShouldBeNil)
			So(session.Remember(store, "demo@example.com"), ShouldBeNil)

			Convey("Then they are readable on the same store", func() {
				So(session.LoggedIn(store), ShouldBeTrue)
			})

			Convey("Then the cookies are signed, http-only and secure", func() {
				cookies := rec.Result().Cookies()
				So(len(cookies), ShouldEqual, 3)
				for _, c := range cookies {
					So(c.HttpOnly, ShouldBeTrue)
					So(c.Secure, ShouldBeTrue)
					So(c.Value, ShouldNotEqual, "true")
				}
			})

			Convey("Then the next request sees them", func() {
				next := codec.Bind(httptest.NewRecorder(), carry(rec))
				So(session.LoggedIn(next), ShouldBeTrue)
				email, ok := session.RememberedEmail(next)
				So(ok, ShouldBeTrue)
				So(email, ShouldEqual, "demo@example.com")
			})

			Convey("And deleting hides the key immediately", func() {
				So(session.ClearLoggedIn(store), ShouldBeNil)
				So(session.LoggedIn(store), ShouldBeFalse)
			})
		})

		Convey("When a cookie is forged", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: codec.CookieName(session.KeyLoggedIn), Value: "true"})
			forged := codec.Bind(httptest.NewRecorder(), req)

			Convey("Then it reads as absent", func() {
				So(session.LoggedIn(forged), ShouldBeFalse)
			})
		})
	})
}
