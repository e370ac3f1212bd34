package login_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/motionlab/internal/domain/credentials"
	"github.com/okian/motionlab/internal/domain/login"
	"github.com/okian/motionlab/internal/domain/model"
	"github.com/okian/motionlab/internal/domain/session"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFlow_Submit(t *testing.T) {
	Convey("Given the demo login flow with a recorded delay", t, func() {
		var waited []time.Duration
		flow := login.NewFlow(login.WithSleeper(func(_ context.Context, d time.Duration) error {
			waited = append(waited, d)
			return nil
		}))
		store := session.NewMemoryStore()
		ctx := context.Background()

		Convey("When the demo credentials are submitted with remember me", func() {
			out, err := flow.Submit(ctx, store, model.Credentials{Email: "demo@example.com", Password: "password123"}, true)

			Convey("Then login succeeds after the simulated delay", func() {
				So(err, ShouldBeNil)
				So(out.Message, ShouldEqual, "Login successful! Redirecting...")
				So(out.RedirectTo, ShouldEqual, "/dashboard.html")
				So(out.RedirectAfter, ShouldEqual, 1500*time.Millisecond)
				So(waited, ShouldResemble, []time.Duration{1500 * time.Millisecond})
			})

			Convey("Then the flag and the remembered email are persisted", func() {
				v, _ := store.Get(session.KeyLoggedIn)
				So(v, ShouldEqual, "true")
				email, ok := flow.Prefill(store)
				So(ok, ShouldBeTrue)
				So(email, ShouldEqual, "demo@example.com")
			})

			Convey("And logging in again without remember me forgets the email", func() {
				_, err := flow.Submit(ctx, store, model.Credentials{Email: "demo@example.com", Password: "password123"}, false)
				So(err, ShouldBeNil)
				_, ok := flow.Prefill(store)
				So(ok, ShouldBeFalse)
			})

			Convey("And logout clears only the flag", func() {
				So(flow.Logout(store), ShouldBeNil)
				So(session.LoggedIn(store), ShouldBeFalse)
				_, ok := flow.Prefill(store)
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When a malformed email is submitted", func() {
			_, err := flow.Submit(ctx, store, model.Credentials{Email: "bad", Password: "password123"}, true)

			Convey("Then the field error comes back without delay or state change", func() {
				var fe *credentials.FieldError
				So(errors.As(err, &fe), ShouldBeTrue)
				So(fe.Message, ShouldEqual, "Please enter a valid email address")
				So(waited, ShouldBeEmpty)
				So(store.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the password does not match", func() {
			_, err := flow.Submit(ctx, store, model.Credentials{Email: "demo@example.com", Password: "wrongpass"}, false)

			Convey("Then the hint message is returned after the delay", func() {
				So(errors.Is(err, login.ErrInvalidCredentials), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "Invalid email or password. Try: demo@example.com / password123")
				So(len(waited), ShouldEqual, 1)
				So(session.LoggedIn(store), ShouldBeFalse)
			})
		})
	})

	Convey("Given a flow with a configured account and a real timer", t, func() {
		flow := login.NewFlow(login.WithAccount("coach@example.com", "secret99"), login.WithDelay(time.Millisecond))

		Convey("Then the context cancels the wait", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := flow.Submit(ctx, session.NewMemoryStore(), model.Credentials{Email: "coach@example.com", Password: "secret99"}, false)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})

		Convey("Then the configured account is accepted", func() {
			_, err := flow.Submit(context.Background(), session.NewMemoryStore(), model.Credentials{Email: "coach@example.com", Password: "secret99"}, false)
			So(err, ShouldBeNil)
		})
	})
}

func TestFlow_SocialLogin(t *testing.T) {
	Convey("Given the social buttons", t, func() {
		flow := login.NewFlow()
		msg, err := flow.SocialLogin("google")
		So(err, ShouldBeNil)
		So(msg, ShouldEqual, "Google login clicked! In a real application, this would redirect to Google OAuth.")
		msg, _ = flow.SocialLogin("GitHub")
		So(msg, ShouldStartWith, "GitHub login clicked!")
		_, err = flow.SocialLogin("myspace")
		So(errors.Is(err, login.ErrUnknownProvider), ShouldBeTrue)
	})
}
