package credentials_test

import (
	"errors"
	"testing"

	"github.com/okian/motionlab/internal/domain/credentials"
	"github.com/okian/motionlab/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestValidateEmail(t *testing.T) {
	convey.Convey("Given email candidates", t, func() {
		for _, ok := range []string{"demo@example.com", "a@b.co", "first.last+tag@sub.domain.org"} {
			convey.So(credentials.ValidateEmail(ok), convey.ShouldBeTrue)
		}
		for _, bad := range []string{"bad", "a@b", "@b.com", "a b@c.com", "a@@b.com", "a@b.", ""} {
			convey.So(credentials.ValidateEmail(bad), convey.ShouldBeFalse)
		}
	})
}

func TestValidate(t *testing.T) {
	convey.Convey("Given credential inputs", t, func() {
		cases := []struct {
			in      model.Credentials
			field   string
			message string
		}{
			{model.Credentials{Email: "   ", Password: "password123"}, credentials.FieldEmail, "Please enter your email address"},
			{model.Credentials{Email: "bad", Password: "password123"}, credentials.FieldEmail, "Please enter a valid email address"},
			{model.Credentials{Email: "bad", Password: ""}, credentials.FieldEmail, "Please enter a valid email address"},
			{model.Credentials{Email: "demo@example.com"}, credentials.FieldPassword, "Please enter your password"},
			{model.Credentials{Email: "demo@example.com", Password: "12345"}, credentials.FieldPassword, "Password must be at least 6 characters long"},
		}

		convey.Convey("Then the first failing check wins", func() {
			for _, tc := range cases {
				_, err := credentials.Validate(tc.in)
				var fe *credentials.FieldError
				convey.So(errors.As(err, &fe), convey.ShouldBeTrue)
				convey.So(fe.Field, convey.ShouldEqual, tc.field)
				convey.So(fe.Error(), convey.ShouldEqual, tc.message)
				convey.So(errors.Is(err, credentials.ErrInvalidFormat), convey.ShouldBeTrue)
			}
		})

		convey.Convey("Then valid input is trimmed and accepted", func() {
			got, err := credentials.Validate(model.Credentials{Email: "  demo@example.com ", Password: "123456"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(got.Email, convey.ShouldEqual, "demo@example.com")
			convey.So(got.Password, convey.ShouldEqual, "123456")
		})
	})
}
