package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSiteHandler(t *testing.T) {
	Convey("Given a site router", t, func() {
		ctx := context.Background()
		open := false
		r := chi.NewRouter()
		Register(ctx, r, func(*http.Request) bool { return open })

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			return w
		}

		Convey("Then / and /index.html serve the login page", func() {
			for _, path := range []string{"/", "/index.html"} {
				w := get(path)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				So(w.Body.String(), ShouldContainSubstring, `id="loginForm"`)
			}
		})

		Convey("Then assets are served", func() {
			So(get("/js/login.js").Code, ShouldEqual, http.StatusOK)
			So(get("/css/style.css").Code, ShouldEqual, http.StatusOK)
			So(get("/js/missing.js").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the session flag is missing", func() {
			w := get("/dashboard.html")

			Convey("Then the dashboard redirects to the login page", func() {
				So(w.Code, ShouldEqual, http.StatusFound)
				So(w.Header().Get("Location"), ShouldEqual, "/")
			})
		})

		Convey("When the session flag is set", func() {
			open = true
			w := get("/dashboard.html")

			Convey("Then the dashboard is served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `id="analyzeBtn"`)
				So(w.Header().Get("Cache-Control"), ShouldEqual, "no-store")
			})
		})
	})
}

func TestSiteErrors(t *testing.T) {
	Convey("Given site error constants", t, func() {
		So(ErrServe, ShouldNotBeNil)
		So(ErrServe.Error(), ShouldEqual, "site serve failed")
	})
}

func TestSiteHandlerWithNilRouter(t *testing.T) {
	Convey("Given a nil router", t, func() {
		So(func() {
			Register(context.Background(), nil, nil)
		}, ShouldPanic)
	})
}

func TestRootHandlerWithNilGate(t *testing.T) {
	Convey("Given a root handler without a gate", t, func() {
		h := NewRootHandler(nil)
		w := httptest.NewRecorder()
		h.HandleDashboard(w, httptest.NewRequest(http.MethodGet, "/dashboard.html", nil))

		Convey("Then the dashboard stays closed", func() {
			So(w.Code, ShouldEqual, http.StatusFound)
		})
	})
}
