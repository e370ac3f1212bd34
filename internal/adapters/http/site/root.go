// Package site serves the embedded login and dashboard pages.
package site

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Pages.
const (
	LoginPage     = "index.html"
	DashboardPage = "dashboard.html"
)

//go:embed static/**
var staticFS embed.FS

// FS returns the embedded pages and assets rooted at static/.
func FS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return http.FS(staticFS)
	}
	return http.FS(sub)
}

// ErrServe is returned when an embedded page cannot be served.
var ErrServe = errors.New("site serve failed")

// Gate reports whether a request may see the dashboard.
type Gate func(r *http.Request) bool

// Register attaches the page and asset routes to r.
func Register(_ context.Context, r chi.Router, gate Gate) {
	if r == nil {
		panic("router is nil")
	}

	h := NewRootHandler(gate)
	r.Get("/", h.HandleLogin)
	r.Get("/"+LoginPage, h.HandleLogin)
	r.Get("/"+DashboardPage, h.HandleDashboard)
	r.Handle("/*", http.FileServer(FS()))
}

// RootHandler serves the two pages.
type RootHandler struct {
	gate Gate
}

// NewRootHandler creates a root handler. A nil gate keeps the dashboard
// closed.
func NewRootHandler(gate Gate) *RootHandler {
	if gate == nil {
		gate = func(*http.Request) bool { return false }
	}
	return &RootHandler{gate: gate}
}

// HandleLogin serves the login page.
func (h *RootHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	servePage(w, r, LoginPage)
}

// HandleDashboard serves the dashboard, or redirects to the login page when
// the session flag is missing.
func (h *RootHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if !h.gate(r) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	servePage(w, r, DashboardPage)
}

// servePage writes an embedded page without http.FileServer's index.html
// redirect.
func servePage(w http.ResponseWriter, r *http.Request, name string) {
	f, err := FS().Open("/" + name)
	if err != nil {
		http.Error(w, ErrServe.Error(), http.StatusInternalServerError)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		http.Error(w, ErrServe.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, name, info.ModTime(), f)
}
