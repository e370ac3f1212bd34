package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"time"
)

// ErrStatus is returned when the service answers with an unexpected status.
var ErrStatus = errors.New("unexpected status")

// apiError is the service's JSON error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusError carries the status and decoded error body.
type StatusError struct {
	Status int
	Code   string
	Msg    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Msg)
}

// Unwrap lets errors.Is match ErrStatus.
func (e *StatusError) Unwrap() error { return ErrStatus }

type state struct {
	Analyzing bool   `json:"analyzing"`
	HasResult bool   `json:"hasResult"`
	JobID     string `json:"jobId"`
	LastError string `json:"lastError"`
}

type view struct {
	Metrics  Metrics           `json:"metrics"`
	Timeline []json.RawMessage `json:"timeline"`
}

// client is one browser: its own cookie jar and therefore its own session.
type client struct {
	base string
	http *http.Client
}

// newClient creates a client with a fresh cookie jar.
func newClient(base string, timeout time.Duration) (*client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	return &client{
		base: base,
		http: &http.Client{Timeout: timeout, Jar: jar},
	}, nil
}

func (c *client) do(ctx context.Context, method, path, contentType string, body io.Reader, want int) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode != want {
		defer resp.Body.Close()
		var e apiError
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return nil, &StatusError{Status: resp.StatusCode, Code: e.Code, Msg: e.Message}
	}
	return resp, nil
}

func (c *client) doJSON(ctx context.Context, method, path string, in, out any, want int) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	resp, err := c.do(ctx, method, path, "application/json", body, want)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// health checks that /healthz answers.
func (c *client) health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", "", nil, http.StatusOK)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

func (c *client) login(ctx context.Context, email, password string, remember bool) error {
	return c.doJSON(ctx, http.MethodPost, "/api/login", map[string]any{
		"email": email, "password": password, "rememberMe": remember,
	}, nil, http.StatusOK)
}

func (c *client) upload(ctx context.Context, name string, data []byte) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{"name": "video", "filename": name}))
	h.Set("Content-Type", "video/mp4")
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("multipart: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("multipart: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/video?source=drop", mw.FormDataContentType(), &buf, http.StatusOK)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

func (c *client) start(ctx context.Context, analysisType string) (state, error) {
	var st state
	err := c.doJSON(ctx, http.MethodPost, "/api/analysis", map[string]string{"type": analysisType}, &st, http.StatusAccepted)
	return st, err
}

func (c *client) state(ctx context.Context) (state, error) {
	var st state
	err := c.doJSON(ctx, http.MethodGet, "/api/state", nil, &st, http.StatusOK)
	return st, err
}

func (c *client) results(ctx context.Context) (view, error) {
	var v view
	err := c.doJSON(ctx, http.MethodGet, "/api/results", nil, &v, http.StatusOK)
	return v, err
}

func (c *client) chart(ctx context.Context) (int, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/chart?format=svg", "", nil, http.StatusOK)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	n, err := io.Copy(io.Discard, resp.Body)
	return int(n), err
}

func (c *client) report(ctx context.Context) (body, filename string, err error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/report", "", nil, http.StatusOK)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("read report: %w", err)
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		filename = params["filename"]
	}
	return string(raw), filename, nil
}

func (c *client) logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/logout", nil, nil, http.StatusOK)
}
