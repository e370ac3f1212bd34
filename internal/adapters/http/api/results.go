package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/motionlab/internal/domain/perfchart"
	"github.com/okian/motionlab/internal/domain/report"
	"github.com/okian/motionlab/pkg/metrics"
)

// Chart request reasons.
const (
	reasonRender = "render"
	reasonResize = "resize"
)

// maxChartSide bounds either chart dimension.
const maxChartSide = 4096

//go:embed templates/results.html
var templatesFS embed.FS

var resultsTmpl = template.Must(template.ParseFS(templatesFS, "templates/results.html")) //nolint:gochecknoglobals // parsed once

// resultsHandler serves the rendered results, the chart and the report.
type resultsHandler struct {
	deps  Dependencies
	chart perfchart.Layout
}

// HandleResults handles GET /api/results. Clients asking for text/html, or
// passing format=html, get the results fragment instead of JSON.
func (h *resultsHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.View(clientIDFrom(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	if !wantsHTML(r) {
		writeJSON(w, http.StatusOK, view)
		return
	}

	var buf bytes.Buffer
	if err := resultsTmpl.Execute(&buf, view); err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func wantsHTML(r *http.Request) bool {
	if f := r.URL.Query().Get("format"); f != "" {
		return f == "html"
	}
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		if mt, _, err := mime.ParseMediaType(strings.TrimSpace(part)); err == nil && mt == "text/html" {
			return true
		}
	}
	return false
}

// HandleChart handles GET /api/chart?width&height&format&reason. A resize
// redraw may plot a fresh timeline.
func (h *resultsHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := perfchart.ParseFormat(q.Get("format"))
	if err != nil {
		writeErr(w, err)
		return
	}
	layout := perfchart.NewLayout(intParam(q.Get("width"), h.chart.Width), intParam(q.Get("height"), h.chart.Height))
	if err := layout.Validate(); err != nil {
		writeErr(w, err)
		return
	}
	if layout.Width > maxChartSide || layout.Height > maxChartSide {
		writeErr(w, fmt.Errorf("%w: chart larger than %dx%d", ErrBadRequest, maxChartSide, maxChartSide))
		return
	}
	reason := reasonRender
	if q.Get("reason") == reasonResize {
		reason = reasonResize
	}

	timeline, err := h.deps.ChartTimeline(clientIDFrom(r), reason == reasonResize)
	if err != nil {
		writeErr(w, err)
		return
	}

	var buf bytes.Buffer
	if err := perfchart.Render(format, layout, timeline, &buf); err != nil {
		writeErr(w, err)
		return
	}
	metrics.RecordChartRendered(string(format), reason)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func intParam(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return v
}

// HandleReport handles GET /api/report as a text attachment.
func (h *resultsHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	body, name, err := h.deps.Report(clientIDFrom(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	_, _ = w.Write([]byte(body))
}
