// Package report serializes the displayed metrics into the downloadable
// plain-text analysis report.
package report

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/okian/motionlab/internal/domain/model"
)

// ContentType is the media type the report is served with.
const ContentType = "text/plain; charset=utf-8"

// TimestampLayout formats the Generated line.
const TimestampLayout = "2006-01-02 15:04:05"

const body = `
SPORTS PERFORMANCE ANALYSIS REPORT
Generated: {{.Generated}}
=====================================

PERFORMANCE METRICS
-------------------
Speed Score: {{.Metrics.Speed}}
Agility Score: {{.Metrics.Agility}}
Coordination: {{.Metrics.Coordination}}
Overall Rating: {{.Metrics.Overall}}

ANALYSIS TYPE: {{.TypeName}}

This report was generated using advanced {{.TypeLabel}} analysis.
For detailed video analysis, please use the web interface.
`

var tmpl = template.Must(template.New("report").Parse(body)) //nolint:gochecknoglobals // parsed once

type data struct {
	Generated string
	Metrics   model.DisplayedMetrics
	TypeName  string
	TypeLabel string
}

// Serialize fills the report template. Metric strings are embedded exactly as
// given, empty ones included.
func Serialize(m model.DisplayedMetrics, t model.AnalysisType, at time.Time) (string, error) {
	var sb strings.Builder
	err := tmpl.Execute(&sb, data{
		Generated: at.Format(TimestampLayout),
		Metrics:   m,
		TypeName:  t.DisplayName(),
		TypeLabel: t.Upper(),
	})
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return sb.String(), nil
}

// Filename is sports_analysis_report_<unix millis>.txt.
func Filename(at time.Time) string {
	return fmt.Sprintf("sports_analysis_report_%d.txt", at.UnixMilli())
}
