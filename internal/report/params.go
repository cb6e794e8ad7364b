package report

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"budgetbuddy/internal/core"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ExportParams is a parsed export selection, shared by the download
// endpoint and the command line.
type ExportParams struct {
	Frame      core.Duration
	Window     Window
	Categories []string
	Format     string
}

// ParseExportParams builds the export window and category set from query
// values. Explicit start and end (YYYY-MM-DD) win over frame; an unknown
// frame falls back to Week. Each repeated category value is one label, kept
// exactly as given.
func ParseExportParams(query url.Values, now time.Time) (ExportParams, error) {
	p := ExportParams{
		Frame:  core.DurationOr(query.Get("frame"), core.Week),
		Format: strings.ToLower(strings.TrimSpace(query.Get("format"))),
	}
	if p.Format == "" {
		p.Format = FormatCSV
	}
	if p.Format != FormatCSV && p.Format != FormatXLSX {
		return ExportParams{}, fmt.Errorf("unsupported format %q", p.Format)
	}

	start := strings.TrimSpace(query.Get("start"))
	end := strings.TrimSpace(query.Get("end"))
	switch {
	case start == "" && end == "":
		p.Window = WindowFor(p.Frame, now)
	case start == "" || end == "":
		return ExportParams{}, fmt.Errorf("%w: start and end must be given together", core.ErrInvalidRange)
	default:
		s, err := core.ParseISODate(start)
		if err != nil {
			return ExportParams{}, fmt.Errorf("%w: start: %v", core.ErrInvalidRange, err)
		}
		e, err := core.ParseISODate(end)
		if err != nil {
			return ExportParams{}, fmt.Errorf("%w: end: %v", core.ErrInvalidRange, err)
		}
		p.Window = Window{Start: s, End: e}
		if err := p.Window.Validate(); err != nil {
			return ExportParams{}, err
		}
	}

	p.Categories = normaliseCategories(query["category"])
	return p, nil
}
