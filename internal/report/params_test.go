package report

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetbuddy/internal/core"
)

var paramsNow = time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

func TestParseExportParams_Frames(t *testing.T) {
	tests := []struct {
		frame     string
		wantFrame core.Duration
		wantStart string
	}{
		{"Week", core.Week, "2024-03-08"},
		{"Month", core.Month, "2024-02-13"},
		{"Year", core.Year, "2023-03-16"},
		{"", core.Week, "2024-03-08"},
		{"Fortnight", core.Week, "2024-03-08"},
	}
	for _, tt := range tests {
		t.Run(tt.frame, func(t *testing.T) {
			p, err := ParseExportParams(url.Values{"frame": {tt.frame}, "category": {"Food"}}, paramsNow)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrame, p.Frame)
			assert.Equal(t, tt.wantStart, p.Window.Start.ISO())
			assert.Equal(t, "2024-03-15", p.Window.End.ISO())
			assert.Equal(t, FormatCSV, p.Format)
		})
	}
}

func TestParseExportParams_ExplicitRange(t *testing.T) {
	q := url.Values{
		"frame":    {"Year"},
		"start":    {"2024-01-01"},
		"end":      {"2024-01-31"},
		"category": {"Food", "Rent", "Food", ""},
		"format":   {"XLSX"},
	}
	p, err := ParseExportParams(q, paramsNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", p.Window.Start.ISO())
	assert.Equal(t, "2024-01-31", p.Window.End.ISO())
	assert.Equal(t, []string{"Food", "Rent"}, p.Categories)
	assert.Equal(t, FormatXLSX, p.Format)
}

func TestParseExportParams_LabelsKeptVerbatim(t *testing.T) {
	q := url.Values{"category": {"Food, Drinks", "Gym ", "  "}}
	p, err := ParseExportParams(q, paramsNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"Food, Drinks", "Gym "}, p.Categories)
}

func TestParseExportParams_Errors(t *testing.T) {
	tests := []struct {
		name    string
		query   url.Values
		isRange bool
	}{
		{"start without end", url.Values{"start": {"2024-01-01"}}, true},
		{"bad start", url.Values{"start": {"01/01/2024"}, "end": {"2024-01-31"}}, true},
		{"end before start", url.Values{"start": {"2024-02-01"}, "end": {"2024-01-31"}}, true},
		{"unknown format", url.Values{"format": {"pdf"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseExportParams(tt.query, paramsNow)
			require.Error(t, err)
			assert.Equal(t, tt.isRange, errors.Is(err, core.ErrInvalidRange), err)
		})
	}
}

func TestParseExportParams_NoCategories(t *testing.T) {
	p, err := ParseExportParams(url.Values{"frame": {"Month"}}, paramsNow)
	require.NoError(t, err)
	assert.Empty(t, p.Categories)
}
