package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"budgetbuddy/internal/core"
)

func TestParseTxType(t *testing.T) {
	tests := []struct {
		raw     string
		want    core.TxType
		wantErr bool
	}{
		{"", core.Expense, false},
		{"Income", core.Income, false},
		{"expense", core.Expense, false},
		{"transfer", core.Expense, true},
	}
	for _, tt := range tests {
		got, err := ParseTxType(url.Values{"type": {tt.raw}})
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseTxType(%q) = %v, %v; want %v, err %v", tt.raw, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  Fo\x00od\t "); got != "Food" {
		t.Errorf("sanitizeInput() = %q, want %q", got, "Food")
	}
}

func TestRequireGET(t *testing.T) {
	if b := RequireGET(httptest.NewRequest(http.MethodGet, "/", nil)); b != nil {
		t.Error("GET should be allowed")
	}
	b := RequireGET(httptest.NewRequest(http.MethodPost, "/", nil))
	if b == nil {
		t.Fatal("POST should be rejected")
	}
	w := httptest.NewRecorder()
	b.Write(w)
	if w.Code != http.StatusMethodNotAllowed || w.Header().Get("Allow") != "GET, HEAD" {
		t.Errorf("status = %d, Allow = %q", w.Code, w.Header().Get("Allow"))
	}
}
