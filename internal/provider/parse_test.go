package provider

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/skinfolio/skinfolio/internal/contracts"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    float64
		wantErr bool
	}{
		{"dollar", "$12.34", 12.34, false},
		{"dollar with space", "$ 7.50 USD", 7.50, false},
		{"euro decimal comma", "12,34€", 12.34, false},
		{"thousands and decimal", "$1,234.56", 1234.56, false},
		{"plain integer", "42", 42, false},
		{"no digits", "--", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePrice(tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePrice(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parsePrice(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseVolume(t *testing.T) {
	tests := []struct {
		text string
		want int64
	}{
		{"1,234", 1234},
		{"217", 217},
		{"", 0},
		{"n/a", 0},
	}

	for _, tt := range tests {
		if got := parseVolume(tt.text); got != tt.want {
			t.Errorf("parseVolume(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestParseHistoryDate(t *testing.T) {
	got, err := parseHistoryDate("Feb 21 2014 01: +0")
	if err != nil {
		t.Fatalf("parseHistoryDate() error = %v", err)
	}
	want := time.Date(2014, 2, 21, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("parseHistoryDate() = %v, want %v", got, want)
	}

	if _, err := parseHistoryDate("bogus"); err == nil {
		t.Error("parseHistoryDate(bogus) expected error")
	}
}

func TestParseHistoryPoints(t *testing.T) {
	today := contracts.Day(time.Date(2014, 2, 23, 12, 0, 0, 0, time.UTC))

	raw, _ := json.Marshal([][]interface{}{
		{"Feb 20 2014 01: +0", 10.0, "100"},
		{"Feb 21 2014 01: +0", 12.0, "200"},
		{"Feb 21 2014 14: +0", 12.5, "50"}, // later same day wins
		{"Feb 22 2014 01: +0", 11.0, "80"},
		{"Feb 25 2014 01: +0", 99.0, "1"}, // future, dropped
		{"garbage"},
	})

	points, err := parseHistoryPoints(raw, 2, today)
	if err != nil {
		t.Fatalf("parseHistoryPoints() error = %v", err)
	}

	// Two-day window ending today keeps Feb 22 only (Feb 23 has no data).
	if len(points) != 1 {
		t.Fatalf("points = %d, want 1", len(points))
	}
	if points[0].PriceUSD != 11.0 {
		t.Errorf("point price = %v, want 11.0", points[0].PriceUSD)
	}

	points, err = parseHistoryPoints(raw, 4, today)
	if err != nil {
		t.Fatalf("parseHistoryPoints() error = %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("points = %d, want 3", len(points))
	}
	for i := 1; i < len(points); i++ {
		if !points[i-1].Date.Before(points[i].Date) {
			t.Errorf("points not ascending at %d", i)
		}
	}
	// Feb 21 keeps the later observation.
	if points[1].PriceUSD != 12.5 || points[1].Volume24h != 50 {
		t.Errorf("same-day dedupe kept %+v, want latest observation", points[1])
	}
}

func TestParseHistoryPointsMalformed(t *testing.T) {
	if _, err := parseHistoryPoints([]byte("not json"), 5, contracts.Day(time.Now())); err == nil {
		t.Error("expected error for malformed history array")
	}
}
