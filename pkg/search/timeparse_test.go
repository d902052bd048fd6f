package search

import (
	"testing"
	"time"
)

func TestTimeParser(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("time zone database unavailable: %v", err)
	}
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	p := TimeParser{Location: berlin, Now: func() time.Time { return now }}

	tests := []struct {
		value string
		want  time.Time
	}{
		{value: "2024-03-15 13:00:00.250", want: time.Date(2024, 3, 15, 12, 0, 0, int(250*time.Millisecond), time.UTC)},
		{value: "now", want: now},
		{value: "NOW", want: now},
		{value: "90s", want: now.Add(-90 * time.Second)},
		{value: "2h", want: now.Add(-2 * time.Hour)},
		{value: "3 days", want: now.AddDate(0, 0, -3)},
		{value: "1 week ago", want: now.AddDate(0, 0, -7)},
		{value: "2 months", want: now.AddDate(0, -2, 0)},
		{value: "2024-03-01", want: time.Date(2024, 2, 29, 23, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := p.Parse(tt.value)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", tt.value, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("Parse(%q) = %s, want %s", tt.value, got.UTC(), tt.want)
		}
	}
}

func TestTimeParserRejectsGarbage(t *testing.T) {
	p := TimeParser{Location: time.UTC}
	for _, value := range []string{"soon", "3 lightyears"} {
		if _, err := p.Parse(value); err == nil {
			t.Errorf("expected Parse(%q) to fail", value)
		}
	}
}

func TestFormatTimeRoundTrips(t *testing.T) {
	p := TimeParser{Location: time.UTC}
	instant := time.Date(2024, 1, 2, 3, 4, 5, int(6*time.Millisecond), time.UTC)

	formatted := p.FormatTime(instant)
	if formatted != "2024-01-02 03:04:05.006" {
		t.Fatalf("unexpected format %q", formatted)
	}
	parsed, err := p.Parse(formatted)
	if err != nil || !parsed.Equal(instant) {
		t.Fatalf("expected round trip to %s, got %s (%v)", instant, parsed, err)
	}
}
