package formatter

import (
	"testing"
	"time"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{52428800, "52,428,800"},
		{-1234567, "-1,234,567"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	if got := EscapeMarkdownV2("0:15 - 1.5x (slow)!"); got != `0:15 \- 1\.5x \(slow\)\!` {
		t.Fatalf("got %q", got)
	}
}

func TestHashtag(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Travel", "#travel"},
		{"Street Food", "#street_food"},
		{"  rock & roll!! ", "#rock_roll"},
		{"Café 2025", "#café_2025"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Hashtag(tt.in); got != tt.want {
			t.Errorf("Hashtag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTimecode(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{1400 * time.Millisecond, "0:01"},
		{15 * time.Second, "0:15"},
		{75 * time.Second, "1:15"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
		{-time.Second, "0:00"},
	}
	for _, tt := range tests {
		if got := Timecode(tt.in); got != tt.want {
			t.Errorf("Timecode(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
