package telegramimpl

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{name: "short caption untouched", in: "hello", want: 5},
		{name: "exact limit untouched", in: strings.Repeat("a", captionLimit), want: captionLimit},
		{name: "long caption cut", in: strings.Repeat("ä", captionLimit+10), want: captionLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, captionLimit)
			if n := utf8.RuneCountInString(got); n != tt.want {
				t.Fatalf("got %d runes, want %d", n, tt.want)
			}
		})
	}
}

func TestGetMediaTypeName(t *testing.T) {
	if got := getMediaTypeName(mediaVideo); got != "video" {
		t.Fatalf("got %q", got)
	}
	if got := getMediaTypeName(99); got != "unknown media" {
		t.Fatalf("got %q", got)
	}
}
