package textutil

import (
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Go: The Language", want: "Go- The Language"},
		{in: "  a/b\\c  ", want: "a-b-c"},
		{in: "what?<>|\"", want: "what"},
		{in: "tab\there\nnewline", want: "tab here newline"},
		{in: "...hidden.", want: "hidden"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFileNameCapsLength(t *testing.T) {
	got := SanitizeFileName(strings.Repeat("é", 200))
	if n := len([]rune(got)); n != maxFileNameRunes {
		t.Fatalf("length = %d runes, want %d", n, maxFileNameRunes)
	}
}

func TestIconFileName(t *testing.T) {
	if got := IconFileName(7, "Go Docs", ".png"); got != "007-Go Docs.png" {
		t.Fatalf("IconFileName = %q", got)
	}
	if got := IconFileName(12, "???", ".ico"); got != "012-entry.ico" {
		t.Fatalf("IconFileName = %q", got)
	}
}
