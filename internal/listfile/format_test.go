package listfile_test

import (
	"bytes"
	"strings"
	"testing"

	"urldeck/internal/config"
	"urldeck/internal/entry"
	"urldeck/internal/listfile"
)

func TestParsePairs(t *testing.T) {
	input := "\ufeffGo\r\nhttps://go.dev\n\n  Example  \n example.com/page \n\n\nDangling title\n\nLast\nhttps://last.example\n"
	pairs, err := listfile.Parse(strings.NewReader(input), config.ListFormatPairs)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []entry.Pair{
		{Title: "Go", URL: "https://go.dev"},
		{Title: "Example", URL: "example.com/page"},
		{Title: "Last", URL: "https://last.example"},
	}
	assertPairs(t, pairs, want)
}

func TestParseLines(t *testing.T) {
	input := "# reading list\nhttps://go.dev # Go\nexample.com\n\n   \nhttps://pkg.go.dev#section # Packages\n"
	pairs, err := listfile.Parse(strings.NewReader(input), config.ListFormatLines)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []entry.Pair{
		{Title: "Go", URL: "https://go.dev"},
		{Title: "example.com", URL: "example.com"},
		{Title: "Packages", URL: "https://pkg.go.dev#section"},
	}
	assertPairs(t, pairs, want)
}

func TestParseNormalisesText(t *testing.T) {
	decomposed := "Cafe\u0301\nhttps://cafe.example\n"
	pairs, err := listfile.Parse(strings.NewReader(decomposed), config.ListFormatPairs)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(pairs) != 1 || pairs[0].Title != "Caf\u00e9" {
		t.Fatalf("pairs = %+v", pairs)
	}

	latin1 := "Caf\xe9\nhttps://cafe.example\n"
	pairs, err = listfile.Parse(strings.NewReader(latin1), config.ListFormatPairs)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(pairs) != 1 || pairs[0].Title != "Caf\u00e9" {
		t.Fatalf("pairs = %+v", pairs)
	}
}

func TestWritePairs(t *testing.T) {
	var buf bytes.Buffer
	err := listfile.Write(&buf, config.ListFormatPairs, []entry.Pair{
		{Title: "Go", URL: "https://go.dev"},
		{Title: "Example", URL: "example.com"},
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "Go\nhttps://go.dev\n\nExample\nexample.com\n"
	if buf.String() != want {
		t.Fatalf("Write = %q, want %q", buf.String(), want)
	}
}

func TestWriteLines(t *testing.T) {
	var buf bytes.Buffer
	err := listfile.Write(&buf, config.ListFormatLines, []entry.Pair{
		{Title: "Go", URL: "https://go.dev"},
		{Title: "example.com", URL: "example.com"},
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "https://go.dev # Go\nexample.com\n"
	if buf.String() != want {
		t.Fatalf("Write = %q, want %q", buf.String(), want)
	}
}

func TestUnknownFormat(t *testing.T) {
	if _, err := listfile.Parse(strings.NewReader(""), "yaml"); err == nil {
		t.Fatal("expected Parse error")
	}
	if err := listfile.Write(&bytes.Buffer{}, "yaml", nil); err == nil {
		t.Fatal("expected Write error")
	}
}

func assertPairs(t *testing.T, got, want []entry.Pair) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d pairs %+v, want %+v", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pair %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
