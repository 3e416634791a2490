package listfile

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"

	"urldeck/internal/config"
	"urldeck/internal/entry"
)

const commentMarker = " # "

// Parse reads pairs from r using format.
func Parse(r io.Reader, format string) ([]entry.Pair, error) {
	switch format {
	case config.ListFormatPairs, "":
		return parsePairs(r)
	case config.ListFormatLines:
		return parseLines(r)
	default:
		return nil, fmt.Errorf("list format: unsupported value %q", format)
	}
}

// Write renders pairs to w using format.
func Write(w io.Writer, format string, pairs []entry.Pair) error {
	bw := bufio.NewWriter(w)
	switch format {
	case config.ListFormatPairs, "":
		for i, p := range pairs {
			if i > 0 {
				bw.WriteString("\n")
			}
			bw.WriteString(p.Title)
			bw.WriteString("\n")
			bw.WriteString(p.URL)
			bw.WriteString("\n")
		}
	case config.ListFormatLines:
		for _, p := range pairs {
			bw.WriteString(p.URL)
			if p.Title != "" && p.Title != p.URL {
				bw.WriteString(commentMarker)
				bw.WriteString(p.Title)
			}
			bw.WriteString("\n")
		}
	default:
		return fmt.Errorf("list format: unsupported value %q", format)
	}
	return bw.Flush()
}

// parsePairs reads title/URL line pairs. A blank line ends a record, so a
// title without a URL is dropped.
func parsePairs(r io.Reader) ([]entry.Pair, error) {
	var (
		pairs        []entry.Pair
		title        string
		expectingURL bool
	)
	err := scanLines(r, func(line string) {
		if line == "" {
			expectingURL = false
			return
		}
		if !expectingURL {
			title = line
			expectingURL = true
			return
		}
		pairs = append(pairs, entry.Pair{Title: title, URL: line})
		expectingURL = false
	})
	return pairs, err
}

func parseLines(r io.Reader) ([]entry.Pair, error) {
	var pairs []entry.Pair
	err := scanLines(r, func(line string) {
		if line == "" || strings.HasPrefix(line, "#") {
			return
		}
		url, title := line, ""
		if idx := strings.Index(line, commentMarker); idx >= 0 {
			url = strings.TrimSpace(line[:idx])
			title = strings.TrimSpace(line[idx+len(commentMarker):])
		}
		if url == "" {
			return
		}
		if title == "" {
			title = url
		}
		pairs = append(pairs, entry.Pair{Title: title, URL: url})
	})
	return pairs, err
}

func scanLines(r io.Reader, fn func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		fn(cleanLine(line))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read list: %w", err)
	}
	return nil
}

// cleanLine trims the line and normalises it to NFC. Lines that are not valid
// UTF-8 are read as Windows-1252.
func cleanLine(line string) string {
	line = strings.Trim(line, " \t\r\n")
	if !utf8.ValidString(line) {
		if decoded, err := charmap.Windows1252.NewDecoder().String(line); err == nil {
			line = decoded
		}
	}
	return norm.NFC.String(line)
}
