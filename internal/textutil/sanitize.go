package textutil

import (
	"fmt"
	"strings"
	"unicode"
)

// maxFileNameRunes bounds the title part of generated file names.
const maxFileNameRunes = 80

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters and control characters are removed. Whitespace runs collapse to
// one space and the result is capped in length.
func SanitizeFileName(name string) string {
	name = fileNameReplacer.Replace(name)
	name = strings.Join(strings.Fields(name), " ")
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	if runes := []rune(name); len(runes) > maxFileNameRunes {
		name = strings.TrimSpace(string(runes[:maxFileNameRunes]))
	}
	return strings.Trim(name, ". ")
}

// IconFileName builds "<position>-<title><ext>" for an entry icon. Titles that
// sanitize to nothing fall back to "entry".
func IconFileName(position int, title, ext string) string {
	name := SanitizeFileName(title)
	if name == "" {
		name = "entry"
	}
	return fmt.Sprintf("%03d-%s%s", position, name, ext)
}
