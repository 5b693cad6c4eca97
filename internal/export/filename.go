// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	// maxNameLength caps the filename stem so titles cannot overflow
	// filesystem limits once the extension and collision suffix are added.
	maxNameLength = 100

	timestampLayout = "20060102_150405"

	defaultPattern = "{title}_{timestamp}"
)

// invalidNameChars are characters scrubbed from titles before they become
// filenames. Covers both Windows and POSIX restrictions.
var invalidNameChars = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	`"`, "_", "<", "_", ">", "_", "|", "_",
)

// safeFilename turns a document title into a filesystem-safe stem: invalid
// and control characters become underscores, whitespace runs collapse to one
// space, and the result is trimmed and capped on a rune boundary so multibyte
// titles stay valid UTF-8. An empty result becomes "Untitled".
func safeFilename(title string) string {
	name := invalidNameChars.Replace(title)
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return '_'
		}
		return r
	}, name)
	name = strings.Join(strings.Fields(name), " ")

	if len(name) > maxNameLength {
		cut := maxNameLength
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = strings.TrimSpace(name[:cut])
	}
	if name == "" {
		return "Untitled"
	}
	return name
}

// buildFilename expands the naming pattern into a .md filename. Recognized
// placeholders: {title}, {timestamp}, {doc_id}. An empty pattern falls back
// to "{title}_{timestamp}".
func buildFilename(pattern, title, docID string, now time.Time) string {
	if pattern == "" {
		pattern = defaultPattern
	}
	name := strings.NewReplacer(
		"{title}", safeFilename(title),
		"{timestamp}", now.Format(timestampLayout),
		"{doc_id}", docID,
	).Replace(pattern)
	return name + ".md"
}

// uniquePath resolves filename collisions in dir by appending _1, _2, ...
// before the extension until an unused path is found.
func uniquePath(dir, filename string) string {
	path := filepath.Join(dir, filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	for i := 1; ; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
