// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain title", "Weekly Notes", "Weekly Notes"},
		{"slashes and colons", "Q3/Q4: Plan", "Q3_Q4_ Plan"},
		{"windows reserved chars", `a*b?c"d<e>f|g`, "a_b_c_d_e_f_g"},
		{"control chars", "tab\there", "tab_here"},
		{"whitespace collapsed", "  a    b  ", "a b"},
		{"empty becomes untitled", "", "Untitled"},
		{"only invalid chars", "///", "___"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := safeFilename(tt.title); got != tt.want {
				t.Errorf("safeFilename(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestSafeFilenameCapsLength(t *testing.T) {
	long := strings.Repeat("x", 300)
	got := safeFilename(long)
	if len(got) != maxNameLength {
		t.Errorf("len = %d, want %d", len(got), maxNameLength)
	}

	// Multibyte titles must be cut on a rune boundary, never mid-character.
	got = safeFilename(strings.Repeat("周报", 80))
	if len(got) > maxNameLength {
		t.Errorf("len = %d, want <= %d", len(got), maxNameLength)
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncated name is not valid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "周") && !strings.HasSuffix(got, "报") {
		t.Errorf("truncated name ends in %q, want a whole character", got[len(got)-1:])
	}
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	tests := []struct {
		name    string
		pattern string
		want    string
	}{
		{"default pattern", "", "Notes_20260314_092653.md"},
		{"title and timestamp", "{title}_{timestamp}", "Notes_20260314_092653.md"},
		{"doc id", "{doc_id}", "doxcn123.md"},
		{"title only", "{title}", "Notes.md"},
		{"mixed literal", "export-{doc_id}-{title}", "export-doxcn123-Notes.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildFilename(tt.pattern, "Notes", "doxcn123", now)
			if got != tt.want {
				t.Errorf("buildFilename = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()

	p1 := uniquePath(dir, "doc.md")
	if p1 != filepath.Join(dir, "doc.md") {
		t.Fatalf("first path = %q", p1)
	}
	if err := os.WriteFile(p1, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	p2 := uniquePath(dir, "doc.md")
	if p2 != filepath.Join(dir, "doc_1.md") {
		t.Fatalf("second path = %q, want doc_1.md", p2)
	}
	if err := os.WriteFile(p2, []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}

	p3 := uniquePath(dir, "doc.md")
	if p3 != filepath.Join(dir, "doc_2.md") {
		t.Fatalf("third path = %q, want doc_2.md", p3)
	}
}
