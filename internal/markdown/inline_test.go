// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markdown

import (
	"encoding/json"
	"testing"

	"github.com/meshintel/larkdown/pkg/types"
)

func run(content string, style *types.TextElementStyle) types.Element {
	return types.Element{TextRun: &types.TextRun{Content: content, Style: style}}
}

func TestRenderElements_Styles(t *testing.T) {
	tests := []struct {
		name     string
		elements []types.Element
		preserve bool
		want     string
	}{
		{
			name:     "plain text",
			elements: []types.Element{run("hello", nil)},
			want:     "hello",
		},
		{
			name:     "bold",
			elements: []types.Element{run("x", &types.TextElementStyle{Bold: true})},
			want:     "**x**",
		},
		{
			name: "bold italic strikethrough stack",
			elements: []types.Element{run("x", &types.TextElementStyle{
				Bold: true, Italic: true, Strikethrough: true,
			})},
			want: "~~***x***~~",
		},
		{
			name: "link wins over bold",
			elements: []types.Element{run("x", &types.TextElementStyle{
				Bold: true,
				Link: &types.Link{URL: "https://example.com"},
			})},
			want: "[x](https://example.com)",
		},
		{
			name: "inline code suppresses emphasis",
			elements: []types.Element{run("x", &types.TextElementStyle{
				Bold:       true,
				Italic:     true,
				InlineCode: true,
			})},
			want: "`x`",
		},
		{
			name: "preserve formatting skips styling",
			elements: []types.Element{run("x", &types.TextElementStyle{
				Bold: true,
				Link: &types.Link{URL: "https://example.com"},
			})},
			preserve: true,
			want:     "x",
		},
		{
			name:     "escaped newline sequence becomes a newline",
			elements: []types.Element{run(`a\nb`, nil)},
			want:     "a\nb",
		},
		{
			name: "mention user",
			elements: []types.Element{{
				MentionUser: &types.MentionUser{UserID: "ou_123"},
			}},
			want: "@ou_123",
		},
		{
			name: "mention user without id is empty",
			elements: []types.Element{{
				MentionUser: &types.MentionUser{},
			}},
			want: "",
		},
		{
			name: "mention doc with url and title",
			elements: []types.Element{{
				MentionDoc: &types.MentionDoc{Title: "Notes", URL: "https://docs.example.com/x"},
			}},
			want: "[Notes](https://docs.example.com/x)",
		},
		{
			name: "mention doc title only",
			elements: []types.Element{{
				MentionDoc: &types.MentionDoc{Title: "Notes"},
			}},
			want: "Notes",
		},
		{
			name: "inline equation",
			elements: []types.Element{{
				Equation: &types.InlineEquation{Content: "x^2"},
			}},
			want: "$x^2$",
		},
		{
			name: "elements concatenate without separators",
			elements: []types.Element{
				run("a", nil),
				run("b", &types.TextElementStyle{Bold: true}),
				{Equation: &types.InlineEquation{Content: "c"}},
			},
			want: "a**b**$c$",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New().renderElements(tt.elements, tt.preserve)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFallbackText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "top-level content field",
			raw:  `{"content": "  found  "}`,
			want: "found",
		},
		{
			name: "field priority follows the conventional order",
			raw:  `{"name": "second", "content": "first"}`,
			want: "first",
		},
		{
			name: "nested title one level down",
			raw:  `{"reminder": {"title": "ping"}}`,
			want: "ping",
		},
		{
			name: "empty strings are skipped",
			raw:  `{"content": "   ", "text": "real"}`,
			want: "real",
		},
		{
			name: "nothing recognizable",
			raw:  `{"foo": 1, "bar": {"baz": 2}}`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var el types.Element
			if err := json.Unmarshal([]byte(tt.raw), &el); err != nil {
				t.Fatalf("decoding element: %v", err)
			}
			if got := fallbackText(el); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFallbackText_NoRawYieldsEmpty(t *testing.T) {
	if got := fallbackText(types.Element{}); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestRenderElement_UnknownShapeUsesFallback(t *testing.T) {
	var el types.Element
	if err := json.Unmarshal([]byte(`{"file": {"name": "report.pdf"}}`), &el); err != nil {
		t.Fatal(err)
	}
	if got := renderElement(el, false); got != "report.pdf" {
		t.Errorf("got %q, want %q", got, "report.pdf")
	}
}
