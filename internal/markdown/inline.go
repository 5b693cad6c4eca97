// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markdown

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/meshintel/larkdown/pkg/types"
)

// renderElements converts an ordered list of inline elements to styled
// Markdown text. Results are concatenated without separators; callers control
// line and paragraph breaks. With preserve set (code blocks), text runs keep
// their content verbatim and no inline styling is applied.
func (c *Converter) renderElements(elements []types.Element, preserve bool) string {
	if len(elements) == 0 {
		return ""
	}

	var b strings.Builder
	for _, el := range elements {
		b.WriteString(renderElement(el, preserve))
	}
	return b.String()
}

// renderElement dispatches on the element variant. Elements with no
// recognized variant degrade to the conventional-field fallback rather than
// being dropped outright.
func renderElement(el types.Element, preserve bool) string {
	switch {
	case el.TextRun != nil:
		return renderTextRun(el.TextRun, preserve)
	case el.MentionUser != nil:
		if el.MentionUser.UserID == "" {
			return ""
		}
		return "@" + el.MentionUser.UserID
	case el.MentionDoc != nil:
		return renderMentionDoc(el.MentionDoc)
	case el.Equation != nil:
		if el.Equation.Content == "" {
			return ""
		}
		return "$" + el.Equation.Content + "$"
	default:
		return fallbackText(el)
	}
}

// renderTextRun normalizes escaped newline sequences to real newlines, then
// applies inline styling unless formatting is being preserved.
func renderTextRun(tr *types.TextRun, preserve bool) string {
	content := tr.Content
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, `\n`, "\n")

	if !preserve && tr.Style != nil {
		content = applyStyle(content, tr.Style)
	}
	return content
}

// applyStyle wraps content with Markdown style markers in fixed precedence:
// a link wraps everything and terminates further styling; inline code
// excludes the emphasis markers; bold, italic, and strikethrough stack.
func applyStyle(content string, style *types.TextElementStyle) string {
	if style.Link != nil && style.Link.URL != "" {
		return "[" + content + "](" + style.Link.URL + ")"
	}

	if style.InlineCode {
		return "`" + content + "`"
	}

	if style.Bold {
		content = "**" + content + "**"
	}
	if style.Italic {
		content = "*" + content + "*"
	}
	if style.Strikethrough {
		content = "~~" + content + "~~"
	}
	return content
}

func renderMentionDoc(m *types.MentionDoc) string {
	switch {
	case m.URL != "" && m.Title != "":
		return "[" + m.Title + "](" + m.URL + ")"
	case m.Title != "":
		return m.Title
	default:
		return ""
	}
}

// fallbackTextFields are the conventional field names probed, in order, when
// an element has no recognized shape.
var fallbackTextFields = []string{"content", "text", "title", "name"}

// fallbackText is the last-resort extraction for unrecognized element shapes:
// it probes a small set of conventional field names at the top level of the
// element's raw JSON and one level down, returning the first non-empty
// string. Elements built in code carry no raw JSON and yield "".
func fallbackText(el types.Element) string {
	if len(el.Raw) == 0 {
		return ""
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(el.Raw, &top); err != nil {
		return ""
	}

	if s := probeFields(top); s != "" {
		return s
	}

	// One level of nesting, in sorted key order for determinism.
	keys := make([]string, 0, len(top))
	for k := range top {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(top[k], &nested); err != nil {
			continue
		}
		if s := probeFields(nested); s != "" {
			return s
		}
	}
	return ""
}

func probeFields(obj map[string]json.RawMessage) string {
	for _, field := range fallbackTextFields {
		raw, ok := obj[field]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
