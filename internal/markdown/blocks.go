// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markdown

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/meshintel/larkdown/pkg/types"
)

// imagePreviewURL is the stable preview endpoint for uploaded media. The
// token-derived URL outlives the 24-hour temporary download links the drive
// API hands out.
const imagePreviewURL = "https://internal-api-drive-stream.feishu.cn/space/api/box/stream/download/preview/%s/"

// PreviewURL returns the stable preview link emitted for a media token.
// Callers that obtain temporary download URLs can use it to locate the links
// in rendered output.
func PreviewURL(token string) string {
	return fmt.Sprintf(imagePreviewURL, token)
}

// convertSingle renders one block's own fragment (children excluded) by
// dispatching on its type tag. Converters return "" for empty or malformed
// content; callers treat empty as "omit".
func (c *Converter) convertSingle(b *types.Block, index map[string]*types.Block, depth int) string {
	switch b.BlockType {
	case types.BlockPage:
		return c.renderPayload(b.Page)
	case types.BlockText:
		return c.renderPayload(b.Text)
	case types.BlockHeading1, types.BlockHeading2, types.BlockHeading3,
		types.BlockHeading4, types.BlockHeading5, types.BlockHeading6:
		return c.convertHeading(b)
	case types.BlockBullet:
		return c.convertListItem(b.Bullet, depth, "- ")
	case types.BlockOrdered:
		// Always "1."; Markdown renderers renumber ordered lists themselves.
		return c.convertListItem(b.Ordered, depth, "1. ")
	case types.BlockCode:
		return c.convertCode(b.Code)
	case types.BlockQuote:
		return c.convertQuote(b.Quote)
	case types.BlockTodo:
		return c.convertTodo(b.Todo, depth)
	case types.BlockEquation:
		return c.convertEquation(b.Equation)
	case types.BlockDivider:
		return "---"
	case types.BlockImage:
		return c.convertImage(b.Image)
	case types.BlockTable:
		return c.convertTable(b, index)
	case types.BlockTableCell:
		// Cell content is emitted by the table reconstructor.
		return ""
	default:
		return c.convertUnsupported(b)
	}
}

func (c *Converter) renderPayload(p *types.TextPayload) string {
	if p == nil {
		return ""
	}
	return c.renderElements(p.Elements, false)
}

// convertHeading renders "# "-prefixed headings. The level is derived from
// the type tag and clamped to Markdown's six levels; empty headings are
// dropped.
func (c *Converter) convertHeading(b *types.Block) string {
	level := int(b.BlockType) - int(types.BlockText)
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}

	content := c.renderPayload(headingPayload(b))
	if content == "" {
		return ""
	}
	return strings.Repeat("#", level) + " " + content
}

func headingPayload(b *types.Block) *types.TextPayload {
	switch b.BlockType {
	case types.BlockHeading1:
		return b.Heading1
	case types.BlockHeading2:
		return b.Heading2
	case types.BlockHeading3:
		return b.Heading3
	case types.BlockHeading4:
		return b.Heading4
	case types.BlockHeading5:
		return b.Heading5
	case types.BlockHeading6:
		return b.Heading6
	default:
		return nil
	}
}

// convertListItem renders bullet and ordered items with two-space indentation
// per nesting level, capped at maxNestingDepth.
func (c *Converter) convertListItem(p *types.TextPayload, depth int, marker string) string {
	if p == nil {
		return ""
	}
	content := c.renderElements(p.Elements, false)
	if content == "" {
		return ""
	}
	return indentFor(depth) + marker + content
}

func (c *Converter) convertTodo(p *types.TodoPayload, depth int) string {
	if p == nil {
		return ""
	}
	content := c.renderElements(p.Elements, false)
	if content == "" {
		return ""
	}
	checkbox := "[ ]"
	if p.IsDone() {
		checkbox = "[x]"
	}
	return indentFor(depth) + "- " + checkbox + " " + content
}

func indentFor(depth int) string {
	if depth < 0 {
		depth = 0
	}
	if depth > maxNestingDepth {
		depth = maxNestingDepth
	}
	return strings.Repeat("  ", depth)
}

// convertCode renders a fenced code block. Content is rendered with
// formatting preserved so no inline styling leaks into code.
func (c *Converter) convertCode(p *types.CodePayload) string {
	if p == nil {
		return ""
	}
	language := codeLanguage(p.Language)
	content := c.renderElements(p.Elements, true)
	return "```" + language + "\n" + content + "\n```"
}

// convertQuote prefixes every content line with "> "; blank lines become a
// bare ">".
func (c *Converter) convertQuote(p *types.TextPayload) string {
	if p == nil {
		return ""
	}
	content := c.renderElements(p.Elements, false)
	if content == "" {
		return ""
	}

	lines := strings.Split(content, "\n")
	quoted := make([]string, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			quoted[i] = ">"
		} else {
			quoted[i] = "> " + line
		}
	}
	return strings.Join(quoted, "\n")
}

func (c *Converter) convertEquation(p *types.EquationPayload) string {
	if p == nil {
		return ""
	}
	content := strings.TrimSpace(p.Content)
	if content == "" {
		c.warnf("equation block has no content")
		return ""
	}
	return "$$" + content + "$$"
}

// convertImage renders an image reference from its media token. The alt text
// carries a short token prefix and, when both dimensions are positive, the
// pixel size. A zero dimension is indistinguishable from an absent one on the
// wire, so zero-sized images get no size suffix.
func (c *Converter) convertImage(p *types.ImagePayload) string {
	if p == nil {
		return ""
	}
	token := strings.TrimSpace(p.Token)
	if token == "" {
		c.warnf("image block has no token")
		return ""
	}

	alt := "image-" + token[:min(8, len(token))]
	if p.Width > 0 && p.Height > 0 {
		alt += fmt.Sprintf(" (%dx%d)", int(p.Width), int(p.Height))
	}

	return fmt.Sprintf("![%s](%s)", alt, PreviewURL(token))
}

// convertUnsupported is the best-effort path for recognized-but-unrenderable
// type tags (callout, sheet, heading7+, and the rest). It emits an HTML
// comment naming the tag, plus any inline content found in the payload.
func (c *Converter) convertUnsupported(b *types.Block) string {
	c.warnf("unsupported block type %d", b.BlockType)

	marker := "<!-- unsupported block type: " + strconv.Itoa(int(b.BlockType)) + " -->"
	if elements, ok := payloadElements(b); ok {
		if content := c.renderElements(elements, false); content != "" {
			return marker + "\n" + content
		}
	}
	return marker
}

// payloadElements finds an elements list in any payload the block carries:
// typed fields first, then the raw JSON object for payload shapes the model
// does not cover.
func payloadElements(b *types.Block) ([]types.Element, bool) {
	for _, p := range []*types.TextPayload{
		b.Text, b.Page,
		b.Heading1, b.Heading2, b.Heading3, b.Heading4, b.Heading5,
		b.Heading6, b.Heading7, b.Heading8, b.Heading9,
		b.Bullet, b.Ordered, b.Quote, b.Callout,
	} {
		if p != nil && len(p.Elements) > 0 {
			return p.Elements, true
		}
	}
	if b.Code != nil && len(b.Code.Elements) > 0 {
		return b.Code.Elements, true
	}
	if b.Todo != nil && len(b.Todo.Elements) > 0 {
		return b.Todo.Elements, true
	}

	return rawElements(b.Raw)
}

// rawElements scans a block's raw JSON for any member object carrying a
// non-empty "elements" array, in sorted key order for determinism.
func rawElements(raw json.RawMessage) ([]types.Element, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, false
	}

	keys := make([]string, 0, len(top))
	for k := range top {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		var payload struct {
			Elements []types.Element `json:"elements"`
		}
		if err := json.Unmarshal(top[k], &payload); err != nil {
			continue
		}
		if len(payload.Elements) > 0 {
			return payload.Elements, true
		}
	}
	return nil, false
}
