// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "encoding/json"

// BlockType identifies the kind of a document block. The values mirror the
// Lark docx open API wire format.
type BlockType int

const (
	BlockPage           BlockType = 1
	BlockText           BlockType = 2
	BlockHeading1       BlockType = 3
	BlockHeading2       BlockType = 4
	BlockHeading3       BlockType = 5
	BlockHeading4       BlockType = 6
	BlockHeading5       BlockType = 7
	BlockHeading6       BlockType = 8
	BlockHeading7       BlockType = 9
	BlockHeading8       BlockType = 10
	BlockHeading9       BlockType = 11
	BlockBullet         BlockType = 12
	BlockOrdered        BlockType = 13
	BlockCode           BlockType = 14
	BlockQuote          BlockType = 15
	BlockEquation       BlockType = 16
	BlockTodo           BlockType = 17
	BlockBitable        BlockType = 18
	BlockCallout        BlockType = 19
	BlockChatCard       BlockType = 20
	BlockDiagram        BlockType = 21
	BlockDivider        BlockType = 22
	BlockFile           BlockType = 23
	BlockGrid           BlockType = 24
	BlockGridColumn     BlockType = 25
	BlockIframe         BlockType = 26
	BlockImage          BlockType = 27
	BlockISV            BlockType = 28
	BlockMindnote       BlockType = 29
	BlockSheet          BlockType = 30
	BlockTable          BlockType = 31
	BlockTableCell      BlockType = 32
	BlockView           BlockType = 33
	BlockQuoteContainer BlockType = 34
	BlockTask           BlockType = 35
	BlockOKR            BlockType = 36
	BlockOKRObjective   BlockType = 37
	BlockOKRKeyResult   BlockType = 38
	BlockOKRProgress    BlockType = 39
	BlockAddOns         BlockType = 40
	BlockJiraIssue      BlockType = 41
	BlockWikiCatalog    BlockType = 42
	BlockBoard          BlockType = 43
	BlockAgenda         BlockType = 44
	BlockUndefined      BlockType = 999
)

// Known reports whether t is part of the recognized tag set. Unknown tags
// fail validation; known-but-unrenderable tags pass through to the
// unsupported-block path instead.
func (t BlockType) Known() bool {
	return (t >= BlockPage && t <= BlockAgenda) || t == BlockUndefined
}

// Block is one node of a document tree, delivered flat by the API and
// re-linked via ParentID and Children. Exactly one payload pointer matching
// BlockType is expected to be set; the converter tolerates blocks that
// violate this.
type Block struct {
	BlockID   string    `json:"block_id"`
	BlockType BlockType `json:"block_type"`
	ParentID  string    `json:"parent_id,omitempty"`
	Children  []string  `json:"children,omitempty"`

	Page     *TextPayload      `json:"page,omitempty"`
	Text     *TextPayload      `json:"text,omitempty"`
	Heading1 *TextPayload      `json:"heading1,omitempty"`
	Heading2 *TextPayload      `json:"heading2,omitempty"`
	Heading3 *TextPayload      `json:"heading3,omitempty"`
	Heading4 *TextPayload      `json:"heading4,omitempty"`
	Heading5 *TextPayload      `json:"heading5,omitempty"`
	Heading6 *TextPayload      `json:"heading6,omitempty"`
	Heading7 *TextPayload      `json:"heading7,omitempty"`
	Heading8 *TextPayload      `json:"heading8,omitempty"`
	Heading9 *TextPayload      `json:"heading9,omitempty"`
	Bullet   *TextPayload      `json:"bullet,omitempty"`
	Ordered  *TextPayload      `json:"ordered,omitempty"`
	Code     *CodePayload      `json:"code,omitempty"`
	Quote    *TextPayload      `json:"quote,omitempty"`
	Todo     *TodoPayload      `json:"todo,omitempty"`
	Equation *EquationPayload  `json:"equation,omitempty"`
	Divider  *DividerPayload   `json:"divider,omitempty"`
	Image    *ImagePayload     `json:"image,omitempty"`
	Table    *TablePayload     `json:"table,omitempty"`
	TableCell *TableCellPayload `json:"table_cell,omitempty"`
	Callout  *TextPayload      `json:"callout,omitempty"`

	// Raw holds the original JSON object when the block was decoded from the
	// wire. The unsupported-block path scans it for payloads the typed fields
	// do not cover. Empty for blocks constructed in code.
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the typed fields and keeps a copy of the raw object
// for best-effort extraction from unrecognized payload shapes.
func (b *Block) UnmarshalJSON(data []byte) error {
	type alias Block
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*b = Block(a)
	b.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// TextPayload carries inline content for text-bearing blocks (text, page,
// headings, bullet, ordered, quote, callout).
type TextPayload struct {
	Elements []Element  `json:"elements"`
	Style    *TextStyle `json:"style,omitempty"`
}

// CodePayload carries a fenced code block: a language id (see the converter's
// language table) and the code text as elements.
type CodePayload struct {
	Language int       `json:"language"`
	Elements []Element `json:"elements"`
}

// TodoPayload carries a checklist item. The wire format has used both "done"
// (block style) and "checked" for the completion flag; either marks the item
// complete.
type TodoPayload struct {
	Done     bool      `json:"done,omitempty"`
	Checked  bool      `json:"checked,omitempty"`
	Elements []Element `json:"elements"`
}

// IsDone reports the effective completion state.
func (p *TodoPayload) IsDone() bool {
	return p.Done || p.Checked
}

// EquationPayload carries a display equation in LaTeX source form.
type EquationPayload struct {
	Content string `json:"content"`
}

// DividerPayload is intentionally empty; a divider has no content.
type DividerPayload struct{}

// ImagePayload references an uploaded image by token. DownloadURL, when set
// by the fetch client, is a temporary (24 h) media URL; the converter builds
// a stable preview URL from the token instead.
type ImagePayload struct {
	Token       string  `json:"token"`
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	DownloadURL string  `json:"download_url,omitempty"`
}

// TablePayload declares table geometry and lists cell block ids in row-major
// order. Cells may be absent; the converter then falls back to child or
// parent-id discovery.
type TablePayload struct {
	Property TableProperty `json:"property"`
	Cells    []string      `json:"cells,omitempty"`
}

// TableProperty holds the declared matrix dimensions.
type TableProperty struct {
	RowSize    int `json:"row_size"`
	ColumnSize int `json:"column_size"`
}

// TableCellPayload marks a table cell block. Content lives in the cell's
// children. Row and column indices are optional hints some producers attach;
// absent indices are treated as zero.
type TableCellPayload struct {
	RowIndex    int `json:"row_index,omitempty"`
	ColumnIndex int `json:"column_index,omitempty"`
}

// TextStyle is block-level style metadata (alignment, fold state). The
// converter does not render it; it is kept for wire fidelity.
type TextStyle struct {
	Align    int  `json:"align,omitempty"`
	Done     bool `json:"done,omitempty"`
	Folded   bool `json:"folded,omitempty"`
	Language int  `json:"language,omitempty"`
	Wrap     bool `json:"wrap,omitempty"`
}

// Element is one inline unit within a text-bearing block. Exactly one of the
// variant pointers is expected to be set.
type Element struct {
	TextRun     *TextRun        `json:"text_run,omitempty"`
	MentionUser *MentionUser    `json:"mention_user,omitempty"`
	MentionDoc  *MentionDoc     `json:"mention_doc,omitempty"`
	Equation    *InlineEquation `json:"equation,omitempty"`

	// Raw holds the original JSON object for elements decoded from the wire,
	// so unknown shapes can go through the conventional-field fallback.
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the typed variants and keeps the raw object for the
// fallback text heuristic.
func (e *Element) UnmarshalJSON(data []byte) error {
	type alias Element
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*e = Element(a)
	e.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// TextRun is a run of text sharing one style.
type TextRun struct {
	Content string            `json:"content"`
	Style   *TextElementStyle `json:"text_element_style,omitempty"`
}

// MentionUser references a user by id.
type MentionUser struct {
	UserID string            `json:"user_id"`
	Style  *TextElementStyle `json:"text_element_style,omitempty"`
}

// MentionDoc references another document.
type MentionDoc struct {
	Token   string            `json:"token,omitempty"`
	ObjType int               `json:"obj_type,omitempty"`
	URL     string            `json:"url,omitempty"`
	Title   string            `json:"title,omitempty"`
	Style   *TextElementStyle `json:"text_element_style,omitempty"`
}

// InlineEquation is an inline LaTeX fragment.
type InlineEquation struct {
	Content string `json:"content"`
}

// TextElementStyle carries inline style flags plus an optional link.
type TextElementStyle struct {
	Bold            bool  `json:"bold,omitempty"`
	Italic          bool  `json:"italic,omitempty"`
	Strikethrough   bool  `json:"strikethrough,omitempty"`
	Underline       bool  `json:"underline,omitempty"`
	InlineCode      bool  `json:"inline_code,omitempty"`
	BackgroundColor int   `json:"background_color,omitempty"`
	TextColor       int   `json:"text_color,omitempty"`
	Link            *Link `json:"link,omitempty"`
}

// Link wraps a URL attached to a text run.
type Link struct {
	URL string `json:"url"`
}
