// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package markdown converts a flat, id-linked collection of document blocks
// into a single Markdown string. The conversion is a pure computation: blocks
// in, text out, no I/O beyond optional warning output. Malformed blocks are
// dropped or degraded individually; only a nil input aborts the call.
package markdown

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/meshintel/larkdown/pkg/types"
)

// ErrNilInput is returned when Convert is called with a nil block list.
// An empty (non-nil) list is valid and converts to the empty string.
var ErrNilInput = errors.New("markdown: block list is nil")

const (
	// maxNestingDepth caps list/todo indentation. Deeper input is still
	// converted, just rendered at this indent level.
	maxNestingDepth = 10

	// maxDescentDepth bounds recursion over children links. A children cycle
	// would otherwise recurse without limit; hitting the ceiling truncates
	// descent with a warning.
	maxDescentDepth = 100
)

// paragraphTypes are the block types that get an extra blank line between
// themselves and any adjacent root fragment.
var paragraphTypes = map[types.BlockType]bool{
	types.BlockText:     true,
	types.BlockCode:     true,
	types.BlockQuote:    true,
	types.BlockEquation: true,
	types.BlockHeading1: true,
	types.BlockHeading2: true,
	types.BlockHeading3: true,
	types.BlockHeading4: true,
	types.BlockHeading5: true,
	types.BlockHeading6: true,
	types.BlockTable:    true,
}

var excessBlankLines = regexp.MustCompile(`\n{3,}`)

// Converter renders block collections to Markdown. It holds no per-call
// state, so a single Converter is safe for concurrent use.
type Converter struct {
	warn io.Writer
}

// Option configures a Converter.
type Option func(*Converter)

// WithWarnings directs per-block warnings to w. By default warnings are
// discarded.
func WithWarnings(w io.Writer) Option {
	return func(c *Converter) { c.warn = w }
}

// New returns a Converter ready for use.
func New(opts ...Option) *Converter {
	c := &Converter{warn: io.Discard}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stats summarizes what a conversion dropped or degraded.
type Stats struct {
	// Skipped counts blocks rejected by validation (unrecognized type tags).
	Skipped int

	// Unsupported counts blocks whose type is recognized but not renderable;
	// they appear in the output as comment markers.
	Unsupported int
}

// Convert renders blocks to Markdown. Root blocks (no resolvable parent) are
// processed in input order; children are reached through their parent's
// Children ids. Individual malformed blocks produce warnings and empty
// fragments, never an error. The result may be empty when nothing was
// convertible.
func (c *Converter) Convert(blocks []types.Block) (string, error) {
	out, _, err := c.ConvertWithStats(blocks)
	return out, err
}

// ConvertWithStats is Convert plus drop counts for callers that report them.
func (c *Converter) ConvertWithStats(blocks []types.Block) (string, Stats, error) {
	if blocks == nil {
		return "", Stats{}, ErrNilInput
	}

	var stats Stats
	valid := c.validate(blocks)
	stats.Skipped = len(blocks) - len(valid)
	for _, b := range valid {
		if !renderable(b.BlockType) {
			stats.Unsupported++
		}
	}

	if len(valid) == 0 {
		c.warnf("no valid blocks to convert")
		return "", stats, nil
	}

	index, roots := buildHierarchy(valid)

	var fragments []fragment
	for _, root := range roots {
		text := c.convertBlock(root, index, 0)
		if text != "" {
			fragments = append(fragments, fragment{text: text, blockType: root.BlockType})
		}
	}

	return cleanOutput(mergeFragments(fragments)), stats, nil
}

// renderable reports whether the dispatcher has a dedicated converter for t;
// everything else goes through the unsupported-marker path.
func renderable(t types.BlockType) bool {
	switch t {
	case types.BlockPage, types.BlockText,
		types.BlockHeading1, types.BlockHeading2, types.BlockHeading3,
		types.BlockHeading4, types.BlockHeading5, types.BlockHeading6,
		types.BlockBullet, types.BlockOrdered, types.BlockCode,
		types.BlockQuote, types.BlockTodo, types.BlockEquation,
		types.BlockDivider, types.BlockImage, types.BlockTable,
		types.BlockTableCell:
		return true
	}
	return false
}

// validate filters the input to structurally well-formed blocks, preserving
// order. Entries with an unrecognized type tag are counted and skipped.
func (c *Converter) validate(blocks []types.Block) []*types.Block {
	valid := make([]*types.Block, 0, len(blocks))
	invalid := 0

	for i := range blocks {
		b := &blocks[i]
		if !b.BlockType.Known() {
			c.warnf("block %d: unrecognized type tag %d, skipping", i, b.BlockType)
			invalid++
			continue
		}
		valid = append(valid, b)
	}

	if invalid > 0 {
		c.warnf("skipped %d invalid block(s)", invalid)
	}
	return valid
}

// buildHierarchy indexes blocks by id and collects the roots: blocks whose
// parent id is empty or does not resolve within the collection. Roots keep
// input order.
func buildHierarchy(blocks []*types.Block) (map[string]*types.Block, []*types.Block) {
	index := make(map[string]*types.Block, len(blocks))
	for _, b := range blocks {
		index[b.BlockID] = b
	}

	var roots []*types.Block
	for _, b := range blocks {
		if b.ParentID == "" || index[b.ParentID] == nil {
			roots = append(roots, b)
		}
	}
	return index, roots
}

// convertBlock renders one block and then its children. Table and table-cell
// children are consumed by the table reconstructor, so descent skips them to
// avoid duplicate emission.
func (c *Converter) convertBlock(b *types.Block, index map[string]*types.Block, depth int) string {
	var lines []string

	if content := c.convertSingle(b, index, depth); content != "" {
		lines = append(lines, content)
	}

	if b.BlockType != types.BlockTable && b.BlockType != types.BlockTableCell {
		lines = append(lines, c.convertChildren(b, index, depth)...)
	}

	return strings.Join(lines, "\n")
}

// convertChildren renders a block's resolvable children in order at depth+1.
// Adjacent text children get a blank-line separator so consecutive paragraphs
// do not collapse into one.
func (c *Converter) convertChildren(b *types.Block, index map[string]*types.Block, depth int) []string {
	if len(b.Children) == 0 {
		return nil
	}
	if depth >= maxDescentDepth {
		c.warnf("block %s: children nested deeper than %d, truncating descent", b.BlockID, maxDescentDepth)
		return nil
	}

	children := make([]*types.Block, 0, len(b.Children))
	for _, id := range b.Children {
		if child := index[id]; child != nil {
			children = append(children, child)
		}
	}

	var lines []string
	for i, child := range children {
		content := c.convertBlock(child, index, depth+1)
		if content == "" {
			continue
		}
		lines = append(lines, content)
		if i < len(children)-1 &&
			child.BlockType == types.BlockText &&
			children[i+1].BlockType == types.BlockText {
			lines = append(lines, "")
		}
	}
	return lines
}

// fragment pairs a converted root's text with its source block type for
// paragraph separation decisions.
type fragment struct {
	text      string
	blockType types.BlockType
}

// mergeFragments joins root fragments with newlines, inserting an extra blank
// line when either side of an adjacency is a paragraph-separating type.
func mergeFragments(fragments []fragment) string {
	if len(fragments) == 0 {
		return ""
	}

	parts := make([]string, 0, len(fragments)*2)
	for i, f := range fragments {
		parts = append(parts, f.text)
		if i < len(fragments)-1 &&
			(paragraphTypes[f.blockType] || paragraphTypes[fragments[i+1].blockType]) {
			parts = append(parts, "")
		}
	}
	return strings.Join(parts, "\n")
}

// cleanOutput collapses runs of three or more newlines to exactly two and
// trims surrounding whitespace. Applying it twice yields the same result.
func cleanOutput(s string) string {
	return strings.TrimSpace(excessBlankLines.ReplaceAllString(s, "\n\n"))
}

func (c *Converter) warnf(format string, args ...any) {
	fmt.Fprintf(c.warn, "warning: "+format+"\n", args...)
}
