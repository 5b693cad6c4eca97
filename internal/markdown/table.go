// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markdown

import (
	"sort"
	"strings"

	"github.com/meshintel/larkdown/pkg/types"
)

const (
	// maxTableRows and maxTableCols bound matrix allocation. Larger declared
	// geometries are clamped; cells beyond the clamp are dropped.
	maxTableRows = 1000
	maxTableCols = 50
)

// convertTable rebuilds a row/column matrix from the table's declared
// geometry and its cell references, then renders it as a Markdown table. A
// cell-count mismatch is logged but not fatal: available cells are placed in
// row-major order and remaining slots stay empty.
func (c *Converter) convertTable(b *types.Block, index map[string]*types.Block) string {
	t := b.Table
	if t == nil {
		c.warnf("table %s: missing table payload", b.BlockID)
		return ""
	}

	rows, cols := t.Property.RowSize, t.Property.ColumnSize
	if rows <= 0 || cols <= 0 {
		c.warnf("table %s: invalid dimensions %dx%d", b.BlockID, rows, cols)
		return ""
	}
	if rows > maxTableRows || cols > maxTableCols {
		c.warnf("table %s: oversized %dx%d, clamping to %dx%d",
			b.BlockID, rows, cols, min(rows, maxTableRows), min(cols, maxTableCols))
		rows = min(rows, maxTableRows)
		cols = min(cols, maxTableCols)
	}

	cellIDs := t.Cells
	if len(cellIDs) == 0 {
		cellIDs = discoverCells(b, index)
	}

	if len(cellIDs) != rows*cols {
		c.warnf("table %s: cell count mismatch: want %d, have %d, rendering what is available",
			b.BlockID, rows*cols, len(cellIDs))
	}

	matrix := c.buildMatrix(cellIDs, rows, cols, index)
	if !hasContent(matrix) {
		c.warnf("table %s: no cell content", b.BlockID)
		return ""
	}

	return formatTable(matrix)
}

// discoverCells recovers the row-major cell-id list when the table payload
// does not carry one. It prefers the table's own children of cell type; if
// none exist it scans the whole index for cells whose parent is this table,
// ordered by their (row, column) hints. Cells without hints sort as (0, 0);
// the stable sort keeps their scan order, which follows the index's id order.
func discoverCells(b *types.Block, index map[string]*types.Block) []string {
	var cells []string
	for _, id := range b.Children {
		if child := index[id]; child != nil && child.BlockType == types.BlockTableCell {
			cells = append(cells, id)
		}
	}
	if len(cells) > 0 {
		return cells
	}

	ids := make([]string, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		blk := index[id]
		if blk.BlockType == types.BlockTableCell && blk.ParentID == b.BlockID {
			cells = append(cells, id)
		}
	}

	sort.SliceStable(cells, func(i, j int) bool {
		ri, ci := cellPosition(index[cells[i]])
		rj, cj := cellPosition(index[cells[j]])
		if ri != rj {
			return ri < rj
		}
		return ci < cj
	})
	return cells
}

func cellPosition(b *types.Block) (row, col int) {
	if b == nil || b.TableCell == nil {
		return 0, 0
	}
	return b.TableCell.RowIndex, b.TableCell.ColumnIndex
}

// buildMatrix places cell contents by row-major index: cell i lands at
// (i/cols, i%cols). Cells past the clamped geometry are dropped.
func (c *Converter) buildMatrix(cellIDs []string, rows, cols int, index map[string]*types.Block) [][]string {
	matrix := make([][]string, rows)
	for r := range matrix {
		matrix[r] = make([]string, cols)
	}

	for i, id := range cellIDs {
		if id == "" {
			continue
		}
		row, col := i/cols, i%cols
		if row >= rows {
			break
		}
		matrix[row][col] = c.extractCellContent(id, index)
	}
	return matrix
}

// extractCellContent renders one cell from its children: text children keep
// inline styling, code children collapse to inline code, images become a
// placeholder, and anything else carrying elements goes through the inline
// renderer. Fragments are joined with single spaces and sanitized for table
// context.
func (c *Converter) extractCellContent(cellID string, index map[string]*types.Block) string {
	cell := index[cellID]
	if cell == nil || cell.BlockType != types.BlockTableCell {
		return ""
	}

	var parts []string
	for _, childID := range cell.Children {
		child := index[childID]
		if child == nil {
			continue
		}

		switch child.BlockType {
		case types.BlockText:
			if child.Text == nil {
				continue
			}
			if content := strings.TrimSpace(c.renderElements(child.Text.Elements, false)); content != "" {
				parts = append(parts, content)
			}
		case types.BlockCode:
			if child.Code == nil {
				continue
			}
			if content := strings.TrimSpace(c.renderElements(child.Code.Elements, true)); content != "" {
				parts = append(parts, "`"+content+"`")
			}
		case types.BlockImage:
			parts = append(parts, "[image]")
		default:
			if elements, ok := payloadElements(child); ok {
				if content := strings.TrimSpace(c.renderElements(elements, false)); content != "" {
					parts = append(parts, content)
				}
			}
		}
	}

	return sanitizeCell(strings.Join(parts, " "))
}

// sanitizeCell makes content safe inside a table row: newlines become
// spaces, pipes are escaped, and whitespace runs collapse to one space.
func sanitizeCell(content string) string {
	content = strings.NewReplacer("\n", " ", "\r", " ").Replace(content)
	content = strings.ReplaceAll(content, "|", `\|`)
	return strings.Join(strings.Fields(content), " ")
}

func hasContent(matrix [][]string) bool {
	for _, row := range matrix {
		for _, cell := range row {
			if cell != "" {
				return true
			}
		}
	}
	return false
}

// formatTable renders the matrix with the first row as header, a "---"
// separator per column, then the data rows.
func formatTable(matrix [][]string) string {
	if len(matrix) == 0 || len(matrix[0]) == 0 {
		return ""
	}

	cols := len(matrix[0])
	lines := make([]string, 0, len(matrix)+1)
	lines = append(lines, tableRow(matrix[0]))

	separator := make([]string, cols)
	for i := range separator {
		separator[i] = "---"
	}
	lines = append(lines, tableRow(separator))

	for _, row := range matrix[1:] {
		lines = append(lines, tableRow(row))
	}
	return strings.Join(lines, "\n")
}

func tableRow(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}
