// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/meshintel/larkdown/pkg/types"
)

// tableFixture builds a table block plus its cells, each cell holding one
// text child. When withCells is set the table payload lists the cell ids in
// row-major order; otherwise discovery must recover them.
func tableFixture(rows, cols int, contents []string, withCells bool) []types.Block {
	table := types.Block{
		BlockID:   "tbl",
		BlockType: types.BlockTable,
		Table: &types.TablePayload{
			Property: types.TableProperty{RowSize: rows, ColumnSize: cols},
		},
	}

	blocks := []types.Block{table}
	for i, content := range contents {
		cellID := fmt.Sprintf("cell%d", i)
		textID := fmt.Sprintf("txt%d", i)
		if withCells {
			blocks[0].Table.Cells = append(blocks[0].Table.Cells, cellID)
		}
		blocks[0].Children = append(blocks[0].Children, cellID)

		blocks = append(blocks,
			types.Block{
				BlockID:   cellID,
				BlockType: types.BlockTableCell,
				ParentID:  "tbl",
				Children:  []string{textID},
				TableCell: &types.TableCellPayload{},
			},
			types.Block{
				BlockID:   textID,
				BlockType: types.BlockText,
				ParentID:  cellID,
				Text: &types.TextPayload{Elements: []types.Element{{
					TextRun: &types.TextRun{Content: content},
				}}},
			},
		)
	}
	return blocks
}

func TestConvertTable_RowMajor(t *testing.T) {
	blocks := tableFixture(2, 2, []string{"A", "B", "C", "D"}, true)

	got, err := New().Convert(blocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "| A | B |\n| --- | --- |\n| C | D |"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConvertTable_CellsRecoveredFromChildren(t *testing.T) {
	blocks := tableFixture(2, 2, []string{"A", "B", "C", "D"}, false)

	got, err := New().Convert(blocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "| A | B |\n| --- | --- |\n| C | D |"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConvertTable_CellsRecoveredByParentScan(t *testing.T) {
	// No cells list and no children on the table block: discovery scans the
	// index for cells whose parent is the table and orders them by their
	// (row, column) hints.
	blocks := []types.Block{
		{
			BlockID:   "tbl",
			BlockType: types.BlockTable,
			Table: &types.TablePayload{
				Property: types.TableProperty{RowSize: 1, ColumnSize: 2},
			},
		},
	}
	for i, content := range []string{"right", "left"} {
		cellID := fmt.Sprintf("cell%d", i)
		textID := fmt.Sprintf("txt%d", i)
		blocks = append(blocks,
			types.Block{
				BlockID:   cellID,
				BlockType: types.BlockTableCell,
				ParentID:  "tbl",
				Children:  []string{textID},
				TableCell: &types.TableCellPayload{RowIndex: 0, ColumnIndex: 1 - i},
			},
			types.Block{
				BlockID:   textID,
				BlockType: types.BlockText,
				ParentID:  cellID,
				Text: &types.TextPayload{Elements: []types.Element{{
					TextRun: &types.TextRun{Content: content},
				}}},
			},
		)
	}

	got, err := New().Convert(blocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "| left | right |\n| --- | --- |"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConvertTable_CellCountMismatch(t *testing.T) {
	// 2x2 declared, only 2 cells available: remaining slots stay empty.
	blocks := tableFixture(2, 2, []string{"A", "B"}, true)

	var warnings bytes.Buffer
	got, err := New(WithWarnings(&warnings)).Convert(blocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "| A | B |\n| --- | --- |\n|  |  |"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !strings.Contains(warnings.String(), "mismatch") {
		t.Errorf("expected a mismatch warning, got %q", warnings.String())
	}
}

func TestConvertTable_InvalidDimensionsDropped(t *testing.T) {
	blocks := tableFixture(0, 2, []string{"A", "B"}, true)

	got, err := New().Convert(blocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty output", got)
	}
}

func TestConvertTable_PipesEscaped(t *testing.T) {
	blocks := tableFixture(1, 2, []string{"a|b", "c"}, true)

	got, err := New().Convert(blocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(stripStructuralPipes(got), "|") {
		t.Errorf("unescaped pipe inside a cell: %q", got)
	}
	if !strings.Contains(got, `a\|b`) {
		t.Errorf("expected escaped pipe, got %q", got)
	}
}

// stripStructuralPipes removes the table's own delimiters and escaped pipes,
// leaving only stray unescaped pipes inside cell text.
func stripStructuralPipes(table string) string {
	var out []string
	for _, line := range strings.Split(table, "\n") {
		line = strings.TrimPrefix(line, "| ")
		line = strings.TrimSuffix(line, " |")
		line = strings.ReplaceAll(line, " | ", " ")
		line = strings.ReplaceAll(line, `\|`, "")
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func TestConvertTable_MixedCellContent(t *testing.T) {
	blocks := []types.Block{
		{
			BlockID:   "tbl",
			BlockType: types.BlockTable,
			Children:  []string{"cell0"},
			Table: &types.TablePayload{
				Property: types.TableProperty{RowSize: 1, ColumnSize: 1},
				Cells:    []string{"cell0"},
			},
		},
		{
			BlockID:   "cell0",
			BlockType: types.BlockTableCell,
			ParentID:  "tbl",
			Children:  []string{"t0", "c0", "i0"},
			TableCell: &types.TableCellPayload{},
		},
		{
			BlockID:   "t0",
			BlockType: types.BlockText,
			ParentID:  "cell0",
			Text: &types.TextPayload{Elements: []types.Element{{
				TextRun: &types.TextRun{Content: "note"},
			}}},
		},
		{
			BlockID:   "c0",
			BlockType: types.BlockCode,
			ParentID:  "cell0",
			Code: &types.CodePayload{Elements: []types.Element{{
				TextRun: &types.TextRun{Content: "ls -l"},
			}}},
		},
		{
			BlockID:   "i0",
			BlockType: types.BlockImage,
			ParentID:  "cell0",
			Image:     &types.ImagePayload{Token: "boxcn123"},
		},
	}

	got, err := New().Convert(blocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "| note `ls -l` [image] |\n| --- |"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConvertTable_NewlinesFlattenedInCells(t *testing.T) {
	blocks := tableFixture(1, 1, []string{`line1\nline2`}, true)

	got, err := New().Convert(blocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "| line1 line2 |\n| --- |"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConvertTable_AllEmptyDropped(t *testing.T) {
	blocks := tableFixture(2, 2, []string{"", "", "", ""}, true)

	got, err := New().Convert(blocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty output for an all-empty table", got)
	}
}

func TestConvertTable_GeometryClamped(t *testing.T) {
	rows, cols := 3, maxTableCols+10
	contents := make([]string, rows*cols)
	for i := range contents {
		contents[i] = fmt.Sprintf("c%d", i)
	}
	blocks := tableFixture(rows, cols, contents, true)

	got, err := New().Convert(blocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(got, "\n")
	if len(lines) != rows+1 {
		t.Fatalf("got %d lines, want %d", len(lines), rows+1)
	}
	header := strings.Count(lines[0], " | ")
	if header != maxTableCols-1 {
		t.Errorf("header has %d column separators, want %d", header, maxTableCols-1)
	}
}
