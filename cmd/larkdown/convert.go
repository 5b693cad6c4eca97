// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/meshintel/larkdown/internal/markdown"
	"github.com/meshintel/larkdown/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [blocks.json]",
	Short: "Convert an already-fetched block dump to Markdown",
	Long: `Convert renders a JSON block dump to Markdown without touching the
API. The input is either a JSON array of blocks or an object with an
"items" array, as returned by the block listing endpoint. Use "-" to read
from stdin.

Conversion warnings (unknown block types, malformed tables) go to stderr;
the Markdown goes to stdout or --output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	blocks, err := decodeBlocks(data)
	if err != nil {
		return err
	}

	content, err := markdown.New(markdown.WithWarnings(os.Stderr)).Convert(blocks)
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		fmt.Println(content)
		return nil
	}
	if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s (%d bytes)\n", outPath, len(content))
	return nil
}

// decodeBlocks accepts a bare block array or an {"items": [...]} wrapper.
func decodeBlocks(data []byte) ([]types.Block, error) {
	var blocks []types.Block
	if err := json.Unmarshal(data, &blocks); err == nil {
		return blocks, nil
	}

	var wrapper struct {
		Items []types.Block `json:"items"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parsing block dump: %w", err)
	}
	if wrapper.Items == nil {
		return nil, fmt.Errorf("parsing block dump: no block array found")
	}
	return wrapper.Items, nil
}

func init() {
	convertCmd.Flags().String("output", "", "write Markdown to a file instead of stdout")

	rootCmd.AddCommand(convertCmd)
}
