// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meshintel/larkdown/internal/export"
	"github.com/meshintel/larkdown/internal/lark"
	"github.com/meshintel/larkdown/internal/markdown"
	"github.com/meshintel/larkdown/internal/store"
	"github.com/meshintel/larkdown/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export [doc-ids...]",
	Short: "Fetch documents from the API and save them as Markdown",
	Long: `Export fetches each document's block tree from the Lark open API,
converts it to Markdown, and writes one file per document to the output
directory. Every successful export is appended to the local history.

Documents whose blocks produce no Markdown are reported as empty; one
document's failure does not stop the rest of the batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	tokenFlag, _ := cmd.Flags().GetString("token")
	apiCfg, err := apiConfig(tokenFlag)
	if err != nil {
		return err
	}

	if noSave, _ := cmd.Flags().GetBool("no-save"); noSave {
		return printExports(lark.NewClient(apiCfg), args)
	}

	exportCfg := exportConfigFromFlags(cmd)

	var recorder export.Recorder
	noHistory, _ := cmd.Flags().GetBool("no-history")
	if !noHistory {
		s, err := store.NewStore(historyConfig(exportCfg.OutputDir))
		if err != nil {
			return err
		}
		defer s.Close()
		recorder = s
	}

	client := lark.NewClient(apiCfg)
	exporter := export.NewExporter(client, recorder, exportCfg, os.Stderr)
	if tmpURLs, _ := cmd.Flags().GetBool("tmp-urls"); tmpURLs {
		exporter.ResolveMediaWith(client)
	}

	result, err := exporter.ExportBatch(context.Background(), args, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed to export", result.Failed)
	}
	return nil
}

// printExports converts each document and writes the Markdown to stdout,
// separated by blank lines, without touching disk or history.
func printExports(client *lark.Client, docIDs []string) error {
	converter := markdown.New(markdown.WithWarnings(os.Stderr))
	for i, docID := range docIDs {
		blocks, err := client.ListAllBlocks(context.Background(), docID)
		if err != nil {
			return err
		}
		content, err := converter.Convert(blocks)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(content)
	}
	return nil
}

func exportConfigFromFlags(cmd *cobra.Command) types.ExportConfig {
	outputDir, _ := cmd.Flags().GetString("output-dir")
	if outputDir == "" {
		outputDir = viper.GetString("export.output_dir")
	}
	if outputDir == "" {
		outputDir = "exports"
	}

	pattern, _ := cmd.Flags().GetString("naming-pattern")
	if pattern == "" {
		pattern = viper.GetString("export.naming_pattern")
	}

	backup, _ := cmd.Flags().GetBool("backup")
	if !cmd.Flags().Changed("backup") {
		backup = viper.GetBool("export.backup_enabled")
	}

	return types.ExportConfig{
		OutputDir:     outputDir,
		NamingPattern: pattern,
		BackupEnabled: backup,
	}
}

func historyConfig(outputDir string) types.HistoryConfig {
	dir := viper.GetString("history.dir")
	if dir == "" {
		dir = outputDir
	}
	return types.HistoryConfig{
		Dir:        dir,
		MaxItems:   viper.GetInt("history.max_items"),
		MaxResults: viper.GetInt("history.max_results"),
	}
}

func init() {
	exportCmd.Flags().String("token", "", "user access token (overrides .secrets/lark-access-token)")
	exportCmd.Flags().String("output-dir", "", "directory for Markdown output (default: exports)")
	exportCmd.Flags().String("naming-pattern", "", "filename pattern with {title}, {timestamp}, {doc_id} placeholders")
	exportCmd.Flags().Bool("backup", false, "keep a copy of each export under backups/")
	exportCmd.Flags().Bool("no-history", false, "skip recording exports in the history database")
	exportCmd.Flags().Bool("tmp-urls", false, "replace image preview links with temporary drive download URLs (expire after ~24h)")
	exportCmd.Flags().Bool("no-save", false, "print Markdown to stdout instead of writing files")

	rootCmd.AddCommand(exportCmd)
}
