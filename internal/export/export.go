// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export drives the fetch-convert-write pipeline: it pulls a
// document's blocks from the API, renders them to Markdown, and saves the
// result under the configured output directory.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/meshintel/larkdown/internal/markdown"
	"github.com/meshintel/larkdown/pkg/types"
)

const backupsDir = "backups"

// Fetcher retrieves document metadata and blocks. *lark.Client implements it.
type Fetcher interface {
	GetDocumentInfo(ctx context.Context, docID string) (types.DocumentInfo, error)
	ListAllBlocks(ctx context.Context, docID string) ([]types.Block, error)
}

// Recorder appends export records to the history. *store.Store implements it.
type Recorder interface {
	Record(ctx context.Context, rec types.ExportRecord, markdown string) error
}

// MediaResolver maps media tokens to download URLs. *lark.Client implements it.
type MediaResolver interface {
	ResolveMediaURLs(ctx context.Context, tokens []string) map[string]string
}

// Exporter converts documents to Markdown files.
type Exporter struct {
	fetcher   Fetcher
	converter *markdown.Converter
	recorder  Recorder
	resolver  MediaResolver
	cfg       types.ExportConfig
}

// NewExporter builds an Exporter. recorder may be nil to skip history;
// warnings from the converter go to warn (nil discards them).
func NewExporter(fetcher Fetcher, recorder Recorder, cfg types.ExportConfig, warn io.Writer) *Exporter {
	var opts []markdown.Option
	if warn != nil {
		opts = append(opts, markdown.WithWarnings(warn))
	}
	return &Exporter{
		fetcher:   fetcher,
		converter: markdown.New(opts...),
		recorder:  recorder,
		cfg:       cfg,
	}
}

// ExportDocument fetches, converts, and writes one document. A document
// whose blocks produce no Markdown is reported as empty, not an error.
func (e *Exporter) ExportDocument(ctx context.Context, docID string) (types.ExportRecord, types.ExportStatus, error) {
	info, err := e.fetcher.GetDocumentInfo(ctx, docID)
	if err != nil {
		return types.ExportRecord{}, types.ExportFailed, err
	}

	blocks, err := e.fetcher.ListAllBlocks(ctx, docID)
	if err != nil {
		return types.ExportRecord{}, types.ExportFailed, err
	}

	content, err := e.converter.Convert(blocks)
	if err != nil {
		return types.ExportRecord{}, types.ExportFailed, fmt.Errorf("converting %s: %w", docID, err)
	}
	if content == "" {
		return types.ExportRecord{DocID: docID, Title: info.Title}, types.ExportEmpty, nil
	}
	if e.resolver != nil {
		content = e.resolveMediaLinks(ctx, blocks, content)
	}

	if err := os.MkdirAll(e.cfg.OutputDir, 0o755); err != nil {
		return types.ExportRecord{}, types.ExportFailed, fmt.Errorf("creating output directory: %w", err)
	}

	now := time.Now().UTC()
	filename := buildFilename(e.cfg.NamingPattern, info.Title, docID, now)
	path := uniquePath(e.cfg.OutputDir, filename)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return types.ExportRecord{}, types.ExportFailed, fmt.Errorf("writing %s: %w", path, err)
	}

	if e.cfg.BackupEnabled {
		if err := e.writeBackup(filepath.Base(path), content); err != nil {
			return types.ExportRecord{}, types.ExportFailed, err
		}
	}

	rec := types.ExportRecord{
		DocID:      docID,
		Title:      info.Title,
		FilePath:   path,
		ExportedAt: now,
		Size:       len(content),
	}
	if e.recorder != nil {
		if err := e.recorder.Record(ctx, rec, content); err != nil {
			return rec, types.ExportFailed, fmt.Errorf("recording history: %w", err)
		}
	}
	return rec, types.ExportDone, nil
}

// ResolveMediaWith makes subsequent exports swap each image's stable preview
// link for the URL the resolver returns for its token, typically the drive
// API's temporary download links.
func (e *Exporter) ResolveMediaWith(r MediaResolver) {
	e.resolver = r
}

func (e *Exporter) resolveMediaLinks(ctx context.Context, blocks []types.Block, content string) string {
	var tokens []string
	for _, b := range blocks {
		if b.Image == nil {
			continue
		}
		if token := strings.TrimSpace(b.Image.Token); token != "" {
			tokens = append(tokens, token)
		}
	}
	if len(tokens) == 0 {
		return content
	}

	for token, resolved := range e.resolver.ResolveMediaURLs(ctx, tokens) {
		content = strings.ReplaceAll(content, markdown.PreviewURL(token), resolved)
	}
	return content
}

func (e *Exporter) writeBackup(filename, content string) error {
	dir := filepath.Join(e.cfg.OutputDir, backupsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}
	path := uniquePath(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing backup %s: %w", path, err)
	}
	return nil
}

// BatchResult holds the outcome of a batch export run.
type BatchResult struct {
	Exported int
	Empty    int
	Failed   int
}

// Total returns the number of documents processed.
func (r BatchResult) Total() int {
	return r.Exported + r.Empty + r.Failed
}

// HasFailures reports whether any documents failed to export.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ExportBatch processes a list of document ids, printing per-document status
// to w and returning a summary. One document's failure does not stop the
// rest.
func (e *Exporter) ExportBatch(ctx context.Context, docIDs []string, w io.Writer) (BatchResult, error) {
	var result BatchResult
	for _, docID := range docIDs {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		rec, status, err := e.ExportDocument(ctx, docID)
		switch status {
		case types.ExportDone:
			fmt.Fprintf(w, "exported: %s -> %s (%d bytes)\n", docID, rec.FilePath, rec.Size)
			result.Exported++
		case types.ExportEmpty:
			fmt.Fprintf(w, "empty:    %s (no convertible content)\n", docID)
			result.Empty++
		default:
			fmt.Fprintf(w, "failed:   %s (%v)\n", docID, err)
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d exported, %d empty, %d failed (total: %d)\n",
		result.Exported, result.Empty, result.Failed, result.Total())
	return result, nil
}
