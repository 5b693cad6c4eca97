// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DocumentInfo is the document-level metadata returned by the open API.
type DocumentInfo struct {
	DocumentID string `json:"document_id" yaml:"document_id"`
	RevisionID int    `json:"revision_id" yaml:"revision_id"`
	Title      string `json:"title" yaml:"title"`
}

// ExportStatus indicates the outcome of one document export.
type ExportStatus string

const (
	ExportDone   ExportStatus = "exported"
	ExportEmpty  ExportStatus = "empty"
	ExportFailed ExportStatus = "failed"
)

// ExportRecord is one entry in the export history.
type ExportRecord struct {
	// DocID is the source document id.
	DocID string `json:"doc_id" yaml:"doc_id"`

	// Title is the document title at export time.
	Title string `json:"title" yaml:"title"`

	// FilePath is where the Markdown file was written.
	FilePath string `json:"file_path" yaml:"file_path"`

	// ExportedAt is the export timestamp (UTC).
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`

	// Size is the output size in bytes.
	Size int `json:"size" yaml:"size"`
}
