// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for components that call the open API.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "larkdown/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// APIConfig holds settings for the document fetch client.
type APIConfig struct {
	HTTPConfig `yaml:",inline"`

	// AccessToken is the user access token used as the bearer credential.
	// Usually supplied via .secrets/lark-access-token rather than config.
	AccessToken string `json:"access_token,omitempty" yaml:"access_token,omitempty"`

	// PageSize is the block-list page size (default 500, the API maximum).
	PageSize int `json:"page_size" yaml:"page_size"`

	// MaxRetries is the retry budget for rate-limited requests (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ExportConfig holds settings for saving converted documents.
type ExportConfig struct {
	// OutputDir is the directory converted Markdown files are written to.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// NamingPattern builds output filenames. Recognized placeholders:
	// {title}, {timestamp}, {doc_id}. Default "{title}_{timestamp}".
	NamingPattern string `json:"naming_pattern" yaml:"naming_pattern"`

	// BackupEnabled writes a timestamped copy of every export under
	// OutputDir/backups/.
	BackupEnabled bool `json:"backup_enabled" yaml:"backup_enabled"`
}

// HistoryConfig holds settings for the export history store.
type HistoryConfig struct {
	// Dir is the directory holding the history database (default the
	// output directory).
	Dir string `json:"dir" yaml:"dir"`

	// MaxItems caps the number of retained history records (default 100).
	MaxItems int `json:"max_items" yaml:"max_items"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// AppConfig groups all component configurations.
type AppConfig struct {
	API     APIConfig     `json:"api" yaml:"api"`
	Export  ExportConfig  `json:"export" yaml:"export"`
	History HistoryConfig `json:"history" yaml:"history"`
}
