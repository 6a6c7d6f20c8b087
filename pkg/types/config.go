package types

import "time"

// HTTPConfig holds shared HTTP settings used when downloading sources.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pdfcraft/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries bounds retries on HTTP 429/503 responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// LoaderConfig holds settings for resolving a source to a local PDF.
type LoaderConfig struct {
	HTTPConfig `yaml:",inline"`

	// TempDir is where downloaded PDFs are stored (default $TMPDIR/pdfcraft).
	TempDir string `json:"temp_dir" yaml:"temp_dir"`

	// SecretsDir holds per-host bearer tokens for authenticated downloads.
	// Empty disables credentials.
	SecretsDir string `json:"secrets_dir" yaml:"secrets_dir"`
}

// SplitConfig holds settings for the split stage.
type SplitConfig struct {
	// OutputDir receives one PDF per split point (default ./split_pdfs).
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Filter selects which bookmarks become split points.
	Filter Filter `json:"filter" yaml:"filter"`

	// Manifest controls whether manifest.yaml is written to OutputDir.
	Manifest bool `json:"manifest" yaml:"manifest"`
}

// ConversionBackend identifies the PDF-to-text tool.
type ConversionBackend string

const (
	BackendText       ConversionBackend = "text"
	BackendPdftotext  ConversionBackend = "pdftotext"
	BackendMarkitdown ConversionBackend = "markitdown"
)

// ConversionConfig holds settings for the optional markdown stage.
type ConversionConfig struct {
	// Enabled turns on markdown conversion of every split file.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Backend selects the conversion tool: text, pdftotext, or markitdown.
	Backend ConversionBackend `json:"backend" yaml:"backend"`

	// MarkdownDir receives the .md files (default ./markdown).
	MarkdownDir string `json:"markdown_dir" yaml:"markdown_dir"`

	// Frontmatter prepends a YAML header naming the source PDF.
	Frontmatter bool `json:"frontmatter" yaml:"frontmatter"`
}

// CatalogConfig holds settings for the split history database.
type CatalogConfig struct {
	// Path is the SQLite database file. Empty disables the catalog.
	Path string `json:"path" yaml:"path"`

	// MaxResults is the default maximum number of query results (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations for one run.
type PipelineConfig struct {
	Loader     LoaderConfig     `json:"loader" yaml:"loader"`
	Split      SplitConfig      `json:"split" yaml:"split"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
	Catalog    CatalogConfig    `json:"catalog" yaml:"catalog"`

	// Cleanup removes downloaded temp PDFs once the run ends.
	Cleanup bool `json:"cleanup" yaml:"cleanup"`
}
