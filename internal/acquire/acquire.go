// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire resolves a source string (local path or URL) to a local
// PDF file, downloading remote sources into a dedicated temp directory.
package acquire

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pdfcraft/internal/httputil"
	"github.com/pdiddy/pdfcraft/internal/secrets"
	"github.com/pdiddy/pdfcraft/pkg/types"
)

const (
	// DefaultTimeout bounds a single download request.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent when the config does not name one.
	DefaultUserAgent = "pdfcraft/0.1"

	pdfMagic = "%PDF-"
)

// DefaultTempDir is the directory downloads land in when none is configured.
func DefaultTempDir() string {
	return filepath.Join(os.TempDir(), "pdfcraft")
}

// Loader resolves sources to local PDF files.
type Loader struct {
	client *http.Client
	cfg    types.LoaderConfig
	tokens secrets.Tokens
	log    logrus.FieldLogger
}

// NewLoader builds a Loader, filling unset config fields with defaults.
func NewLoader(cfg types.LoaderConfig, log logrus.FieldLogger) *Loader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.TempDir == "" {
		cfg.TempDir = DefaultTempDir()
	}
	l := &Loader{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		log:    log,
	}
	if cfg.SecretsDir != "" {
		tokens, err := secrets.Load(cfg.SecretsDir, log)
		if err != nil {
			log.WithError(err).Warn("download credentials unavailable")
		} else if len(tokens) > 0 {
			log.WithField("hosts", tokens.Hosts()).Debug("loaded download credentials")
		}
		l.tokens = tokens
	}
	return l
}

// TempDir returns the download directory.
func (l *Loader) TempDir() string {
	return l.cfg.TempDir
}

// Load returns a local path for source. URLs are downloaded; local paths are
// validated and returned unchanged.
func (l *Loader) Load(ctx context.Context, source string) (string, error) {
	source = strings.TrimSpace(source)
	if IsURL(source) {
		return l.Download(ctx, source)
	}
	if err := ValidateLocal(source); err != nil {
		return "", err
	}
	l.log.WithField("path", source).Info("using local PDF")
	return source, nil
}

// Download fetches rawURL into the temp directory through a temporary file
// that is renamed into place on success. A non-PDF content type or a body
// without the PDF header is logged, not rejected.
func (l *Loader) Download(ctx context.Context, rawURL string) (string, error) {
	log := l.log.WithField("url", rawURL)

	if err := os.MkdirAll(l.cfg.TempDir, 0o755); err != nil {
		return "", fmt.Errorf("creating temp directory %s: %w", l.cfg.TempDir, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", l.cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")
	if tok := l.tokens.For(req.URL.Host); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
		log.Debug("sending credentials")
	}

	log.Info("downloading PDF")
	resp, err := httputil.DoWithRetry(ctx, l.client, req, l.cfg.MaxRetries, log)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("downloading %s: HTTP %d", rawURL, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(strings.ToLower(ct), "pdf") {
		log.WithField("content_type", ct).Warn("response may not be a PDF")
	}

	destPath := filepath.Join(l.cfg.TempDir, FilenameFromURL(rawURL))
	n, err := writeAtomic(destPath, resp.Body, log)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", rawURL, err)
	}

	log.WithFields(logrus.Fields{"path": destPath, "bytes": n}).Info("downloaded PDF")
	return destPath, nil
}

// writeAtomic streams body to destPath via a temp file in the same
// directory, checking the PDF header on the way.
func writeAtomic(destPath string, body io.Reader, log logrus.FieldLogger) (int64, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".download-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	head := make([]byte, len(pdfMagic))
	k, _ := io.ReadFull(body, head)
	head = head[:k]
	if !bytes.Equal(head, []byte(pdfMagic)) {
		log.Warn("downloaded content does not start with a PDF header")
	}

	n, copyErr := io.Copy(tmpFile, io.MultiReader(bytes.NewReader(head), body))
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return n, nil
}

// Cleanup removes every *.pdf in the temp directory and returns how many
// were removed. A missing directory is not an error.
func (l *Loader) Cleanup() (int, error) {
	matches, err := filepath.Glob(filepath.Join(l.cfg.TempDir, "*.pdf"))
	if err != nil {
		return 0, fmt.Errorf("listing %s: %w", l.cfg.TempDir, err)
	}

	removed := 0
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			l.log.WithField("path", m).WithError(err).Warn("could not remove temp PDF")
			continue
		}
		removed++
	}
	l.log.WithFields(logrus.Fields{"dir": l.cfg.TempDir, "removed": removed}).Info("cleaned up temp PDFs")
	return removed, nil
}

// BatchResult holds the outcome of a batch download.
type BatchResult struct {
	Downloaded int
	Failed     int
	Paths      []string
}

// Total returns the number of URLs processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Failed
}

// HasFailures reports whether any download failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// FetchBatch downloads each URL, printing per-item status to w and
// continuing past individual failures. It stops early when ctx is done.
func (l *Loader) FetchBatch(ctx context.Context, urls []string, w io.Writer) BatchResult {
	var result BatchResult
	for _, u := range urls {
		if ctx.Err() != nil {
			break
		}
		if !IsURL(u) {
			fmt.Fprintf(w, "failed:  %s (not a URL)\n", u)
			result.Failed++
			continue
		}
		p, err := l.Download(ctx, u)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", u, err)
			result.Failed++
			continue
		}
		fmt.Fprintf(w, "fetched: %s\n", p)
		result.Downloaded++
		result.Paths = append(result.Paths, p)
	}
	fmt.Fprintf(w, "\nBatch summary: %d downloaded, %d failed (total: %d)\n",
		result.Downloaded, result.Failed, result.Total())
	return result
}
