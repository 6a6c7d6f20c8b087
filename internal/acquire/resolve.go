// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"
)

var (
	// ErrNotFound is returned for a local source that does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrNotPDF is returned for a local source without a .pdf extension or
	// that is not a regular file.
	ErrNotPDF = errors.New("not a PDF file")
)

// IsURL reports whether source parses as a URL with both a scheme and a
// host. Anything else is treated as a local path.
func IsURL(source string) bool {
	u, err := url.Parse(strings.TrimSpace(source))
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// FilenameFromURL returns the local filename for a downloaded PDF: the last
// path segment when it ends in .pdf, otherwise downloaded_pdf_<hash>.pdf.
func FilenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return hashName(rawURL)
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" || !strings.EqualFold(path.Ext(base), ".pdf") {
		return hashName(rawURL)
	}
	if strings.ContainsAny(base, `/\`) || strings.HasPrefix(base, ".") {
		return hashName(rawURL)
	}
	return base
}

func hashName(rawURL string) string {
	h := sha256.Sum256([]byte(rawURL))
	return fmt.Sprintf("downloaded_pdf_%x.pdf", h[:8])
}

// ValidateLocal checks that path names an existing regular file with a .pdf
// extension (case-insensitive).
func ValidateLocal(p string) error {
	info, err := os.Stat(p)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking %s: %w", p, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file: %w", p, ErrNotPDF)
	}
	if !strings.EqualFold(path.Ext(p), ".pdf") {
		return fmt.Errorf("%s: %w", p, ErrNotPDF)
	}
	return nil
}
