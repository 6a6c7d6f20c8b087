// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
)

const binPdftotext = "pdftotext"

// tool runs a host binary; container.Tool implements it.
type tool interface {
	Name() string
	Run(ctx context.Context, args []string, stdout io.Writer) error
}

// PdftotextConverter runs poppler's pdftotext in layout mode.
type PdftotextConverter struct {
	tool tool
}

// NewPdftotextConverter wraps t, which must run the pdftotext binary.
func NewPdftotextConverter(t tool) *PdftotextConverter {
	return &PdftotextConverter{tool: t}
}

// Convert returns the layout-preserving text of pdfPath. Page breaks
// (form feeds) become blank lines.
func (p *PdftotextConverter) Convert(ctx context.Context, pdfPath string) (string, error) {
	var out bytes.Buffer
	if err := p.tool.Run(ctx, []string{"-layout", pdfPath, "-"}, &out); err != nil {
		return "", fmt.Errorf("converting %s with %s: %w", pdfPath, p.tool.Name(), err)
	}
	return string(bytes.ReplaceAll(out.Bytes(), []byte("\f"), []byte("\n\n"))), nil
}
