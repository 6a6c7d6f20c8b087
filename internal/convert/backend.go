// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/pdfcraft/internal/container"
	"github.com/pdiddy/pdfcraft/pkg/types"
)

// ParseBackend maps a backend name (case-insensitive) to a
// ConversionBackend. The empty string selects the text backend.
func ParseBackend(name string) (types.ConversionBackend, error) {
	switch b := types.ConversionBackend(strings.ToLower(strings.TrimSpace(name))); b {
	case "":
		return types.BackendText, nil
	case types.BackendText, types.BackendPdftotext, types.BackendMarkitdown:
		return b, nil
	default:
		return "", fmt.Errorf("unknown conversion backend %q (want text, pdftotext or markitdown)", name)
	}
}

// NewConverter builds the converter for backend, checking that any
// external tool it needs is present.
func NewConverter(ctx context.Context, backend types.ConversionBackend) (Converter, error) {
	switch backend {
	case types.BackendText, "":
		return TextConverter{}, nil
	case types.BackendPdftotext:
		t, err := container.LookupTool(binPdftotext)
		if err != nil {
			return nil, err
		}
		return NewPdftotextConverter(t), nil
	case types.BackendMarkitdown:
		rt, err := container.DetectRuntime(ctx)
		if err != nil {
			return nil, err
		}
		return NewMarkitdownConverter(ctx, rt)
	default:
		return nil, fmt.Errorf("unknown conversion backend %q", backend)
	}
}
