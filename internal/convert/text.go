// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// TextConverter extracts plain text in pure Go, one block per page joined
// by blank lines. It needs no external tools.
type TextConverter struct{}

// Convert returns the text of every page of pdfPath. Pages that fail to
// decode are skipped. A parser panic is returned as an error.
func (TextConverter) Convert(ctx context.Context, pdfPath string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parsing %s: %v", pdfPath, r)
		}
	}()

	f, reader, err := pdflib.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if content = strings.TrimSpace(content); content != "" {
			pages = append(pages, content)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}
