// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// MaxOutlineDepth is the deepest outline nesting level that is extracted.
// Entries below it are dropped with a warning.
const MaxOutlineDepth = 10

// Bookmark is one flattened outline entry.
type Bookmark struct {
	// Title is the outline entry text as shown in a PDF viewer.
	Title string `json:"title" yaml:"title"`

	// Page is the 1-indexed target page.
	Page int `json:"page" yaml:"page"`

	// Level is the nesting depth; 0 is a top-level entry.
	Level int `json:"level" yaml:"level"`
}

func (b Bookmark) String() string {
	return fmt.Sprintf("%q p.%d L%d", b.Title, b.Page, b.Level)
}

// OpenEnd marks a SplitPoint that extends to the last page of the document.
const OpenEnd = 0

// SplitPoint is a contiguous page range derived from a bookmark.
type SplitPoint struct {
	Title     string `json:"title" yaml:"title"`
	StartPage int    `json:"start_page" yaml:"start_page"`

	// EndPage is the last page (inclusive), or OpenEnd.
	EndPage int `json:"end_page,omitempty" yaml:"end_page,omitempty"`

	Level int `json:"level" yaml:"level"`
}

// IsOpen reports whether the range runs to the end of the document.
func (s SplitPoint) IsOpen() bool {
	return s.EndPage == OpenEnd
}

// ResolveEnd returns the inclusive end page, substituting total for an open end.
func (s SplitPoint) ResolveEnd(total int) int {
	if s.IsOpen() {
		return total
	}
	return s.EndPage
}

func (s SplitPoint) String() string {
	if s.IsOpen() {
		return fmt.Sprintf("%q %d-end", s.Title, s.StartPage)
	}
	return fmt.Sprintf("%q %d-%d", s.Title, s.StartPage, s.EndPage)
}

// Section records one split file that was written to disk.
type Section struct {
	// Position is the 1-indexed position of the split point in its batch.
	Position int `json:"position" yaml:"position"`

	Title string `json:"title" yaml:"title"`
	Level int    `json:"level" yaml:"level"`

	// StartPage and EndPage are the resolved, clamped 1-indexed bounds.
	StartPage int `json:"start_page" yaml:"start_page"`
	EndPage   int `json:"end_page" yaml:"end_page"`

	// Pages is the number of pages actually copied; it can be lower than
	// EndPage-StartPage+1 when individual pages were skipped.
	Pages int `json:"pages" yaml:"pages"`

	PDFPath      string `json:"pdf_path" yaml:"pdf_path"`
	MarkdownPath string `json:"markdown_path,omitempty" yaml:"markdown_path,omitempty"`
}
