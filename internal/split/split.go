// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package split writes one PDF per split point.
package split

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pdfcraft/pkg/types"
)

// Document is an opened source PDF that pages can be copied out of.
// internal/pdfdoc implements it on top of pdfcpu.
type Document interface {
	// PageCount returns the number of pages in the document.
	PageCount() int

	// CheckPage reports whether the 1-indexed page can be copied.
	CheckPage(page int) error

	// WritePages writes a new PDF holding the given 1-indexed pages, in
	// order, to path.
	WritePages(pages []int, path string) error
}

// Splitter copies page ranges of a Document into separate files.
type Splitter struct {
	log logrus.FieldLogger
}

// New returns a Splitter that reports progress to log.
func New(log logrus.FieldLogger) *Splitter {
	return &Splitter{log: log}
}

// Split writes one PDF per split point into outputDir and returns the
// sections that were created. Invalid ranges and pages that cannot be
// copied are logged and skipped; a split point is only dropped when none of
// its pages are usable. The returned error is reserved for failures that
// affect the whole batch (output directory, cancellation).
func (s *Splitter) Split(ctx context.Context, doc Document, points []types.SplitPoint, outputDir string) ([]types.Section, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", outputDir, err)
	}

	total := doc.PageCount()
	s.log.WithFields(logrus.Fields{
		"pages":      total,
		"split":      len(points),
		"output_dir": outputDir,
	}).Info("splitting PDF")

	used := make(map[string]int)
	sections := make([]types.Section, 0, len(points))
	for i, sp := range points {
		if err := ctx.Err(); err != nil {
			return sections, err
		}

		sec, ok := s.splitOne(doc, sp, i+1, total, outputDir, used)
		if ok {
			sections = append(sections, sec)
		}
	}

	s.log.WithField("count", len(sections)).Info("created split PDF files")
	return sections, nil
}

func (s *Splitter) splitOne(doc Document, sp types.SplitPoint, position, total int, outputDir string, used map[string]int) (types.Section, bool) {
	log := s.log.WithField("title", sp.Title)

	start := clamp(sp.StartPage-1, 0, total)
	end := clamp(sp.ResolveEnd(total), 0, total)
	if start >= end {
		log.WithFields(logrus.Fields{
			"start": start + 1,
			"end":   end,
		}).Warn("invalid page range, skipping")
		return types.Section{}, false
	}

	pages := make([]int, 0, end-start)
	for p := start + 1; p <= end; p++ {
		if err := doc.CheckPage(p); err != nil {
			log.WithField("page", p).WithError(err).Warn("cannot copy page, skipping it")
			continue
		}
		pages = append(pages, p)
	}
	if len(pages) == 0 {
		log.Warn("no pages could be copied")
		return types.Section{}, false
	}

	stem := uniqueStem(SanitizeTitle(sp.Title, position), used)
	path := filepath.Join(outputDir, stem+".pdf")
	if err := writeAtomic(doc, pages, path); err != nil {
		if len(pages) == 1 {
			log.WithError(err).Error("writing split PDF failed")
			return types.Section{}, false
		}
		log.WithError(err).Warn("writing split PDF failed, retrying page by page")
		pages = writablePages(doc, pages, outputDir, log)
		if len(pages) == 0 {
			log.Error("no pages could be written")
			return types.Section{}, false
		}
		if err := writeAtomic(doc, pages, path); err != nil {
			log.WithError(err).Error("writing split PDF failed")
			return types.Section{}, false
		}
	}

	log.WithFields(logrus.Fields{
		"file":  filepath.Base(path),
		"pages": len(pages),
	}).Info("created split PDF")

	return types.Section{
		Position:  position,
		Title:     sp.Title,
		Level:     sp.Level,
		StartPage: start + 1,
		EndPage:   end,
		Pages:     len(pages),
		PDFPath:   path,
	}, true
}

// writeAtomic writes to a temp file in the target directory and renames it
// into place so an interrupted write never leaves a truncated PDF behind.
func writeAtomic(doc Document, pages []int, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".split-*.pdf")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := doc.WritePages(pages, tmpPath); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// writablePages writes each page to its own scratch file and returns the
// pages that succeeded.
func writablePages(doc Document, pages []int, dir string, log logrus.FieldLogger) []int {
	ok := make([]int, 0, len(pages))
	for _, p := range pages {
		tmp, err := os.CreateTemp(dir, ".page-*.pdf")
		if err != nil {
			log.WithError(err).Error("creating scratch file")
			return nil
		}
		tmpPath := tmp.Name()
		tmp.Close()

		err = doc.WritePages([]int{p}, tmpPath)
		os.Remove(tmpPath)
		if err != nil {
			log.WithField("page", p).WithError(err).Warn("cannot write page, skipping it")
			continue
		}
		ok = append(ok, p)
	}
	return ok
}

// uniqueStem appends _2, _3, ... when a stem was already used in this batch,
// shortening the stem so the result stays within MaxNameLength.
func uniqueStem(stem string, used map[string]int) string {
	used[stem]++
	n := used[stem]
	if n == 1 {
		return stem
	}
	for {
		suffix := "_" + strconv.Itoa(n)
		base := stem
		if r := []rune(base); len(r)+len(suffix) > MaxNameLength {
			base = strings.TrimRight(string(r[:MaxNameLength-len(suffix)]), "_")
		}
		candidate := base + suffix
		if used[candidate] == 0 {
			used[candidate] = 1
			return candidate
		}
		n++
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
