// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bookmarks filters flattened bookmarks and derives the page ranges
// a PDF is split into.
package bookmarks

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pdfcraft/pkg/types"
)

// FilterByLevel keeps bookmarks at or above maxLevel depth.
func FilterByLevel(bookmarks []types.Bookmark, maxLevel int, log logrus.FieldLogger) []types.Bookmark {
	filtered := make([]types.Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		if b.Level <= maxLevel {
			filtered = append(filtered, b)
		}
	}
	log.WithFields(logrus.Fields{
		"kept":      len(filtered),
		"max_level": maxLevel,
	}).Info("filtered bookmarks by level")
	return filtered
}

// FilterByKeywords keeps bookmarks whose title contains any keyword. Matching
// is case-insensitive unless caseSensitive is set. An empty keyword list
// returns the input unchanged.
func FilterByKeywords(bookmarks []types.Bookmark, keywords []string, caseSensitive bool, log logrus.FieldLogger) []types.Bookmark {
	if len(keywords) == 0 {
		return bookmarks
	}

	needles := keywords
	if !caseSensitive {
		needles = make([]string, len(keywords))
		for i, k := range keywords {
			needles[i] = strings.ToLower(k)
		}
	}

	filtered := make([]types.Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		title := b.Title
		if !caseSensitive {
			title = strings.ToLower(title)
		}
		for _, k := range needles {
			if strings.Contains(title, k) {
				filtered = append(filtered, b)
				break
			}
		}
	}
	log.WithFields(logrus.Fields{
		"kept":     len(filtered),
		"keywords": keywords,
	}).Info("filtered bookmarks by keywords")
	return filtered
}

// Apply runs the filter selected by f. A filter without a mode returns the
// input unchanged.
func Apply(bookmarks []types.Bookmark, f types.Filter, log logrus.FieldLogger) []types.Bookmark {
	switch f.Mode {
	case types.FilterLevel:
		return FilterByLevel(bookmarks, f.MaxLevel, log)
	case types.FilterKeywords:
		return FilterByKeywords(bookmarks, f.Keywords, f.CaseSensitive, log)
	default:
		return bookmarks
	}
}
