// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bookmarks

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pdfcraft/pkg/types"
)

// SplitPoints derives contiguous, non-overlapping page ranges from bookmarks.
//
// Bookmarks are stably sorted by page and only the first bookmark on each
// page is kept. Each remaining bookmark covers the pages up to the next
// one; the last bookmark gets an open end that the splitter resolves to the
// document's page count.
func SplitPoints(bookmarks []types.Bookmark, log logrus.FieldLogger) []types.SplitPoint {
	if len(bookmarks) == 0 {
		log.Warn("no bookmarks provided for split points")
		return []types.SplitPoint{}
	}

	sorted := make([]types.Bookmark, len(bookmarks))
	copy(sorted, bookmarks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Page < sorted[j].Page
	})

	unique := sorted[:0:0]
	seen := make(map[int]bool, len(sorted))
	for _, b := range sorted {
		if seen[b.Page] {
			log.WithField("bookmark", b.String()).Debug("dropping bookmark on an already used page")
			continue
		}
		seen[b.Page] = true
		unique = append(unique, b)
	}

	points := make([]types.SplitPoint, 0, len(unique))
	for i, b := range unique {
		end := types.OpenEnd
		if i+1 < len(unique) {
			next := unique[i+1].Page
			if next <= b.Page {
				log.WithFields(logrus.Fields{
					"title": b.Title,
					"start": b.Page,
					"next":  next,
				}).Debug("skipping bookmark with invalid page sequence")
				continue
			}
			end = next - 1
		}
		points = append(points, types.SplitPoint{
			Title:     b.Title,
			StartPage: b.Page,
			EndPage:   end,
			Level:     b.Level,
		})
	}

	log.WithField("count", len(points)).Info("generated split points")
	return points
}
