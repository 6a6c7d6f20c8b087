// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package outline

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pdfcraft/pkg/types"
)

// ErrUnresolved is returned by resolvers that cannot map a target to a page.
var ErrUnresolved = errors.New("destination cannot be resolved")

// Source supplies an outline forest and resolves its page targets.
// internal/pdfdoc implements it on top of pdfcpu.
type Source interface {
	// Outline returns the document outline. A document without one returns
	// an empty forest and no error.
	Outline() ([]Node, error)

	// ResolvePage maps a target to a 1-indexed page number.
	ResolvePage(t Target) (int, error)
}

// Extract flattens the outline of src in pre-order. Page resolution failures
// are not fatal: the bookmark is kept on page 1. Only an error reading the
// outline itself is returned.
func Extract(src Source, log logrus.FieldLogger) ([]types.Bookmark, error) {
	nodes, err := src.Outline()
	if err != nil {
		return nil, fmt.Errorf("reading outline: %w", err)
	}
	if len(nodes) == 0 {
		log.Warn("no bookmarks found")
		return []types.Bookmark{}, nil
	}

	bookmarks := Flatten(nodes, src, log)
	log.WithField("count", len(bookmarks)).Info("extracted bookmarks")
	return bookmarks, nil
}

type resolver interface {
	ResolvePage(t Target) (int, error)
}

// Flatten walks nodes depth-first and returns the leaves as bookmarks,
// annotated with their nesting level.
func Flatten(nodes []Node, r resolver, log logrus.FieldLogger) []types.Bookmark {
	out := []types.Bookmark{}
	return flatten(out, nodes, 0, r, log)
}

func flatten(out []types.Bookmark, nodes []Node, depth int, r resolver, log logrus.FieldLogger) []types.Bookmark {
	if depth > types.MaxOutlineDepth {
		log.WithField("depth", depth).Warn("maximum bookmark depth reached, dropping subtree")
		return out
	}

	for _, n := range nodes {
		switch n := n.(type) {
		case Group:
			out = flatten(out, n.Children, depth+1, r, log)
		case Leaf:
			b := types.Bookmark{
				Title: n.Title,
				Page:  resolvePage(r, n, log),
				Level: depth,
			}
			log.WithField("bookmark", b.String()).Debug("parsed bookmark")
			out = append(out, b)
		}
	}
	return out
}

func resolvePage(r resolver, leaf Leaf, log logrus.FieldLogger) int {
	page, err := r.ResolvePage(leaf.Target)
	if err != nil || page < 1 {
		log.WithFields(logrus.Fields{
			"title":  leaf.Title,
			"target": leaf.Target.String(),
		}).WithError(err).Debug("page resolution failed, defaulting to page 1")
		return 1
	}
	return page
}
