// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfdoc adapts pdfcpu to the outline and split stages: it reads a
// PDF once, exposes its outline as an outline.Node forest, resolves
// destinations to page numbers and writes page subsets to new files.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pdfcraft/internal/outline"
	pdtypes "github.com/pdiddy/pdfcraft/pkg/types"
)

// maxIndirection bounds how many references are followed while resolving a
// single destination.
const maxIndirection = 8

func init() {
	// Keep pdfcpu from creating its config directory in the user's home.
	api.DisableConfigDir()
}

// Document is a parsed PDF held in memory.
type Document struct {
	path string
	data []byte
	conf *model.Configuration
	ctx  *model.Context
	log  logrus.FieldLogger

	// pages holds page dictionary references in document order; index maps
	// their object numbers to 1-indexed page numbers.
	pages []types.IndirectRef
	index map[int]int
}

// Open reads and validates the PDF at path. Validation is relaxed so that
// slightly malformed files from real-world producers still open.
func Open(path string, log logrus.FieldLogger) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", path, err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("reading PDF %s: %w", path, err)
	}

	d := &Document{
		path:  path,
		data:  data,
		conf:  conf,
		ctx:   ctx,
		log:   log.WithField("pdf", path),
		index: make(map[int]int),
	}
	if err := d.indexPages(); err != nil {
		// Page-object destinations will fall back to page 1; splitting by
		// page number still works from ctx.PageCount.
		d.log.WithError(err).Warn("could not index page tree")
	}

	d.log.WithField("pages", d.PageCount()).Info("opened PDF")
	return d, nil
}

// Close releases the file contents held for writing. The document can
// still be inspected but no longer written.
func (d *Document) Close() error {
	d.data = nil
	return nil
}

// Path returns the file the document was read from.
func (d *Document) Path() string {
	return d.path
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

func (d *Document) indexPages() error {
	root, err := d.ctx.Catalog()
	if err != nil {
		return fmt.Errorf("reading catalog: %w", err)
	}
	obj, found := root.Find("Pages")
	if !found {
		return errors.New("catalog has no page tree")
	}
	return d.walkPages(obj, make(map[int]bool))
}

func (d *Document) walkPages(obj types.Object, seen map[int]bool) error {
	ir, ok := obj.(types.IndirectRef)
	if !ok {
		return fmt.Errorf("page tree node is %T, not a reference", obj)
	}
	nr := ir.ObjectNumber.Value()
	if seen[nr] {
		return fmt.Errorf("page tree cycle at object %d", nr)
	}
	seen[nr] = true

	node, err := d.ctx.DereferenceDict(ir)
	if err != nil {
		return fmt.Errorf("page tree object %d: %w", nr, err)
	}
	if node == nil {
		return fmt.Errorf("page tree object %d is missing", nr)
	}

	kidsObj, hasKids := node.Find("Kids")
	if t := node.Type(); (t != nil && *t == "Page") || !hasKids {
		d.pages = append(d.pages, ir)
		d.index[nr] = len(d.pages)
		return nil
	}

	kids, err := d.ctx.DereferenceArray(kidsObj)
	if err != nil {
		return fmt.Errorf("page tree object %d kids: %w", nr, err)
	}
	for _, kid := range kids {
		if err := d.walkPages(kid, seen); err != nil {
			return err
		}
	}
	return nil
}

// CheckPage reports whether the 1-indexed page and its content streams can
// be dereferenced.
func (d *Document) CheckPage(page int) error {
	if page < 1 || page > d.PageCount() {
		return fmt.Errorf("page %d out of range 1-%d", page, d.PageCount())
	}
	if len(d.pages) < page {
		// No page index; let pdfcpu decide when the page is extracted.
		return nil
	}

	dict, err := d.ctx.DereferenceDict(d.pages[page-1])
	if err != nil {
		return fmt.Errorf("page %d: %w", page, err)
	}
	if dict == nil {
		return fmt.Errorf("page %d: page object is missing", page)
	}
	if contents, ok := dict.Find("Contents"); ok {
		if _, err := d.ctx.Dereference(contents); err != nil {
			return fmt.Errorf("page %d contents: %w", page, err)
		}
	}
	return nil
}

// WritePages writes a new PDF made of the given 1-indexed pages to path.
// Extraction rewrites the context it works on, so each call parses its own
// copy of the file and d.ctx keeps serving outline and destination lookups.
func (d *Document) WritePages(pages []int, path string) error {
	if d.data == nil {
		return errors.New("document is closed")
	}
	src, err := api.ReadValidateAndOptimize(bytes.NewReader(d.data), d.conf)
	if err != nil {
		return fmt.Errorf("reading PDF %s: %w", d.path, err)
	}
	out, err := pdfcpu.ExtractPages(src, pages, false)
	if err != nil {
		return fmt.Errorf("extracting pages: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := api.WriteContext(out, f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// Outline returns the document outline as a forest. Each outline item
// becomes a Leaf, followed by a Group when the item has children. A
// document without an outline yields an empty forest.
func (d *Document) Outline() ([]outline.Node, error) {
	root, err := d.ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	obj, found := root.Find("Outlines")
	if !found || obj == nil {
		return nil, nil
	}
	outlines, err := d.ctx.DereferenceDict(obj)
	if err != nil {
		return nil, fmt.Errorf("reading outline root: %w", err)
	}
	if outlines == nil {
		return nil, nil
	}
	first, found := outlines.Find("First")
	if !found {
		return nil, nil
	}
	return d.outlineItems(first, 0, make(map[int]bool)), nil
}

// outlineItems follows a First/Next sibling chain. Visited objects are
// skipped so a cyclic outline terminates.
func (d *Document) outlineItems(first types.Object, depth int, seen map[int]bool) []outline.Node {
	if depth > pdtypes.MaxOutlineDepth {
		// The flattener drops this level with a warning; stop descending.
		return nil
	}

	var nodes []outline.Node
	for obj := first; obj != nil; {
		ir, ok := obj.(types.IndirectRef)
		if !ok {
			d.log.WithField("type", fmt.Sprintf("%T", obj)).Warn("outline item is not a reference")
			break
		}
		nr := ir.ObjectNumber.Value()
		if seen[nr] {
			d.log.WithField("object", nr).Warn("outline cycle detected")
			break
		}
		seen[nr] = true

		item, err := d.ctx.DereferenceDict(ir)
		if err != nil || item == nil {
			d.log.WithField("object", nr).WithError(err).Warn("unreadable outline item")
			break
		}

		nodes = append(nodes, outline.Leaf{
			Title:  d.itemTitle(item),
			Target: d.itemTarget(item),
		})
		if kids, ok := item.Find("First"); ok && kids != nil {
			nodes = append(nodes, outline.Group{Children: d.outlineItems(kids, depth+1, seen)})
		}

		obj, _ = item.Find("Next")
	}
	return nodes
}

func (d *Document) itemTitle(item types.Dict) string {
	obj, ok := item.Find("Title")
	if !ok {
		return ""
	}
	obj, err := d.ctx.Dereference(obj)
	if err != nil {
		return ""
	}
	s, err := decodeString(obj)
	if err != nil {
		d.log.WithError(err).Debug("undecodable outline title")
		return ""
	}
	return s
}

// itemTarget reads /Dest, or the /D entry of a GoTo action.
func (d *Document) itemTarget(item types.Dict) outline.Target {
	if dest, ok := item.Find("Dest"); ok {
		return d.destTarget(dest, 0)
	}
	actionObj, ok := item.Find("A")
	if !ok {
		return outline.Target{}
	}
	action, err := d.ctx.DereferenceDict(actionObj)
	if err != nil || action == nil {
		return outline.Target{}
	}
	if s := action.NameEntry("S"); s == nil || *s != "GoTo" {
		return outline.Target{}
	}
	if dest, ok := action.Find("D"); ok {
		return d.destTarget(dest, 0)
	}
	return outline.Target{}
}

// destTarget converts a destination object into a Target. Explicit
// destinations are arrays whose first element is a page reference (or an
// integer page index); names and strings refer to named destinations.
func (d *Document) destTarget(obj types.Object, hops int) outline.Target {
	if hops > maxIndirection {
		return outline.Target{}
	}
	switch v := obj.(type) {
	case types.IndirectRef:
		o, err := d.ctx.Dereference(v)
		if err != nil || o == nil {
			return outline.Target{}
		}
		return d.destTarget(o, hops+1)
	case types.Array:
		if len(v) == 0 {
			return outline.Target{}
		}
		switch first := v[0].(type) {
		case types.IndirectRef:
			return outline.PageObject(first.ObjectNumber.Value())
		case types.Integer:
			return outline.PageIndex(first.Value())
		}
	case types.Dict:
		if dest, ok := v.Find("D"); ok {
			return d.destTarget(dest, hops+1)
		}
	case types.Name:
		return outline.Named(v.Value())
	case types.StringLiteral, types.HexLiteral:
		if s, err := decodeString(v); err == nil {
			return outline.Named(s)
		}
	}
	return outline.Target{}
}

// ResolvePage maps an outline target to a 1-indexed page number.
func (d *Document) ResolvePage(t outline.Target) (int, error) {
	return d.resolve(t, 0)
}

func (d *Document) resolve(t outline.Target, hops int) (int, error) {
	switch t.Kind {
	case outline.TargetPageObject:
		if p, ok := d.index[t.ObjectNumber]; ok {
			return p, nil
		}
		return 0, fmt.Errorf("object %d is not a page: %w", t.ObjectNumber, outline.ErrUnresolved)
	case outline.TargetPageIndex:
		return max(1, t.Index+1), nil
	case outline.TargetNamed:
		if hops > maxIndirection {
			return 0, fmt.Errorf("named destination %q loops: %w", t.Name, outline.ErrUnresolved)
		}
		obj, err := d.namedDest(t.Name)
		if err != nil {
			return 0, err
		}
		return d.resolve(d.destTarget(obj, 0), hops+1)
	default:
		return 0, outline.ErrUnresolved
	}
}

// namedDest looks name up in the catalog /Names /Dests name tree, then in
// the legacy catalog /Dests dictionary.
func (d *Document) namedDest(name string) (types.Object, error) {
	root, err := d.ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	if namesObj, ok := root.Find("Names"); ok {
		names, err := d.ctx.DereferenceDict(namesObj)
		if err == nil && names != nil {
			if treeObj, ok := names.Find("Dests"); ok {
				tree, err := d.ctx.DereferenceDict(treeObj)
				if err == nil && tree != nil {
					if obj, ok := d.lookupNameTree(tree, name, 0); ok {
						return obj, nil
					}
				}
			}
		}
	}

	if destsObj, ok := root.Find("Dests"); ok {
		dests, err := d.ctx.DereferenceDict(destsObj)
		if err == nil && dests != nil {
			if obj, ok := dests.Find(name); ok {
				return obj, nil
			}
		}
	}

	return nil, fmt.Errorf("named destination %q: %w", name, outline.ErrUnresolved)
}

func (d *Document) lookupNameTree(node types.Dict, name string, depth int) (types.Object, bool) {
	if depth > pdtypes.MaxOutlineDepth {
		return nil, false
	}

	if namesObj, ok := node.Find("Names"); ok {
		names, err := d.ctx.DereferenceArray(namesObj)
		if err == nil {
			for i := 0; i+1 < len(names); i += 2 {
				keyObj, err := d.ctx.Dereference(names[i])
				if err != nil {
					continue
				}
				if key, err := decodeString(keyObj); err == nil && key == name {
					return names[i+1], true
				}
			}
		}
	}

	kidsObj, ok := node.Find("Kids")
	if !ok {
		return nil, false
	}
	kids, err := d.ctx.DereferenceArray(kidsObj)
	if err != nil {
		return nil, false
	}
	for _, kid := range kids {
		kd, err := d.ctx.DereferenceDict(kid)
		if err != nil || kd == nil {
			continue
		}
		if obj, ok := d.lookupNameTree(kd, name, depth+1); ok {
			return obj, true
		}
	}
	return nil, false
}

func decodeString(obj types.Object) (string, error) {
	switch v := obj.(type) {
	case types.StringLiteral:
		return types.StringLiteralToString(v)
	case types.HexLiteral:
		return types.HexLiteralToString(v)
	case types.Name:
		return v.Value(), nil
	default:
		return "", fmt.Errorf("unexpected string object %T", obj)
	}
}
