// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package outline flattens a PDF outline (bookmark tree) into page-resolved
// bookmarks.
package outline

import "fmt"

// Node is one entry of an outline forest: either a Leaf or a Group.
type Node interface {
	outlineNode()
}

// Leaf is a single bookmark with an unresolved page target.
type Leaf struct {
	Title  string
	Target Target
}

// Group holds the children of the Leaf that precedes it. Children sit one
// level deeper than the Group's siblings.
type Group struct {
	Children []Node
}

func (Leaf) outlineNode()  {}
func (Group) outlineNode() {}

// TargetKind says how a bookmark refers to its page.
type TargetKind int

const (
	// TargetNone means the entry carried no usable destination.
	TargetNone TargetKind = iota
	// TargetPageObject refers to a page dictionary by object number.
	TargetPageObject
	// TargetPageIndex is a 0-based page index.
	TargetPageIndex
	// TargetNamed is a named destination looked up in the document.
	TargetNamed
)

func (k TargetKind) String() string {
	switch k {
	case TargetPageObject:
		return "page-object"
	case TargetPageIndex:
		return "page-index"
	case TargetNamed:
		return "named"
	default:
		return "none"
	}
}

// Target is a typed page reference taken from an outline entry.
type Target struct {
	Kind         TargetKind
	ObjectNumber int
	Index        int
	Name         string
}

func (t Target) String() string {
	switch t.Kind {
	case TargetPageObject:
		return fmt.Sprintf("obj %d", t.ObjectNumber)
	case TargetPageIndex:
		return fmt.Sprintf("index %d", t.Index)
	case TargetNamed:
		return fmt.Sprintf("name %q", t.Name)
	default:
		return "none"
	}
}

// PageObject returns a Target pointing at a page dictionary.
func PageObject(objNr int) Target {
	return Target{Kind: TargetPageObject, ObjectNumber: objNr}
}

// PageIndex returns a Target holding a 0-based page index.
func PageIndex(i int) Target {
	return Target{Kind: TargetPageIndex, Index: i}
}

// Named returns a Target for a named destination.
func Named(name string) Target {
	return Target{Kind: TargetNamed, Name: name}
}
