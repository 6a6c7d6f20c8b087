// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package outline

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfcraft/pkg/types"
)

// fakeSource resolves page-object targets from a fixed table and page-index
// targets sequentially.
type fakeSource struct {
	nodes   []Node
	err     error
	objects map[int]int
}

func (f *fakeSource) Outline() ([]Node, error) {
	return f.nodes, f.err
}

func (f *fakeSource) ResolvePage(t Target) (int, error) {
	switch t.Kind {
	case TargetPageObject:
		if p, ok := f.objects[t.ObjectNumber]; ok {
			return p, nil
		}
	case TargetPageIndex:
		return t.Index + 1, nil
	}
	return 0, ErrUnresolved
}

func TestExtract_PreOrderWithLevels(t *testing.T) {
	src := &fakeSource{
		objects: map[int]int{10: 1, 11: 3, 12: 4, 13: 7},
		nodes: []Node{
			Leaf{Title: "Intro", Target: PageObject(10)},
			Leaf{Title: "Ch1", Target: PageObject(11)},
			Group{Children: []Node{
				Leaf{Title: "Ch1.1", Target: PageObject(12)},
			}},
			Leaf{Title: "Ch2", Target: PageObject(13)},
		},
	}
	log, _ := logtest.NewNullLogger()

	got, err := Extract(src, log)
	require.NoError(t, err)

	want := []types.Bookmark{
		{Title: "Intro", Page: 1, Level: 0},
		{Title: "Ch1", Page: 3, Level: 0},
		{Title: "Ch1.1", Page: 4, Level: 1},
		{Title: "Ch2", Page: 7, Level: 0},
	}
	assert.Equal(t, want, got)
}

func TestExtract_UnresolvedDefaultsToPageOne(t *testing.T) {
	src := &fakeSource{
		nodes: []Node{
			Leaf{Title: "Broken", Target: Named("missing")},
			Leaf{Title: "None", Target: Target{}},
			Leaf{Title: "Indexed", Target: PageIndex(4)},
		},
	}
	log, _ := logtest.NewNullLogger()

	got, err := Extract(src, log)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].Page)
	assert.Equal(t, 1, got[1].Page)
	assert.Equal(t, 5, got[2].Page)
}

func TestExtract_EmptyOutline(t *testing.T) {
	log, hook := logtest.NewNullLogger()

	got, err := Extract(&fakeSource{}, log)
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestExtract_OutlineError(t *testing.T) {
	log, _ := logtest.NewNullLogger()

	_, err := Extract(&fakeSource{err: errors.New("corrupt catalog")}, log)
	assert.ErrorContains(t, err, "corrupt catalog")
}

// nest builds a chain of groups depth levels deep with one leaf per level.
func nest(depth int) []Node {
	if depth == 0 {
		return []Node{Leaf{Title: "leaf", Target: PageIndex(0)}}
	}
	return []Node{
		Leaf{Title: "leaf", Target: PageIndex(0)},
		Group{Children: nest(depth - 1)},
	}
}

func TestFlatten_DepthLimit(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	src := &fakeSource{}

	got := Flatten(nest(types.MaxOutlineDepth+5), src, log)

	// Levels 0..MaxOutlineDepth survive, deeper ones are dropped.
	require.Len(t, got, types.MaxOutlineDepth+1)
	for i, b := range got {
		assert.Equal(t, i, b.Level)
	}

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
		}
	}
	assert.True(t, warned, "expected a depth warning")
}

func TestTargetString(t *testing.T) {
	assert.Equal(t, "obj 7", PageObject(7).String())
	assert.Equal(t, "index 2", PageIndex(2).String())
	assert.Equal(t, `name "ch1"`, Named("ch1").String())
	assert.Equal(t, "none", Target{}.String())
}
