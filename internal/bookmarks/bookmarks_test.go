// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bookmarks

import (
	"math/rand"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfcraft/pkg/types"
)

var sample = []types.Bookmark{
	{Title: "Intro", Page: 1, Level: 0},
	{Title: "Chapter 1", Page: 3, Level: 0},
	{Title: "Section 1.1", Page: 3, Level: 1},
	{Title: "Section 1.2", Page: 5, Level: 1},
	{Title: "Detail 1.2.1", Page: 6, Level: 2},
	{Title: "Chapter 2", Page: 7, Level: 0},
	{Title: "Appendix", Page: 12, Level: 0},
}

func TestFilterByLevel(t *testing.T) {
	log, _ := logtest.NewNullLogger()

	tests := []struct {
		name     string
		maxLevel int
		want     int
	}{
		{"top level only", 0, 4},
		{"two levels", 1, 6},
		{"everything", 5, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByLevel(sample, tt.maxLevel, log)
			assert.Len(t, got, tt.want)
			for _, b := range got {
				assert.LessOrEqual(t, b.Level, tt.maxLevel)
			}
		})
	}
}

func TestFilterByLevel_Idempotent(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	for level := 0; level < 4; level++ {
		once := FilterByLevel(sample, level, log)
		twice := FilterByLevel(once, level, log)
		assert.Equal(t, once, twice, "level %d", level)
	}
}

func TestFilterByKeywords(t *testing.T) {
	log, _ := logtest.NewNullLogger()

	tests := []struct {
		name          string
		keywords      []string
		caseSensitive bool
		wantTitles    []string
	}{
		{"case insensitive", []string{"chapter"}, false, []string{"Chapter 1", "Chapter 2"}},
		{"case sensitive miss", []string{"chapter"}, true, []string{}},
		{"case sensitive hit", []string{"Chapter"}, true, []string{"Chapter 1", "Chapter 2"}},
		{"any keyword", []string{"INTRO", "appendix"}, false, []string{"Intro", "Appendix"}},
		{"substring", []string{"1."}, false, []string{"Section 1.1", "Section 1.2", "Detail 1.2.1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByKeywords(sample, tt.keywords, tt.caseSensitive, log)
			titles := make([]string, 0, len(got))
			for _, b := range got {
				titles = append(titles, b.Title)
			}
			assert.Equal(t, tt.wantTitles, titles)
		})
	}
}

func TestFilterByKeywords_EmptyIsNoop(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	assert.Equal(t, sample, FilterByKeywords(sample, nil, false, log))
}

func TestFilterByKeywords_DoesNotMutateKeywords(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	keywords := []string{"CHAPTER"}
	FilterByKeywords(sample, keywords, false, log)
	assert.Equal(t, []string{"CHAPTER"}, keywords)
}

func TestApply(t *testing.T) {
	log, _ := logtest.NewNullLogger()

	byLevel := Apply(sample, types.Filter{Mode: types.FilterLevel, MaxLevel: 0}, log)
	assert.Len(t, byLevel, 4)

	byKeyword := Apply(sample, types.Filter{Mode: types.FilterKeywords, Keywords: []string{"appendix"}}, log)
	require.Len(t, byKeyword, 1)
	assert.Equal(t, "Appendix", byKeyword[0].Title)

	assert.Equal(t, sample, Apply(sample, types.Filter{}, log))
}

func TestSplitPoints_Scenario(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	in := []types.Bookmark{
		{Title: "Intro", Page: 1, Level: 0},
		{Title: "Ch1", Page: 3, Level: 0},
		{Title: "Ch1.1", Page: 3, Level: 1},
		{Title: "Ch2", Page: 7, Level: 0},
	}

	got := SplitPoints(in, log)

	want := []types.SplitPoint{
		{Title: "Intro", StartPage: 1, EndPage: 2, Level: 0},
		{Title: "Ch1", StartPage: 3, EndPage: 6, Level: 0},
		{Title: "Ch2", StartPage: 7, EndPage: types.OpenEnd, Level: 0},
	}
	assert.Equal(t, want, got)
}

func TestSplitPoints_Unordered(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	in := []types.Bookmark{
		{Title: "C", Page: 9},
		{Title: "A", Page: 2},
		{Title: "B", Page: 4},
		{Title: "B-dup", Page: 4},
	}

	got := SplitPoints(in, log)

	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].Title)
	assert.Equal(t, "B", got[1].Title, "first bookmark in input order wins a page tie")
	assert.Equal(t, 8, got[1].EndPage)
	assert.True(t, got[2].IsOpen())
}

func TestSplitPoints_Empty(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	got := SplitPoints(nil, log)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSplitPoints_Single(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	got := SplitPoints([]types.Bookmark{{Title: "Only", Page: 4, Level: 2}}, log)
	require.Len(t, got, 1)
	assert.Equal(t, types.SplitPoint{Title: "Only", StartPage: 4, EndPage: types.OpenEnd, Level: 2}, got[0])
}

func TestSplitPoints_DoesNotMutateInput(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	in := []types.Bookmark{{Title: "B", Page: 5}, {Title: "A", Page: 1}}
	SplitPoints(in, log)
	assert.Equal(t, "B", in[0].Title)
}

func TestSplitPoints_Properties(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 200; iter++ {
		n := rng.Intn(30)
		in := make([]types.Bookmark, n)
		for i := range in {
			in[i] = types.Bookmark{Title: "b", Page: 1 + rng.Intn(40), Level: rng.Intn(3)}
		}

		got := SplitPoints(in, log)

		assert.LessOrEqual(t, len(got), len(in))
		for i := range got {
			assert.GreaterOrEqual(t, got[i].StartPage, 1)
			if i == len(got)-1 {
				assert.True(t, got[i].IsOpen(), "last split point must be open")
				continue
			}
			assert.Less(t, got[i].StartPage, got[i+1].StartPage)
			assert.Equal(t, got[i+1].StartPage-1, got[i].EndPage)
			assert.GreaterOrEqual(t, got[i].EndPage, got[i].StartPage)
		}
	}
}
