// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	src := []byte(`# Chapter One

Some *emphasised* words here.

## Details

- first item
- second item

` + "```" + `
code block line
` + "```" + `
`)

	s := Summarize(src)
	assert.Equal(t, []string{"Chapter One", "Details"}, s.Headings)
	// Chapter One(2) + Some emphasised words here.(4) + Details(1) +
	// first item(2) + second item(2) + code block line(3)
	assert.Equal(t, 14, s.Words)
}

func TestSummarizePlainText(t *testing.T) {
	s := Summarize([]byte("just three words"))
	assert.Empty(t, s.Headings)
	assert.Equal(t, 3, s.Words)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Empty(t, s.Headings)
	assert.Zero(t, s.Words)
}
