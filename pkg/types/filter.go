// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"strings"
)

// FilterMode selects how bookmarks are narrowed before splitting.
type FilterMode int

const (
	FilterNone FilterMode = iota
	FilterLevel
	FilterKeywords
)

func (m FilterMode) String() string {
	switch m {
	case FilterLevel:
		return "level"
	case FilterKeywords:
		return "keywords"
	default:
		return "none"
	}
}

var (
	// ErrNoFilter is returned when neither a level nor keywords were given.
	ErrNoFilter = errors.New("either a maximum level or keywords must be specified")

	// ErrConflictingFilters is returned when both a level and keywords were given.
	ErrConflictingFilters = errors.New("level and keywords filters are mutually exclusive")
)

// Filter describes the single active bookmark filter.
type Filter struct {
	Mode FilterMode `json:"mode" yaml:"mode"`

	// MaxLevel is the deepest level kept in FilterLevel mode (0-indexed).
	MaxLevel int `json:"max_level,omitempty" yaml:"max_level,omitempty"`

	// Keywords are matched as title substrings in FilterKeywords mode.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	CaseSensitive bool `json:"case_sensitive,omitempty" yaml:"case_sensitive,omitempty"`
}

// NewFilter builds a Filter from CLI-style inputs. hasLevel reports whether a
// level was supplied at all, since level 0 is a valid value.
func NewFilter(hasLevel bool, level int, keywords []string, caseSensitive bool) (Filter, error) {
	switch {
	case hasLevel && len(keywords) > 0:
		return Filter{}, ErrConflictingFilters
	case hasLevel:
		if level < 0 {
			return Filter{}, fmt.Errorf("level must be non-negative, got %d", level)
		}
		return Filter{Mode: FilterLevel, MaxLevel: level}, nil
	case len(keywords) > 0:
		return Filter{Mode: FilterKeywords, Keywords: keywords, CaseSensitive: caseSensitive}, nil
	default:
		return Filter{}, ErrNoFilter
	}
}

// Validate checks that exactly one mode is active.
func (f Filter) Validate() error {
	switch f.Mode {
	case FilterLevel:
		if len(f.Keywords) > 0 {
			return ErrConflictingFilters
		}
		if f.MaxLevel < 0 {
			return fmt.Errorf("level must be non-negative, got %d", f.MaxLevel)
		}
		return nil
	case FilterKeywords:
		return nil
	default:
		return ErrNoFilter
	}
}

func (f Filter) String() string {
	switch f.Mode {
	case FilterLevel:
		return fmt.Sprintf("level<=%d", f.MaxLevel)
	case FilterKeywords:
		s := "keywords=" + strings.Join(f.Keywords, ",")
		if f.CaseSensitive {
			s += " (case-sensitive)"
		}
		return s
	default:
		return "none"
	}
}
