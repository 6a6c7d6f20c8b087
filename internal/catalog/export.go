// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 100000

// ExportYAML writes the runs matching opts, each with its matching
// sections, to w as YAML.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions, w io.Writer) error {
	runs, err := s.exportRuns(ctx, opts)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(runs); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes the runs matching opts, each with its matching
// sections, to w as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions, w io.Writer) error {
	runs, err := s.exportRuns(ctx, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(runs); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

// exportRuns groups matching sections under their runs, keeping the
// newest-first order of Sections.
func (s *Store) exportRuns(ctx context.Context, opts QueryOptions) ([]Run, error) {
	opts.MaxResults = exportLimit
	entries, err := s.Sections(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	all, err := s.Runs(ctx, exportLimit)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	byID := make(map[string]Run, len(all))
	for _, r := range all {
		byID[r.ID] = r
	}

	runs := []Run{}
	index := map[string]int{}
	for _, e := range entries {
		i, ok := index[e.RunID]
		if !ok {
			r, found := byID[e.RunID]
			if !found {
				continue
			}
			i = len(runs)
			index[e.RunID] = i
			runs = append(runs, r)
		}
		e.Source = ""
		runs[i].Sections = append(runs[i].Sections, e)
	}
	return runs, nil
}
