// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pdfcraft/pkg/types"
)

// ManifestFile is the manifest name inside the output directory.
const ManifestFile = "manifest.yaml"

// Manifest lists the files a split produced.
type Manifest struct {
	Source    string            `yaml:"source"`
	PDFPath   string            `yaml:"pdf_path"`
	PageCount int               `yaml:"page_count"`
	Filter    string            `yaml:"filter"`
	CreatedAt time.Time         `yaml:"created_at"`
	Sections  []ManifestSection `yaml:"sections"`
}

// ManifestSection is one split file.
type ManifestSection struct {
	Title     string `yaml:"title"`
	Level     int    `yaml:"level"`
	StartPage int    `yaml:"start_page"`
	EndPage   int    `yaml:"end_page"`
	Pages     int    `yaml:"pages"`
	File      string `yaml:"file"`
}

// NewManifest builds the manifest for a run's sections. Files are named
// relative to the output directory.
func NewManifest(res *Result, filter types.Filter, created time.Time) Manifest {
	m := Manifest{
		Source:    res.Source,
		PDFPath:   res.PDFPath,
		PageCount: res.PageCount,
		Filter:    filter.String(),
		CreatedAt: created.UTC(),
	}
	for _, s := range res.Sections {
		m.Sections = append(m.Sections, ManifestSection{
			Title:     s.Title,
			Level:     s.Level,
			StartPage: s.StartPage,
			EndPage:   s.EndPage,
			Pages:     s.Pages,
			File:      filepath.Base(s.PDFPath),
		})
	}
	return m
}

// WriteManifest writes m to dir/manifest.yaml and returns the path.
func WriteManifest(dir string, m Manifest) (string, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshaling manifest: %w", err)
	}
	path := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// ReadManifest reads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}
