// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pmc-search/pkg/types"
)

// Manifest records how a collection was produced. It is written next to the
// collection file as YAML.
type Manifest struct {
	RunID      string    `yaml:"run_id"`
	Timestamp  string    `yaml:"timestamp"`
	Query      string    `yaml:"query"`
	Keywords   []string  `yaml:"keywords,omitempty"`
	Term       string    `yaml:"term"`
	CreatedAt  time.Time `yaml:"created_at"`
	Collection string    `yaml:"collection"`
	Found      int       `yaml:"found"`
	Written    int       `yaml:"written"`
	Excluded   int       `yaml:"excluded"`
	Failed     int       `yaml:"failed"`
	Items      []Item    `yaml:"items,omitempty"`
}

// NewManifest builds the Manifest for a finished run.
func NewManifest(run types.Run, sum Summary, now time.Time) Manifest {
	return Manifest{
		RunID:      sum.RunID,
		Timestamp:  run.Timestamp,
		Query:      sum.Query,
		Keywords:   sum.Keywords,
		Term:       sum.Term,
		CreatedAt:  now.UTC().Truncate(time.Second),
		Collection: sum.Collection,
		Found:      sum.Found,
		Written:    sum.Written,
		Excluded:   sum.Excluded,
		Failed:     sum.Failed,
		Items:      sum.Items,
	}
}

// WriteManifest writes m to path as YAML.
func WriteManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadManifest reads a Manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}
