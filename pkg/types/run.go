// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// TimestampLayout formats the capture timestamp that names a run's files.
const TimestampLayout = "2006-01-02_15-04-05"

const (
	collectionDirPrefix = "PMC_Jsonl_"
	indexDirPrefix      = "new_index_PMC_Jsonl_"
	resultsFilePrefix   = "bm25_results_"

	collectionFile = "collection.jsonl"
	manifestFile   = "manifest.yaml"
	indexFile      = "index.db"
)

var timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}$`)

// Run identifies the files produced by one pipeline run. The timestamp is
// captured once and every path derives from it, so each run's collection,
// index and results are distinct from prior runs.
type Run struct {
	Timestamp string
	DataDir   string
}

// NewRun captures a timestamp from now and returns the Run rooted at dataDir.
func NewRun(dataDir string, now time.Time) Run {
	return Run{Timestamp: now.Format(TimestampLayout), DataDir: dataDir}
}

// ParseRun returns the Run for an existing timestamp.
func ParseRun(dataDir, timestamp string) (Run, error) {
	if !timestampPattern.MatchString(timestamp) {
		return Run{}, fmt.Errorf("invalid run timestamp %q: want layout %s", timestamp, TimestampLayout)
	}
	return Run{Timestamp: timestamp, DataDir: dataDir}, nil
}

// LatestRun returns the most recent run under dataDir whose collection file
// exists. Directories left by an interrupted collect are ignored.
// Timestamps sort chronologically as strings.
func LatestRun(dataDir string) (Run, error) {
	dirs, err := filepath.Glob(filepath.Join(dataDir, collectionDirPrefix+"*"))
	if err != nil {
		return Run{}, err
	}
	var stamps []string
	for _, d := range dirs {
		ts := strings.TrimPrefix(filepath.Base(d), collectionDirPrefix)
		if !timestampPattern.MatchString(ts) {
			continue
		}
		run := Run{Timestamp: ts, DataDir: dataDir}
		if _, err := os.Stat(run.CollectionPath()); err == nil {
			stamps = append(stamps, ts)
		}
	}
	if len(stamps) == 0 {
		return Run{}, fmt.Errorf("no collections under %s: run collect first", dataDir)
	}
	sort.Strings(stamps)
	return Run{Timestamp: stamps[len(stamps)-1], DataDir: dataDir}, nil
}

// CollectionDir is the directory holding the collection and its manifest.
func (r Run) CollectionDir() string {
	return filepath.Join(r.DataDir, collectionDirPrefix+r.Timestamp)
}

// CollectionPath is the line-delimited Document file.
func (r Run) CollectionPath() string {
	return filepath.Join(r.CollectionDir(), collectionFile)
}

// ManifestPath is the YAML record of the collection run.
func (r Run) ManifestPath() string {
	return filepath.Join(r.CollectionDir(), manifestFile)
}

// IndexPath is the index artifact built from the collection.
func (r Run) IndexPath() string {
	return filepath.Join(r.DataDir, indexDirPrefix+r.Timestamp, indexFile)
}

// ResultsPath is the line-delimited SearchResult file.
func (r Run) ResultsPath() string {
	return filepath.Join(r.DataDir, resultsFilePrefix+r.Timestamp+".jsonl")
}
