// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pmc-search/pkg/types"
)

const abstractPreview = 200

// WriteResults writes one JSON object per result to path, replacing any
// existing file.
func WriteResults(path string, results []types.SearchResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating results file: %w", err)
	}

	buf := bufio.NewWriter(f)
	enc := json.NewEncoder(buf)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			f.Close()
			return fmt.Errorf("writing result %d: %w", r.Rank, err)
		}
	}
	if err := buf.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing results file: %w", err)
	}
	return f.Close()
}

// FormatText writes results in reading order: a header line per hit with
// title, journal, date and the start of the abstract beneath it.
func FormatText(out Output, w io.Writer) {
	if len(out.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "\nTop %d results for %v\n\n", out.TopK, out.Keywords)
	for _, r := range out.Results {
		fmt.Fprintf(w, "%d. %s | score %.4f\n", r.Rank, r.DocID, r.Score)
		if !r.Found() {
			fmt.Fprintf(w, "   %s\n\n", r.Error)
			continue
		}
		fmt.Fprintf(w, "   Title: %s\n", r.Title)
		fmt.Fprintf(w, "   Journal: %s\n", r.JournalName)
		fmt.Fprintf(w, "   Date: %s\n", r.Date)
		if authors := formatAuthors(r.Authors); authors != "" {
			fmt.Fprintf(w, "   Authors: %s\n", authors)
		}
		fmt.Fprintf(w, "   Abstract: %s\n\n", preview(r.Abstract, abstractPreview))
	}

	fmt.Fprintf(w, "%d results", len(out.Results))
	if out.Misses > 0 {
		fmt.Fprintf(w, " (%d not in collection)", out.Misses)
	}
	fmt.Fprintln(w)
	if out.ResultsPath != "" {
		fmt.Fprintf(w, "results: %s\n", out.ResultsPath)
	}
}

// FormatJSON writes results as indented JSON to w.
func FormatJSON(out Output, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out.Results)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return authors[0]
	default:
		return authors[0] + " et al."
	}
}

// preview returns the first n runes of s, marking a cut with "...".
func preview(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
