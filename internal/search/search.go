// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search answers a natural-language query against a run's index and
// joins each ranked hit with the collection's metadata.
package search

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pmc-search/internal/collection"
	"github.com/pdiddy/pmc-search/internal/keyword"
	"github.com/pdiddy/pmc-search/internal/logging"
	"github.com/pdiddy/pmc-search/pkg/types"
)

// DefaultTopK is the number of hits requested when Request.TopK is unset.
const DefaultTopK = 100

// Searcher ranks documents for a set of keywords. It returns at most k hits,
// highest score first. *index.Index satisfies it.
type Searcher interface {
	Search(ctx context.Context, keywords []string, k int) ([]types.Hit, error)
}

// Request describes one query.
type Request struct {
	Query string

	// Keywords, when set, are searched as given instead of being extracted
	// from Query.
	Keywords []string

	TopK           int
	CollectionPath string

	// ResultsPath receives the results as JSON lines. Empty skips the file.
	ResultsPath string

	Log logrus.FieldLogger
}

// Output holds the ranked results of a query.
type Output struct {
	Query       string
	Keywords    []string
	TopK        int
	Results     []types.SearchResult
	Misses      int
	ResultsPath string
}

// Run extracts keywords from the query, searches, and joins every hit with
// its collection Document. A hit missing from the collection stays in the
// results with the JoinMissError marker. The collection must be readable and
// the results file writable; any other condition is reported in Output.
func Run(ctx context.Context, s Searcher, req Request, w io.Writer) (Output, error) {
	log := req.Log
	if log == nil {
		log = logging.Discard()
	}
	if req.TopK <= 0 {
		req.TopK = DefaultTopK
	}

	keywords := req.Keywords
	if len(keywords) == 0 {
		keywords = keyword.Extract(req.Query)
	}
	fmt.Fprintf(w, "keywords: %v\n", keywords)
	if len(keywords) == 0 {
		log.WithField("query", req.Query).Warn("query has no keywords")
	}

	out := Output{Query: req.Query, Keywords: keywords, TopK: req.TopK}

	docs, err := collection.Load(req.CollectionPath)
	if err != nil {
		return out, fmt.Errorf("loading collection: %w", err)
	}

	hits, err := s.Search(ctx, keywords, req.TopK)
	if err != nil {
		return out, fmt.Errorf("searching: %w", err)
	}

	out.Results = Join(hits, docs)
	for _, r := range out.Results {
		if !r.Found() {
			out.Misses++
		}
	}
	if out.Misses > 0 {
		log.WithField("misses", out.Misses).Warn("hits missing from collection")
	}

	if req.ResultsPath != "" {
		if err := WriteResults(req.ResultsPath, out.Results); err != nil {
			return out, err
		}
		out.ResultsPath = req.ResultsPath
	}

	log.WithFields(logrus.Fields{
		"keywords": len(keywords),
		"hits":     len(hits),
		"docs":     len(docs),
	}).Info("query complete")
	return out, nil
}

// Join turns ranked hits into results. Ranks are 1-based and contiguous in
// hit order; scores are kept as given.
func Join(hits []types.Hit, docs map[string]types.Document) []types.SearchResult {
	results := make([]types.SearchResult, 0, len(hits))
	for i, h := range hits {
		r := types.SearchResult{Rank: i + 1, DocID: h.DocID, Score: h.Score}
		if doc, ok := docs[h.DocID]; ok {
			r.ResultMetadata = &types.ResultMetadata{
				Date:        doc.Date,
				JournalName: doc.Journal,
				Authors:     doc.Authors,
				Title:       doc.Title,
				Abstract:    doc.Abstract,
			}
		} else {
			r.Error = types.JoinMissError
		}
		results = append(results, r)
	}
	return results
}
