// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire builds a collection for one query: it looks up matching
// PubMed Central identifiers, fetches and normalizes each record, and writes
// the articles that have full text to the run's collection file.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pmc-search/internal/collection"
	"github.com/pdiddy/pmc-search/internal/eutils"
	"github.com/pdiddy/pmc-search/internal/jats"
	"github.com/pdiddy/pmc-search/internal/keyword"
	"github.com/pdiddy/pmc-search/internal/logging"
	"github.com/pdiddy/pmc-search/pkg/types"
)

// Defaults applied when a Request leaves a field at its zero value.
const (
	DefaultMaxResults   = 500
	DefaultRequestDelay = 340 * time.Millisecond
)

// Source finds and fetches records. *eutils.Client satisfies it.
type Source interface {
	SearchIDs(ctx context.Context, term string, max int) ([]string, error)
	FetchRecord(ctx context.Context, id string) ([]byte, error)
}

// Request describes one collection run.
type Request struct {
	Query          string
	MaxResults     int
	OpenAccessOnly bool

	// ExtractKeywords searches with the keywords of Query instead of its
	// full text. A query with no keywords is searched as given.
	ExtractKeywords bool

	// Delay is the pause before every fetch after the first. Zero selects
	// DefaultRequestDelay; a negative value disables it.
	Delay time.Duration

	Run types.Run
	Log logrus.FieldLogger
}

// Outcome classifies what happened to one identifier.
type Outcome string

const (
	// OutcomeWritten means the Document was appended to the collection.
	OutcomeWritten Outcome = "written"

	// OutcomeExcluded means the record was fetched but has no body.
	OutcomeExcluded Outcome = "excluded"

	// OutcomeFailed means the record could not be fetched or parsed.
	OutcomeFailed Outcome = "failed"
)

// Reason explains an excluded or failed identifier.
type Reason string

const (
	ReasonTransport       Reason = "transport"
	ReasonHTTPStatus      Reason = "http_status"
	ReasonParse           Reason = "parse"
	ReasonBodyUnavailable Reason = "body_unavailable"
)

// Item is the per-identifier record kept in the Summary and the manifest.
type Item struct {
	ID      string  `yaml:"id"`
	Outcome Outcome `yaml:"outcome"`
	Reason  Reason  `yaml:"reason,omitempty"`
	Detail  string  `yaml:"detail,omitempty"`
}

// Summary holds the outcome of a collection run.
type Summary struct {
	RunID      string
	Query      string
	Keywords   []string
	Term       string
	Found      int
	Written    int
	Excluded   int
	Failed     int
	Items      []Item
	Collection string
}

// Total returns the number of identifiers processed.
func (s Summary) Total() int {
	return s.Written + s.Excluded + s.Failed
}

// HasFailures reports whether any identifier failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

func (s *Summary) record(it Item) {
	switch it.Outcome {
	case OutcomeWritten:
		s.Written++
	case OutcomeExcluded:
		s.Excluded++
	case OutcomeFailed:
		s.Failed++
	}
	s.Items = append(s.Items, it)
}

// Collect runs ID lookup, fetches every identifier in order, and writes the
// collection and its manifest under req.Run. Per-item status lines go to w.
//
// Lookup failures yield an empty collection. Per-record failures are counted
// and skipped. The returned error is non-nil only when the collection or
// manifest cannot be written, or when ctx is cancelled. In either case
// neither file is left behind, nor the run directory when it ends up empty.
func Collect(ctx context.Context, src Source, req Request, w io.Writer) (Summary, error) {
	log := req.Log
	if log == nil {
		log = logging.Discard()
	}
	if req.MaxResults <= 0 {
		req.MaxResults = DefaultMaxResults
	}
	if req.Delay == 0 {
		req.Delay = DefaultRequestDelay
	}

	sum := Summary{
		RunID:      uuid.NewString(),
		Query:      req.Query,
		Collection: req.Run.CollectionPath(),
	}
	log = log.WithFields(logrus.Fields{"run_id": sum.RunID, "run": req.Run.Timestamp})

	search := req.Query
	if req.ExtractKeywords {
		sum.Keywords = keyword.Extract(req.Query)
		fmt.Fprintf(w, "keywords: %v\n", sum.Keywords)
		if len(sum.Keywords) > 0 {
			search = strings.Join(sum.Keywords, " ")
		}
	}
	sum.Term = eutils.SearchTerm(search, req.OpenAccessOnly)

	ids := lookup(ctx, src, sum.Term, req.MaxResults, log)
	if err := ctx.Err(); err != nil {
		return sum, err
	}
	sum.Found = len(ids)
	fmt.Fprintf(w, "found: %d identifiers for %q\n", sum.Found, req.Query)

	cw, err := collection.Create(sum.Collection)
	if err != nil {
		return sum, fmt.Errorf("creating collection: %w", err)
	}

	for i, id := range ids {
		if i > 0 {
			if err := pause(ctx, req.Delay); err != nil {
				cw.Abort()
				return sum, err
			}
		}

		it, doc := fetchOne(ctx, src, id)
		if err := ctx.Err(); err != nil {
			cw.Abort()
			return sum, err
		}

		switch it.Outcome {
		case OutcomeWritten:
			if err := cw.Write(doc); err != nil {
				cw.Abort()
				return sum, err
			}
			fmt.Fprintf(w, "written: %s (%s)\n", doc.ID, logging.Truncate(doc.Title, 60))
		case OutcomeExcluded:
			fmt.Fprintf(w, "skipped: %s (no full text)\n", types.DocID(id))
		case OutcomeFailed:
			fmt.Fprintf(w, "failed:  %s (%s)\n", types.DocID(id), it.Detail)
			log.WithFields(logrus.Fields{"pmc_id": id, "reason": it.Reason}).Warn(it.Detail)
		}
		sum.record(it)
	}

	manifest := req.Run.ManifestPath()
	if err := WriteManifest(manifest, NewManifest(req.Run, sum, time.Now())); err != nil {
		cw.Abort()
		return sum, fmt.Errorf("writing manifest: %w", err)
	}
	if err := cw.Close(); err != nil {
		os.Remove(manifest)
		os.Remove(req.Run.CollectionDir())
		return sum, fmt.Errorf("writing collection: %w", err)
	}

	fmt.Fprintf(w, "\nCollection summary: %d written, %d excluded, %d failed (total: %d)\n",
		sum.Written, sum.Excluded, sum.Failed, sum.Total())
	fmt.Fprintf(w, "collection: %s\n", sum.Collection)
	log.WithFields(logrus.Fields{
		"found":    sum.Found,
		"written":  sum.Written,
		"excluded": sum.Excluded,
		"failed":   sum.Failed,
	}).Info("collection complete")
	return sum, nil
}

// lookup returns the deduplicated identifiers for term. Any error is logged
// and reported as no identifiers.
func lookup(ctx context.Context, src Source, term string, max int, log logrus.FieldLogger) []string {
	ids, err := src.SearchIDs(ctx, term, max)
	if err != nil {
		if ctx.Err() == nil {
			log.WithError(err).WithField("term", term).Warn("identifier lookup failed; continuing with no results")
		}
		return nil
	}
	return dedupe(ids)
}

// fetchOne fetches and normalizes one record. doc is set only for
// OutcomeWritten.
func fetchOne(ctx context.Context, src Source, id string) (Item, types.Document) {
	it := Item{ID: id}

	raw, err := src.FetchRecord(ctx, id)
	if err != nil {
		it.Outcome = OutcomeFailed
		it.Reason = fetchReason(err)
		it.Detail = err.Error()
		return it, types.Document{}
	}

	meta, body, err := jats.Normalize(id, raw)
	if err != nil {
		it.Outcome = OutcomeFailed
		it.Reason = ReasonParse
		it.Detail = err.Error()
		return it, types.Document{}
	}

	if !body.Available() {
		it.Outcome = OutcomeExcluded
		it.Reason = ReasonBodyUnavailable
		return it, types.Document{}
	}

	it.Outcome = OutcomeWritten
	return it, types.NewDocument(id, meta, body)
}

func fetchReason(err error) Reason {
	var se *eutils.StatusError
	switch {
	case eutils.IsTransport(err):
		return ReasonTransport
	case errors.As(err, &se):
		return ReasonHTTPStatus
	default:
		return ReasonParse
	}
}

// pause waits d, returning early with ctx's error if it is cancelled.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// dedupe drops repeated identifiers, keeping first occurrences in order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
