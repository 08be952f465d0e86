// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdiddy/pmc-search/internal/analysis"
	"github.com/pdiddy/pmc-search/pkg/types"
)

// Index is an open, read-only index artifact.
type Index struct {
	db       *sql.DB
	params   types.BM25Params
	analyzer *analysis.Analyzer

	docCount  int
	avgLength float64
}

// Stats describes the indexed corpus.
type Stats struct {
	Documents int
	AvgLength float64
	Analyzer  string
	BuiltAt   string
}

// Open opens the artifact at path for searching with the given BM25
// parameters. A non-positive K1 selects types.DefaultBM25.K1.
func Open(path string, params types.BM25Params) (*Index, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	dsn, err := fileURI(path, url.Values{"mode": {"ro"}})
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}

	ix := &Index{db: db, params: params.WithDefaults(), analyzer: analysis.English()}
	if err := ix.loadMeta(); err != nil {
		db.Close()
		return nil, fmt.Errorf("reading index %s: %w", path, err)
	}
	return ix, nil
}

// fileURI returns an SQLite URI for path. The path is made absolute and
// escaped so '#', '?' and '%' in directory names stay part of it.
func fileURI(path string, query url.Values) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: query.Encode()}
	return u.String(), nil
}

// Close releases the database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

func (ix *Index) loadMeta() error {
	row := ix.db.QueryRow(`SELECT
		(SELECT value FROM meta WHERE key = ?),
		(SELECT value FROM meta WHERE key = ?)`, metaDocCount, metaAvgLength)
	var n sql.NullInt64
	var avg sql.NullFloat64
	if err := row.Scan(&n, &avg); err != nil {
		return err
	}
	if !n.Valid || !avg.Valid {
		return fmt.Errorf("missing corpus statistics")
	}
	ix.docCount = int(n.Int64)
	ix.avgLength = avg.Float64
	return nil
}

// Stats returns corpus statistics recorded at build time.
func (ix *Index) Stats(ctx context.Context) (Stats, error) {
	s := Stats{Documents: ix.docCount, AvgLength: ix.avgLength}
	rows, err := ix.db.QueryContext(ctx, `SELECT key, value FROM meta WHERE key IN (?, ?)`, metaAnalyzer, metaBuiltAt)
	if err != nil {
		return s, fmt.Errorf("reading meta: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return s, fmt.Errorf("scanning meta: %w", err)
		}
		switch k {
		case metaAnalyzer:
			s.Analyzer = v
		case metaBuiltAt:
			s.BuiltAt = v
		}
	}
	return s, rows.Err()
}

type posting struct {
	docID  string
	tf     int
	length int
}

// Search scores every document containing at least one query term and
// returns the k best, highest score first. Keywords are analyzed the same
// way document contents were; repeated terms count once. Equal scores are
// ordered by document id.
func (ix *Index) Search(ctx context.Context, keywords []string, k int) ([]types.Hit, error) {
	terms := ix.analyzer.Unique(keywords...)
	if len(terms) == 0 || k <= 0 || ix.docCount == 0 {
		return []types.Hit{}, nil
	}

	scores := make(map[string]float64)
	for _, term := range terms {
		postings, err := ix.postings(ctx, term)
		if err != nil {
			return nil, err
		}
		if len(postings) == 0 {
			continue
		}
		idf := ix.idf(len(postings))
		for _, p := range postings {
			scores[p.docID] += idf * ix.termWeight(p.tf, p.length)
		}
	}

	hits := make([]types.Hit, 0, len(scores))
	for id, s := range scores {
		hits = append(hits, types.Hit{DocID: id, Score: s})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocID < hits[j].DocID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (ix *Index) postings(ctx context.Context, term string) ([]posting, error) {
	rows, err := ix.db.QueryContext(ctx, `
		SELECT d.id, p.tf, d.length
		FROM postings p
		JOIN docs d ON d.rowid = p.doc
		WHERE p.term = ?`, term)
	if err != nil {
		return nil, fmt.Errorf("querying postings for %q: %w", term, err)
	}
	defer rows.Close()

	var out []posting
	for rows.Next() {
		var p posting
		if err := rows.Scan(&p.docID, &p.tf, &p.length); err != nil {
			return nil, fmt.Errorf("scanning posting: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// idf is the BM25 inverse document frequency ln(1 + (N - df + 0.5) / (df + 0.5)),
// which stays positive for terms present in most documents.
func (ix *Index) idf(df int) float64 {
	n := float64(ix.docCount)
	d := float64(df)
	return math.Log(1 + (n-d+0.5)/(d+0.5))
}

// termWeight is the length-normalized term frequency tf / (tf + k1·(1 - b + b·dl/avgdl)).
func (ix *Index) termWeight(tf, length int) float64 {
	ratio := 1.0
	if ix.avgLength > 0 {
		ratio = float64(length) / ix.avgLength
	}
	f := float64(tf)
	return f / (f + ix.params.K1*(1-ix.params.B+ix.params.B*ratio))
}
