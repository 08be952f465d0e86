// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index builds and queries the BM25 index artifact for a collection.
//
// The artifact is a SQLite database holding one row per document (its
// analyzed length), one row per (term, document) posting with the term
// frequency, and corpus statistics. Scoring happens at query time, so k1
// and b are chosen when the index is opened rather than when it is built.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pmc-search/internal/analysis"
	"github.com/pdiddy/pmc-search/internal/collection"
	"github.com/pdiddy/pmc-search/internal/logging"
	"github.com/pdiddy/pmc-search/pkg/types"
)

const analyzerName = "english-porter"

// Meta keys.
const (
	metaDocCount    = "doc_count"
	metaTotalLength = "total_length"
	metaAvgLength   = "avg_length"
	metaAnalyzer    = "analyzer"
	metaCollection  = "collection"
	metaBuiltAt     = "built_at"
)

var schema = []string{
	`CREATE TABLE docs (
		rowid INTEGER PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		length INTEGER NOT NULL
	)`,
	`CREATE TABLE postings (
		term TEXT NOT NULL,
		doc INTEGER NOT NULL REFERENCES docs(rowid),
		tf INTEGER NOT NULL,
		PRIMARY KEY (term, doc)
	) WITHOUT ROWID`,
	`CREATE TABLE meta (
		key TEXT PRIMARY KEY,
		value NOT NULL
	)`,
}

// BuildStats describes a finished build.
type BuildStats struct {
	Documents int
	Skipped   int
	Terms     int
	Postings  int
	AvgLength float64
	Elapsed   time.Duration
}

// Build indexes the contents of every Document in the collection at
// collectionPath and writes the artifact to indexPath, replacing any
// previous file. The artifact is assembled in a temporary file and renamed
// into place, so indexPath never holds a partial index.
func Build(ctx context.Context, collectionPath, indexPath string, log logrus.FieldLogger) (BuildStats, error) {
	if log == nil {
		log = logging.Discard()
	}
	start := time.Now()

	dir := filepath.Dir(indexPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return BuildStats{}, fmt.Errorf("creating index directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".index-*.db")
	if err != nil {
		return BuildStats{}, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	stats, err := buildInto(ctx, tmpPath, collectionPath, log)
	if err != nil {
		os.Remove(tmpPath)
		return BuildStats{}, err
	}
	if err := os.Rename(tmpPath, indexPath); err != nil {
		os.Remove(tmpPath)
		return BuildStats{}, fmt.Errorf("renaming temp file: %w", err)
	}

	stats.Elapsed = time.Since(start)
	log.WithFields(logrus.Fields{
		"documents": stats.Documents,
		"terms":     stats.Terms,
		"postings":  stats.Postings,
		"elapsed":   stats.Elapsed.String(),
		"index":     indexPath,
	}).Info("index built")
	return stats, nil
}

func buildInto(ctx context.Context, dbPath, collectionPath string, log logrus.FieldLogger) (BuildStats, error) {
	var stats BuildStats

	dsn, err := fileURI(dbPath, url.Values{"_journal_mode": {"OFF"}, "_synchronous": {"OFF"}})
	if err != nil {
		return stats, fmt.Errorf("opening database: %w", err)
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return stats, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return stats, fmt.Errorf("executing schema statement: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	insDoc, err := tx.PrepareContext(ctx, `INSERT INTO docs (id, length) VALUES (?, ?)`)
	if err != nil {
		return stats, fmt.Errorf("preparing doc insert: %w", err)
	}
	defer insDoc.Close()

	insPosting, err := tx.PrepareContext(ctx, `INSERT INTO postings (term, doc, tf) VALUES (?, ?, ?)`)
	if err != nil {
		return stats, fmt.Errorf("preparing posting insert: %w", err)
	}
	defer insPosting.Close()

	an := analysis.English()
	seen := make(map[string]bool)
	var totalLength int

	err = collection.Scan(collectionPath, func(doc types.Document) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if doc.ID == "" || seen[doc.ID] {
			log.WithField("doc_id", doc.ID).Warn("skipping document with empty or repeated id")
			stats.Skipped++
			return nil
		}
		seen[doc.ID] = true

		tf, length := an.Frequencies(doc.Contents)
		res, err := insDoc.ExecContext(ctx, doc.ID, length)
		if err != nil {
			return fmt.Errorf("inserting %s: %w", doc.ID, err)
		}
		rowid, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("inserting %s: %w", doc.ID, err)
		}
		for term, n := range tf {
			if _, err := insPosting.ExecContext(ctx, term, rowid, n); err != nil {
				return fmt.Errorf("inserting postings for %s: %w", doc.ID, err)
			}
		}

		stats.Documents++
		stats.Postings += len(tf)
		totalLength += length
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("indexing collection: %w", err)
	}

	if stats.Documents > 0 {
		stats.AvgLength = float64(totalLength) / float64(stats.Documents)
	}
	meta := map[string]any{
		metaDocCount:    stats.Documents,
		metaTotalLength: totalLength,
		metaAvgLength:   stats.AvgLength,
		metaAnalyzer:    analyzerName,
		metaCollection:  collectionPath,
		metaBuiltAt:     time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return stats, fmt.Errorf("writing meta %s: %w", k, err)
		}
	}

	if err := tx.QueryRowContext(ctx, `SELECT count(DISTINCT term) FROM postings`).Scan(&stats.Terms); err != nil {
		return stats, fmt.Errorf("counting terms: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("committing index: %w", err)
	}
	return stats, nil
}
