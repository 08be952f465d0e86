// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pmc-search pipeline:
// the normalized article (Metadata, Body, Document), the index boundary (Hit),
// ranked query output (SearchResult), and run-scoped paths (Run).
package types

// Defaults used when a record omits a metadata field. Every Metadata field is
// always populated so downstream consumers never see a missing value.
const (
	UnknownJournal = "Unknown Journal"
	UnknownDate    = "Unknown Date"

	// DocIDPrefix is prepended to the upstream identifier to form Document.ID.
	DocIDPrefix = "PMC"

	// BodyUnavailableText is the body text of a record that has no body
	// container or no sections.
	BodyUnavailableText = "Full text not available for this article."

	// BodyEmptyText is the body text of a record whose sections carry no text.
	BodyEmptyText = "No readable text found."

	// JoinMissError marks a search hit whose id is absent from the collection.
	JoinMissError = "Not found in local data file"
)

// Metadata holds the bibliographic fields extracted from one record.
type Metadata struct {
	Title    string   `json:"title" yaml:"title"`
	Journal  string   `json:"journal" yaml:"journal"`
	Authors  []string `json:"authors" yaml:"authors"`
	Date     string   `json:"date" yaml:"date"`
	Abstract string   `json:"abstract" yaml:"abstract"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// NewMetadata returns Metadata carrying the default for every field.
// Title defaults to "PMC_<id>".
func NewMetadata(id string) Metadata {
	return Metadata{
		Title:    "PMC_" + id,
		Journal:  UnknownJournal,
		Authors:  []string{},
		Date:     UnknownDate,
		Keywords: []string{},
	}
}

// BodyStatus classifies a reconstructed article body.
type BodyStatus string

const (
	// BodyPresent means at least one section contributed text.
	BodyPresent BodyStatus = "present"

	// BodyEmpty means sections exist but none contributed text.
	BodyEmpty BodyStatus = "empty"

	// BodyUnavailable means the record has no body container or no sections.
	BodyUnavailable BodyStatus = "unavailable"
)

// Body is the plain-text article body assembled from titled sections and
// paragraphs. Text always holds a value: the reconstructed text, or the
// sentinel matching Status.
type Body struct {
	Text   string
	Status BodyStatus
}

// Available reports whether the record had a body with sections.
func (b Body) Available() bool {
	return b.Status != BodyUnavailable
}

// Document is one line of a collection file.
type Document struct {
	ID string `json:"id"`
	Metadata
	Contents string `json:"contents"`
}

// NewDocument builds the collection entry for identifier id.
func NewDocument(id string, meta Metadata, body Body) Document {
	return Document{
		ID:       DocID(id),
		Metadata: meta,
		Contents: body.Text,
	}
}

// DocID returns the collection document id for an upstream identifier.
func DocID(id string) string {
	return DocIDPrefix + id
}

// Hit is one ranked match returned by an index.
type Hit struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// ResultMetadata holds the Document fields joined into a SearchResult.
type ResultMetadata struct {
	Date        string   `json:"date"`
	JournalName string   `json:"journal_name"`
	Authors     []string `json:"authors"`
	Title       string   `json:"title"`
	Abstract    string   `json:"abstract"`
}

// SearchResult is one ranked query result. Exactly one of ResultMetadata and
// Error is set: metadata when the hit joined a collection document, the
// JoinMissError marker otherwise. A nil ResultMetadata contributes no fields
// to the JSON encoding.
type SearchResult struct {
	Rank  int     `json:"rank"`
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
	*ResultMetadata
	Error string `json:"error,omitempty"`
}

// Found reports whether the result joined a collection document.
func (r SearchResult) Found() bool {
	return r.ResultMetadata != nil
}
