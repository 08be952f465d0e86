// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetadataDefaults(t *testing.T) {
	m := NewMetadata("12345")

	assert.Equal(t, "PMC_12345", m.Title)
	assert.Equal(t, UnknownJournal, m.Journal)
	assert.Equal(t, UnknownDate, m.Date)
	assert.Empty(t, m.Abstract)
	assert.NotNil(t, m.Authors)
	assert.NotNil(t, m.Keywords)
}

func TestNewDocument(t *testing.T) {
	meta := NewMetadata("7")
	doc := NewDocument("7", meta, Body{Text: BodyEmptyText, Status: BodyEmpty})

	assert.Equal(t, "PMC7", doc.ID)
	assert.Equal(t, BodyEmptyText, doc.Contents)
	assert.Equal(t, meta, doc.Metadata)
}

func TestDocumentJSONIsFlat(t *testing.T) {
	doc := NewDocument("7", NewMetadata("7"), Body{Text: "text", Status: BodyPresent})
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	for _, key := range []string{"id", "title", "journal", "authors", "date", "abstract", "keywords", "contents"} {
		assert.Contains(t, fields, key)
	}
	assert.Equal(t, []any{}, fields["authors"])
}

func TestBodyAvailable(t *testing.T) {
	assert.True(t, Body{Status: BodyPresent}.Available())
	assert.True(t, Body{Status: BodyEmpty}.Available())
	assert.False(t, Body{Status: BodyUnavailable}.Available())
}

func TestSearchResultJSON(t *testing.T) {
	found := SearchResult{
		Rank:  1,
		DocID: "PMC1",
		Score: 2.5,
		ResultMetadata: &ResultMetadata{
			Date:        "2021-05",
			JournalName: "Nutrients",
			Authors:     []string{"Ann Lee"},
			Title:       "Diet",
		},
	}
	data, err := json.Marshal(found)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rank":1,"doc_id":"PMC1","score":2.5,"date":"2021-05","journal_name":"Nutrients","authors":["Ann Lee"],"title":"Diet","abstract":""}`, string(data))
	assert.True(t, found.Found())

	miss := SearchResult{Rank: 2, DocID: "PMC9", Score: 1, Error: JoinMissError}
	data, err = json.Marshal(miss)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rank":2,"doc_id":"PMC9","score":1,"error":"Not found in local data file"}`, string(data))
	assert.False(t, miss.Found())
}
