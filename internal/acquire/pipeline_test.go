// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Integration test: ESearch → EFetch → collection, using a mock E-utilities
// server behind the real client.

package acquire

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pmc-search/internal/collection"
	"github.com/pdiddy/pmc-search/internal/eutils"
	"github.com/pdiddy/pmc-search/pkg/types"
)

func newEutilsServer(t *testing.T, records map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/esearch.fcgi":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"esearchresult": {"count": "3", "idlist": ["100", "200", "300"]}}`)
		case "/efetch.fcgi":
			rec, ok := records[r.URL.Query().Get("id")]
			if !ok {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "text/xml")
			fmt.Fprint(w, rec)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestPipelineSearchThenCollect(t *testing.T) {
	ts := newEutilsServer(t, map[string]string{
		"100": articleXML("Omega-3 intake and inflammation", true),
		"300": articleXML("Abstract-only report", false),
	})
	defer ts.Close()

	client := eutils.NewClient(ts.Client(), types.EutilsConfig{
		BaseURL: ts.URL,
		APIKey:  "test-key",
		HTTPConfig: types.HTTPConfig{
			Timeout:   5 * time.Second,
			UserAgent: "pmc-search-test/1.0",
		},
	}, nil)

	req := Request{
		Query: "omega-3 inflammation",
		Delay: time.Millisecond,
		Run:   types.NewRun(t.TempDir(), time.Now()),
	}

	var buf bytes.Buffer
	sum, err := Collect(context.Background(), client, req, &buf)
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Found)
	assert.Equal(t, 1, sum.Written)
	assert.Equal(t, 1, sum.Excluded)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, ReasonHTTPStatus, sum.Items[1].Reason)

	docs, err := collection.Load(req.Run.CollectionPath())
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs["PMC100"]
	assert.Equal(t, "Omega-3 intake and inflammation", doc.Title)
	assert.Equal(t, "Nutrients", doc.Journal)
	assert.Equal(t, "2020", doc.Date)
	assert.Equal(t, "\n## Intro\nText about Omega-3 intake and inflammation.\n", doc.Contents)

	out := buf.String()
	assert.Contains(t, out, "found: 3 identifiers")
	assert.Contains(t, out, "skipped: PMC300 (no full text)")
	assert.Contains(t, out, "failed:  PMC200 (efetch returned HTTP 404)")
}
