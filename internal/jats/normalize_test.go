// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jats

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pmc-search/pkg/types"
)

const fullRecord = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE pmc-articleset PUBLIC "-//NLM//DTD ARTICLE SET 2.0//EN" "https://dtd.nlm.nih.gov/ncbi/pmc/articleset/nlm-articleset-2.0.dtd">
<pmc-articleset>
<article xmlns:xlink="http://www.w3.org/1999/xlink" article-type="research-article">
  <front>
    <journal-meta>
      <journal-id journal-id-type="nlm-ta">Nutrients</journal-id>
      <journal-title-group><journal-title>Nutrients</journal-title></journal-title-group>
    </journal-meta>
    <article-meta>
      <article-id pub-id-type="pmcid">PMC100</article-id>
      <title-group>
        <article-title>Dietary patterns and <italic>chronic</italic> inflammation</article-title>
      </title-group>
      <contrib-group>
        <contrib contrib-type="author">
          <name><surname>Smith</surname><given-names>Jane A.</given-names></name>
        </contrib>
        <contrib contrib-type="author">
          <name><surname>Lee</surname><given-names>Min</given-names></name>
        </contrib>
        <contrib contrib-type="author">
          <collab>Nutrition Study Group</collab>
        </contrib>
      </contrib-group>
      <pub-date pub-type="epub"><day>09</day><month>03</month><year>2021</year></pub-date>
      <pub-date pub-type="collection"><year>2022</year></pub-date>
      <abstract>
        <sec><title>Background</title><p>Diet shapes   inflammation.</p></sec>
        <sec><title>Results</title><p>Fiber intake lowered CRP&nbsp;levels.</p></sec>
      </abstract>
      <kwd-group kwd-group-type="author">
        <kwd>diet</kwd>
        <kwd>inflammation</kwd>
        <kwd>C-reactive protein</kwd>
      </kwd-group>
    </article-meta>
  </front>
  <body>
    <sec>
      <title>Introduction</title>
      <p>Chronic inflammation is linked to <xref ref-type="bibr" rid="B1">[1]</xref> disease.</p>
      <p>Diet is a modifiable factor.</p>
      <sec>
        <title>Scope</title>
        <p>We review foods.</p>
      </sec>
    </sec>
    <sec>
      <title>Methods</title>
    </sec>
    <sec>
      <p>Untitled section text.</p>
    </sec>
  </body>
</article>
</pmc-articleset>`

func TestNormalizeFullRecord(t *testing.T) {
	meta, body, err := Normalize("100", []byte(fullRecord))
	require.NoError(t, err)

	assert.Equal(t, "Dietary patterns and chronic inflammation", meta.Title)
	assert.Equal(t, "Nutrients", meta.Journal)
	assert.Equal(t, []string{"Jane A. Smith", "Min Lee"}, meta.Authors)
	assert.Equal(t, "2021-03-09", meta.Date, "first pub-date wins, ordered year-month-day")
	assert.Equal(t, "Diet shapes inflammation. Fiber intake lowered CRP levels.", meta.Abstract)
	assert.Equal(t, []string{"diet", "inflammation", "C-reactive protein"}, meta.Keywords)

	assert.Equal(t, types.BodyPresent, body.Status)
	want := "\n## Introduction\n" +
		"Chronic inflammation is linked to [1] disease.\n" +
		"Diet is a modifiable factor.\n" +
		"\n" +
		"\n## Scope\n" +
		"We review foods.\n" +
		"\n" +
		"\n## Methods\n" +
		"\n" +
		"Untitled section text.\n"
	assert.Equal(t, want, body.Text)
}

func TestNormalizeBareArticle(t *testing.T) {
	raw := `<article><front><article-meta>
<title-group><article-title>Bare</article-title></title-group>
</article-meta></front><body><sec><p>Text.</p></sec></body></article>`

	meta, body, err := Normalize("7", []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "Bare", meta.Title)
	assert.Equal(t, "Text.\n", body.Text)
}

func TestNormalizeDefaults(t *testing.T) {
	raw := `<pmc-articleset><article><front><article-meta/></front></article></pmc-articleset>`

	meta, body, err := Normalize("42", []byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "PMC_42", meta.Title)
	assert.Equal(t, types.UnknownJournal, meta.Journal)
	assert.Equal(t, types.UnknownDate, meta.Date)
	assert.Equal(t, "", meta.Abstract)
	assert.NotNil(t, meta.Authors)
	assert.Empty(t, meta.Authors)
	assert.NotNil(t, meta.Keywords)
	assert.Empty(t, meta.Keywords)

	assert.Equal(t, types.BodyUnavailable, body.Status)
	assert.Equal(t, types.BodyUnavailableText, body.Text)
	assert.False(t, body.Available())
}

func TestNormalizeJournalFallback(t *testing.T) {
	raw := `<article><front><journal-meta><journal-title>Old Style Journal</journal-title></journal-meta></front></article>`

	meta, _, err := Normalize("1", []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "Old Style Journal", meta.Journal)
}

func TestNormalizeDates(t *testing.T) {
	tests := []struct {
		name    string
		pubDate string
		want    string
	}{
		{"year only", `<pub-date><year>2019</year></pub-date>`, "2019"},
		{"year and month", `<pub-date><month>11</month><year>2019</year></pub-date>`, "2019-11"},
		{"season only is unknown", `<pub-date><season>Spring</season></pub-date>`, types.UnknownDate},
		{"no pub-date", ``, types.UnknownDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `<article><front><article-meta>` + tt.pubDate + `</article-meta></front></article>`
			meta, _, err := Normalize("1", []byte(raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, meta.Date)
		})
	}
}

func TestNormalizeAuthorsNeedBothNames(t *testing.T) {
	raw := `<article><front><article-meta>
<contrib-group>
  <contrib><name><surname>Solo</surname></name></contrib>
  <contrib><name><given-names>Only</given-names></name></contrib>
  <contrib><name><surname>Full</surname><given-names>Name</given-names></name></contrib>
</contrib-group>
<contrib-group>
  <contrib><name><surname>Editor</surname><given-names>Second</given-names></name></contrib>
</contrib-group>
</article-meta></front></article>`

	meta, _, err := Normalize("1", []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, []string{"Name Full"}, meta.Authors, "only the first contrib-group is read")
}

func TestNormalizeBody(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus types.BodyStatus
		wantText   string
	}{
		{
			name:       "no body element",
			body:       ``,
			wantStatus: types.BodyUnavailable,
			wantText:   types.BodyUnavailableText,
		},
		{
			name:       "body without sections",
			body:       `<body><p>Loose paragraph.</p></body>`,
			wantStatus: types.BodyUnavailable,
			wantText:   types.BodyUnavailableText,
		},
		{
			name:       "sections without text",
			body:       `<body><sec><title> </title><p/></sec><sec/></body>`,
			wantStatus: types.BodyEmpty,
			wantText:   types.BodyEmptyText,
		},
		{
			name:       "empty sections are dropped",
			body:       `<body><sec/><sec><title>Only</title></sec><sec></sec></body>`,
			wantStatus: types.BodyPresent,
			wantText:   "\n## Only\n",
		},
		{
			name:       "paragraphs without title",
			body:       `<body><sec><p>One.</p><p>Two.</p></sec></body>`,
			wantStatus: types.BodyPresent,
			wantText:   "One.\nTwo.\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `<article><front/>` + tt.body + `</article>`
			_, body, err := Normalize("1", []byte(raw))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.wantText, body.Text)
		})
	}
}

func TestNormalizeNestedSectionOrder(t *testing.T) {
	raw := `<article><body>
<sec><title>A</title><sec><title>A.1</title><sec><title>A.1.a</title></sec></sec><p>after nested</p></sec>
<sec><title>B</title></sec>
</body></article>`

	_, body, err := Normalize("1", []byte(raw))
	require.NoError(t, err)
	assert.Equal(t,
		"\n## A\nafter nested\n\n\n## A.1\n\n\n## A.1.a\n\n\n## B\n",
		body.Text,
		"parents come before children and a section's own paragraphs stay with its heading")
}

func TestNormalizeWrappedSections(t *testing.T) {
	t.Run("only sections inside a wrapper", func(t *testing.T) {
		raw := `<article><body><boxed-text><sec><title>Box</title><p>boxed words</p></sec></boxed-text></body></article>`

		_, body, err := Normalize("1", []byte(raw))
		require.NoError(t, err)
		assert.Equal(t, types.BodyPresent, body.Status)
		assert.Equal(t, "\n## Box\nboxed words\n", body.Text)
	})

	t.Run("wrapped section inside a section", func(t *testing.T) {
		raw := `<article><body>
<sec><title>Results</title><p>Main.</p>
  <boxed-text><sec><title>Key points</title><p>Point.</p></sec></boxed-text>
  <fig><caption><p>Figure caption.</p></caption></fig>
</sec>
<sec><title>Discussion</title></sec>
</body></article>`

		_, body, err := Normalize("1", []byte(raw))
		require.NoError(t, err)
		assert.Equal(t,
			"\n## Results\nMain.\n\n\n## Key points\nPoint.\n\n\n## Discussion\n",
			body.Text,
			"a paragraph inside a figure caption is not a section paragraph")
	})
}

func TestNormalizeAlternativeNames(t *testing.T) {
	raw := `<article><front><article-meta>
<contrib-group>
  <contrib contrib-type="author">
    <name-alternatives>
      <name name-style="western"><surname>Wang</surname><given-names>Li</given-names></name>
      <string-name name-style="eastern">王力</string-name>
    </name-alternatives>
  </contrib>
  <contrib contrib-type="author"><name><surname>Chen</surname><given-names>Yu</given-names></name></contrib>
</contrib-group>
</article-meta></front></article>`

	meta, _, err := Normalize("1", []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, []string{"Li Wang", "Yu Chen"}, meta.Authors)
}

func TestNormalizeAbstractOnlyFirst(t *testing.T) {
	raw := `<article><front><article-meta>
<abstract><p>Main abstract.</p></abstract>
<abstract abstract-type="graphical"><p>Graphical.</p></abstract>
</article-meta></front></article>`

	meta, _, err := Normalize("1", []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "Main abstract.", meta.Abstract)
}

func TestNormalizeErrors(t *testing.T) {
	t.Run("malformed XML", func(t *testing.T) {
		_, _, err := Normalize("1", []byte(`<article><front></article>`))
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrNoArticle))
	})

	t.Run("not XML", func(t *testing.T) {
		_, _, err := Normalize("1", []byte(`{"error": "bad id"}`))
		assert.ErrorIs(t, err, ErrNoArticle)
	})

	t.Run("error document", func(t *testing.T) {
		raw := `<?xml version="1.0"?><pmc-articleset><error>The following PMCID is not available: 200</error></pmc-articleset>`
		_, _, err := Normalize("200", []byte(raw))
		assert.ErrorIs(t, err, ErrNoArticle)
	})

	t.Run("empty payload", func(t *testing.T) {
		_, _, err := Normalize("1", nil)
		assert.ErrorIs(t, err, ErrNoArticle)
	})
}

func TestNormalizeLatin1Charset(t *testing.T) {
	raw := append([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><article><front><article-meta><title-group><article-title>Caf`),
		0xe9)
	raw = append(raw, []byte(` study</article-title></title-group></article-meta></front></article>`)...)

	meta, _, err := Normalize("1", raw)
	require.NoError(t, err)
	assert.Equal(t, "Café study", meta.Title)
}
