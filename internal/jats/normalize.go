// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jats turns a PubMed Central JATS XML record into flat article
// metadata and a plain-text body.
//
// Extraction is field-by-field and tolerant: a missing element leaves the
// field at its default (see types.NewMetadata) and never stops the remaining
// fields from being read. The only error is an unparseable record.
package jats

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/pdiddy/pmc-search/pkg/types"
)

// ErrNoArticle is returned for well-formed XML that holds no <article>,
// such as an EFetch error document.
var ErrNoArticle = errors.New("no article element in record")

// Normalize parses raw, the EFetch payload for identifier id, into Metadata
// and Body. raw may be a <pmc-articleset> wrapper or a bare <article>.
func Normalize(id string, raw []byte) (types.Metadata, types.Body, error) {
	art, err := decodeArticle(raw)
	if err != nil {
		return types.Metadata{}, types.Body{}, err
	}
	return extractMetadata(id, art), extractBody(art.Body), nil
}

func decodeArticle(raw []byte) (*article, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.CharsetReader = charset.NewReaderLabel
	dec.Entity = xml.HTMLEntity

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, ErrNoArticle
		}
		if err != nil {
			return nil, fmt.Errorf("decoding record: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "article" {
			continue
		}
		var art article
		if err := dec.DecodeElement(&art, &start); err != nil {
			return nil, fmt.Errorf("decoding article: %w", err)
		}
		return &art, nil
	}
}

func extractMetadata(id string, art *article) types.Metadata {
	meta := types.NewMetadata(id)
	am := art.Front.ArticleMeta

	if t := first(am.Titles); t != "" {
		meta.Title = t
	}

	jm := art.Front.JournalMeta
	if j := first(jm.GroupTitles); j != "" {
		meta.Journal = j
	} else if j := first(jm.Titles); j != "" {
		meta.Journal = j
	}

	if len(am.ContribGroups) > 0 {
		for _, n := range am.ContribGroups[0].Names {
			if n.GivenNames != "" && n.Surname != "" {
				meta.Authors = append(meta.Authors, string(n.GivenNames)+" "+string(n.Surname))
			}
		}
	}

	if len(am.PubDates) > 0 {
		if d := joinDate(am.PubDates[0]); d != "" {
			meta.Date = d
		}
	}

	if len(am.Abstracts) > 0 {
		meta.Abstract = strings.Join(am.Abstracts[0], " ")
	}

	if len(am.KwdGroups) > 0 {
		meta.Keywords = append(meta.Keywords, am.KwdGroups[0]...)
	}

	return meta
}

// joinDate joins whichever of year, month, day are present, in that order.
func joinDate(d pubDate) string {
	var parts []string
	for _, p := range []text{d.Year, d.Month, d.Day} {
		if p != "" {
			parts = append(parts, string(p))
		}
	}
	return strings.Join(parts, "-")
}

// extractBody rebuilds the article text from every <sec> in document order.
// A section contributes an optional "## title" heading and its paragraphs,
// one per line; a section contributing nothing is dropped.
func extractBody(b *body) types.Body {
	if b == nil || len(b.Sections) == 0 {
		return types.Body{Text: types.BodyUnavailableText, Status: types.BodyUnavailable}
	}

	var blocks []string
	for _, s := range b.Sections {
		if block := s.block(); block != "" {
			blocks = append(blocks, block)
		}
	}

	if len(blocks) == 0 {
		return types.Body{Text: types.BodyEmptyText, Status: types.BodyEmpty}
	}
	return types.Body{Text: strings.Join(blocks, "\n"), Status: types.BodyPresent}
}

func (s section) block() string {
	var b strings.Builder
	if t := first(s.Titles); t != "" {
		b.WriteString("\n## ")
		b.WriteString(t)
		b.WriteString("\n")
	}
	for _, p := range s.Paras {
		if p == "" {
			continue
		}
		b.WriteString(string(p))
		b.WriteString("\n")
	}
	return b.String()
}

func first(ts []text) string {
	if len(ts) == 0 {
		return ""
	}
	return string(ts[0])
}
