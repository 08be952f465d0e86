// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jats

import (
	"encoding/xml"
	"strings"
)

// JATS XML structures. Only the elements read by Normalize are mapped;
// every field is optional.
type article struct {
	Front front `xml:"front"`
	Body  *body `xml:"body"`
}

type front struct {
	JournalMeta journalMeta `xml:"journal-meta"`
	ArticleMeta articleMeta `xml:"article-meta"`
}

type journalMeta struct {
	GroupTitles []text `xml:"journal-title-group>journal-title"`
	Titles      []text `xml:"journal-title"`
}

type articleMeta struct {
	Titles        []text         `xml:"title-group>article-title"`
	ContribGroups []contribGroup `xml:"contrib-group"`
	PubDates      []pubDate      `xml:"pub-date"`
	Abstracts     []paragraphs   `xml:"abstract"`
	KwdGroups     []keywords     `xml:"kwd-group"`
}

// contribGroup holds every <name> below a <contrib-group>, at any depth,
// so names wrapped in <name-alternatives> are kept.
type contribGroup struct {
	Names []name
}

func (g *contribGroup) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for depth := 1; depth > 0; {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "name" {
				depth++
				continue
			}
			var n name
			if err := d.DecodeElement(&n, &t); err != nil {
				return err
			}
			g.Names = append(g.Names, n)
		case xml.EndElement:
			depth--
		}
	}
	return nil
}

type name struct {
	Surname    text `xml:"surname"`
	GivenNames text `xml:"given-names"`
}

type pubDate struct {
	Year  text `xml:"year"`
	Month text `xml:"month"`
	Day   text `xml:"day"`
}

// body holds every <sec> below <body>, at any depth, in start-tag order.
type body struct {
	Sections []section
}

func (b *body) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	return collectSections(d, &b.Sections)
}

// section is a <sec>. Titles and Paras hold direct children only.
type section struct {
	Titles []text
	Paras  []text
}

// collectSections consumes tokens up to the end of the current element and
// appends each descendant <sec>, including those inside wrappers such as
// <boxed-text>.
func collectSections(d *xml.Decoder, out *[]section) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "sec" {
				err = readSection(d, out)
			} else {
				err = collectSections(d, out)
			}
			if err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// readSection reads a <sec> whose start tag was consumed. The section takes
// its slot in out before any section nested inside it.
func readSection(d *xml.Decoder, out *[]section) error {
	i := len(*out)
	*out = append(*out, section{})
	var s section
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "title", "p":
				v, err := readText(d)
				if err != nil {
					return err
				}
				if t.Name.Local == "title" {
					s.Titles = append(s.Titles, text(v))
				} else {
					s.Paras = append(s.Paras, text(v))
				}
			case "sec":
				err = readSection(d, out)
			default:
				err = collectSections(d, out)
			}
			if err != nil {
				return err
			}
		case xml.EndElement:
			(*out)[i] = s
			return nil
		}
	}
}

// text is the whitespace-collapsed character data of an element and all of
// its descendants, so inline markup (<italic>, <xref>, ...) keeps its words.
type text string

func (t *text) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	s, err := readText(d)
	*t = text(s)
	return err
}

// paragraphs collects the text of every <p> below an element, at any depth,
// in document order.
type paragraphs []string

func (p *paragraphs) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	texts, err := collect(d, "p")
	*p = texts
	return err
}

// keywords collects the text of every <kwd> below an element.
type keywords []string

func (k *keywords) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	texts, err := collect(d, "kwd")
	*k = texts
	return err
}

// readText consumes tokens up to the end of the current element and returns
// its character data.
func readText(d *xml.Decoder) (string, error) {
	var b strings.Builder
	for depth := 1; depth > 0; {
		tok, err := d.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			b.Write(t)
		}
	}
	return collapse(b.String()), nil
}

// collect consumes tokens up to the end of the current element and returns
// the non-empty text of each descendant named local. Matches nested inside a
// match are part of the outer text.
func collect(d *xml.Decoder, local string) ([]string, error) {
	var out []string
	for depth := 1; depth > 0; {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != local {
				depth++
				continue
			}
			s, err := readText(d)
			if err != nil {
				return nil, err
			}
			if s != "" {
				out = append(out, s)
			}
		case xml.EndElement:
			depth--
		}
	}
	return out, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
