// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/pdiddy/pmc-search/internal/logging"
)

const openAccessFilter = "open access[filter]"

// SearchTerm returns the ESearch term for query, optionally restricted to the
// open access subset.
func SearchTerm(query string, openAccessOnly bool) string {
	if !openAccessOnly || query == "" {
		return query
	}
	return "(" + query + ") AND " + openAccessFilter
}

// SearchIDs runs ESearch for term and returns up to max identifiers in the
// order ESearch ranks them. An empty slice with a nil error is a valid
// "no matches" answer.
func (c *Client) SearchIDs(ctx context.Context, term string, max int) ([]string, error) {
	if term == "" {
		return nil, fmt.Errorf("empty search term")
	}

	params := c.baseParams()
	params.Set("term", term)
	params.Set("retmode", "json")
	if max > 0 {
		params.Set("retmax", strconv.Itoa(max))
	}

	body, err := c.get(ctx, "esearch", c.esearchURL, params)
	if err != nil {
		return nil, err
	}

	ids, err := parseIDList(body)
	if err != nil {
		c.log.WithField("body", logging.Truncate(string(body), logPayloadSize)).Warn("malformed esearch response")
		return nil, &ParseError{Endpoint: "esearch", Err: err}
	}

	c.log.WithFields(logrus.Fields{
		"term":  term,
		"count": gjson.GetBytes(body, "esearchresult.count").String(),
		"ids":   len(ids),
	}).Debug("esearch complete")
	return ids, nil
}

// parseIDList extracts esearchresult.idlist from an ESearch JSON body.
func parseIDList(body []byte) ([]string, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("invalid JSON")
	}
	result := gjson.GetBytes(body, "esearchresult")
	if !result.Exists() {
		if msg := gjson.GetBytes(body, "error"); msg.Exists() {
			return nil, fmt.Errorf("esearch error: %s", msg.String())
		}
		return nil, errors.New("missing esearchresult")
	}
	if msg := result.Get("ERROR"); msg.Exists() {
		return nil, fmt.Errorf("esearch error: %s", msg.String())
	}

	list := result.Get("idlist")
	if !list.IsArray() {
		return nil, errors.New("missing esearchresult.idlist")
	}

	ids := make([]string, 0, len(list.Array()))
	for _, id := range list.Array() {
		if s := id.String(); s != "" {
			ids = append(ids, s)
		}
	}
	return ids, nil
}
