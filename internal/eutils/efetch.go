// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"context"
	"fmt"
)

// FetchRecord runs EFetch for one identifier and returns the raw JATS XML.
// A non-200 response is reported as *StatusError.
func (c *Client) FetchRecord(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, fmt.Errorf("empty identifier")
	}

	params := c.baseParams()
	params.Set("id", id)
	params.Set("retmode", "xml")

	body, err := c.get(ctx, "efetch", c.efetchURL, params)
	if err != nil {
		return nil, err
	}
	c.log.WithField("pmc_id", id).Debug("fetched record")
	return body, nil
}
