// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package eutils is a client for the NCBI E-utilities endpoints used to find
// and fetch PubMed Central articles: ESearch for identifiers and EFetch for
// full JATS records.
package eutils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/pdiddy/pmc-search/internal/httputil"
	"github.com/pdiddy/pmc-search/internal/logging"
	"github.com/pdiddy/pmc-search/pkg/types"
)

// Endpoint URLs. Declared as vars so tests can substitute httptest servers.
// EutilsConfig.BaseURL overrides both.
var (
	esearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	efetchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

const (
	defaultDatabase = "pmc"

	// NCBI allows 3 requests per second per caller, 10 with an API key.
	anonymousRate = 3
	keyedRate     = 10

	maxBodyBytes   = 64 << 20
	logPayloadSize = 500
)

// StatusError reports a non-200 response from an endpoint.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.Endpoint, e.Code)
}

// ParseError reports a response body that could not be interpreted.
type ParseError struct {
	Endpoint string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s response: %v", e.Endpoint, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsTransport reports whether err is a network-level failure rather than a
// status or parse failure.
func IsTransport(err error) bool {
	var se *StatusError
	var pe *ParseError
	return err != nil && !errors.As(err, &se) && !errors.As(err, &pe)
}

// Client calls ESearch and EFetch. The zero value is not usable; construct
// with NewClient.
type Client struct {
	http    *http.Client
	cfg     types.EutilsConfig
	limiter *rate.Limiter
	log     logrus.FieldLogger

	esearchURL string
	efetchURL  string
}

// NewClient returns a Client. Requests are paced to NCBI's per-caller
// ceiling, which depends on whether cfg carries an API key.
func NewClient(httpClient *http.Client, cfg types.EutilsConfig, log logrus.FieldLogger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Database == "" {
		cfg.Database = defaultDatabase
	}
	if log == nil {
		log = logging.Discard()
	}
	perSecond := anonymousRate
	if cfg.APIKey != "" {
		perSecond = keyedRate
	}
	c := &Client{
		http:       httpClient,
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Limit(perSecond), 1),
		log:        log,
		esearchURL: esearchBase,
		efetchURL:  efetchBase,
	}
	if base := strings.TrimSuffix(cfg.BaseURL, "/"); base != "" {
		c.esearchURL = base + "/esearch.fcgi"
		c.efetchURL = base + "/efetch.fcgi"
	}
	return c
}

// baseParams returns the query parameters sent with every request.
func (c *Client) baseParams() url.Values {
	params := url.Values{"db": {c.cfg.Database}}
	if c.cfg.Tool != "" {
		params.Set("tool", c.cfg.Tool)
	}
	if c.cfg.Email != "" {
		params.Set("email", c.cfg.Email)
	}
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}
	return params
}

// get performs a paced, retried GET and returns the body of a 200 response.
func (c *Client) get(ctx context.Context, endpoint, base string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	start := time.Now()
	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries, c.log)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s reading body: %w", endpoint, err)
	}

	entry := c.log.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"status":   resp.StatusCode,
		"bytes":    len(body),
		"elapsed":  time.Since(start).String(),
	})
	if resp.StatusCode != http.StatusOK {
		entry.WithField("body", logging.Truncate(string(body), logPayloadSize)).Warn("unexpected status")
		return nil, &StatusError{Endpoint: endpoint, Code: resp.StatusCode}
	}
	entry.Debug("request complete")
	return body, nil
}
