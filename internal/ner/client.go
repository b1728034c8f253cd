// Package ner talks to the named-entity-recognition collaborator service.
// The service tokenizes Chinese sentences and groups the recognized tokens
// into entity lists; everything downstream (intent classification, keyword
// extraction) consumes its Response.
package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/freshLiver/SuperStudent/internal/errors"
	"github.com/freshLiver/SuperStudent/internal/logger"
)

// Category labels used in the Response.Categories map.
const (
	CategoryPerson       = "PERSON"
	CategoryOrganization = "ORGANIZATION"
	CategoryDate         = "DATE"
	CategoryTime         = "TIME"
	CategoryLocation     = "LOCATION"
)

// Response is the entity analysis of one sentence.
type Response struct {
	// Objects are common nouns; the classifier checks these for media and
	// service cue words.
	Objects []string `json:"objList"`

	// ProperNouns are names the tokenizer could not derive from its lexicon.
	ProperNouns []string `json:"pnList"`

	// Events are contiguous verb-object spans ("舉辦演唱會").
	Events []string `json:"fullEventList"`

	// Dates and Times are the tokens tagged with calendar semantics. The
	// temporal pipeline works on the raw sentence instead, so these are
	// informational.
	Dates []string `json:"dList"`
	Times []string `json:"tList"`

	// Locations are place-like tokens, most specific first is not guaranteed.
	Locations []string `json:"locList"`

	// Categories groups raw NER labels (PERSON, ORGANIZATION, DATE, TIME,
	// LOCATION) to their token lists.
	Categories map[string][]string `json:"categories"`
}

type request struct {
	Sentences  []string          `json:"sentences"`
	CustomDict map[string]string `json:"custom_dict"`
}

// Client calls the NER service over HTTP. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	url        string
	customDict map[string]string
	logger     *logger.Logger
}

// NewClient creates a NER client for the service at url. customWords seed the
// tokenizer's custom dictionary so domain terms ("光復校區") survive word
// segmentation intact.
func NewClient(url string, timeout time.Duration, customWords []string, log *logger.Logger) *Client {
	dict := make(map[string]string, len(customWords))
	for _, w := range customWords {
		dict[w] = ""
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		url:        url,
		customDict: dict,
		logger:     log.WithModule("ner"),
	}
}

// Parse analyzes one sentence. Any transport, status, or decode failure
// returns nil and an error wrapping apperrors.ErrCollaborator; callers are
// expected to degrade rather than retry.
func (c *Client) Parse(ctx context.Context, sentence string) (*Response, error) {
	body, err := json.Marshal(request{
		Sentences:  []string{sentence},
		CustomDict: c.customDict,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).Errorf("NER request failed")
		return nil, fmt.Errorf("%w: %v", apperrors.ErrCollaborator, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.WithField("status", resp.StatusCode).Errorf("NER service returned non-OK status")
		return nil, fmt.Errorf("%w: status %d from %s", apperrors.ErrCollaborator, resp.StatusCode, c.url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", apperrors.ErrCollaborator, err)
	}

	var out Response
	if err := json.Unmarshal(data, &out); err != nil {
		c.logger.WithError(err).Errorf("NER service returned non-JSON body")
		return nil, fmt.Errorf("%w: decoding response: %v", apperrors.ErrCollaborator, err)
	}

	return &out, nil
}
