// Package enrich fetches optional summary and headline overrides for the
// selected feed item from a local transcript service. Both lookups are
// best-effort: the feed renders fully without them.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ErrNotFound marks a 404 from the detail endpoint: the turn has no local
// transcript.
var ErrNotFound = errors.New("detail not found")

// ErrUnsupported marks a 404/405 from the headline endpoint: the capability
// is absent for this server.
var ErrUnsupported = errors.New("headline endpoint unsupported")

// HeadlineSource tags where a headline came from.
type HeadlineSource string

const (
	HeadlineLLM       HeadlineSource = "llm"
	HeadlineHeuristic HeadlineSource = "heuristic"
)

// TurnRef identifies a local transcript turn.
type TurnRef struct {
	TurnID     string
	SessionKey string // optional
	RunID      string // optional
}

// Headline is a one-line title for a feed item.
type Headline struct {
	Text   string
	Source HeadlineSource
}

// Client talks to the local detail service.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for the given base URL. A nil httpClient uses
// http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// TurnDetail fetches the summary override for a turn. A 404 maps to
// ErrNotFound; any other non-200 status is a transport failure.
func (c *Client) TurnDetail(ctx context.Context, ref TurnRef) (string, error) {
	params := url.Values{}
	params.Set("turnId", ref.TurnID)
	if ref.SessionKey != "" {
		params.Set("sessionKey", ref.SessionKey)
	}
	if ref.RunID != "" {
		params.Set("run", ref.RunID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/turn-detail?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build detail request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("detail request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("detail request: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Detail struct {
			Summary *string `json:"summary"`
		} `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode detail response: %w", err)
	}
	if payload.Detail.Summary == nil {
		return "", nil
	}
	return strings.TrimSpace(*payload.Detail.Summary), nil
}

// GenerateHeadline asks the server to derive a one-line title. 404 and 405
// map to ErrUnsupported so the caller can latch the capability off.
func (c *Client) GenerateHeadline(ctx context.Context, text, title, eventType string) (Headline, error) {
	body, err := json.Marshal(map[string]string{
		"text":  text,
		"title": title,
		"type":  eventType,
	})
	if err != nil {
		return Headline{}, fmt.Errorf("encode headline request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/headline", bytes.NewReader(body))
	if err != nil {
		return Headline{}, fmt.Errorf("build headline request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Headline{}, fmt.Errorf("headline request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusMethodNotAllowed:
		io.Copy(io.Discard, resp.Body)
		return Headline{}, ErrUnsupported
	case resp.StatusCode != http.StatusOK:
		return Headline{}, fmt.Errorf("headline request: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Headline *string `json:"headline"`
		Source   *string `json:"source"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Headline{}, fmt.Errorf("decode headline response: %w", err)
	}

	h := Headline{Source: HeadlineHeuristic}
	if payload.Headline != nil {
		h.Text = strings.TrimSpace(*payload.Headline)
	}
	if payload.Source != nil && *payload.Source == string(HeadlineLLM) {
		h.Source = HeadlineLLM
	}
	return h, nil
}
