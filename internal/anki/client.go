// Package anki provides a minimal client for the AnkiConnect HTTP API.
package anki

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Version is the AnkiConnect API version sent with every request.
const Version = 6

// DefaultBaseURL is where a stock AnkiConnect add-on listens.
const DefaultBaseURL = "http://127.0.0.1:8765"

// Client issues envelope requests against a single AnkiConnect endpoint. The
// endpoint is fixed at construction and never changes for the process
// lifetime. Calls are issued one at a time by callers; AnkiConnect is a
// single-user desktop application with no concurrent-mutation guarantees.
type Client struct {
	baseURL    string
	httpClient *http.Client
	debug      bool
}

// New returns a client for the given endpoint. If httpClient is nil, a
// default with a 15s timeout is used.
func New(baseURL string, httpClient *http.Client, debug bool) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient, debug: debug}
}

type envelope struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params,omitempty"`
}

type reply struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// Invoke sends one action to AnkiConnect and returns the raw result. A
// connectivity problem yields a *TransportError; a non-null error string in
// the reply yields a *RemoteError. No retries are performed at any layer.
func (c *Client) Invoke(ctx context.Context, action string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(envelope{Action: action, Version: Version, Params: params})
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s request", action)
	}
	if c.debug {
		log.Printf("anki-connect -> %s %s", action, body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "build %s request", action)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Action: action, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{Action: action, Err: errors.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var r reply
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, &TransportError{Action: action, Err: errors.Wrap(err, "decode reply")}
	}
	if r.Error != nil && *r.Error != "" {
		return nil, newRemoteError(action, *r.Error)
	}
	if c.debug {
		log.Printf("anki-connect <- %s %s", action, r.Result)
	}
	return r.Result, nil
}
