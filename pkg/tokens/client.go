// Package tokens talks to the pub/sub token-vending endpoint. The endpoint
// issues disposable plain-text bearer tokens scoped to a named cache for a
// bounded lifetime; the chat client uses one to authenticate the websocket
// upgrade.
package tokens

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultExpiryMinutes is applied when a request does not set a lifetime.
	DefaultExpiryMinutes = 30
	// MaxExpiryMinutes is the longest lifetime the endpoint accepts.
	MaxExpiryMinutes = 60

	ScopeSubscribe = "subscribe"
	ScopePublish   = "publish"
	ScopeBoth      = "both"
)

// VendRequest describes the token to mint. Scope values other than
// subscribe or publish are treated by the endpoint as both.
type VendRequest struct {
	UserID        string `json:"user_id"`
	CacheName     string `json:"cache_name,omitempty"`
	ExpiryMinutes int    `json:"expiry_minutes"`
	Scope         string `json:"scope,omitempty"`
}

// Client vends tokens from one endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(endpoint string) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("token endpoint is empty")
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Vend requests one disposable token. The returned credential is the raw
// response body.
func (c *Client) Vend(ctx context.Context, req VendRequest) (string, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return "", errors.New("vend token: user id is empty")
	}
	if req.ExpiryMinutes == 0 {
		req.ExpiryMinutes = DefaultExpiryMinutes
	}
	if req.ExpiryMinutes < 1 || req.ExpiryMinutes > MaxExpiryMinutes {
		return "", errors.Errorf("vend token: expiry minutes %d out of range [1,%d]", req.ExpiryMinutes, MaxExpiryMinutes)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", errors.Wrap(err, "vend token: encode request")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "vend token: build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "vend token: post")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", errors.Wrap(err, "vend token: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("vend token: endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	tok := strings.TrimSpace(string(raw))
	if tok == "" {
		return "", errors.New("vend token: empty token in response")
	}
	log.Debug().
		Str("component", "tokens").
		Str("user_id", req.UserID).
		Int("expiry_minutes", req.ExpiryMinutes).
		Msg("vended token")
	return tok, nil
}

// Source adapts the client to the chat client's TokenSource shape, minting a
// fresh subscribe-scoped token for each connection attempt.
func (c *Client) Source(userID, cacheName string) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		return c.Vend(ctx, VendRequest{
			UserID:    userID,
			CacheName: cacheName,
			Scope:     ScopeSubscribe,
		})
	}
}
