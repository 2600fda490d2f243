// Package client talks to a running launchboard server.
//
// Views are fetched as length-delimited protobuf envelopes so that error
// codes survive the round trip: a failed request returns a *wire.RemoteError
// that still matches the errors package sentinels.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/xtxerr/launchboard/internal/errors"
	"github.com/xtxerr/launchboard/internal/launch"
	"github.com/xtxerr/launchboard/internal/logging"
	"github.com/xtxerr/launchboard/internal/query"
	"github.com/xtxerr/launchboard/internal/server"
	"github.com/xtxerr/launchboard/internal/wire"
)

var log = logging.Component("client")

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

var (
	ErrClientClosed = errors.New("client is closed")
	ErrBadResponse  = errors.New("unexpected server response")
)

// Client fetches views from a launchboard server.
type Client struct {
	base   *url.URL
	http   *http.Client
	closed atomic.Bool

	// lastSeq is the request id of the most recent view response.
	lastSeq atomic.Uint64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the server at baseURL. A bare host:port is
// treated as http://host:port.
func New(baseURL string, opts ...Option) (*Client, error) {
	raw := strings.TrimSpace(baseURL)
	if raw == "" {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "empty server address")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "server address %q: %v", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	c := &Client{
		base: u,
		http: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ViewRequest selects a view. Nil bounds let the server fall back to the
// dataset bounds.
type ViewRequest struct {
	Site string
	Low  *float64
	High *float64
}

// SelectionRequest builds a fully specified request from sel.
func SelectionRequest(sel launch.Selection) ViewRequest {
	low, high := sel.Payload.Low, sel.Payload.High
	return ViewRequest{Site: sel.Site, Low: &low, High: &high}
}

func (r ViewRequest) values() url.Values {
	q := url.Values{}
	if r.Site != "" {
		q.Set("site", r.Site)
	}
	if r.Low != nil {
		q.Set("low", strconv.FormatFloat(*r.Low, 'f', -1, 64))
	}
	if r.High != nil {
		q.Set("high", strconv.FormatFloat(*r.High, 'f', -1, 64))
	}
	return q
}

// View fetches both views for req.
func (c *Client) View(ctx context.Context, req ViewRequest) (*query.View, error) {
	resp, err := c.get(ctx, "/api/view", req.values(), wire.ContentType)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, wire.ContentType) {
		return nil, errors.Wrapf(ErrBadResponse, "status %d, content type %q", resp.StatusCode, ct)
	}

	frame, err := wire.NewReader(resp.Body).ReadFrame()
	if err != nil {
		return nil, errors.Wrapf(ErrBadResponse, "decode view: %v", err)
	}
	c.lastSeq.Store(frame.Seq)

	if frame.Err != nil {
		log.Debug("view rejected", "seq", frame.Seq, "error", frame.Err)
		return nil, frame.Err
	}
	return frame.View, nil
}

// Options fetches the site options, payload bounds and slider marks.
func (c *Client) Options(ctx context.Context) (*server.OptionsResponse, error) {
	var out server.OptionsResponse
	if err := c.getJSON(ctx, "/api/options", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats fetches the server's engine counters.
func (c *Client) Stats(ctx context.Context) (*query.Stats, error) {
	var out query.Stats
	if err := c.getJSON(ctx, "/api/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health reports whether the server answers its health check.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.get(ctx, "/healthz", nil, "text/plain")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(ErrBadResponse, "health check returned %d", resp.StatusCode)
	}
	return nil
}

// LastSeq returns the request id of the most recent view response.
func (c *Client) LastSeq() uint64 {
	return c.lastSeq.Load()
}

// Close marks the client closed and releases idle connections.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, accept string) (*http.Response, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	u := *c.base
	u.Path += path
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.get(ctx, path, nil, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body server.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&body) == nil && body.Error.Message != "" {
			return &wire.RemoteError{Code: body.Error.Code, Message: body.Error.Message}
		}
		return errors.Wrapf(ErrBadResponse, "GET %s returned %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(ErrBadResponse, "decode %s: %v", path, err)
	}
	return nil
}
