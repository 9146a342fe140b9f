// Package client is a Go client for the ledwall HTTP API.
//
// The server address may be host:port, an http:// or https:// URL, or
// unix:///path/to/socket for a server listening on a local socket.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultTimeout bounds each request unless overridden.
const DefaultTimeout = 30 * time.Second

// Client talks to one ledwall server.
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying *http.Client. Unix socket
// addresses install their own transport on it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		transport := c.http.Transport
		c.http = hc
		if transport != nil && hc.Transport == nil {
			c.http.Transport = transport
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithTLSConfig sets the TLS configuration used for https servers.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *Client) {
		t, ok := c.http.Transport.(*http.Transport)
		if !ok {
			t = http.DefaultTransport.(*http.Transport).Clone()
		}
		t.TLSClientConfig = cfg
		c.http.Transport = t
	}
}

// New creates a client for server.
func New(server string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(server) == "" {
		return nil, fmt.Errorf("client: server address is required")
	}
	c := &Client{
		http:      &http.Client{Timeout: DefaultTimeout},
		userAgent: "ledwall-client/1",
	}

	switch {
	case strings.HasPrefix(server, "unix://"):
		path := strings.TrimPrefix(server, "unix://")
		if path == "" {
			return nil, fmt.Errorf("client: empty socket path in %q", server)
		}
		var d net.Dialer
		c.http.Transport = &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				return d.DialContext(ctx, "unix", path)
			},
		}
		c.baseURL = "http://unix"
	case strings.HasPrefix(server, "http://"), strings.HasPrefix(server, "https://"):
		u, err := url.Parse(server)
		if err != nil {
			return nil, fmt.Errorf("client: parse server: %w", err)
		}
		c.baseURL = strings.TrimRight(u.String(), "/")
	default:
		c.baseURL = "http://" + strings.TrimRight(server, "/")
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping checks connectivity and returns the round trip time.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	id := strings.ToLower(ulid.Make().String())
	start := time.Now()
	var out struct {
		ID string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/ping/"+id, nil, &out); err != nil {
		return 0, err
	}
	if out.ID != id {
		return 0, fmt.Errorf("client: ping echoed %q, want %q", out.ID, id)
	}
	return time.Since(start), nil
}

// Ready returns nil when the server reports ready.
func (c *Client) Ready(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/ready", nil, nil)
}

// ListSlots returns a summary of every slot.
func (c *Client) ListSlots(ctx context.Context) (*SlotList, error) {
	var out SlotList
	if err := c.doJSON(ctx, http.MethodGet, "/v1/slots", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSlot downloads slot index. An empty slot has Kind "empty" and no data.
func (c *Client) GetSlot(ctx context.Context, index int) (*Slot, error) {
	resp, err := c.do(ctx, http.MethodGet, slotPath(index), nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, decodeError(resp)
	}
	slot := &Slot{
		Index: index,
		Kind:  resp.Header.Get("X-Slot-Kind"),
		ETag:  resp.Header.Get("ETag"),
	}
	if resp.StatusCode == http.StatusNoContent {
		if slot.Kind == "" {
			slot.Kind = KindEmpty
		}
		return slot, nil
	}
	slot.Data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read slot %d: %w", index, err)
	}
	return slot, nil
}

// SetSlot uploads data as the content of slot index.
func (c *Client) SetSlot(ctx context.Context, index int, kind string, data []byte) (*SlotInfo, error) {
	path := slotPath(index) + "?kind=" + url.QueryEscape(kind)
	var out SlotInfo
	if err := c.doRaw(ctx, http.MethodPut, path, data, "application/octet-stream", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClearSlot empties slot index.
func (c *Client) ClearSlot(ctx context.Context, index int) error {
	return c.doJSON(ctx, http.MethodDelete, slotPath(index), nil, nil)
}

// Export asks the server to write every slot into dir on its filesystem.
func (c *Client) Export(ctx context.Context, dir string) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/slots/export", map[string]string{"dir": dir}, nil)
}

// Import asks the server to replace every slot with the content of dir.
func (c *Client) Import(ctx context.Context, dir string) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/slots/import", map[string]string{"dir": dir}, nil)
}

// Mode returns the current display mode.
func (c *Client) Mode(ctx context.Context) (*ModeStatus, error) {
	return c.transition(ctx, http.MethodGet, "/v1/mode", nil)
}

// GoBlack blanks the display.
func (c *Client) GoBlack(ctx context.Context) (*ModeStatus, error) {
	return c.transition(ctx, http.MethodPost, "/v1/mode/black", nil)
}

// GoLive switches the display to live frames.
func (c *Client) GoLive(ctx context.Context) (*ModeStatus, error) {
	return c.transition(ctx, http.MethodPost, "/v1/mode/live", nil)
}

// GoRoundRobin cycles through the populated slots.
func (c *Client) GoRoundRobin(ctx context.Context) (*ModeStatus, error) {
	return c.transition(ctx, http.MethodPost, "/v1/mode/round-robin", nil)
}

// GoSlot shows slot index.
func (c *Client) GoSlot(ctx context.Context, index int) (*ModeStatus, error) {
	return c.transition(ctx, http.MethodPost, "/v1/mode/slot/"+strconv.Itoa(index), nil)
}

// Visit replays a state descriptor.
func (c *Client) Visit(ctx context.Context, d Descriptor) (*ModeStatus, error) {
	return c.transition(ctx, http.MethodPost, "/v1/state", d)
}

// PushLive sends one encoded frame. It reports whether the frame was shown.
func (c *Client) PushLive(ctx context.Context, frame []byte) (bool, error) {
	var out struct {
		Shown bool `json:"shown"`
	}
	if err := c.doRaw(ctx, http.MethodPost, "/v1/live", frame, "application/octet-stream", &out); err != nil {
		return false, err
	}
	return out.Shown, nil
}

// Preview returns the frame currently on the panel as PNG.
func (c *Client) Preview(ctx context.Context) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, "/v1/preview", nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, decodeError(resp)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) transition(ctx context.Context, method, path string, body any) (*ModeStatus, error) {
	var out ModeStatus
	if err := c.doJSON(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func slotPath(index int) string {
	return "/v1/slots/" + strconv.Itoa(index)
}

// doJSON sends body as JSON and decodes the envelope data into out.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	contentType := ""
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: marshal body: %w", err)
		}
		contentType = "application/json"
	}
	return c.doRaw(ctx, method, path, payload, contentType, out)
}

func (c *Client) doRaw(ctx context.Context, method, path string, body []byte, contentType string, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	resp, err := c.do(ctx, method, path, reader, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("client: parse response: %w", err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("client: parse response data: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("client: create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	return resp, nil
}
