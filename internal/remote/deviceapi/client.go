// Package deviceapi implements remote.Device against the plain HTTP API of
// a JDownloader device (the unencrypted local deviceapi surface). The
// encrypted MyJDownloader cloud protocol is intentionally not implemented
// here; point the endpoint at a device reachable without it.
package deviceapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jdbridge/jdbridge/internal/remote"
)

const sessionHeader = "X-JD-Session"

// Config holds the configuration for a device API client.
type Config struct {
	// Endpoint is the base URL of the device API, e.g. "http://localhost:3128".
	Endpoint string
	// Timeout bounds each HTTP call. Defaults to 30s.
	Timeout time.Duration
}

// Client talks JSON over HTTP to a JDownloader device.
type Client struct {
	http *resty.Client

	mu    sync.RWMutex
	token string
}

// Compile-time check that Client implements remote.Device.
var _ remote.Device = (*Client)(nil)

// New creates a new device API client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.Endpoint, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient}
}

// envelope is the device API response wrapper.
type envelope struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

type connectResponse struct {
	Token string `json:"token"`
	Error string `json:"error,omitempty"`
}

type addLinksResponse struct {
	IDs   []string `json:"ids"`
	Error string   `json:"error,omitempty"`
}

type queryPackagesResponse struct {
	Packages []remote.PackageRecord `json:"packages"`
	Error    string                 `json:"error,omitempty"`
}

// Authenticate opens a device session and stores the returned token for
// subsequent calls.
func (c *Client) Authenticate(ctx context.Context, creds remote.Credentials) error {
	body := map[string]string{
		"username": creds.Username,
		"password": creds.Password,
		"appkey":   creds.AppKey,
		"deviceid": creds.DeviceID,
	}

	var out connectResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post("/session/connect")
	if err != nil {
		return fmt.Errorf("device connect: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return remote.ErrAuthFailed
	case http.StatusNotFound:
		return remote.ErrDeviceNotFound
	default:
		return fmt.Errorf("device connect: unexpected status %d", resp.StatusCode())
	}

	if out.Token == "" {
		return fmt.Errorf("device connect: no session token in response")
	}

	c.mu.Lock()
	c.token = out.Token
	c.mu.Unlock()
	return nil
}

// Disconnect closes the device session. A missing session is not an error.
func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	token := c.token
	c.token = ""
	c.mu.Unlock()

	if token == "" {
		return nil
	}

	_, err := c.http.R().
		SetContext(ctx).
		SetHeader(sessionHeader, token).
		Post("/session/disconnect")
	if err != nil {
		return fmt.Errorf("device disconnect: %w", err)
	}
	return nil
}

// AddLinks submits a package to the device linkgrabber.
func (c *Client) AddLinks(ctx context.Context, sub remote.Submission) ([]string, error) {
	var out addLinksResponse
	resp, err := c.authed(ctx).
		SetBody(sub).
		SetResult(&out).
		Post("/linkgrabber/addLinks")
	if err != nil {
		return nil, fmt.Errorf("add links: %w", err)
	}
	if err := c.checkStatus(resp, out.Error); err != nil {
		return nil, err
	}
	return out.IDs, nil
}

// QueryDownloads returns all packages in the download list.
func (c *Client) QueryDownloads(ctx context.Context) ([]remote.PackageRecord, error) {
	return c.queryPackages(ctx, "/downloads/queryPackages")
}

// QueryLinkgrabber returns packages staged in the linkgrabber.
func (c *Client) QueryLinkgrabber(ctx context.Context) ([]remote.PackageRecord, error) {
	return c.queryPackages(ctx, "/linkgrabber/queryPackages")
}

func (c *Client) queryPackages(ctx context.Context, path string) ([]remote.PackageRecord, error) {
	var out queryPackagesResponse
	resp, err := c.authed(ctx).
		SetResult(&out).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("query packages: %w", err)
	}
	if err := c.checkStatus(resp, out.Error); err != nil {
		return nil, err
	}
	return out.Packages, nil
}

// StartPackages resumes the named packages; empty ids means all.
func (c *Client) StartPackages(ctx context.Context, ids []string) error {
	return c.control(ctx, "/downloads/start", ids)
}

// PausePackages pauses the named packages; empty ids means all.
func (c *Client) PausePackages(ctx context.Context, ids []string) error {
	return c.control(ctx, "/downloads/pause", ids)
}

func (c *Client) control(ctx context.Context, path string, ids []string) error {
	var out envelope
	resp, err := c.authed(ctx).
		SetBody(map[string][]string{"ids": ids}).
		SetResult(&out).
		Post(path)
	if err != nil {
		return fmt.Errorf("package control: %w", err)
	}
	return c.checkStatus(resp, out.Error)
}

// PackageExists probes a single package id.
func (c *Client) PackageExists(ctx context.Context, id string) (bool, error) {
	resp, err := c.authed(ctx).Get("/downloads/packages/" + id)
	if err != nil {
		return false, fmt.Errorf("package probe: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return false, nil
	}
	if err := c.checkStatus(resp, ""); err != nil {
		return false, err
	}
	return true, nil
}

// authed builds a request carrying the current session token.
func (c *Client) authed(ctx context.Context) *resty.Request {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	req := c.http.R().SetContext(ctx)
	if token != "" {
		req.SetHeader(sessionHeader, token)
	}
	return req
}

func (c *Client) checkStatus(resp *resty.Response, remoteErr string) error {
	switch resp.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return remote.ErrAuthFailed
	case http.StatusNotFound:
		return remote.ErrPackageNotFound
	default:
		if remoteErr != "" {
			return fmt.Errorf("device error: %s (status %d)", remoteErr, resp.StatusCode())
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode())
	}
}
