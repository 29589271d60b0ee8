// Package remote defines the contract with the MyJDownloader device that
// actually performs downloads. The bridge never speaks the encrypted
// MyJDownloader protocol itself; implementations of Device wrap whatever
// transport is available (the plain device HTTP API, or an in-memory fake).
package remote

import (
	"context"
	"errors"
)

// Common errors returned by Device implementations.
var (
	ErrAuthFailed      = errors.New("authentication failed")
	ErrDeviceNotFound  = errors.New("device not found")
	ErrNotConnected    = errors.New("device not connected")
	ErrPackageNotFound = errors.New("package not found")
)

// Credentials identifies the MyJDownloader account and target device.
// Values come from configuration only and must never appear in logs or
// error messages.
type Credentials struct {
	Username string
	Password string
	AppKey   string
	DeviceID string
}

// Submission is the payload for adding a package of links to the device
// linkgrabber. Links keep the order they were requested in.
type Submission struct {
	PackageName       string   `json:"packageName"`
	Links             []string `json:"links"`
	DestinationFolder string   `json:"destinationFolder"`
	AutoStart         bool     `json:"autostart"`
}

// LinkRecord is a single link inside a remote package, as reported by the
// device.
type LinkRecord struct {
	UUID        string `json:"uuid"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Status      string `json:"status"`
	BytesTotal  int64  `json:"bytesTotal"`
	BytesLoaded int64  `json:"bytesLoaded"`
}

// PackageRecord is a download package as reported by the device. Status is
// the device's own open-ended vocabulary; normalization to the bridge's
// taxonomy happens in the downloads package.
type PackageRecord struct {
	UUID        string       `json:"uuid"`
	Name        string       `json:"name"`
	Status      string       `json:"status"`
	BytesTotal  int64        `json:"bytesTotal"`
	BytesLoaded int64        `json:"bytesLoaded"`
	Eta         int64        `json:"eta"`
	Speed       int64        `json:"speed"`
	Enabled     bool         `json:"enabled"`
	SaveTo      string       `json:"saveTo"`
	Links       []LinkRecord `json:"links,omitempty"`
}

// Device is the capability surface the bridge needs from the remote
// download manager. All package state lives on the device; the bridge holds
// nothing durable.
type Device interface {
	// Authenticate validates the credentials and binds to the configured
	// device. Returns ErrAuthFailed or ErrDeviceNotFound on rejection.
	Authenticate(ctx context.Context, creds Credentials) error

	// Disconnect releases the remote session. Safe to call when not
	// authenticated.
	Disconnect(ctx context.Context) error

	// AddLinks submits a package to the linkgrabber and returns the
	// assigned package ids.
	AddLinks(ctx context.Context, sub Submission) ([]string, error)

	// QueryDownloads returns all packages in the download list.
	QueryDownloads(ctx context.Context) ([]PackageRecord, error)

	// QueryLinkgrabber returns packages staged in the linkgrabber, not yet
	// confirmed for download.
	QueryLinkgrabber(ctx context.Context) ([]PackageRecord, error)

	// StartPackages resumes the named packages; an empty id list means all.
	// Returns ErrPackageNotFound when a single named id is unknown.
	StartPackages(ctx context.Context, ids []string) error

	// PausePackages pauses the named packages; an empty id list means all.
	PausePackages(ctx context.Context, ids []string) error

	// PackageExists reports whether the device knows the given package id.
	PackageExists(ctx context.Context, id string) (bool, error)
}
