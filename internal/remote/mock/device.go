// Package mock provides an in-memory remote.Device for tests and for
// developer mode, where no real JDownloader instance is available.
package mock

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jdbridge/jdbridge/internal/remote"
)

// DefaultLinkSize is the simulated size of each added link in bytes.
const DefaultLinkSize = 1 << 30

// Device simulates a JDownloader device. Packages live in memory and flip
// state on start/pause; no bytes are ever transferred.
type Device struct {
	mu            sync.RWMutex
	authenticated bool
	knownDevice   string
	authErr       error
	linkSize      int64

	order      []string
	packages   map[string]*remote.PackageRecord
	grabber    map[string]*remote.PackageRecord
	grabOrder  []string
	callCounts map[string]int
}

// Compile-time check that Device implements remote.Device.
var _ remote.Device = (*Device)(nil)

// NewDevice creates an empty mock device that accepts any credentials.
func NewDevice() *Device {
	return &Device{
		linkSize:   DefaultLinkSize,
		packages:   make(map[string]*remote.PackageRecord),
		grabber:    make(map[string]*remote.PackageRecord),
		callCounts: make(map[string]int),
	}
}

// SetKnownDevice restricts authentication to the given device id.
// Authenticating with any other id fails with remote.ErrDeviceNotFound.
func (d *Device) SetKnownDevice(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.knownDevice = id
}

// FailAuth makes every Authenticate call fail with err until reset to nil.
func (d *Device) FailAuth(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.authErr = err
}

// SetLinkSize overrides the simulated per-link size for subsequent AddLinks.
func (d *Device) SetLinkSize(n int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.linkSize = n
}

// Seed installs a package record directly into the download list.
func (d *Device) Seed(rec remote.PackageRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := rec
	d.packages[rec.UUID] = &cp
	d.order = append(d.order, rec.UUID)
}

// Calls returns how many times the named operation was invoked.
func (d *Device) Calls(op string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.callCounts[op]
}

// Authenticated reports the current auth state.
func (d *Device) Authenticated() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.authenticated
}

func (d *Device) Authenticate(_ context.Context, creds remote.Credentials) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callCounts["authenticate"]++

	if d.authErr != nil {
		return d.authErr
	}
	if creds.Username == "" || creds.Password == "" {
		return remote.ErrAuthFailed
	}
	if d.knownDevice != "" && creds.DeviceID != d.knownDevice {
		return remote.ErrDeviceNotFound
	}

	d.authenticated = true
	return nil
}

func (d *Device) Disconnect(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callCounts["disconnect"]++
	d.authenticated = false
	return nil
}

func (d *Device) AddLinks(_ context.Context, sub remote.Submission) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callCounts["addLinks"]++

	if !d.authenticated {
		return nil, remote.ErrNotConnected
	}

	id := uuid.NewString()
	status := "pending"
	if sub.AutoStart {
		status = "downloading"
	}

	links := make([]remote.LinkRecord, 0, len(sub.Links))
	var total int64
	for _, url := range sub.Links {
		links = append(links, remote.LinkRecord{
			UUID:       uuid.NewString(),
			URL:        url,
			Status:     status,
			BytesTotal: d.linkSize,
		})
		total += d.linkSize
	}

	rec := &remote.PackageRecord{
		UUID:       id,
		Name:       sub.PackageName,
		Status:     status,
		BytesTotal: total,
		Enabled:    sub.AutoStart,
		SaveTo:     sub.DestinationFolder,
		Links:      links,
	}

	d.grabber[id] = rec
	d.grabOrder = append(d.grabOrder, id)

	// The simulated device confirms immediately: staged packages also show
	// up in the download list, like a linkgrabber with auto-confirm.
	d.packages[id] = rec
	d.order = append(d.order, id)

	return []string{id}, nil
}

func (d *Device) QueryDownloads(_ context.Context) ([]remote.PackageRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callCounts["queryDownloads"]++

	if !d.authenticated {
		return nil, remote.ErrNotConnected
	}
	return d.snapshot(d.order, d.packages), nil
}

func (d *Device) QueryLinkgrabber(_ context.Context) ([]remote.PackageRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callCounts["queryLinkgrabber"]++

	if !d.authenticated {
		return nil, remote.ErrNotConnected
	}
	return d.snapshot(d.grabOrder, d.grabber), nil
}

func (d *Device) StartPackages(_ context.Context, ids []string) error {
	return d.setRunning(ids, true)
}

func (d *Device) PausePackages(_ context.Context, ids []string) error {
	return d.setRunning(ids, false)
}

func (d *Device) PackageExists(_ context.Context, id string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.authenticated {
		return false, remote.ErrNotConnected
	}
	_, ok := d.packages[id]
	return ok, nil
}

func (d *Device) setRunning(ids []string, running bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if running {
		d.callCounts["startPackages"]++
	} else {
		d.callCounts["pausePackages"]++
	}

	if !d.authenticated {
		return remote.ErrNotConnected
	}

	status := "paused"
	if running {
		status = "downloading"
	}

	if len(ids) == 0 {
		for _, rec := range d.packages {
			if rec.Status != "finished" && rec.Status != "failed" {
				rec.Status = status
				rec.Enabled = running
			}
		}
		return nil
	}

	for _, id := range ids {
		rec, ok := d.packages[id]
		if !ok {
			return remote.ErrPackageNotFound
		}
		if rec.Status != "finished" && rec.Status != "failed" {
			rec.Status = status
			rec.Enabled = running
		}
	}
	return nil
}

// snapshot copies records in insertion order. Callers must hold the lock.
func (d *Device) snapshot(order []string, m map[string]*remote.PackageRecord) []remote.PackageRecord {
	out := make([]remote.PackageRecord, 0, len(order))
	for _, id := range order {
		if rec, ok := m[id]; ok {
			out = append(out, *rec)
		}
	}
	return out
}
