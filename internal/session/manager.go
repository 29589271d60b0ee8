// Package session owns the single authenticated session to the remote
// download manager.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jdbridge/jdbridge/internal/remote"
)

// ErrNotConnected is returned by EnsureConnected while no session is live.
// Connection is an explicit caller action; package operations never
// auto-connect.
var ErrNotConnected = errors.New("not connected to MyJDownloader")

// State is the session lifecycle state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// Manager guards the single live session handle. Connect and Disconnect are
// mutually exclusive with each other and with in-flight reads of the
// handle; package operations themselves run concurrently once they hold
// the device from EnsureConnected.
type Manager struct {
	device remote.Device
	creds  remote.Credentials
	logger zerolog.Logger

	mu      sync.RWMutex
	state   State
	lastErr error
}

// NewManager creates a session manager around the given device. The
// manager starts Disconnected.
func NewManager(device remote.Device, creds remote.Credentials, logger zerolog.Logger) *Manager {
	return &Manager{
		device: device,
		creds:  creds,
		logger: logger.With().Str("component", "session").Logger(),
		state:  StateDisconnected,
	}
}

// Connect authenticates against the remote device. Calling Connect while
// already connected is a no-op; no second authentication happens. On
// failure the state stays Disconnected and the remote reason is returned.
// Retrying is the caller's policy, not this component's.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateConnected {
		m.logger.Debug().Msg("already connected, skipping authentication")
		return nil
	}

	m.state = StateConnecting
	if err := m.device.Authenticate(ctx, m.creds); err != nil {
		m.state = StateDisconnected
		m.lastErr = err
		// Log the failure class only; never credentials.
		m.logger.Error().Err(err).Msg("connection to MyJDownloader failed")
		return fmt.Errorf("connection failed: %w", err)
	}

	m.state = StateConnected
	m.lastErr = nil
	m.logger.Info().Msg("connected to MyJDownloader")
	return nil
}

// EnsureConnected returns the live device handle or ErrNotConnected. It
// never initiates a connection.
func (m *Manager) EnsureConnected() (remote.Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state != StateConnected {
		return nil, ErrNotConnected
	}
	return m.device, nil
}

// Disconnect tears the session down. Always succeeds and is idempotent;
// errors from the remote side are logged, not surfaced.
func (m *Manager) Disconnect(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateDisconnected {
		return
	}

	if err := m.device.Disconnect(ctx); err != nil {
		m.logger.Warn().Err(err).Msg("error during disconnect")
	}
	m.state = StateDisconnected
	m.logger.Info().Msg("disconnected from MyJDownloader")
}

// Connected reports whether a session is live.
func (m *Manager) Connected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateConnected
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// LastError returns the failure reason of the most recent connect attempt,
// or nil after a successful connect.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}
