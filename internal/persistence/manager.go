// Package persistence reconciles the local store with the optional remote store.
package persistence

import (
	"context"
	"sync"

	"mart_inventory/internal/models"
	"mart_inventory/internal/syncclient"
	"mart_inventory/pkg/utils"
)

// LocalStore is the always-available snapshot store. Pending marks a stored
// snapshot the remote has not accepted yet.
type LocalStore interface {
	Load() models.Snapshot
	Save(models.Snapshot) error
	Pending() bool
	SetPending(bool) error
}

// Remote is the subset of the sync client the manager needs.
type Remote interface {
	Health(ctx context.Context) error
	FetchAll(ctx context.Context) (models.Snapshot, *models.Settings, error)
	Push(ctx context.Context, snap models.Snapshot) error
}

// RemoteFactory builds a remote for an endpoint.
type RemoteFactory func(endpoint string) Remote

// RemoteStatus is what the shell shows next to the store name.
type RemoteStatus string

const (
	StatusLocalOnly RemoteStatus = "local-only"
	StatusOnline    RemoteStatus = "online"
	StatusOffline   RemoteStatus = "offline"
)

// Manager loads and saves snapshots local-first. Remote failures are never
// returned to the caller; they only change Status.
type Manager struct {
	local     LocalStore
	newRemote RemoteFactory
	// endpoint overrides the endpoint from the stored settings when set.
	endpoint string

	mu      sync.Mutex
	status  RemoteStatus
	lastErr error
}

// NewManager creates a Manager. A nil factory disables the remote store.
func NewManager(local LocalStore, newRemote RemoteFactory, endpoint string) *Manager {
	return &Manager{local: local, newRemote: newRemote, endpoint: endpoint, status: StatusLocalOnly}
}

// ClientFactory returns a RemoteFactory building sync clients with opts.
func ClientFactory(opts ...syncclient.Option) RemoteFactory {
	return func(endpoint string) Remote {
		return syncclient.New(endpoint, opts...)
	}
}

// remoteFor returns the remote to use for settings, or nil when sync is off.
func (m *Manager) remoteFor(settings models.Settings) Remote {
	if m.newRemote == nil {
		return nil
	}
	if m.endpoint != "" {
		return m.newRemote(m.endpoint)
	}
	if settings.RemoteEnabled() {
		return m.newRemote(settings.APIEndpoint)
	}
	return nil
}

func (m *Manager) setStatus(status RemoteStatus, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
	m.lastErr = err
}

// Status returns the last observed remote state and the error that caused it, if any.
func (m *Manager) Status() (RemoteStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status, m.lastErr
}

func (m *Manager) setPending(pending bool) {
	if err := m.local.SetPending(pending); err != nil {
		utils.LogError(err, "Failed to update pending push flag", map[string]interface{}{"pending": pending})
	}
}

// LoadLocal returns the local snapshot without contacting the remote.
func (m *Manager) LoadLocal() models.Snapshot {
	return m.local.Load()
}

// Load returns the local snapshot, replaced by the remote one when the remote
// answers. The remote snapshot wins wholesale, except that a remote without a
// settings row keeps the local settings. A successful fetch is written through
// to the local store.
//
// Local changes saved while the remote was unreachable are pushed instead, and
// the local snapshot is returned.
func (m *Manager) Load(ctx context.Context) models.Snapshot {
	local := m.local.Load()

	remote := m.remoteFor(local.Settings)
	if remote == nil {
		m.setStatus(StatusLocalOnly, nil)
		return local
	}

	if err := remote.Health(ctx); err != nil {
		utils.LogWarn(err, "Remote store unreachable, using local data")
		m.setStatus(StatusOffline, err)
		return local
	}

	if m.local.Pending() {
		if err := remote.Push(ctx, local); err != nil {
			utils.LogWarn(err, "Pushing offline changes failed, using local data")
			m.setStatus(StatusOffline, err)
			return local
		}
		m.setPending(false)
		m.setStatus(StatusOnline, nil)
		utils.LogInfo("Pushed changes saved while offline", map[string]interface{}{
			"products":     len(local.Products),
			"transactions": len(local.Transactions),
		})
		return local
	}

	snap, settings, err := remote.FetchAll(ctx)
	if err != nil {
		utils.LogWarn(err, "Remote fetch failed, using local data")
		m.setStatus(StatusOffline, err)
		return local
	}
	if settings == nil {
		snap.Settings = local.Settings
	}

	if err := m.local.Save(snap); err != nil {
		utils.LogError(err, "Failed to cache remote snapshot locally")
	}
	m.setStatus(StatusOnline, nil)
	utils.LogDebug("Loaded snapshot from remote", map[string]interface{}{
		"products":     len(snap.Products),
		"transactions": len(snap.Transactions),
	})
	return snap
}

// Save writes snap locally and, when sync is enabled and the remote is
// healthy, pushes it. It reports whether every enabled target accepted it.
// A snapshot the remote did not take is flagged pending for the next Load.
func (m *Manager) Save(ctx context.Context, snap models.Snapshot) bool {
	ok := true
	if err := m.local.Save(snap); err != nil {
		utils.LogError(err, "Failed to save snapshot locally")
		ok = false
	}

	remote := m.remoteFor(snap.Settings)
	if remote == nil {
		m.setStatus(StatusLocalOnly, nil)
		return ok
	}

	if err := remote.Health(ctx); err != nil {
		utils.LogWarn(err, "Remote store unreachable, saved locally only")
		m.setStatus(StatusOffline, err)
		m.setPending(true)
		return false
	}
	if err := remote.Push(ctx, snap); err != nil {
		utils.LogWarn(err, "Remote push failed, saved locally only")
		m.setStatus(StatusOffline, err)
		m.setPending(true)
		return false
	}
	m.setPending(false)
	m.setStatus(StatusOnline, nil)
	return ok
}

// Check probes the remote without loading or saving and updates Status.
func (m *Manager) Check(ctx context.Context, settings models.Settings) RemoteStatus {
	remote := m.remoteFor(settings)
	if remote == nil {
		m.setStatus(StatusLocalOnly, nil)
		return StatusLocalOnly
	}
	if err := remote.Health(ctx); err != nil {
		m.setStatus(StatusOffline, err)
		return StatusOffline
	}
	m.setStatus(StatusOnline, nil)
	return StatusOnline
}
