// Package manager provides the cache manager facade over the engagement
// stores. The manager is the engine's single in-memory state container.
package manager

import (
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/caching/stores"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/logging"
)

// Manager composes the engagement cache stores
type Manager struct {
	Sessions *stores.SessionStore
	Profiles *stores.ProfileStore
	Heatmap  *stores.HeatmapStore

	logger *logging.ChanneledLogger
}

// NewManager creates the cache manager with all stores initialized
func NewManager(heatmapGridSize int, logger *logging.ChanneledLogger) *Manager {
	if logger != nil {
		logger.Cache().Info("Initializing cache manager")
	}
	return &Manager{
		Sessions: stores.NewSessionStore(logger),
		Profiles: stores.NewProfileStore(logger),
		Heatmap:  stores.NewHeatmapStore(heatmapGridSize, logger),
		logger:   logger,
	}
}

// GetStats returns cache occupancy statistics for diagnostics
func (m *Manager) GetStats() map[string]any {
	started, closed, _, _ := m.Sessions.Tallies()
	if m.logger != nil {
		m.logger.Debug().Debug("Cache stats collected", "started", started, "closed", closed)
	}
	return map[string]any{
		"activeSessions":  m.Sessions.ActiveCount(),
		"startedSessions": started,
		"closedSessions":  closed,
		"orphanedEvents":  m.Sessions.OrphanedEvents(),
		"profiles":        m.Profiles.ProfileCount(),
		"heatmapCells":    m.Heatmap.CellCount(),
	}
}
