package stores

import (
	"fmt"
	"time"

	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/caching/types"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/logging"
)

// HeatmapStore accumulates click positions into a discretized grid
type HeatmapStore struct {
	cache    *types.HeatmapCache
	gridSize int
	logger   *logging.ChanneledLogger
}

// NewHeatmapStore creates a new heatmap cache store. gridSize is the cell
// edge length in pixels.
func NewHeatmapStore(gridSize int, logger *logging.ChanneledLogger) *HeatmapStore {
	if gridSize <= 0 {
		gridSize = 10
	}
	if logger != nil {
		logger.Cache().Info("Initializing heatmap cache store", "gridSize", gridSize)
	}
	return &HeatmapStore{
		cache: &types.HeatmapCache{
			Counts:      make(map[string]int),
			LastUpdated: time.Now().UTC(),
		},
		gridSize: gridSize,
		logger:   logger,
	}
}

// GridKey discretizes viewport coordinates to the cell key
func (hs *HeatmapStore) GridKey(x, y int) string {
	gx := (x / hs.gridSize) * hs.gridSize
	gy := (y / hs.gridSize) * hs.gridSize
	return fmt.Sprintf("%d-%d", gx, gy)
}

// RecordClick increments the count for the cell containing (x, y)
func (hs *HeatmapStore) RecordClick(x, y int) {
	start := time.Now()
	key := hs.GridKey(x, y)

	hs.cache.Mu.Lock()
	hs.cache.Counts[key]++
	count := hs.cache.Counts[key]
	hs.cache.LastUpdated = time.Now().UTC()
	hs.cache.Mu.Unlock()

	if hs.logger != nil {
		hs.logger.Cache().Debug("Cache operation", "operation", "increment", "type", "heatmap", "key", key, "count", count, "duration", time.Since(start))
	}
}

// Snapshot returns a read-only copy of the aggregate
func (hs *HeatmapStore) Snapshot() map[string]int {
	hs.cache.Mu.RLock()
	defer hs.cache.Mu.RUnlock()

	snapshot := make(map[string]int, len(hs.cache.Counts))
	for key, count := range hs.cache.Counts {
		snapshot[key] = count
	}
	return snapshot
}

// CellCount returns the number of populated grid cells
func (hs *HeatmapStore) CellCount() int {
	hs.cache.Mu.RLock()
	defer hs.cache.Mu.RUnlock()
	return len(hs.cache.Counts)
}
