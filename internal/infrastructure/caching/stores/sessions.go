// Package stores provides concrete cache store implementations
package stores

import (
	"time"

	"github.com/PulsePath/pulsetrack-go/internal/domain/entities/session"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/caching/types"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/logging"
)

// SessionStore implements live session caching operations
type SessionStore struct {
	cache  *types.SessionCache
	logger *logging.ChanneledLogger
}

// NewSessionStore creates a new session cache store
func NewSessionStore(logger *logging.ChanneledLogger) *SessionStore {
	if logger != nil {
		logger.Cache().Info("Initializing session cache store")
	}
	return &SessionStore{
		cache: &types.SessionCache{
			Active:         make(map[string]*session.Session),
			TrafficSources: make(map[string]int),
			LastUpdated:    time.Now().UTC(),
		},
		logger: logger,
	}
}

// =============================================================================
// Active Session Operations
// =============================================================================

// GetActive returns a deep copy of the user's active session
func (ss *SessionStore) GetActive(userID string) (*session.Session, bool) {
	start := time.Now()
	ss.cache.Mu.RLock()
	defer ss.cache.Mu.RUnlock()

	sess, found := ss.cache.Active[userID]
	if ss.logger != nil {
		ss.logger.Cache().Debug("Cache operation", "operation", "get", "type", "session", "userId", userID, "hit", found, "duration", time.Since(start))
	}
	if !found {
		return nil, false
	}
	return sess.Clone(), true
}

// PutActive installs the user's active session, replacing any previous one,
// and bumps the started and attribution tallies
func (ss *SessionStore) PutActive(sess *session.Session) {
	start := time.Now()
	ss.cache.Mu.Lock()
	defer ss.cache.Mu.Unlock()

	ss.cache.Active[sess.UserID] = sess
	ss.cache.StartedCount++
	ss.cache.TrafficSources[sess.Source]++
	ss.cache.LastUpdated = time.Now().UTC()

	if ss.logger != nil {
		ss.logger.Cache().Debug("Cache operation", "operation", "put", "type", "session", "userId", sess.UserID, "sessionId", sess.ID, "source", sess.Source, "duration", time.Since(start))
	}
}

// Mutate applies fn to the user's active session under the write lock.
// Returns false without calling fn when no active session exists.
func (ss *SessionStore) Mutate(userID string, fn func(*session.Session)) bool {
	start := time.Now()
	ss.cache.Mu.Lock()
	defer ss.cache.Mu.Unlock()

	sess, found := ss.cache.Active[userID]
	if !found {
		if ss.logger != nil {
			ss.logger.Cache().Debug("Cache operation", "operation", "mutate", "type", "session", "userId", userID, "hit", false, "duration", time.Since(start))
		}
		return false
	}

	fn(sess)
	ss.cache.LastUpdated = time.Now().UTC()

	if ss.logger != nil {
		ss.logger.Cache().Debug("Cache operation", "operation", "mutate", "type", "session", "userId", userID, "hit", true, "duration", time.Since(start))
	}
	return true
}

// RemoveActive detaches and returns the user's active session
func (ss *SessionStore) RemoveActive(userID string) (*session.Session, bool) {
	start := time.Now()
	ss.cache.Mu.Lock()
	defer ss.cache.Mu.Unlock()

	sess, found := ss.cache.Active[userID]
	if found {
		delete(ss.cache.Active, userID)
		ss.cache.LastUpdated = time.Now().UTC()
	}

	if ss.logger != nil {
		ss.logger.Cache().Debug("Cache operation", "operation", "remove", "type", "session", "userId", userID, "hit", found, "duration", time.Since(start))
	}
	return sess, found
}

// RecordClosed adds a closed session to the duration tallies
func (ss *SessionStore) RecordClosed(duration time.Duration) {
	ss.cache.Mu.Lock()
	defer ss.cache.Mu.Unlock()

	ss.cache.ClosedCount++
	ss.cache.ClosedDuration += duration
	ss.cache.LastUpdated = time.Now().UTC()
}

// =============================================================================
// Orphaned Event Tracking
// =============================================================================

// CountOrphanedEvent increments the orphaned-event counter
func (ss *SessionStore) CountOrphanedEvent() {
	ss.cache.Mu.Lock()
	defer ss.cache.Mu.Unlock()
	ss.cache.OrphanedEvents++
}

// OrphanedEvents returns the orphaned-event counter
func (ss *SessionStore) OrphanedEvents() int64 {
	ss.cache.Mu.RLock()
	defer ss.cache.Mu.RUnlock()
	return ss.cache.OrphanedEvents
}

// =============================================================================
// Rollup Reads
// =============================================================================

// ActiveCount returns the number of live sessions
func (ss *SessionStore) ActiveCount() int {
	ss.cache.Mu.RLock()
	defer ss.cache.Mu.RUnlock()
	return len(ss.cache.Active)
}

// ActiveUserIDs returns the user IDs with live sessions
func (ss *SessionStore) ActiveUserIDs() []string {
	ss.cache.Mu.RLock()
	defer ss.cache.Mu.RUnlock()

	ids := make([]string, 0, len(ss.cache.Active))
	for userID := range ss.cache.Active {
		ids = append(ids, userID)
	}
	return ids
}

// Tallies returns started count, closed count, summed closed duration, and a
// copy of the traffic source attribution counts
func (ss *SessionStore) Tallies() (started, closed int, closedDuration time.Duration, sources map[string]int) {
	ss.cache.Mu.RLock()
	defer ss.cache.Mu.RUnlock()

	sources = make(map[string]int, len(ss.cache.TrafficSources))
	for k, v := range ss.cache.TrafficSources {
		sources[k] = v
	}
	return ss.cache.StartedCount, ss.cache.ClosedCount, ss.cache.ClosedDuration, sources
}
