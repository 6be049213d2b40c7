// Package archive persists closed sessions to SQLite or Turso. Archiving is
// best-effort; the engine keeps running when writes fail.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/PulsePath/pulsetrack-go/internal/domain/entities/session"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/PulsePath/pulsetrack-go/pkg/config"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	start_time INTEGER NOT NULL,
	end_time INTEGER NOT NULL,
	source TEXT NOT NULL,
	page_view_count INTEGER NOT NULL,
	interaction_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS page_views (
	session_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	page TEXT NOT NULL,
	title TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	time_spent_ms INTEGER NOT NULL,
	scroll_depth INTEGER NOT NULL,
	interaction_count INTEGER NOT NULL,
	PRIMARY KEY (session_id, seq)
);
CREATE TABLE IF NOT EXISTS interactions (
	session_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	type TEXT NOT NULL,
	element TEXT NOT NULL,
	x INTEGER,
	y INTEGER,
	value TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	PRIMARY KEY (session_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`

// Store writes closed sessions to the archive database
type Store struct {
	conn     *sql.DB
	useTurso bool
	logger   *logging.ChanneledLogger
}

// NewStore opens the archive database. Turso is used when both the database
// URL and auth token are configured; otherwise a local SQLite file.
func NewStore(logger *logging.ChanneledLogger) (*Store, error) {
	var conn *sql.DB
	var err error
	var useTurso bool

	if config.ArchiveTursoDatabase != "" && config.ArchiveTursoToken != "" {
		connStr := config.ArchiveTursoDatabase + "?authToken=" + config.ArchiveTursoToken
		conn, err = sql.Open("libsql", connStr)
		if err != nil {
			return nil, fmt.Errorf("turso connection failed: %w", err)
		}
		useTurso = true
	} else {
		dbDir := filepath.Dir(config.ArchiveSQLitePath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}

		conn, err = sql.Open("sqlite3", config.ArchiveSQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite connection failed: %w", err)
		}
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("archive database ping failed: %w", err)
	}

	conn.SetMaxOpenConns(config.DBMaxOpenConns)
	conn.SetMaxIdleConns(config.DBMaxIdleConns)
	conn.SetConnMaxLifetime(time.Duration(config.DBConnMaxLifetimeMinutes) * time.Minute)
	conn.SetConnMaxIdleTime(time.Duration(config.DBConnMaxIdleMinutes) * time.Minute)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create archive schema: %w", err)
	}

	if logger != nil {
		logger.Archive().Info("Archive store ready", "turso", useTurso)
	}

	return &Store{conn: conn, useTurso: useTurso, logger: logger}, nil
}

// ArchiveSession writes a closed session with its page views and
// interactions in one transaction. Timestamps are stored as epoch
// milliseconds.
func (s *Store) ArchiveSession(ctx context.Context, sess *session.Session) error {
	start := time.Now()

	if sess.EndTime == nil {
		return fmt.Errorf("refusing to archive open session %s", sess.ID)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin archive transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions (id, user_id, start_time, end_time, source, page_view_count, interaction_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.UserID, sess.StartTime.UnixMilli(), sess.EndTime.UnixMilli(),
		sess.Source, len(sess.PageViews), len(sess.Interactions))
	if err != nil {
		return fmt.Errorf("failed to archive session row: %w", err)
	}

	for i, pv := range sess.PageViews {
		_, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO page_views (session_id, seq, page, title, timestamp, time_spent_ms, scroll_depth, interaction_count)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			sess.ID, i, pv.Page, pv.Title, pv.Timestamp.UnixMilli(),
			pv.TimeSpent.Milliseconds(), pv.ScrollDepth, pv.InteractionCount)
		if err != nil {
			return fmt.Errorf("failed to archive page view %d: %w", i, err)
		}
	}

	for i, ev := range sess.Interactions {
		var x, y any
		if ev.Coordinates != nil {
			x, y = ev.Coordinates.X, ev.Coordinates.Y
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO interactions (session_id, seq, type, element, x, y, value, timestamp)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			sess.ID, i, ev.Type, ev.Element, x, y, ev.Value, ev.Timestamp.UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to archive interaction %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit archive transaction: %w", err)
	}

	if s.logger != nil {
		s.logger.Archive().Debug("Session archived",
			"sessionId", sess.ID,
			"pageViews", len(sess.PageViews),
			"interactions", len(sess.Interactions),
			"duration", time.Since(start))
	}
	return nil
}

// ArchivedSessionCount returns the number of archived sessions
func (s *Store) ArchivedSessionCount(ctx context.Context) (int, error) {
	var count int
	err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count archived sessions: %w", err)
	}
	return count, nil
}

// Close closes the archive database
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
