// Package config provides centralized default values for PulseTrack
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseFloat(valStr, 64); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%g (default: %g)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Engagement Tracking
	AnalysisInterval  time.Duration
	BounceThreshold   time.Duration
	MinDwellThreshold time.Duration
	HeatmapGridSize   int

	// Prediction Model
	MonthlyGrowthRate  float64
	OneMonthConfidence float64
	OneYearConfidence  float64
	FiveYearConfidence float64
	TrendWindowSize    int
	TrendBaselineScore float64

	// Session Archive
	ArchiveEnabled           bool
	ArchiveSQLitePath        string
	ArchiveTursoDatabase     string
	ArchiveTursoToken        string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int

	// Dashboard Auth
	JWTSecret             string
	DashboardPasswordHash string
	TokenLifetime         time.Duration

	// Live Feed
	LiveFeedEnabled       bool
	MaxLiveFeedClients    int
	LiveFeedWriteDeadline time.Duration
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Engagement Tracking
	AnalysisInterval = getEnvDuration("ANALYSIS_INTERVAL", 60*time.Second)
	BounceThreshold = getEnvDuration("BOUNCE_THRESHOLD", 30*time.Second)
	MinDwellThreshold = getEnvDuration("MIN_DWELL_THRESHOLD", time.Second)
	HeatmapGridSize = getEnvInt("HEATMAP_GRID_SIZE", 10)

	// Prediction Model
	MonthlyGrowthRate = getEnvFloat("MONTHLY_GROWTH_RATE", 1.1)
	OneMonthConfidence = getEnvFloat("ONE_MONTH_CONFIDENCE", 0.85)
	OneYearConfidence = getEnvFloat("ONE_YEAR_CONFIDENCE", 0.65)
	FiveYearConfidence = getEnvFloat("FIVE_YEAR_CONFIDENCE", 0.45)
	TrendWindowSize = getEnvInt("TREND_WINDOW_SIZE", 10)
	TrendBaselineScore = getEnvFloat("TREND_BASELINE_SCORE", 50)

	// Session Archive
	ArchiveEnabled = getEnvString("ARCHIVE_ENABLED", "true") == "true"
	ArchiveSQLitePath = getEnvString("ARCHIVE_SQLITE_PATH", "data/pulsetrack.db")
	ArchiveTursoDatabase = getEnvString("ARCHIVE_TURSO_DATABASE", "")
	ArchiveTursoToken = getEnvString("ARCHIVE_TURSO_TOKEN", "")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)

	// Dashboard Auth
	JWTSecret = getEnvString("JWT_SECRET", "")
	DashboardPasswordHash = getEnvString("DASHBOARD_PASSWORD_HASH", "")
	TokenLifetime = getEnvDuration("TOKEN_LIFETIME", 24*time.Hour)

	// Live Feed
	LiveFeedEnabled = getEnvString("LIVE_FEED_ENABLED", "true") == "true"
	MaxLiveFeedClients = getEnvInt("MAX_LIVE_FEED_CLIENTS", 100)
	LiveFeedWriteDeadline = getEnvDuration("LIVE_FEED_WRITE_DEADLINE", 10*time.Second)
}
