// Package config defines service configuration and its defaults.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	HTTP       HTTPConfig       `koanf:"http"`
	Log        LogConfig        `koanf:"log"`
	Database   DatabaseConfig   `koanf:"database"`
	Auth       AuthConfig       `koanf:"auth"`
	Match      MatchConfig      `koanf:"match"`
	Events     EventsConfig     `koanf:"events"`
	Wellness   WellnessConfig   `koanf:"wellness"`
	Monitoring MonitoringConfig `koanf:"monitoring"`
	RateLimit  RateLimitConfig  `koanf:"ratelimit"`
}

// HTTPConfig governs the HTTP server.
type HTTPConfig struct {
	// Addr configures the listen address, e.g. ":8080".
	Addr            string        `koanf:"addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// Mode is the gin mode: debug, release or test.
	Mode string `koanf:"mode"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`
	// Format is json or console.
	Format string `koanf:"format"`
}

// DatabaseConfig selects and tunes the data store.
type DatabaseConfig struct {
	// Driver is "postgres" or "memory".
	Driver          string        `koanf:"driver"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name"`
	SSLMode         string        `koanf:"sslmode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	// QueryTimeout bounds every store call made on behalf of a request.
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// AuthConfig configures token issuance and password hashing.
type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret"`
	Issuer    string        `koanf:"issuer"`
	TokenTTL  time.Duration `koanf:"token_ttl"`
	// AdminEmails receive the admin role at registration.
	AdminEmails []string `koanf:"admin_emails"`
	BcryptCost  int      `koanf:"bcrypt_cost"`
}

// MatchConfig tunes study-buddy scoring.
type MatchConfig struct {
	SkillWeight    float64 `koanf:"skill_weight"`
	InterestWeight float64 `koanf:"interest_weight"`
	Limit          int     `koanf:"limit"`
}

// EventsConfig tunes the event feed.
type EventsConfig struct {
	// FeedLimit caps GET /api/events; 0 means unlimited.
	FeedLimit int `koanf:"feed_limit"`
	// HidePast drops events dated before today from the feed.
	HidePast bool `koanf:"hide_past"`
	// JoinPoints is awarded once per user per event.
	JoinPoints int `koanf:"join_points"`
}

// WellnessConfig holds tips and the check-in policy.
type WellnessConfig struct {
	CheckinPoints    int                 `koanf:"checkin_points"`
	StreakMaxGapDays int                 `koanf:"streak_max_gap_days"`
	Timezone         string              `koanf:"timezone"`
	FallbackTip      string              `koanf:"fallback_tip"`
	Tips             map[string][]string `koanf:"tips"`
	HistoryLimit     int                 `koanf:"history_limit"`
}

// MonitoringConfig guards the operator endpoints.
type MonitoringConfig struct {
	// APIKey enables /api/monitor/* when non-empty.
	APIKey         string `koanf:"api_key"`
	MetricsEnabled bool   `koanf:"metrics_enabled"`
}

// RateLimitConfig throttles the unauthenticated auth endpoints per client IP.
type RateLimitConfig struct {
	Enabled           bool    `koanf:"enabled"`
	RequestsPerMinute float64 `koanf:"requests_per_minute"`
	Burst             int     `koanf:"burst"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Mode:            "release",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Password:        "password",
			Name:            "campusbuddy",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    25,
			ConnMaxIdleTime: 5 * time.Minute,
			ConnMaxLifetime: 30 * time.Minute,
			QueryTimeout:    5 * time.Second,
		},
		Auth: AuthConfig{
			Issuer:     "campusbuddy-api",
			TokenTTL:   7 * 24 * time.Hour,
			BcryptCost: 10,
		},
		Match: MatchConfig{
			SkillWeight:    1,
			InterestWeight: 1,
			Limit:          3,
		},
		Events: EventsConfig{
			JoinPoints: 20,
		},
		Wellness: WellnessConfig{
			CheckinPoints:    10,
			StreakMaxGapDays: 1,
			Timezone:         "UTC",
			HistoryLimit:     30,
		},
		Monitoring: MonitoringConfig{
			MetricsEnabled: true,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 10,
			Burst:             5,
		},
	}
}
