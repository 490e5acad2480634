package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix         = "CAMPUS_"
	envConfigFile     = "CAMPUS_CONFIG"
	minJWTSecretBytes = 32
)

// listKeys are env-sourced keys whose values are comma-separated lists.
var listKeys = map[string]bool{
	"auth.admin_emails": true,
}

// Load builds a Config by layering defaults, an optional file and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. YAML file if CAMPUS_CONFIG is set
//  3. env (prefix CAMPUS_, "__" separates sections: CAMPUS_HTTP__ADDR -> http.addr)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := strings.TrimSpace(os.Getenv(envConfigFile)); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		if key == envConfigFile {
			return "", nil
		}
		key = strings.TrimPrefix(key, envPrefix)
		key = strings.ToLower(key)
		key = strings.ReplaceAll(key, "__", ".")
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: unmarshal: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return fmt.Errorf("%w: http.addr must not be empty", ErrInvalidConfig)
	}
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("%w: database.driver must be postgres or memory, got %q", ErrInvalidConfig, c.Database.Driver)
	}
	if len(strings.TrimSpace(c.Auth.JWTSecret)) < minJWTSecretBytes {
		return fmt.Errorf("%w: auth.jwt_secret must be at least %d characters", ErrInvalidConfig, minJWTSecretBytes)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("%w: auth.token_ttl must be positive", ErrInvalidConfig)
	}
	if c.Match.SkillWeight <= 0 || c.Match.InterestWeight <= 0 {
		return fmt.Errorf("%w: match weights must be positive", ErrInvalidConfig)
	}
	if c.Events.JoinPoints <= 0 {
		return fmt.Errorf("%w: events.join_points must be positive", ErrInvalidConfig)
	}
	if c.Wellness.CheckinPoints <= 0 {
		return fmt.Errorf("%w: wellness.checkin_points must be positive", ErrInvalidConfig)
	}
	if c.Wellness.StreakMaxGapDays <= 0 {
		return fmt.Errorf("%w: wellness.streak_max_gap_days must be positive", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: wellness.timezone: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Location resolves the time zone that defines a check-in day.
func (c *Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Wellness.Timezone) == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Wellness.Timezone)
}

// IsAdminEmail reports whether email is configured as an admin account.
func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, admin := range c.Auth.AdminEmails {
		if strings.ToLower(strings.TrimSpace(admin)) == email && email != "" {
			return true
		}
	}
	return false
}
