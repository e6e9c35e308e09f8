package config

import (
	"fmt"
	"net/url"

	"gopkg.in/yaml.v3"
)

const redacted = "REDACTED"

// YAML renders the effective configuration with secrets redacted.
// Durations are rendered in Go duration syntax (e.g. "2s").
func (c Config) YAML() ([]byte, error) {
	out := map[string]interface{}{
		"api": map[string]interface{}{
			"base_url":         c.API.BaseURL,
			"request_interval": c.API.RequestInterval.String(),
			"timeout":          c.API.Timeout.String(),
			"max_retries":      c.API.MaxRetries,
			"user_agent":       c.API.UserAgent,
		},
		"leaderboard": c.Leaderboard,
		"storage": map[string]interface{}{
			"backend":  c.Storage.Backend,
			"file":     c.Storage.File,
			"postgres": PostgresConfig{DSN: redactDSN(c.Storage.Postgres.DSN)},
			"sqlite":   c.Storage.SQLite,
			"redis": RedisConfig{
				Addr:     c.Storage.Redis.Addr,
				Password: redactSecret(c.Storage.Redis.Password),
				DB:       c.Storage.Redis.DB,
				Key:      c.Storage.Redis.Key,
			},
		},
		"server": c.Server,
		"log":    c.Log,
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func redactSecret(s string) string {
	if s == "" {
		return ""
	}
	return redacted
}

// redactDSN masks the password of URL-style DSNs. Other DSN forms are
// masked entirely when non-empty.
func redactDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return redacted
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), redacted)
	}
	return u.String()
}
