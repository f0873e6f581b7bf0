package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.API.validate(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Session.validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}

func (a *APIConfig) validate() error {
	u, err := url.Parse(a.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute http(s) URL (got %q)", a.BaseURL)
	}
	a.BaseURL = strings.TrimRight(a.BaseURL, "/")

	if a.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %v)", a.Timeout)
	}
	return nil
}

func (s *SessionConfig) validate() error {
	if strings.TrimSpace(s.StorageName) == "" {
		return fmt.Errorf("storage_name is required")
	}

	switch s.Backend {
	case SessionBackendFile:
		if s.Dir == "" {
			return fmt.Errorf("dir is required for the file backend")
		}
	case SessionBackendRedis:
		if s.RedisAddr == "" {
			return fmt.Errorf("redis_addr is required for the redis backend")
		}
		if s.RedisTTL < 0 {
			return fmt.Errorf("redis_ttl must be >= 0 (got %v)", s.RedisTTL)
		}
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", s.Backend, SessionBackendFile, SessionBackendRedis)
	}
	return nil
}
