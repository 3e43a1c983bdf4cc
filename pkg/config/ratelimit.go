package config

import (
	"fmt"
	"strings"
	"time"
)

// RateLimitConfig describes the per-IP request ceiling. When RedisAddr is set
// the counters are kept in Redis so multiple instances share one window.
type RateLimitConfig struct {
	Enabled   bool          `koanf:"enabled"`
	Requests  int           `koanf:"requests"`
	Window    time.Duration `koanf:"window"`
	RedisAddr string        `koanf:"redisAddr"`
}

// String returns a string representation of the rate limit configuration.
func (c *RateLimitConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- RateLimit ---\n")
	b.WriteString(fmt.Sprintf("  enabled: %t\n", c.Enabled))
	b.WriteString(fmt.Sprintf("  requests: %d\n", c.Requests))
	b.WriteString(fmt.Sprintf("  window: %s\n", c.Window))
	b.WriteString(fmt.Sprintf("  redisAddr: %s\n", c.RedisAddr))
	return b.String()
}

func (c *RateLimitConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Requests <= 0 {
		return fmt.Errorf("invalid rate limit request ceiling: %d", c.Requests)
	}
	if c.Window <= 0 {
		return fmt.Errorf("invalid rate limit window: %v", c.Window)
	}
	return nil
}
