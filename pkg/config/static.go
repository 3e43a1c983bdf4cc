package config

import (
	"fmt"
	"strings"
	"time"
)

// StaticConfig describes the directory served under /images and the client
// cache lifetime stamped on its responses.
type StaticConfig struct {
	Dir    string        `koanf:"dir"`
	MaxAge time.Duration `koanf:"maxAge"`
}

// String returns a string representation of the static file configuration.
func (c *StaticConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Static ---\n")
	b.WriteString(fmt.Sprintf("  dir: %s\n", c.Dir))
	b.WriteString(fmt.Sprintf("  maxAge: %s\n", c.MaxAge))
	return b.String()
}

func (c *StaticConfig) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("static file directory is not configured")
	}
	if c.MaxAge < 0 {
		return fmt.Errorf("invalid static file max age: %v", c.MaxAge)
	}
	return nil
}
