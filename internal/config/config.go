// Package config defines the service configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/mockshop/mockshop/pkg/config"
	"github.com/mockshop/mockshop/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Environment string                 `koanf:"environment"`
	HTTPServer  config.HTTPConfig      `koanf:"server"`
	Log         config.LogConfig       `koanf:"log"`
	Storage     config.StorageConfig   `koanf:"storage"`
	RateLimit   config.RateLimitConfig `koanf:"ratelimit"`
	Static      config.StaticConfig    `koanf:"static"`
	PProf       config.PProfConfig     `koanf:"pprof"`
	Shutdown    config.ShutdownConfig  `koanf:"shutdown"`
}

// Defaults returns the built-in configuration, overridable by config.yaml,
// .env and environment variables.
func Defaults() map[string]any {
	return map[string]any{
		"environment":               EnvDevelopment,
		"server.port":               3000,
		"server.maxHeaderBytes":     1 << 20,
		"server.maxBodyBytes":       1 << 20,
		"server.timeout.read":       "5s",
		"server.timeout.write":      "10s",
		"server.timeout.idle":       "60s",
		"server.timeout.readHeader": "2s",
		"log.level":                 "info",
		"storage.productsFile":      "data/products.json",
		"storage.usersFile":         "data/users.json",
		"storage.cacheTtl":          "5s",
		"storage.maxComments":       30,
		"storage.maxCartItems":      20,
		"ratelimit.enabled":         true,
		"ratelimit.requests":        100,
		"ratelimit.window":          "1m",
		"static.dir":                "images",
		"static.maxAge":             "720h",
		"pprof.enabled":             false,
		"pprof.addr":                "localhost:6060",
		"shutdown.timeout":          "10s",
	}
}

// Development reports whether the service runs in development mode, which
// enables pretty-printed persistence and verbose error bodies.
func (c *Config) Development() bool {
	return c.Environment == EnvDevelopment
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Server Configuration ---\n")
	b.WriteString(fmt.Sprintf("  environment: %s\n", c.Environment))
	b.WriteString(fmt.Sprintf("  server.port: %d\n", c.HTTPServer.Port))
	b.WriteString(fmt.Sprintf("  server.maxHeaderBytes: %d\n", c.HTTPServer.MaxHeaderBytes))
	b.WriteString(fmt.Sprintf("  server.maxBodyBytes: %d\n", c.HTTPServer.MaxBodyBytes))
	b.WriteString(fmt.Sprintf("  server.timeout.read: %v\n", c.HTTPServer.Timeout.Read))
	b.WriteString(fmt.Sprintf("  server.timeout.write: %v\n", c.HTTPServer.Timeout.Write))
	b.WriteString(fmt.Sprintf("  server.timeout.idle: %v\n", c.HTTPServer.Timeout.Idle))
	b.WriteString(fmt.Sprintf("  server.timeout.readHeader: %v\n", c.HTTPServer.Timeout.ReadHeader))

	b.WriteString("\n--- Storage Configuration ---\n")
	b.WriteString(fmt.Sprintf("  storage.productsFile: %s\n", c.Storage.ProductsFile))
	b.WriteString(fmt.Sprintf("  storage.usersFile: %s\n", c.Storage.UsersFile))
	b.WriteString(fmt.Sprintf("  storage.cacheTtl: %s\n", c.Storage.CacheTTL))
	b.WriteString(fmt.Sprintf("  storage.maxComments: %d\n", c.Storage.MaxComments))
	b.WriteString(fmt.Sprintf("  storage.maxCartItems: %d\n", c.Storage.MaxCartItems))

	b.WriteString("\n--- Rate Limiting ---\n")
	b.WriteString(fmt.Sprintf("  ratelimit.enabled: %t\n", c.RateLimit.Enabled))
	b.WriteString(fmt.Sprintf("  ratelimit.requests: %d\n", c.RateLimit.Requests))
	b.WriteString(fmt.Sprintf("  ratelimit.window: %s\n", c.RateLimit.Window))
	b.WriteString(fmt.Sprintf("  ratelimit.redisAddr: %s\n", c.RateLimit.RedisAddr))

	b.WriteString("\n--- Static Files ---\n")
	b.WriteString(fmt.Sprintf("  static.dir: %s\n", c.Static.Dir))
	b.WriteString(fmt.Sprintf("  static.maxAge: %s\n", c.Static.MaxAge))

	b.WriteString("\n--- Observability & Logging ---\n")
	b.WriteString(fmt.Sprintf("  log.level: %s\n", c.Log.Level))
	b.WriteString(fmt.Sprintf("  pprof.enabled: %t\n", c.PProf.Enabled))
	b.WriteString(fmt.Sprintf("  pprof.address: %s\n", c.PProf.Addr))

	b.WriteString("\n--- Application Behavior ---\n")
	b.WriteString(fmt.Sprintf("  shutdown.timeout: %s\n", c.Shutdown.Timeout))

	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if c.Environment != EnvDevelopment && c.Environment != EnvProduction {
		return fmt.Errorf("invalid environment: %q", c.Environment)
	}
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.RateLimit.Validate(); err != nil {
		return err
	}
	if err := c.Static.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	return nil
}
