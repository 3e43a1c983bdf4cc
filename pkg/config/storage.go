package config

import (
	"fmt"
	"strings"
	"time"
)

// StorageConfig describes the JSON file store: one file per collection and a
// snapshot TTL for the read-through cache.
type StorageConfig struct {
	ProductsFile string        `koanf:"productsFile"`
	UsersFile    string        `koanf:"usersFile"`
	CacheTTL     time.Duration `koanf:"cacheTtl"`
	MaxComments  int           `koanf:"maxComments"`
	MaxCartItems int           `koanf:"maxCartItems"`
}

// String returns a string representation of the storage configuration.
func (c *StorageConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Storage ---\n")
	b.WriteString(fmt.Sprintf("  productsFile: %s\n", c.ProductsFile))
	b.WriteString(fmt.Sprintf("  usersFile: %s\n", c.UsersFile))
	b.WriteString(fmt.Sprintf("  cacheTtl: %s\n", c.CacheTTL))
	b.WriteString(fmt.Sprintf("  maxComments: %d\n", c.MaxComments))
	b.WriteString(fmt.Sprintf("  maxCartItems: %d\n", c.MaxCartItems))
	return b.String()
}

func (c *StorageConfig) Validate() error {
	if c.ProductsFile == "" {
		return fmt.Errorf("storage products file is not configured")
	}
	if c.UsersFile == "" {
		return fmt.Errorf("storage users file is not configured")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("invalid storage cache TTL: %v", c.CacheTTL)
	}
	if c.MaxComments <= 0 {
		return fmt.Errorf("invalid storage max comments: %d", c.MaxComments)
	}
	if c.MaxCartItems <= 0 {
		return fmt.Errorf("invalid storage max cart items: %d", c.MaxCartItems)
	}
	return nil
}
