package manifest

import (
	"errors"
	"fmt"
	"strings"
)

// Config is the top-level manifest.
type Config struct {
	Server    Server    `toml:"server"`
	Transport Transport `toml:"transport"`
	Admin     Admin     `toml:"admin"`
	Routes    []Route   `toml:"route"`
}

// Server identifies this process to heartbeat probes.
type Server struct {
	Name        string `toml:"name"`        // random when empty
	Description string `toml:"description"` // "GO" when empty
	Workers     int    `toml:"workers"`     // concurrent dispatchers, default 1
}

// Admin is the side HTTP listener for /metrics and introspection.
type Admin struct {
	Listen  string `toml:"listen"` // default ":4000"
	Disable bool   `toml:"disable"`
}

// Validate normalizes routes, fills defaults and checks every block.
func (c *Config) Validate() error {
	if len(c.Routes) == 0 {
		return errors.New("no routes defined")
	}
	if err := c.validateRoutes(); err != nil {
		return err
	}
	if c.Server.Workers < 0 {
		return errors.New("server.workers must be >= 0")
	}
	if c.Server.Workers == 0 {
		c.Server.Workers = 1
	}
	if strings.ContainsRune(c.Server.Name, '\x0e') || strings.ContainsRune(c.Server.Description, '\x0e') {
		return errors.New("server name/description must not contain the 0x0E separator")
	}
	if c.Admin.Listen == "" {
		c.Admin.Listen = ":4000"
	}
	if err := c.Transport.validate(); err != nil {
		return fmt.Errorf("transport: %w", err)
	}
	return nil
}
