// Package config loads quarry CLI configuration from quarry.yaml,
// environment variables, and command-line flags.
//
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// Credentials never live in the file; DSNs and storage params support
// ${VAR} references expanded from the environment at load time.
package config

import (
	"fmt"

	"github.com/quarrylabs/quarry/pkg/core"
)

// Config holds all CLI configuration options.
type Config struct {
	GatewayURL   string             `koanf:"gateway_url"`
	OutputFormat string             `koanf:"output"`
	Verbose      bool               `koanf:"verbose"`
	HistoryPath  string             `koanf:"history_path"`
	Connection   string             `koanf:"connection"`
	Connections  []ConnectionConfig `koanf:"connections"`

	// ProjectRoot is the directory quarry.yaml was found in. Relative
	// paths such as history_path resolve against it.
	ProjectRoot string `koanf:"-"`
}

// ConnectionConfig declares one backend in quarry.yaml. SQL connections
// carry driver and dsn; storage connections carry provider and params.
type ConnectionConfig struct {
	ID       string         `koanf:"id"`
	Name     string         `koanf:"name"`
	Driver   string         `koanf:"driver"`
	DSN      string         `koanf:"dsn"`
	Provider string         `koanf:"provider"`
	Params   map[string]any `koanf:"params"`
}

// Default configuration values.
const (
	DefaultGatewayURL  = "http://localhost:8080"
	DefaultHistoryFile = ".quarry/history.db"
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// ToConnection converts the YAML form into a core connection. DSNs and
// string-valued params have ${VAR} references expanded.
func (c ConnectionConfig) ToConnection() *core.Connection {
	conn := &core.Connection{
		ID:   c.ID,
		Name: c.Name,
	}
	if c.Provider != "" {
		conn.Storage = &core.StorageConnection{
			Provider: core.Provider(c.Provider),
			Params:   expandParams(c.Params),
		}
		return conn
	}
	conn.SQL = &core.SQLConnection{
		Driver: core.Driver(c.Driver),
		DSN:    expandEnvVars(c.DSN),
	}
	return conn
}

// CoreConnections converts and validates every configured connection.
func (c *Config) CoreConnections() ([]*core.Connection, error) {
	conns := make([]*core.Connection, 0, len(c.Connections))
	seen := make(map[string]bool, len(c.Connections))
	for _, cc := range c.Connections {
		conn := cc.ToConnection()
		if err := conn.Validate(); err != nil {
			return nil, err
		}
		if seen[conn.ID] {
			return nil, fmt.Errorf("duplicate connection id %q", conn.ID)
		}
		seen[conn.ID] = true
		conns = append(conns, conn)
	}
	return conns, nil
}

// ResolveConnection returns the connection with the given id, or the sole
// configured connection when id is empty.
func (c *Config) ResolveConnection(id string) (*core.Connection, error) {
	conns, err := c.CoreConnections()
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = c.Connection
	}
	if id == "" {
		if len(conns) == 1 {
			return conns[0], nil
		}
		return nil, fmt.Errorf("no connection selected (use --connection or set 'connection' in quarry.yaml)")
	}
	for _, conn := range conns {
		if conn.ID == id {
			return conn, nil
		}
	}
	return nil, fmt.Errorf("connection %q not found in configuration", id)
}
