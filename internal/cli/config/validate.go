package config

import (
	"fmt"
	"net/url"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.GatewayURL == "" {
		return fmt.Errorf("gateway_url is required")
	}
	u, err := url.Parse(c.GatewayURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("gateway_url %q is not a valid URL", c.GatewayURL)
	}

	switch c.OutputFormat {
	case "", "auto", "text", "markdown", "json":
	default:
		return fmt.Errorf("output %q is not one of auto, text, markdown, json", c.OutputFormat)
	}

	// Connection entries are validated lazily by commands that use them;
	// this keeps help and version working with a broken connections list.
	return nil
}
