package internal

import "github.com/starford/raido/internal/credential"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	creds  credential.Provider
	mcp    bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithCredentialProvider overrides the default credential chain.
func WithCredentialProvider(p credential.Provider) Option {
	return func(a *application) {
		a.creds = p
	}
}

// WithMCP serves the MCP stdio surface instead of the HTTP API.
func WithMCP(enabled bool) Option {
	return func(a *application) {
		a.mcp = enabled
	}
}
