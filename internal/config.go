package internal

import (
	"fmt"
	"log/slog"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Auth modes for the local API surface.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

var ownerRepoPattern = regexp.MustCompile(`^[\w.-]+/[\w.-]+$`)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Remote     RemoteConfig      `yaml:"remote"`
	Credential CredentialConfig  `yaml:"credential"`
	Auth       AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Remote.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// RemoteConfig identifies the repository, branch, and directory the
// workflow operates against.
type RemoteConfig struct {
	BaseURL   string `yaml:"base_url"`
	OwnerRepo string `yaml:"owner_repo"`
	Branch    string `yaml:"branch"`
	NotesPath string `yaml:"notes_path"`
}

// Validate validates the remote store configuration.
func (c *RemoteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.OwnerRepo, validation.Required, validation.Match(ownerRepoPattern).Error("must be in owner/name form")),
		validation.Field(&c.Branch, validation.Required),
		validation.Field(&c.NotesPath, validation.Required),
	)
}

// CredentialConfig controls where the remote store credential comes from.
// Token is a static credential (usually expanded from the environment),
// File points at a token file that is also used to persist the credential
// after a successful login, and Prompt enables the interactive fallback.
type CredentialConfig struct {
	Token  string `yaml:"token"`
	File   string `yaml:"file"`
	Prompt bool   `yaml:"prompt"`
}

// AuthConfig guards the local API surface.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when local API authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
// OwnerRepo has no default; it must be configured.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Remote: RemoteConfig{
			BaseURL:   "https://api.github.com",
			Branch:    "main",
			NotesPath: "notes",
		},
		Credential: CredentialConfig{
			Prompt: true,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
