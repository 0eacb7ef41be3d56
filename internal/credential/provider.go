// Package credential supplies the access token used against the remote
// store. Providers are chained so a configured token wins over a persisted
// one, with an interactive prompt as the last resort.
package credential

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Provider yields a credential. ok is false when the provider has none to
// offer, which sends the chain to the next provider.
type Provider interface {
	Obtain() (token string, ok bool)
}

// Keeper persists a credential between sessions.
type Keeper interface {
	Store(token string) error
}

// Static is a fixed credential, typically from configuration.
type Static string

// Obtain returns the static token when non-empty.
func (s Static) Obtain() (string, bool) {
	return string(s), s != ""
}

// File reads and persists the credential in a local file.
type File struct {
	Path string
}

// Obtain returns the trimmed file content, or ok=false when the file is
// missing or empty.
func (f File) Obtain() (string, bool) {
	if f.Path == "" {
		return "", false
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(data))
	return token, token != ""
}

// Store writes the token with owner-only permissions.
func (f File) Store(token string) error {
	if f.Path == "" {
		return fmt.Errorf("credential: no token file configured")
	}
	if err := os.WriteFile(f.Path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("credential: store token: %w", err)
	}
	return nil
}

// Prompt asks for the credential interactively.
type Prompt struct {
	In  io.Reader
	Out io.Writer
}

// Obtain prints the prompt and reads one line. An empty line means the user
// declined.
func (p Prompt) Obtain() (string, bool) {
	fmt.Fprint(p.Out, "Enter your personal access token (with repo scope): ")
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	token := strings.TrimSpace(line)
	return token, token != ""
}

// Chain tries each provider in order and returns the first credential.
type Chain []Provider

// Obtain walks the chain.
func (c Chain) Obtain() (string, bool) {
	for _, p := range c {
		if token, ok := p.Obtain(); ok {
			return token, true
		}
	}
	return "", false
}
