// Package auth persists the upstream API bearer token. The token lives in a
// chmod-600 file under the data directory; it can be bootstrapped once from
// the FINTRACK_API_TOKEN env var so containerized deployments can supply it
// via a .env file without keeping it in process memory.
package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
)

// TokenEnvVar is consumed (and cleared) once at startup.
const TokenEnvVar = "FINTRACK_API_TOKEN"

type TokenStore struct {
	path string
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Save writes the token with owner-only permissions.
func (s *TokenStore) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token is empty")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Load returns the stored token, or "" when none is configured.
func (s *TokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Configured reports whether a non-empty token is stored.
func (s *TokenStore) Configured() bool {
	token, err := s.Load()
	return err == nil && token != ""
}

// Delete removes the stored token. Missing file is not an error.
func (s *TokenStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// TokenSource adapts the store into an oauth2.TokenSource, so HTTP clients
// always authenticate with the latest saved token.
func (s *TokenStore) TokenSource() oauth2.TokenSource {
	return storeTokenSource{store: s}
}

type storeTokenSource struct {
	store *TokenStore
}

func (s storeTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, fmt.Errorf("no API token configured")
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

// BootstrapFromEnv writes the TokenEnvVar value to the store if set, then
// clears it from the environment. Returns true when a token was written.
func (s *TokenStore) BootstrapFromEnv() (bool, error) {
	token := strings.TrimSpace(os.Getenv(TokenEnvVar))
	os.Unsetenv(TokenEnvVar)
	if token == "" {
		return false, nil
	}
	if err := s.Save(token); err != nil {
		return false, err
	}
	return true, nil
}
