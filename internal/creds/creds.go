// Package creds tracks whether the user holds usable credentials for the
// suggestion provider. Controllers treat an invalid connection as "show
// nothing": the engine must never hint at a workflow the user cannot
// perform.
package creds

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CredentialsFile is the file name under the nudge home directory.
const CredentialsFile = "credentials.json"

// Credentials is the on-disk token record.
type Credentials struct {
	// Token is the provider bearer token.
	Token string `json:"token"`

	// ExpiresAt is the token expiry. Zero means no expiry.
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// Valid reports whether the credentials are usable at the given instant.
func (c Credentials) Valid(now time.Time) bool {
	if strings.TrimSpace(c.Token) == "" {
		return false
	}
	if !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt) {
		return false
	}
	return true
}

// Path returns the credentials file path under dir (the nudge home).
func Path(dir string) string {
	return filepath.Join(dir, CredentialsFile)
}

// Load reads credentials from path. A missing file is not an error: it
// returns zero credentials, which are invalid.
func Load(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Credentials{}, nil
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("read credentials: %w", err)
	}
	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return Credentials{}, fmt.Errorf("parse credentials: %w", err)
	}
	return c, nil
}

// Save writes credentials to path with owner-only permissions, creating
// parent directories as needed.
func Save(path string, c Credentials) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}
