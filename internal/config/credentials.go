package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// StoreCredentials authenticate the service against the blob store.
type StoreCredentials struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	SessionToken    string `json:"session_token,omitempty"`
}

// Empty reports whether no static credentials were found.
func (c StoreCredentials) Empty() bool {
	return c.AccessKeyID == ""
}

// LoadCredentials reads credentials from the local file when it exists,
// otherwise from the secret bundle. With neither present it returns empty
// credentials and the default provider chain applies.
func (c *Config) LoadCredentials() (StoreCredentials, error) {
	var creds StoreCredentials

	if c.CredentialsFile != "" {
		data, err := os.ReadFile(c.CredentialsFile)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, &creds); err != nil {
				return creds, fmt.Errorf("parse credentials file %s: %w", c.CredentialsFile, err)
			}
			return creds, nil
		case !errors.Is(err, os.ErrNotExist):
			return creds, fmt.Errorf("read credentials file %s: %w", c.CredentialsFile, err)
		}
	}

	if c.CredentialsBundle != "" {
		if err := json.Unmarshal([]byte(c.CredentialsBundle), &creds); err != nil {
			return creds, fmt.Errorf("parse credentials bundle: %w", err)
		}
	}
	return creds, nil
}
