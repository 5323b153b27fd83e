// Package credentials keeps the backend API token in the system keychain.
package credentials

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
)

const (
	keystoreService = "jobprompter-desktop"
	keystoreUser    = "api-token"
)

// LoadAPIToken returns the token used to authenticate against the backend
// Priority:
// 1. JOBPROMPTER_API_TOKEN environment variable
// 2. System keychain
// An absent token is not an error: the backend may run without auth.
func LoadAPIToken() (string, error) {
	if token := os.Getenv("JOBPROMPTER_API_TOKEN"); token != "" {
		return token, nil
	}

	token, err := keyring.Get(keystoreService, keystoreUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read API token from keychain: %w", err)
	}
	return token, nil
}

// StoreAPIToken saves the token in the keychain, or removes it when empty
func StoreAPIToken(token string) error {
	if token == "" {
		return DeleteAPIToken()
	}
	if err := keyring.Set(keystoreService, keystoreUser, token); err != nil {
		return fmt.Errorf("failed to store API token in keychain: %w", err)
	}
	return nil
}

// DeleteAPIToken removes the token from the keychain
func DeleteAPIToken() error {
	if err := keyring.Delete(keystoreService, keystoreUser); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete API token: %w", err)
	}
	return nil
}

// IsTokenStored checks if a token exists in the keychain
func IsTokenStored() bool {
	_, err := keyring.Get(keystoreService, keystoreUser)
	return err == nil
}
