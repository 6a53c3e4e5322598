package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// "Service" groups this app's secrets in the OS keychain.
const KeyringService = "jobrelay"

// Get resolves a credential: environment variable first (containers, CI),
// then the OS keychain account if one is configured.
func Get(envVar, keyringAccount string) (string, error) {
	if envVar != "" {
		if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
			return v, nil
		}
	}

	if strings.TrimSpace(keyringAccount) != "" {
		v, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(v) != "" {
			return v, nil
		}
	}

	return "", errors.New("credential not found (set env var or keychain entry)")
}

func Set(keyringAccount, value string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("credential value is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, value)
}

func Delete(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}
