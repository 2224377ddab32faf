package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TokenEnvVar is the environment variable consulted first when resolving the
// CRM API token.
const TokenEnvVar = "CRMGATE_API_TOKEN"

// ErrNoToken is returned by [ResolveToken] when no credential source yields a
// non-empty token. Startup must treat this as fatal.
var ErrNoToken = errors.New("config: no CRM API token found; set " + TokenEnvVar +
	", create ~/.config/crmgate/token or ./.crmgate-token, or set api.token in the config file")

// ResolveToken resolves the CRM API token from the ordered list of credential
// sources. The first non-empty value (after whitespace trimming) wins:
//
//  1. The CRMGATE_API_TOKEN environment variable.
//  2. The user-level token file $HOME/.config/crmgate/token.
//  3. The working-directory token file ./.crmgate-token.
//  4. cfg.API.Token from the loaded configuration.
//
// The token is read once at startup and is immutable for the process
// lifetime. Returns [ErrNoToken] when every source is empty or absent.
func ResolveToken(cfg *Config) (string, error) {
	if tok := strings.TrimSpace(os.Getenv(TokenEnvVar)); tok != "" {
		return tok, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		if tok, err := readTokenFile(filepath.Join(home, ".config", "crmgate", "token")); err != nil {
			return "", err
		} else if tok != "" {
			return tok, nil
		}
	}

	if tok, err := readTokenFile(".crmgate-token"); err != nil {
		return "", err
	} else if tok != "" {
		return tok, nil
	}

	if tok := strings.TrimSpace(cfg.API.Token); tok != "" {
		return tok, nil
	}

	return "", ErrNoToken
}

// readTokenFile reads and trims the token file at path. A missing file is not
// an error (the next source is tried); any other read failure is.
func readTokenFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("config: read token file %q: %w", path, err)
	}
	return strings.TrimSpace(string(b)), nil
}
