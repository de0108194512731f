package config

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"

	"github.com/rcliao/recall/internal/errs"
)

const keyringScheme = "keyring://"

// KeyringResolver reads secrets from the OS keyring via zalando/go-keyring.
type KeyringResolver struct{}

func (KeyringResolver) Retrieve(service, key string) (string, error) {
	val, err := keyring.Get(service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", errs.Errorf(errs.CodeSecretResolveFailure, "secret %s/%s not found", service, key)
		}
		return "", errs.Wrapf(err, errs.CodeSecretResolveFailure, "retrieving secret %s/%s", service, key)
	}
	return val, nil
}

// IsKeyringURI reports whether value uses the keyring:// URI scheme.
func IsKeyringURI(value string) bool {
	return strings.HasPrefix(value, keyringScheme)
}

// ParseKeyringURI extracts service and key from a keyring://service/key URI.
func ParseKeyringURI(uri string) (service, key string, err error) {
	if !IsKeyringURI(uri) {
		return "", "", errs.Errorf(errs.CodeSecretInvalidInput, "not a keyring URI: %q", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, keyringScheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errs.Errorf(errs.CodeSecretInvalidInput,
			"invalid keyring URI %q: expected keyring://service/key", uri)
	}
	return parts[0], parts[1], nil
}

// ResolveKeyringURI returns the secret for a keyring:// value, or value
// unchanged when it is not a keyring URI.
func ResolveKeyringURI(r SecretResolver, value string) (string, error) {
	if !IsKeyringURI(value) {
		return value, nil
	}
	service, key, err := ParseKeyringURI(value)
	if err != nil {
		return "", err
	}
	secret, err := r.Retrieve(service, key)
	if err != nil {
		return "", errs.Wrapf(err, errs.CodeSecretResolveFailure, "resolving keyring URI %q", value)
	}
	return secret, nil
}

// resolveSecrets replaces every keyring:// string value in v. Failures are
// logged and the URI is kept so validation can report it.
func resolveSecrets(v *viper.Viper, r SecretResolver) {
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if !IsKeyringURI(val) {
			continue
		}
		resolved, err := ResolveKeyringURI(r, val)
		if err != nil {
			slog.Warn("failed to resolve keyring URI, keeping original value",
				"config_key", key,
				"error", err,
			)
			continue
		}
		v.Set(key, resolved)
	}
}
