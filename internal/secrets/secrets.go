package secrets

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/amishk599/leadradar/internal/config"
)

// Service groups leadradar's secrets in the OS keychain.
const Service = "leadradar"

// names maps the short names accepted on the command line to the secret
// names used for environment and keychain lookups.
var names = map[string]string{
	"apollo":    config.SecretApollo,
	"openai":    config.SecretOpenAI,
	"anthropic": config.SecretAnthropic,
	"gemini":    config.SecretGemini,
	"slack":     config.SecretSlack,
}

// Names returns the accepted short names, sorted.
func Names() []string {
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// SecretName resolves a short name such as "apollo" to its secret name.
func SecretName(short string) (string, error) {
	name, ok := names[strings.ToLower(strings.TrimSpace(short))]
	if !ok {
		return "", fmt.Errorf("unknown secret %q (want one of %s)", short, strings.Join(Names(), ", "))
	}
	return name, nil
}

// Lookup reads a secret from the keychain. A missing entry is "" with a nil
// error. It satisfies config.SecretLookup.
func Lookup(name string) (string, error) {
	v, err := keyring.Get(Service, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("keychain: %w", err)
	}
	return strings.TrimSpace(v), nil
}

// Set stores value under the secret named by short.
func Set(short, value string) error {
	name, err := SecretName(short)
	if err != nil {
		return err
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(Service, name, value)
}

// Delete removes the secret named by short. Deleting a missing secret is
// not an error.
func Delete(short string) error {
	name, err := SecretName(short)
	if err != nil {
		return err
	}
	if err := keyring.Delete(Service, name); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

var _ config.SecretLookup = Lookup
