package resolve

import (
	"fmt"
	"strings"

	"github.com/voxdial/voxdial/internal/providers"
)

// MissingCredentialError indicates a required secret had neither a request
// override nor a process environment value. EnvVar names the exact variable
// the operator (or caller, via env_vars) must supply.
type MissingCredentialError struct {
	Domain providers.Domain
	EnvVar string
}

func (e MissingCredentialError) Error() string {
	return fmt.Sprintf("%s: missing credential: %s is not set", e.Domain, e.EnvVar)
}

// ConfigError indicates that required parameters remained absent after
// explicit values, defaults, and secrets were all applied.
type ConfigError struct {
	Domain  providers.Domain
	Missing []string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("%s: missing required parameters: %s", e.Domain, strings.Join(e.Missing, ", "))
}
