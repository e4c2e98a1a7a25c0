// Package secrets resolves credentials and provider settings from a
// per-request override map with fallback to the live process environment.
// Values are never cached, so rotating a credential on the host takes
// effect on the next request without a restart.
package secrets

import (
	"fmt"
	"os"
)

// Overrides holds the request-scoped env_vars map. Keys are the documented
// override names (e.g. "twilio_auth_token"), values take precedence over the
// process environment.
type Overrides map[string]string

// Get returns the override for key, or "" when absent.
func (o Overrides) Get(key string) string {
	if o == nil {
		return ""
	}
	return o[key]
}

// NotFoundError indicates that a required value was supplied neither as a
// request override nor through the process environment.
type NotFoundError struct {
	EnvVar string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("missing credential: %s is not set", e.EnvVar)
}

// Resolver looks up environment values through an injectable lookup function.
type Resolver struct {
	lookup func(string) string
}

// ResolverOption configures Resolver behaviour.
type ResolverOption func(*Resolver)

// WithLookup overrides the environment lookup function, primarily for tests.
func WithLookup(lookup func(string) string) ResolverOption {
	return func(r *Resolver) {
		r.lookup = lookup
	}
}

// NewResolver constructs a Resolver reading from the process environment.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{lookup: os.Getenv}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the first non-empty value in the precedence chain:
// explicit override, then the environment variable named envName. When both
// are empty it fails with NotFoundError naming envName.
func (r *Resolver) Resolve(override, envName string) (string, error) {
	if override != "" {
		return override, nil
	}
	if value := r.lookup(envName); value != "" {
		return value, nil
	}
	return "", NotFoundError{EnvVar: envName}
}
