package resolve

import (
	"errors"
	"fmt"
	"sort"

	"github.com/voxdial/voxdial/internal/providers"
	"github.com/voxdial/voxdial/internal/secrets"
)

// Catalog is the view of the provider registry the resolution engine needs.
// *providers.Registry satisfies it.
type Catalog interface {
	Lookup(domain providers.Domain, typeName string) (providers.Spec, error)
	DefaultType(domain providers.Domain) string
	SharedDefaults(domain providers.Domain) map[string]any
}

// Builder produces one fully-resolved sub-configuration for a single domain.
// The same code path serves all four domains; only the catalogue contents
// differ.
type Builder struct {
	domain   providers.Domain
	registry Catalog
	secrets  *secrets.Resolver
}

// NewBuilder constructs a Builder for domain.
func NewBuilder(domain providers.Domain, registry Catalog, sec *secrets.Resolver) Builder {
	return Builder{domain: domain, registry: registry, secrets: sec}
}

// Build resolves selector into a SubConfiguration. A nil selector selects the
// domain's default provider type. Parameter precedence, highest first:
// explicit caller values, domain-wide shared defaults, provider-specific
// defaults, resolved secrets. After all tiers are applied every required
// parameter must be present or the build fails with ConfigError.
func (b Builder) Build(selector *Selector, overrides secrets.Overrides) (SubConfiguration, error) {
	typeName := b.registry.DefaultType(b.domain)
	var supplied map[string]any
	if selector != nil {
		if selector.Type != "" {
			typeName = selector.Type
		}
		supplied = selector.Config
	}

	spec, err := b.registry.Lookup(b.domain, typeName)
	if err != nil {
		return SubConfiguration{}, err
	}

	// Copy, never mutate the request's map.
	params := make(map[string]any, len(supplied))
	for key, value := range supplied {
		params[key] = value
	}

	for key, value := range b.registry.SharedDefaults(b.domain) {
		if _, ok := params[key]; !ok {
			params[key] = value
		}
	}

	for key, value := range spec.Defaults {
		if _, ok := params[key]; !ok {
			params[key] = value
		}
	}

	for _, secret := range spec.Secrets {
		if existing, ok := params[secret.Param]; ok && existing != "" {
			continue
		}
		value, err := b.secrets.Resolve(overrides.Get(secret.Override), secret.EnvVar)
		if err != nil {
			var notFound secrets.NotFoundError
			if errors.As(err, &notFound) {
				return SubConfiguration{}, MissingCredentialError{Domain: b.domain, EnvVar: notFound.EnvVar}
			}
			return SubConfiguration{}, fmt.Errorf("%s: resolve %s: %w", b.domain, secret.EnvVar, err)
		}
		params[secret.Param] = value
	}

	var missing []string
	for _, name := range spec.Required {
		if _, ok := params[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return SubConfiguration{}, ConfigError{Domain: b.domain, Missing: missing}
	}

	return SubConfiguration{Domain: b.domain, Type: typeName, Params: params}, nil
}
