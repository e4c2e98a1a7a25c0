package providers

import (
	"errors"
	"fmt"
	"sort"
)

// Domain identifies one of the four subsystems a call is assembled from.
type Domain string

const (
	DomainAgent         Domain = "agent"
	DomainTranscription Domain = "transcription"
	DomainSynthesis     Domain = "synthesis"
	DomainTelephony     Domain = "telephony"
)

// Secret describes one required credential lookup for a provider.
// Param is the resolved configuration key the value is stored under,
// Override is the request-level env_vars key, EnvVar the process
// environment variable consulted when no override is given.
type Secret struct {
	Param    string
	Override string
	EnvVar   string
}

// Spec describes one supported provider: the parameters it requires, the
// defaults it contributes, and the secrets it must resolve. Required names
// may be satisfied by an explicit caller value, a shared or provider
// default, or a resolved secret.
type Spec struct {
	Domain   Domain
	Type     string
	Required []string
	Defaults map[string]any
	Secrets  []Secret
}

// ParameterNames returns every parameter name the spec can populate:
// required names, defaulted names, and secret-backed names.
func (s Spec) ParameterNames() []string {
	seen := make(map[string]struct{})
	for _, name := range s.Required {
		seen[name] = struct{}{}
	}
	for name := range s.Defaults {
		seen[name] = struct{}{}
	}
	for _, secret := range s.Secrets {
		seen[secret.Param] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// UnsupportedTypeError indicates a provider type outside a domain's closed set.
type UnsupportedTypeError struct {
	Domain Domain
	Type   string
}

func (e UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported %s provider type %q", e.Domain, e.Type)
}

var errUnknownDomain = errors.New("unknown provider domain")

// Registry is the read-only table of supported providers per domain. It is
// built once at startup and never mutated afterwards, so concurrent reads
// need no synchronisation.
type Registry struct {
	specs          map[Domain]map[string]Spec
	defaultTypes   map[Domain]string
	sharedDefaults map[Domain]map[string]any
}

// Lookup returns the spec for typeName within domain, or UnsupportedTypeError
// when typeName is not in the domain's closed set.
func (r *Registry) Lookup(domain Domain, typeName string) (Spec, error) {
	byType, ok := r.specs[domain]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %s", errUnknownDomain, domain)
	}
	spec, ok := byType[typeName]
	if !ok {
		return Spec{}, UnsupportedTypeError{Domain: domain, Type: typeName}
	}
	return spec, nil
}

// DefaultType returns the provider type substituted when a request omits the
// selector for domain.
func (r *Registry) DefaultType(domain Domain) string {
	return r.defaultTypes[domain]
}

// SupportedTypes returns the sorted closed set of type names for domain.
func (r *Registry) SupportedTypes(domain Domain) []string {
	byType := r.specs[domain]
	out := make([]string, 0, len(byType))
	for name := range byType {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SharedDefaults returns a copy of the domain-wide defaults applied before
// provider-specific ones.
func (r *Registry) SharedDefaults(domain Domain) map[string]any {
	out := make(map[string]any, len(r.sharedDefaults[domain]))
	for k, v := range r.sharedDefaults[domain] {
		out[k] = v
	}
	return out
}

// Domains returns the four domains in their fixed evaluation order.
func (r *Registry) Domains() []Domain {
	return []Domain{DomainAgent, DomainTranscription, DomainSynthesis, DomainTelephony}
}
