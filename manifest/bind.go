package manifest

import (
	"fmt"
	"strings"

	ioc "github.com/corewell/ioc"
)

// ResolveLifetime translates an Entry's Lifetime string into an ioc.Lifetime.
// Accepted forms are "current" (default), "root", and "matching:<tag>".
func (e Entry) ResolveLifetime() (ioc.Lifetime, error) {
	switch {
	case e.Lifetime == "" || e.Lifetime == "current":
		return ioc.CurrentScope(), nil
	case e.Lifetime == "root":
		return ioc.RootScope(), nil
	case strings.HasPrefix(e.Lifetime, "matching:"):
		tag := strings.TrimPrefix(e.Lifetime, "matching:")
		if tag == "" {
			return ioc.Lifetime{}, fmt.Errorf("manifest: entry %q has empty matching-scope tag", e.Name)
		}
		return ioc.MatchingScope(tag), nil
	default:
		return ioc.Lifetime{}, fmt.Errorf("manifest: entry %q has unrecognized lifetime %q", e.Name, e.Lifetime)
	}
}

// Options builds the RegistrationOptions an Entry's declared fields imply,
// for use alongside a caller-supplied Activator in ioc.NewRegistration.
func (e Entry) Options() ([]ioc.RegistrationOption, error) {
	lifetime, err := e.ResolveLifetime()
	if err != nil {
		return nil, err
	}

	opts := []ioc.RegistrationOption{ioc.WithLifetime(lifetime)}
	if e.Shared {
		opts = append(opts, ioc.WithSharing(ioc.Shared))
	}
	if e.Fixed {
		opts = append(opts, ioc.Fixed())
	}
	for k, v := range e.Metadata {
		opts = append(opts, ioc.WithMetadata(k, v))
	}
	return opts, nil
}

// Service returns the keyed service identity a manifest entry resolves
// as: a nil-typed service keyed by the entry's name. Manifests carry
// config-shaped literals, not Go types, so their entries are looked up by
// name rather than by a caller-specific Go type.
func (e Entry) Service() ioc.Service {
	return ioc.KeyedService(nil, e.Name)
}

// Registration builds the fixed-value registration a manifest entry
// describes: resolving Service() always yields Value, with no activation
// logic beyond returning it.
func (e Entry) Registration() (*ioc.Registration, error) {
	opts, err := e.Options()
	if err != nil {
		return nil, err
	}
	value := e.Value
	activator := func(*ioc.RequestContext, []ioc.Parameter) (any, error) { return value, nil }
	return ioc.NewRegistration(activator, []ioc.Service{e.Service()}, opts...), nil
}
