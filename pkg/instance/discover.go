// SPDX-License-Identifier: MPL-2.0

package instance

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"

	"go.uber.org/multierr"

	"github.com/invowk/resourcekit/pkg/issue"
	"github.com/invowk/resourcekit/pkg/lookup"
)

// ServicesDir is the container holding provider-configuration resources.
const ServicesDir = "META-INF/services/"

// ErrUnknownProvider is reported when a configuration names a provider
// missing from the catalogue.
var ErrUnknownProvider = errors.New("unknown provider")

type (
	// Constructor creates one provider instance.
	Constructor[I any] func() (I, error)

	// Services is a catalogue of provider constructors by name.
	Services[I any] struct {
		mu        sync.RWMutex
		providers map[string]Constructor[I]
	}
)

// NewServices creates an empty catalogue.
func NewServices[I any]() *Services[I] {
	return &Services[I]{providers: make(map[string]Constructor[I])}
}

// Provide registers ctor under name, replacing any previous constructor.
func (s *Services[I]) Provide(name string, ctor Constructor[I]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers[name] = ctor
}

// Names returns the registered provider names in sorted order.
func (s *Services[I]) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (s *Services[I]) constructor(name string) (Constructor[I], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctor, ok := s.providers[name]
	return ctor, ok
}

// Discover returns a supplier instantiating the providers listed in every
// META-INF/services/<service> resource visible to loader, in resource order.
// Text after '#' is a comment; blank lines and repeated names are skipped.
func Discover[I any](services *Services[I], loader lookup.ResourceLoader, service string) Supplier[I] {
	return func() ([]I, error) {
		resource := ServicesDir + service
		urls, err := loader.Resources(resource)
		if err != nil {
			return nil, err
		}

		var names []string
		for _, u := range urls {
			listed, err := readProviderNames(loader, u)
			if err != nil {
				return nil, err
			}
			for _, name := range listed {
				if !slices.Contains(names, name) {
					names = append(names, name)
				}
			}
		}

		instances := make([]I, 0, len(names))
		for _, name := range names {
			ctor, ok := services.constructor(name)
			if !ok {
				return nil, issue.NewErrorContext().
					WithKind(issue.KindConfiguration).
					WithOperation("instantiate provider "+name).
					WithResource(resource).
					WithSuggestion("register the provider with Services.Provide").
					Wrap(ErrUnknownProvider).
					BuildError()
			}
			inst, err := ctor()
			if err != nil {
				return nil, fmt.Errorf("instantiate provider %s: %w", name, err)
			}
			instances = append(instances, inst)
		}
		return instances, nil
	}
}

// ForService returns a loader whose only supplier is Discover.
func ForService[I any](services *Services[I], loader lookup.ResourceLoader, service string) *Loader[I] {
	l := New[I]()
	l.Registry().Add(Discover(services, loader, service))
	return l
}

func readProviderNames(loader lookup.ResourceLoader, u *url.URL) (names []string, err error) {
	rc, err := loader.Open(u)
	if err != nil {
		return nil, err
	}
	defer func() { err = multierr.Append(err, rc.Close()) }()

	sc := bufio.NewScanner(rc)
	for sc.Scan() {
		line, _, _ := strings.Cut(sc.Text(), "#")
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, issue.IO(err, "read provider configuration", u.String())
	}
	return names, nil
}
