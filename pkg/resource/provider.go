// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/invowk/resourcekit/pkg/dualio"
	"github.com/invowk/resourcekit/pkg/location"
	"github.com/invowk/resourcekit/pkg/lookup"
	"github.com/invowk/resourcekit/pkg/scan"
)

type (
	// Writer creates write views by resource name. lookup.MemoryRoot
	// satisfies it.
	Writer interface {
		Target(name string) (dualio.Target, error)
	}

	// ProviderOptions configures a Provider.
	ProviderOptions struct {
		// Scanners lists containers. Defaults to scan.DefaultRegistry over the
		// loader protocols when the loader is a *lookup.Loader.
		Scanners *scan.Registry
		// Writer makes content items writable. Nil means read-only items.
		Writer Writer
		// Logger defaults to a discard logger.
		Logger *log.Logger
	}

	// Provider builds items backed by a resource loader.
	Provider struct {
		loader   lookup.ResourceLoader
		scanners *scan.Registry
		writer   Writer
		logger   *log.Logger
	}
)

// NewProvider creates a provider over loader.
func NewProvider(loader lookup.ResourceLoader, opts ProviderOptions) *Provider {
	if opts.Scanners == nil {
		if l, ok := loader.(*lookup.Loader); ok {
			opts.Scanners = scan.DefaultRegistry(l.Protocols())
		} else {
			opts.Scanners = scan.NewRegistry()
		}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Provider{
		loader:   loader,
		scanners: opts.Scanners,
		writer:   opts.Writer,
		logger:   opts.Logger,
	}
}

// Item returns the item for name. It never fails: absence shows in the
// item capability.
func (p *Provider) Item(name string) Item {
	return item{provider: p, loc: location.Parse(name)}
}

// Items lists the resources below a container across every root that has
// it. Each URL of the container is scanned with the matching scanner; names
// found in several roots are reported once, in first-seen order.
func (p *Provider) Items(container string, filter scan.Filter) ([]Item, error) {
	loc := location.Container(container)
	urls, err := p.loader.Resources(loc.Name())
	if err != nil {
		return nil, err
	}

	var names []string
	for _, u := range urls {
		cursor, err := p.scanners.Scan(scan.Offset{URL: u, Name: loc.Name()}, filter)
		if err != nil {
			return nil, err
		}
		scanned, err := scan.Collect(cursor)
		if err != nil {
			return nil, err
		}
		for _, name := range scanned {
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
	}

	items := make([]Item, 0, len(names))
	for _, name := range names {
		items = append(items, p.Item(name))
	}
	return items, nil
}
