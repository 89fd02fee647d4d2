// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"net/url"

	"github.com/invowk/resourcekit/pkg/dualio"
	"github.com/invowk/resourcekit/pkg/location"
	"github.com/invowk/resourcekit/pkg/protocol"
)

type (
	// Item is a view of one named resource. It holds no open handles and
	// resolves its URL on every call.
	Item interface {
		Location() location.Location
		// URI is the public identity of the resource: its URL when that uses
		// a standard protocol, otherwise nil.
		URI() *url.URL
		// URL locates the resource for opening, or nil when absent.
		URL() *url.URL
		Capability() Capability
		// Source returns a read view when the resource is readable content.
		Source() (dualio.Source, bool)
		// Target returns a write view when the resource is writable.
		Target() (dualio.Target, bool)
	}

	item struct {
		provider *Provider
		loc      location.Location
	}
)

func (i item) Location() location.Location { return i.loc }

func (i item) URL() *url.URL {
	return i.provider.loader.Resource(i.loc.Name())
}

func (i item) URI() *url.URL {
	u := i.URL()
	if _, ok := protocol.Standard(u); !ok {
		return nil
	}
	return u
}

func (i item) Capability() Capability {
	var c Capability
	if i.URL() != nil {
		if i.loc.IsContainer() {
			c = StaticContainer
		} else {
			c = StaticContent
		}
	}
	c.Writable = i.loc.IsContent() && i.provider.writer != nil
	return c
}

func (i item) Source() (dualio.Source, bool) {
	if i.loc.IsContainer() {
		return nil, false
	}
	u := i.URL()
	if u == nil {
		return nil, false
	}
	return dualio.SourceFromURL(i.provider.loader, u), true
}

func (i item) Target() (dualio.Target, bool) {
	if i.loc.IsContainer() || i.provider.writer == nil {
		return nil, false
	}
	t, err := i.provider.writer.Target(i.loc.Name())
	if err != nil {
		i.provider.logger.Debug("resource not writable", "name", i.loc.Name(), "err", err)
		return nil, false
	}
	return t, true
}

func (i item) String() string { return i.loc.Name() }
