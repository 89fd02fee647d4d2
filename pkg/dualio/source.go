// SPDX-License-Identifier: MPL-2.0

package dualio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"runtime"

	"go.uber.org/multierr"

	"github.com/invowk/resourcekit/pkg/issue"
)

const (
	// ModeStream is stream access (io.ReadCloser / io.WriteCloser).
	ModeStream Mode = "stream"
	// ModeChannel is channel access (ReadChannel / WriteChannel).
	ModeChannel Mode = "channel"
)

var (
	// ErrClosedChannel is returned by reads and writes on a closed channel.
	ErrClosedChannel = errors.New("channel is closed")

	// ErrModeUnavailable is the cause reported when a source or target has no
	// opener for the requested mode.
	ErrModeUnavailable = errors.New("access mode unavailable")
)

type (
	// Mode names an access mode.
	Mode string

	// StreamOpener opens a fresh stream on each call. A nil reader with a nil
	// error means the content is absent.
	StreamOpener func() (io.ReadCloser, error)

	// ChannelOpener opens a fresh readable channel on each call.
	ChannelOpener func() (ReadChannel, error)

	// Source is readable content with dual access.
	Source interface {
		OpenStream() (io.ReadCloser, error)
		OpenChannel() (ReadChannel, error)
	}

	// URLOpener opens a URL for reading. protocol.Registry satisfies it.
	URLOpener interface {
		Open(u *url.URL) (io.ReadCloser, error)
	}

	source struct {
		resource string
		stream   StreamOpener
		channel  ChannelOpener
	}
)

// NewSource creates a source backed by both openers. The resource name only
// decorates errors.
func NewSource(resource string, stream StreamOpener, channel ChannelOpener) Source {
	return &source{resource: resource, stream: stream, channel: channel}
}

// SourceFromStream creates a source whose channel mode wraps the stream.
func SourceFromStream(resource string, stream StreamOpener) Source {
	channel := func() (ReadChannel, error) {
		r, err := stream()
		if err != nil || r == nil {
			return nil, err
		}
		return ChannelFromReader(r), nil
	}
	return NewSource(resource, stream, channel)
}

// SourceFromChannel creates a source whose stream mode wraps the channel.
func SourceFromChannel(resource string, channel ChannelOpener) Source {
	stream := func() (io.ReadCloser, error) {
		c, err := channel()
		if err != nil || c == nil {
			return nil, err
		}
		return ReaderFromChannel(c), nil
	}
	return NewSource(resource, stream, channel)
}

// SourceFromBytes creates a source over a fixed byte slice. The slice is not
// copied and must not be modified afterwards.
func SourceFromBytes(resource string, data []byte) Source {
	return SourceFromStream(resource, func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
}

// SourceFromURL creates a source reading u through opener.
func SourceFromURL(opener URLOpener, u *url.URL) Source {
	return SourceFromStream(u.String(), func() (io.ReadCloser, error) {
		return opener.Open(u)
	})
}

// OpenStream opens the content as a stream.
func (s *source) OpenStream() (io.ReadCloser, error) {
	return open(s.resource, ModeStream, s.stream)
}

// OpenChannel opens the content as a channel.
func (s *source) OpenChannel() (ReadChannel, error) {
	return open(s.resource, ModeChannel, s.channel)
}

// ReadAll reads the whole content of src through its stream mode. A nil
// result with a nil error means the content is absent.
func ReadAll(src Source) (data []byte, err error) {
	r, err := src.OpenStream()
	if err != nil || r == nil {
		return nil, err
	}
	defer func() { err = multierr.Append(err, r.Close()) }()

	data, err = io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return data, nil
}

// open runs opener, converting returned errors and error-valued panics into
// KindIO failures that name the resource and the mode. Runtime errors and
// panics with non-error values are re-raised.
func open[T any](resource string, mode Mode, opener func() (T, error)) (v T, err error) {
	var zero T
	if opener == nil {
		return zero, failure(resource, mode, ErrModeUnavailable)
	}

	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				panic(r)
			}
			if _, bug := cause.(runtime.Error); bug {
				panic(r)
			}
			v, err = zero, failure(resource, mode, cause)
		}
	}()

	v, err = opener()
	if err != nil {
		return zero, failure(resource, mode, err)
	}
	return v, nil
}

func failure(resource string, mode Mode, cause error) error {
	return issue.NewErrorContext().
		WithKind(issue.KindIO).
		WithOperation("open " + string(mode)).
		WithResource(resource).
		Wrap(cause).
		BuildError()
}
