// SPDX-License-Identifier: MPL-2.0

package dualio

import (
	"fmt"
	"io"

	"go.uber.org/multierr"
)

type (
	// WriteStreamOpener opens a fresh output stream on each call.
	WriteStreamOpener func() (io.WriteCloser, error)

	// WriteChannelOpener opens a fresh writable channel on each call.
	WriteChannelOpener func() (WriteChannel, error)

	// Target is writable content with dual access.
	Target interface {
		OpenStream() (io.WriteCloser, error)
		OpenChannel() (WriteChannel, error)
	}

	target struct {
		resource string
		stream   WriteStreamOpener
		channel  WriteChannelOpener
	}
)

// NewTarget creates a target backed by both openers.
func NewTarget(resource string, stream WriteStreamOpener, channel WriteChannelOpener) Target {
	return &target{resource: resource, stream: stream, channel: channel}
}

// TargetFromStream creates a target whose channel mode wraps the stream.
func TargetFromStream(resource string, stream WriteStreamOpener) Target {
	channel := func() (WriteChannel, error) {
		w, err := stream()
		if err != nil || w == nil {
			return nil, err
		}
		return ChannelFromWriter(w), nil
	}
	return NewTarget(resource, stream, channel)
}

// TargetFromChannel creates a target whose stream mode wraps the channel.
func TargetFromChannel(resource string, channel WriteChannelOpener) Target {
	stream := func() (io.WriteCloser, error) {
		c, err := channel()
		if err != nil || c == nil {
			return nil, err
		}
		return WriterFromChannel(c), nil
	}
	return NewTarget(resource, stream, channel)
}

// OpenStream opens the target as a stream.
func (t *target) OpenStream() (io.WriteCloser, error) {
	return open(t.resource, ModeStream, t.stream)
}

// OpenChannel opens the target as a channel.
func (t *target) OpenChannel() (WriteChannel, error) {
	return open(t.resource, ModeChannel, t.channel)
}

// WriteAll replaces the content of dst with data through its stream mode.
func WriteAll(dst Target, data []byte) (err error) {
	w, err := dst.OpenStream()
	if err != nil {
		return err
	}
	if w == nil {
		return fmt.Errorf("write content: %w", ErrModeUnavailable)
	}
	defer func() { err = multierr.Append(err, w.Close()) }()

	if _, err = w.Write(data); err != nil {
		return fmt.Errorf("write content: %w", err)
	}
	return nil
}
