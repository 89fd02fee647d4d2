// SPDX-License-Identifier: MPL-2.0

package dualio

import (
	"io"
	"sync/atomic"
)

type (
	// ReadChannel is a readable byte channel: a reader that knows whether it
	// is still open. Reads after Close fail with ErrClosedChannel.
	ReadChannel interface {
		io.Reader
		io.Closer
		IsOpen() bool
	}

	// WriteChannel is a writable byte channel.
	WriteChannel interface {
		io.Writer
		io.Closer
		IsOpen() bool
	}

	readChannel struct {
		r      io.ReadCloser
		closed atomic.Bool
	}

	writeChannel struct {
		w      io.WriteCloser
		closed atomic.Bool
	}

	channelReader struct {
		c ReadChannel
	}

	channelWriter struct {
		c WriteChannel
	}
)

// ChannelFromReader adapts a stream into a channel. Every Read is forwarded
// unchanged; no buffer is added.
func ChannelFromReader(r io.ReadCloser) ReadChannel {
	if c, ok := r.(ReadChannel); ok {
		return c
	}
	return &readChannel{r: r}
}

// ReaderFromChannel adapts a channel into a stream without buffering.
func ReaderFromChannel(c ReadChannel) io.ReadCloser {
	if cr, ok := c.(*readChannel); ok {
		return cr.r
	}
	return &channelReader{c: c}
}

// ChannelFromWriter adapts a stream into a writable channel without buffering.
func ChannelFromWriter(w io.WriteCloser) WriteChannel {
	if c, ok := w.(WriteChannel); ok {
		return c
	}
	return &writeChannel{w: w}
}

// WriterFromChannel adapts a writable channel into a stream without buffering.
func WriterFromChannel(c WriteChannel) io.WriteCloser {
	if cw, ok := c.(*writeChannel); ok {
		return cw.w
	}
	return &channelWriter{c: c}
}

func (c *readChannel) Read(p []byte) (int, error) {
	if c.closed.Load() {
		return 0, ErrClosedChannel
	}
	return c.r.Read(p)
}

func (c *readChannel) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.r.Close()
}

func (c *readChannel) IsOpen() bool { return !c.closed.Load() }

func (c *writeChannel) Write(p []byte) (int, error) {
	if c.closed.Load() {
		return 0, ErrClosedChannel
	}
	return c.w.Write(p)
}

func (c *writeChannel) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.w.Close()
}

func (c *writeChannel) IsOpen() bool { return !c.closed.Load() }

func (r *channelReader) Read(p []byte) (int, error) { return r.c.Read(p) }

func (r *channelReader) Close() error { return r.c.Close() }

func (w *channelWriter) Write(p []byte) (int, error) { return w.c.Write(p) }

func (w *channelWriter) Close() error { return w.c.Close() }
