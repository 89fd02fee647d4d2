// SPDX-License-Identifier: MPL-2.0

package kit

import (
	"io"

	"github.com/invowk/resourcekit/pkg/dualio"
)

type (
	// overlayWriter hands out memory overlay targets that drop the lookup
	// cache once a write completes.
	overlayWriter struct{ k *Kit }

	resettingWriter struct {
		io.WriteCloser
		k *Kit
	}
)

func (o overlayWriter) Target(name string) (dualio.Target, error) {
	t, err := o.k.memory.Target(name)
	if err != nil {
		return nil, err
	}
	return dualio.TargetFromStream(name, func() (io.WriteCloser, error) {
		if o.k.closed.Load() {
			return nil, ErrClosed
		}
		w, err := t.OpenStream()
		if err != nil || w == nil {
			return w, err
		}
		return &resettingWriter{WriteCloser: w, k: o.k}, nil
	}), nil
}

func (w *resettingWriter) Close() error {
	err := w.WriteCloser.Close()
	w.k.resetCache()
	return err
}
