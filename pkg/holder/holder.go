// SPDX-License-Identifier: MPL-2.0

// Package holder provides thread-safe memoizing containers.
//
// A lazy container computes its item at most once per reset cycle. Reads
// after publication are a single atomic load. A computed zero value is
// memoized like any other; supplier errors and panics are not, so the next
// Item call retries.
package holder

import (
	"sync"
	"sync/atomic"
)

type (
	// Container holds one item.
	Container[X any] interface {
		Item() (X, error)
	}

	// ResettableContainer is a Container whose item can be discarded.
	ResettableContainer[X any] interface {
		Container[X]
		// Reset discards the item; the next Item call recomputes it.
		Reset()
	}

	// Supplier computes an item.
	Supplier[X any] func() (X, error)

	fixed[X any] struct {
		item X
	}

	// slot is published as a whole so the has-value flag and the item are
	// read together.
	slot[X any] struct {
		item X
	}

	// plain hides Reset from Lazy containers.
	plain[X any] struct {
		c *lazy[X]
	}

	lazy[X any] struct {
		supplier Supplier[X]
		mu       sync.Mutex
		value    atomic.Pointer[slot[X]]
	}
)

// Of returns a container holding x.
func Of[X any](x X) Container[X] {
	return fixed[X]{item: x}
}

// Eager calls supplier immediately and returns a container holding the result.
func Eager[X any](supplier Supplier[X]) (Container[X], error) {
	x, err := supplier()
	if err != nil {
		return nil, err
	}
	return Of(x), nil
}

// Lazy returns a container computing its item on first use.
func Lazy[X any](supplier Supplier[X]) Container[X] {
	return plain[X]{c: &lazy[X]{supplier: supplier}}
}

// Resettable returns a lazy container that can be reset.
func Resettable[X any](supplier Supplier[X]) ResettableContainer[X] {
	return &lazy[X]{supplier: supplier}
}

// ResettableWithHook returns a resettable container and hands its Reset
// function to register, if register is not nil.
func ResettableWithHook[X any](supplier Supplier[X], register func(reset func())) ResettableContainer[X] {
	c := &lazy[X]{supplier: supplier}
	if register != nil {
		register(c.Reset)
	}
	return c
}

// WithHook is ResettableWithHook without exposing Reset. A nil register
// yields a plain lazy container.
func WithHook[X any](supplier Supplier[X], register func(reset func())) Container[X] {
	if register == nil {
		return Lazy(supplier)
	}
	return ResettableWithHook(supplier, register)
}

func (f fixed[X]) Item() (X, error) { return f.item, nil }

func (p plain[X]) Item() (X, error) { return p.c.Item() }

func (c *lazy[X]) Item() (X, error) {
	if s := c.value.Load(); s != nil {
		return s.item, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if s := c.value.Load(); s != nil {
		return s.item, nil
	}

	x, err := c.supplier()
	if err != nil {
		var zero X
		return zero, err
	}
	c.value.Store(&slot[X]{item: x})
	return x, nil
}

func (c *lazy[X]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value.Store(nil)
}
