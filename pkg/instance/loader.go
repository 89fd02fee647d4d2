// SPDX-License-Identifier: MPL-2.0

package instance

import (
	"reflect"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/invowk/resourcekit/pkg/holder"
)

type (
	// Supplier yields a batch of instances.
	Supplier[I any] func() ([]I, error)

	// Registry is an ordered, copy-on-write list of suppliers. It is safe
	// for concurrent use; readers work on a snapshot.
	Registry[I any] struct {
		mu        sync.Mutex
		suppliers []Supplier[I]
	}

	// Loader memoizes the flattened output of its registry.
	Loader[I any] struct {
		registry  *Registry[I]
		instances holder.ResettableContainer[[]I]
	}
)

// Add appends a supplier. Nil suppliers are ignored.
func (r *Registry[I]) Add(s Supplier[I]) {
	if s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make([]Supplier[I], len(r.suppliers), len(r.suppliers)+1)
	copy(next, r.suppliers)
	r.suppliers = append(next, s)
}

// Clear removes every supplier.
func (r *Registry[I]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suppliers = nil
}

// Len returns the number of suppliers.
func (r *Registry[I]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.suppliers)
}

// Snapshot returns the current suppliers. Later changes do not affect it.
func (r *Registry[I]) Snapshot() []Supplier[I] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.suppliers
}

// New creates a loader with an empty registry.
func New[I any]() *Loader[I] {
	l := &Loader[I]{registry: &Registry[I]{}}
	l.instances = holder.Resettable(l.collect)
	return l
}

// Registry returns the supplier registry. Changes take effect after Reload.
func (l *Loader[I]) Registry() *Registry[I] { return l.registry }

// Instances returns every instance in supplier order. The result is
// computed once per reset cycle; callers get their own copy. Any supplier
// failure fails the whole call and nothing is cached.
func (l *Loader[I]) Instances() ([]I, error) {
	instances, err := l.instances.Item()
	if err != nil {
		return nil, err
	}
	return slices.Clone(instances), nil
}

// FirstInstance returns the first instance, if any.
func (l *Loader[I]) FirstInstance() (I, bool, error) {
	var zero I
	instances, err := l.instances.Item()
	if err != nil || len(instances) == 0 {
		return zero, false, err
	}
	return instances[0], true, nil
}

// Reload discards the cached instances.
func (l *Loader[I]) Reload() { l.instances.Reset() }

// Reset is Reload.
func (l *Loader[I]) Reset() { l.instances.Reset() }

func (l *Loader[I]) collect() ([]I, error) {
	instances := []I{}
	for _, supply := range l.registry.Snapshot() {
		batch, err := supply()
		if err != nil {
			return nil, err
		}
		for _, inst := range batch {
			if !isNil(inst) {
				instances = append(instances, inst)
			}
		}
	}
	return instances, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
