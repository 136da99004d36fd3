// Package pool provides typed object pooling for go-optparse.
// Used by help and error rendering to reuse text buffers.
package pool

import (
	"bytes"
	"sync"
)

// Pool is a type-safe wrapper around sync.Pool with an optional reset hook.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(*T) // called on Put, before the object is stored
	keep  func(*T) bool
}

// NewPool creates a pool with the given factory function
func NewPool[T any](factory func() *T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{New: func() any { return factory() }},
	}
}

// WithReset sets the function used to clear an object before reuse.
func (p *Pool[T]) WithReset(reset func(*T)) *Pool[T] {
	p.reset = reset
	return p
}

// WithKeep sets a filter deciding whether a returned object is retained.
// Objects that fail the filter are left to the garbage collector.
func (p *Pool[T]) WithKeep(keep func(*T) bool) *Pool[T] {
	p.keep = keep
	return p
}

// Get retrieves an object from the pool or creates a new one
func (p *Pool[T]) Get() *T {
	return p.pool.Get().(*T)
}

// Put returns an object to the pool for reuse
func (p *Pool[T]) Put(obj *T) {
	if obj == nil {
		return
	}
	if p.keep != nil && !p.keep(obj) {
		return
	}
	if p.reset != nil {
		p.reset(obj)
	}
	p.pool.Put(obj)
}

// maxRetained caps the capacity of buffers kept in the shared pool so a
// single huge help page does not pin memory.
const maxRetained = 64 << 10

var buffers = NewPool(func() *bytes.Buffer { return new(bytes.Buffer) }).
	WithReset(func(b *bytes.Buffer) { b.Reset() }).
	WithKeep(func(b *bytes.Buffer) bool { return b.Cap() <= maxRetained })

// GetBuffer returns an empty buffer from the shared pool.
func GetBuffer() *bytes.Buffer { return buffers.Get() }

// PutBuffer returns a buffer to the shared pool.
func PutBuffer(b *bytes.Buffer) { buffers.Put(b) }
