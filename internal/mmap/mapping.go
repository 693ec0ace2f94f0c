package mmap

import (
	"os"
	"sync/atomic"
)

// Mapping represents a writable memory mapping, either file-backed or
// anonymous. It owns the underlying byte slice and is responsible for
// unmapping it.
type Mapping struct {
	data   []byte
	size   int
	f      *os.File // nil for anonymous mappings
	closed atomic.Bool
	// unmap and flush are the platform-specific functions for this mapping.
	unmap func([]byte) error
	flush func([]byte) error
}

// Create creates (or truncates) the file at path, extends it to size
// bytes and maps it read-write shared. The extended region reads as
// zeros, so a fresh mapping is always zero-initialized.
func Create(path string, size int) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}

	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		return nil, err
	}

	// Platform-specific mapping
	data, unmapFunc, flushFunc, err := osMapShared(f, size)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &Mapping{
		data:  data,
		size:  size,
		f:     f,
		unmap: unmapFunc,
		flush: flushFunc,
	}, nil
}

// Anon creates an anonymous shared read-write mapping of size bytes.
// The kernel delivers zeroed pages; all goroutines of the process see
// the same memory.
func Anon(size int) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	data, unmapFunc, err := osMapAnonShared(size)
	if err != nil {
		return nil, err
	}

	return &Mapping{
		data:  data,
		size:  size,
		unmap: unmapFunc,
	}, nil
}

// Close unmaps the memory and closes the backing file, if any.
// File-backed mappings are flushed first. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil // Already closed
	}
	var err error
	if m.flush != nil && m.data != nil {
		err = m.flush(m.data)
	}
	if m.unmap != nil && m.data != nil {
		if unmapErr := m.unmap(m.data); unmapErr != nil && err == nil {
			err = unmapErr
		}
	}
	if m.f != nil {
		if closeErr := m.f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		m.f = nil
	}
	return err
}

// Bytes returns the underlying byte slice.
// Warning: The slice is valid only until Close() is called.
// Accessing the slice after Close() results in undefined behavior (likely a crash).
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	return m.size
}

// Sync flushes a file-backed mapping to disk. It is a no-op for
// anonymous mappings.
func (m *Mapping) Sync() error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.flush == nil || m.data == nil {
		return nil
	}
	return m.flush(m.data)
}

// Advise provides hints to the kernel about how the memory will be accessed.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.data == nil {
		return nil
	}
	return osAdvise(m.data, pattern)
}
