// Package buffer allocates and addresses the waveform output buffers.
//
// A buffer is a dense rows × window × channels array of samples written
// exactly once per row by the extraction engine. Backing storage is a
// memory mapping (anonymous shared memory or a file under a
// caller-supplied folder) so buffers live off the Go heap and, in
// memmap mode, can exceed RAM. Heap backing exists only for
// materialized copies.
package buffer

import (
	"fmt"
	"unsafe"

	"github.com/ephysio/waveforms/internal/mmap"
	"github.com/ephysio/waveforms/recording"
)

// Storage selects the backing of extraction buffers.
type Storage int

const (
	// SharedMemory backs buffers with anonymous shared mappings.
	SharedMemory Storage = iota
	// Memmap backs buffers with files under a caller-supplied folder.
	Memmap
)

// String implements fmt.Stringer.
func (s Storage) String() string {
	switch s {
	case SharedMemory:
		return "shared_memory"
	case Memmap:
		return "memmap"
	default:
		return fmt.Sprintf("storage(%d)", int(s))
	}
}

// AllocationError reports a buffer that could not be allocated.
type AllocationError struct {
	Name  string // buffer name, typically the unit ID
	Bytes int64
	Err   error
}

// Error implements error.
func (e *AllocationError) Error() string {
	return fmt.Sprintf("buffer: allocating %q (%d bytes): %v", e.Name, e.Bytes, e.Err)
}

// Unwrap returns the underlying cause.
func (e *AllocationError) Unwrap() error {
	return e.Err
}

// Buffer is a rows × window × channels sample array. Rows are
// contiguous; within a row the layout is [frame][channel].
type Buffer[S recording.Sample] struct {
	data     []S
	rows     int
	window   int
	channels int
	m        *mmap.Mapping // nil when heap-backed
	path     string        // backing file, memmap only
}

// New allocates a zero-initialized buffer. For Memmap storage the
// backing file is created at path; SharedMemory ignores path. A buffer
// with zero rows carries no backing storage at all.
func New[S recording.Sample](rows, window, channels int, storage Storage, path, name string) (*Buffer[S], error) {
	b := &Buffer[S]{rows: rows, window: window, channels: channels}

	size := int64(rows) * int64(window) * int64(channels) * int64(elemSize[S]())
	if size == 0 {
		return b, nil
	}

	var m *mmap.Mapping
	var err error
	switch storage {
	case Memmap:
		m, err = mmap.Create(path, int(size))
		b.path = path
	default:
		m, err = mmap.Anon(int(size))
	}
	if err != nil {
		return nil, &AllocationError{Name: name, Bytes: size, Err: err}
	}

	// The engine fills rows in ascending sample order within each chunk.
	_ = m.Advise(mmap.AccessSequential)

	b.m = m
	b.data = viewOf[S](m.Bytes())
	return b, nil
}

// NumRows returns the number of waveform rows (one per spike).
func (b *Buffer[S]) NumRows() int { return b.rows }

// Window returns the number of frames per waveform.
func (b *Buffer[S]) Window() int { return b.window }

// NumChannels returns the channel dimension.
func (b *Buffer[S]) NumChannels() int { return b.channels }

// Row returns the writable slot of one waveform, length
// window*channels. Rows are disjoint, so concurrent writers touching
// different rows need no synchronization.
func (b *Buffer[S]) Row(i int) []S {
	n := b.window * b.channels
	return b.data[i*n : (i+1)*n : (i+1)*n]
}

// At returns one sample.
func (b *Buffer[S]) At(row, frame, channel int) S {
	return b.data[(row*b.window+frame)*b.channels+channel]
}

// Data returns the full backing slice. It aliases the mapping and is
// invalid after Close.
func (b *Buffer[S]) Data() []S { return b.data }

// Path returns the backing file for memmap buffers, empty otherwise.
func (b *Buffer[S]) Path() string { return b.path }

// Copy materializes a heap-backed copy of the buffer.
func (b *Buffer[S]) Copy() *Buffer[S] {
	out := &Buffer[S]{rows: b.rows, window: b.window, channels: b.channels}
	if len(b.data) > 0 {
		out.data = make([]S, len(b.data))
		copy(out.data, b.data)
	}
	return out
}

// Close releases the backing mapping. Views handed out by Row and Data
// become invalid. Heap-backed buffers are a no-op. Idempotent.
func (b *Buffer[S]) Close() error {
	if b.m == nil {
		return nil
	}
	err := b.m.Close()
	b.data = nil
	return err
}

func elemSize[S recording.Sample]() int {
	var s S
	return int(unsafe.Sizeof(s))
}

// viewOf reinterprets a mapped byte region as a typed sample slice.
func viewOf[S recording.Sample](b []byte) []S {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*S)(unsafe.Pointer(&b[0])), len(b)/elemSize[S]())
}
