// Package mmap provides writable memory mappings for off-heap buffers.
//
// # Overview
//
// Extraction buffers can be far larger than the samples a worker touches
// at any moment. Backing them with memory mappings keeps them outside the
// Go heap and, for file-backed mappings, lets the OS page them lazily, so
// outputs larger than RAM remain addressable.
//
// # Usage
//
//	m, err := mmap.Create("waveforms_u3.raw", size)
//	if err != nil { ... }
//	defer m.Close()
//
//	// Writable, zero-initialized view of the file contents.
//	data := m.Bytes()
//
//	// Provide kernel hints for access patterns
//	m.Advise(mmap.AccessSequential)
//
// Anon creates an anonymous shared mapping instead; the kernel delivers
// zeroed pages and every goroutine of the process addresses the same
// memory.
//
// # Platform Support
//
// The package provides a unified API across platforms:
//
//   - Unix (Linux, macOS, BSD): Uses mmap(2) with madvise(2) for access hints
//   - Windows: Uses CreateFileMapping/MapViewOfFile (madvise is a no-op)
//
// # Thread Safety
//
// A Mapping is safe for concurrent access to disjoint byte ranges. The
// Close() method is idempotent and protected by atomic operations.
// Callers must ensure no goroutines access Bytes() after Close() returns.
package mmap
