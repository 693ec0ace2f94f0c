package waveforms

import (
	"time"

	"github.com/ephysio/waveforms/buffer"
	"github.com/ephysio/waveforms/sparsity"
)

type options struct {
	jobs          int
	chunkSize     int64
	chunkDuration time.Duration
	storage       buffer.Storage
	folder        string
	mask          *sparsity.Mask
	returnScaled  bool
	progress      func(done, total int)
	logger        *Logger
	copyOut       bool
}

// Option configures an extraction call.
type Option func(*options)

func applyOptions(optFns []Option) *options {
	o := &options{
		jobs:    1,
		storage: buffer.SharedMemory,
		logger:  NoopLogger(),
	}
	for _, fn := range optFns {
		fn(o)
	}
	return o
}

// WithJobs configures the number of concurrent workers. Values below 1
// select GOMAXPROCS. The worker count never changes the output: any
// parallel run is bit-identical to a sequential one.
func WithJobs(jobs int) Option {
	return func(o *options) {
		o.jobs = jobs
	}
}

// WithChunkSize configures the chunk length in samples. The default is
// one second of samples at the recording's sampling frequency.
func WithChunkSize(samples int64) Option {
	return func(o *options) {
		o.chunkSize = samples
	}
}

// WithChunkDuration configures the chunk length as a wall-clock
// duration, converted via the recording's sampling frequency.
// WithChunkSize takes precedence when both are given.
func WithChunkDuration(d time.Duration) Option {
	return func(o *options) {
		o.chunkDuration = d
	}
}

// WithMemmap backs the output buffers with files under folder. The
// folder must exist or be creatable; file layout under it is an
// implementation detail, not an interchange format.
func WithMemmap(folder string) Option {
	return func(o *options) {
		o.storage = buffer.Memmap
		o.folder = folder
	}
}

// WithSharedMemory backs the output buffers with anonymous shared
// mappings. This is the default.
func WithSharedMemory() Option {
	return func(o *options) {
		o.storage = buffer.SharedMemory
		o.folder = ""
	}
}

// WithSparsity restricts each unit to the channels its mask row selects.
// Dense extraction (all channels, all units) is the default.
func WithSparsity(mask *sparsity.Mask) Option {
	return func(o *options) {
		o.mask = mask
	}
}

// WithReturnScaled applies the recording's per-channel gain/offset to
// every sample before it is written. The recording must implement
// recording.Scaler.
func WithReturnScaled() Option {
	return func(o *options) {
		o.returnScaled = true
	}
}

// WithProgress installs an advisory progress callback receiving
// (chunks done, chunks total). Reporting is throttled and freezes on
// failure.
func WithProgress(fn func(done, total int)) Option {
	return func(o *options) {
		o.progress = fn
	}
}

// WithLogger configures structured logging for the extraction run.
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithCopy materializes the returned buffers on the Go heap and
// releases the backing storage before returning. Use it when the
// buffers are small and the caller wants no lifetime coupling to
// mappings or files.
func WithCopy() Option {
	return func(o *options) {
		o.copyOut = true
	}
}
