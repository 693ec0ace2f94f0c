// Package waveforms extracts short signal snippets around detected
// spike timestamps from a multi-segment, multichannel recording.
//
// # Overview
//
// Downstream pipelines need, per unit, a dense matrix of the waveforms
// attributed to it, without ever materializing the full recording in
// memory. The engine partitions each segment into chunks, dispatches
// them over a bounded worker pool and writes every spike's window into
// a pre-assigned row of an off-heap buffer. Row assignment is computed
// in one sequential pass before dispatch, so parallel workers never
// coordinate and the output is bit-identical for any worker count.
//
// # Usage
//
//	bufs, err := waveforms.ExtractToBuffers(ctx, rec, spikes, unitIDs, 90, 120,
//	    waveforms.WithJobs(4),
//	    waveforms.WithMemmap("/tmp/wfs"),
//	)
//	if err != nil { ... }
//	wf := bufs["unit5"] // spike_count × (90+120) × channels
//
// ExtractToSingleBuffer produces one contiguous buffer in global spike
// order instead; SplitByUnits converts it into the per-unit form.
//
// # Storage
//
// Buffers are backed by anonymous shared memory (default) or by files
// under a caller-supplied folder (WithMemmap), letting outputs exceed
// RAM. The caller owns the returned buffers and closes them.
package waveforms
