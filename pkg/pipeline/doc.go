// Package pipeline provides the manifest transformation engine.
//
// A pipeline is an ordered list of stages. Each stage reads an input
// manifest, transforms or filters its records, and writes an output manifest;
// data flows strictly stage to stage through manifest files. Per-record
// stages run under a parallel dispatcher that partitions the manifest into
// contiguous chunks, applies the transform concurrently, and reassembles the
// outputs in original input order regardless of completion order.
// Whole-manifest stages (sort, join, projection) load the full manifest and
// run single-threaded.
//
// The pipeline stops on the first encountered error: there is no retry and no
// per-record skip, so a run never silently emits a partially-wrong manifest.
package pipeline
