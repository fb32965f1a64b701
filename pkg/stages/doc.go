// Package stages implements the built-in manifest transformation stages and
// the registry that builds them by name from pipeline configuration.
//
// Per-record stages (field composition, renaming, fixed-duration splitting)
// implement pipeline.RecordTransformer and run under the parallel dispatcher.
// Whole-manifest stages (sort, inner join, field projection) need the full
// manifest at once and run single-threaded.
package stages
