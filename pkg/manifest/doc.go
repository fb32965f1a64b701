// Package manifest provides the record and file model for dataset manifests.
//
// A manifest is an ordered sequence of schema-less records persisted as one
// compact JSON object per line. Records keep their field insertion order and
// round-trip numbers through json.Number, so writing a manifest that was just
// read reproduces it byte for byte.
package manifest
