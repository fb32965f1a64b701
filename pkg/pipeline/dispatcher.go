package pipeline

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/voxpipe/voxpipe/pkg/manifest"
)

// DefaultChunkSize is the number of records handed to a worker at once when
// no chunk size is configured. Smaller chunks balance load better, larger
// chunks cut scheduling overhead.
const DefaultChunkSize = 64

// Dispatcher applies a RecordTransformer to an entire manifest with internal
// parallelism while preserving global output order.
//
// The input is partitioned into contiguous fixed-size chunks in original
// order. Each chunk goes to a worker in a bounded pool; the worker transforms
// its records sequentially and concatenates their derived sequences. Results
// are collected by chunk index, not completion order, so the final output is
// always the input order composed with each record's own derived order.
type Dispatcher struct {
	// Workers bounds the pool. Defaults to runtime.NumCPU().
	Workers int
	// ChunkSize is the chunk length. Defaults to DefaultChunkSize.
	ChunkSize int
	// OnProgress, when set, is called after every completed chunk.
	OnProgress ProgressFunc
}

// Run transforms records and returns the reassembled output. The first
// transform error aborts all workers and is returned with the offending
// record attached; partially completed chunks are discarded.
func (d *Dispatcher) Run(ctx context.Context, transformer RecordTransformer, records []*manifest.Record) ([]*manifest.Record, error) {
	if transformer == nil {
		return nil, ErrStageMustBeSet
	}

	chunkSize := d.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	workers := d.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	totalChunks := (len(records) + chunkSize - 1) / chunkSize
	results := make([][]*manifest.Record, totalChunks)

	var (
		mu        sync.Mutex
		completed int
	)

	grp, gCtx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)
	for chunkIdx := 0; chunkIdx < totalChunks; chunkIdx++ {
		chunkIdx := chunkIdx
		lo := chunkIdx * chunkSize
		hi := lo + chunkSize
		if hi > len(records) {
			hi = len(records)
		}
		grp.Go(func() error {
			out, err := transformChunk(gCtx, transformer, records[lo:hi], lo)
			if err != nil {
				return err
			}
			results[chunkIdx] = out

			mu.Lock()
			completed++
			done := completed
			mu.Unlock()
			if d.OnProgress != nil {
				d.OnProgress(done, totalChunks)
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	var output []*manifest.Record
	for _, chunk := range results {
		output = append(output, chunk...)
	}
	return output, nil
}

// transformChunk applies the transform to every record of one chunk, in
// chunk order. offset is the chunk's position in the full manifest, used to
// report the failing record's absolute index.
func transformChunk(ctx context.Context, transformer RecordTransformer, records []*manifest.Record, offset int) ([]*manifest.Record, error) {
	var out []*manifest.Record
	for i, rec := range records {
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "dispatcher aborted")
		default:
		}
		derived, err := transformer.Transform(ctx, rec)
		if err != nil {
			return nil, &TransformFailure{
				RecordIndex: offset + i,
				Record:      rec.Snippet(),
				Err:         err,
			}
		}
		out = append(out, derived...)
	}
	return out, nil
}
