// Package forkjoin implements the partition / parallel-map / ordered-reduce
// primitive shared by every pipeline stage. Input is split into contiguous
// chunks whose layout is fixed before any work is dispatched, chunks are
// processed concurrently with no shared mutable state, and results are
// merged strictly in chunk order once every chunk has finished.
package forkjoin

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/errors"
)

// Options controls how a stage is partitioned and scheduled.
type Options struct {
	// Stage names the stage in errors and observer callbacks.
	Stage string
	// Parallelism is both the target chunk count and the worker limit.
	Parallelism int
	// MaxChunkSize bounds the number of items per chunk. When the input is
	// large enough that Parallelism chunks would exceed it, more chunks are
	// created while concurrency stays at Parallelism. Zero means unbounded.
	MaxChunkSize int
	// OnChunkDone, when set, is called from the worker goroutine after each
	// chunk finishes.
	OnChunkDone func(stage string, chunk int, items int, elapsed time.Duration, err error)
}

// Chunk is one contiguous slice of the stage input.
type Chunk[T any] struct {
	Index  int
	Offset int
	Items  []T
}

// Layout returns the chunk boundaries for n items as [start, end) pairs.
// Sizes differ by at most one, larger chunks first.
func Layout(n, parallelism, maxChunkSize int) [][2]int {
	if n <= 0 {
		return nil
	}
	if parallelism < 1 {
		parallelism = 1
	}
	k := parallelism
	if maxChunkSize > 0 {
		if need := (n + maxChunkSize - 1) / maxChunkSize; need > k {
			k = need
		}
	}
	if k > n {
		k = n
	}
	base, extra := n/k, n%k
	spans := make([][2]int, k)
	start := 0
	for i := range spans {
		size := base
		if i < extra {
			size++
		}
		spans[i] = [2]int{start, start + size}
		start += size
	}
	return spans
}

// Split partitions items according to Layout. Offsets are the global index
// of each chunk's first item.
func Split[T any](items []T, parallelism, maxChunkSize int) []Chunk[T] {
	spans := Layout(len(items), parallelism, maxChunkSize)
	chunks := make([]Chunk[T], len(spans))
	for i, s := range spans {
		chunks[i] = Chunk[T]{Index: i, Offset: s[0], Items: items[s[0]:s[1]]}
	}
	return chunks
}

// Run splits items into chunks, applies work to every chunk with at most
// opts.Parallelism chunks in flight, and folds the per-chunk results into acc
// with merge in chunk order. The first chunk error cancels the remaining
// chunks and is returned; no partial result is produced.
func Run[T, R, A any](
	ctx context.Context,
	items []T,
	opts Options,
	work func(ctx context.Context, chunk Chunk[T]) (R, error),
	merge func(acc A, chunk Chunk[T], result R) A,
	acc A,
) (A, error) {
	chunks := Split(items, opts.Parallelism, opts.MaxChunkSize)
	results := make([]R, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.Parallelism))
	for _, chunk := range chunks {
		g.Go(func() (err error) {
			start := time.Now()
			defer func() {
				if r := recover(); r != nil {
					err = &apperrors.ChunkError{Stage: opts.Stage, Chunk: chunk.Index, Err: fmt.Errorf("panic: %v", r)}
				}
				if opts.OnChunkDone != nil {
					opts.OnChunkDone(opts.Stage, chunk.Index, len(chunk.Items), time.Since(start), err)
				}
			}()
			if err := gctx.Err(); err != nil {
				return &apperrors.ChunkError{Stage: opts.Stage, Chunk: chunk.Index, Err: err}
			}
			r, err := work(gctx, chunk)
			if err != nil {
				return &apperrors.ChunkError{Stage: opts.Stage, Chunk: chunk.Index, Err: err}
			}
			results[chunk.Index] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return acc, err
	}

	for i, chunk := range chunks {
		acc = merge(acc, chunk, results[i])
	}
	return acc, nil
}

// Map is Run with a merge that collects per-chunk results in chunk order.
func Map[T, R any](ctx context.Context, items []T, opts Options, work func(ctx context.Context, chunk Chunk[T]) (R, error)) ([]R, error) {
	return Run(ctx, items, opts, work, func(acc []R, _ Chunk[T], r R) []R {
		return append(acc, r)
	}, make([]R, 0, len(Layout(len(items), opts.Parallelism, opts.MaxChunkSize))))
}
