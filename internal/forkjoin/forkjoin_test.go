package forkjoin

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/errors"
)

func TestLayout(t *testing.T) {
	tests := []struct {
		name        string
		n, p, max   int
		wantSizes   []int
		wantOffsets []int
	}{
		{"empty", 0, 4, 0, nil, nil},
		{"even", 8, 4, 0, []int{2, 2, 2, 2}, []int{0, 2, 4, 6}},
		{"uneven puts extra first", 10, 4, 0, []int{3, 3, 2, 2}, []int{0, 3, 6, 8}},
		{"fewer items than workers", 3, 8, 0, []int{1, 1, 1}, []int{0, 1, 2}},
		{"max chunk size adds chunks", 10, 2, 3, []int{3, 3, 2, 2}, []int{0, 3, 6, 8}},
		{"max chunk size already satisfied", 10, 5, 3, []int{2, 2, 2, 2, 2}, []int{0, 2, 4, 6, 8}},
		{"non-positive parallelism", 5, 0, 0, []int{5}, []int{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := Layout(tt.n, tt.p, tt.max)
			var sizes, offsets []int
			for _, s := range spans {
				sizes = append(sizes, s[1]-s[0])
				offsets = append(offsets, s[0])
			}
			assert.Equal(t, tt.wantSizes, sizes)
			assert.Equal(t, tt.wantOffsets, offsets)
		})
	}
}

func TestSplitCoversInput(t *testing.T) {
	items := make([]int, 103)
	for i := range items {
		items[i] = i
	}
	chunks := Split(items, 7, 10)
	next := 0
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, next, c.Offset)
		for j, v := range c.Items {
			assert.Equal(t, c.Offset+j, v)
		}
		next += len(c.Items)
	}
	assert.Equal(t, len(items), next)
}

func TestRunMergesInChunkOrderRegardlessOfCompletion(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	opts := Options{Stage: "test", Parallelism: len(items)}

	var mu sync.Mutex
	var completed []int
	got, err := Run(context.Background(), items, opts,
		func(ctx context.Context, c Chunk[string]) (string, error) {
			// Later chunks finish first.
			time.Sleep(time.Duration(len(items)-c.Index) * 5 * time.Millisecond)
			mu.Lock()
			completed = append(completed, c.Index)
			mu.Unlock()
			return c.Items[0], nil
		},
		func(acc string, _ Chunk[string], r string) string { return acc + r },
		"",
	)
	require.NoError(t, err)
	assert.Equal(t, "abcdefgh", got)
	assert.NotEqual(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, completed)
}

func TestRunRespectsParallelism(t *testing.T) {
	items := make([]int, 40)
	var inFlight, peak atomic.Int32
	_, err := Map(context.Background(), items, Options{Parallelism: 3, MaxChunkSize: 2},
		func(ctx context.Context, c Chunk[int]) (int, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			inFlight.Add(-1)
			return len(c.Items), nil
		})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestRunFailsWholeStage(t *testing.T) {
	items := make([]int, 10)
	boom := errors.New("boom")
	merged := false
	_, err := Run(context.Background(), items, Options{Stage: "vocabulary", Parallelism: 5},
		func(ctx context.Context, c Chunk[int]) (int, error) {
			if c.Index == 2 {
				return 0, boom
			}
			return len(c.Items), nil
		},
		func(acc int, _ Chunk[int], r int) int { merged = true; return acc + r },
		0,
	)
	require.Error(t, err)
	assert.False(t, merged, "no partial merge after a chunk failure")
	assert.ErrorIs(t, err, apperrors.ErrChunkFailed)
	assert.ErrorIs(t, err, boom)

	var chunkErr *apperrors.ChunkError
	require.ErrorAs(t, err, &chunkErr)
	assert.Equal(t, "vocabulary", chunkErr.Stage)
	assert.Equal(t, 2, chunkErr.Chunk)
}

func TestRunRecoversPanics(t *testing.T) {
	_, err := Map(context.Background(), []int{1, 2, 3}, Options{Stage: "matrix", Parallelism: 3},
		func(ctx context.Context, c Chunk[int]) (int, error) {
			if c.Index == 1 {
				panic("index out of range")
			}
			return 0, nil
		})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrChunkFailed)
	assert.Contains(t, err.Error(), "index out of range")
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Map(ctx, []int{1, 2}, Options{Parallelism: 2},
		func(ctx context.Context, c Chunk[int]) (int, error) { return 1, nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunEmptyInput(t *testing.T) {
	calls := 0
	got, err := Run(context.Background(), []int(nil), Options{Parallelism: 4},
		func(ctx context.Context, c Chunk[int]) (int, error) { calls++; return 0, nil },
		func(acc int, _ Chunk[int], r int) int { return acc + r },
		42,
	)
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Zero(t, calls)
}

func TestOnChunkDone(t *testing.T) {
	var mu sync.Mutex
	seen := map[int]int{}
	opts := Options{
		Stage:       "classify",
		Parallelism: 2,
		OnChunkDone: func(stage string, chunk, items int, _ time.Duration, err error) {
			assert.Equal(t, "classify", stage)
			assert.NoError(t, err)
			mu.Lock()
			seen[chunk] = items
			mu.Unlock()
		},
	}
	_, err := Map(context.Background(), []int{1, 2, 3, 4, 5}, opts,
		func(ctx context.Context, c Chunk[int]) (int, error) { return 0, nil })
	require.NoError(t, err)
	assert.Equal(t, map[int]int{0: 3, 1: 2}, seen)
}
