package dtm

import (
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/forkjoin"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/records"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/textnorm"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/vocab"
)

func scenario() []records.Document {
	return []records.Document{
		records.NewDocument("1", "Teh pandemic spred", "", 1),
		records.NewDocument("2", "The pandemic spread", "SARS-CoV-2 study", 2),
		records.NewDocument("3", "", "", 0),
		records.NewDocument("4", "Spread, spread; SPREAD.", "the spread", 1),
	}
}

func buildVocab(t *testing.T, docs []records.Document) *vocab.Vocabulary {
	t.Helper()
	v, err := vocab.Build(context.Background(), records.TextStream(docs), forkjoin.Options{Parallelism: 2})
	require.NoError(t, err)
	return v
}

func TestBuildCountsOccurrences(t *testing.T) {
	docs := scenario()
	v := buildVocab(t, docs)

	m, err := Build(context.Background(), docs, v, forkjoin.Options{Parallelism: 3})
	require.NoError(t, err)

	r, c := m.Dims()
	assert.Equal(t, len(docs), r)
	assert.Equal(t, v.Len(), c)

	spread, _ := v.ID("spread")
	the, _ := v.ID("the")
	teh, _ := v.ID("teh")
	assert.Equal(t, 4.0, m.At(3, spread), "three title occurrences and one abstract occurrence")
	assert.Equal(t, 1.0, m.At(3, the))
	assert.Equal(t, 1.0, m.At(0, teh))
	assert.Equal(t, 0.0, m.At(1, teh))

	cols, _ := m.Row(2)
	assert.Empty(t, cols, "empty document contributes no entries")
}

func TestBuildRowInvariant(t *testing.T) {
	docs := scenario()
	v := buildVocab(t, docs)
	m, err := Build(context.Background(), docs, v, forkjoin.Options{Parallelism: 2})
	require.NoError(t, err)

	for d, doc := range docs {
		want := make(map[int]int32)
		for _, tok := range append(textnorm.Field(doc.Title), textnorm.Field(doc.Abstract)...) {
			id, ok := v.ID(tok)
			require.True(t, ok)
			want[id]++
		}
		cols, vals := m.Row(d)
		got := make(map[int]int32, len(cols))
		for k, col := range cols {
			got[col] = vals[k]
		}
		assert.Equal(t, want, got, "row %d", d)
	}
}

func TestBuildSkipsUnknownTokens(t *testing.T) {
	docs := scenario()
	v := vocab.FromTerms([]string{"pandemic", "study"})

	m, err := Build(context.Background(), docs, v, forkjoin.Options{Parallelism: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, m.NNZ())
}

func TestBuildIndependentOfChunking(t *testing.T) {
	docs := make([]records.Document, 0, 300)
	for i := range 300 {
		docs = append(docs, records.NewDocument(
			fmt.Sprint(i),
			fmt.Sprintf("title%d shared word%d", i%13, i%7),
			fmt.Sprintf("abstract %d word%d word%d", i%5, i%7, i%3),
			i%3,
		))
	}
	v := buildVocab(t, docs)

	ref, err := Build(context.Background(), docs, v, forkjoin.Options{Parallelism: 1})
	require.NoError(t, err)

	for _, p := range []int{2, 5, 16, 300} {
		m, err := Build(context.Background(), docs, v, forkjoin.Options{Parallelism: p, MaxChunkSize: 17})
		require.NoError(t, err)
		assert.True(t, mat.Equal(ref, m), "parallelism %d", p)
	}
}

func TestBuildRowsFollowInputOrderWhenEarlyChunksFinishLast(t *testing.T) {
	docs := make([]records.Document, 0, 8)
	for i := range 8 {
		docs = append(docs, records.NewDocument(fmt.Sprint(i), fmt.Sprintf("token%d", i), "", 0))
	}
	v := buildVocab(t, docs)

	var finished []int
	done := make(chan int, 8)
	opts := forkjoin.Options{
		Parallelism: 8,
		OnChunkDone: func(_ string, chunk, _ int, _ time.Duration, _ error) {
			time.Sleep(time.Duration(8-chunk) * 3 * time.Millisecond)
			done <- chunk
		},
	}
	m, err := Build(context.Background(), docs, v, opts)
	require.NoError(t, err)
	close(done)
	for c := range done {
		finished = append(finished, c)
	}
	assert.False(t, slices.IsSorted(finished), "chunks should complete out of order: %v", finished)

	for i := range docs {
		id, ok := v.ID(fmt.Sprintf("token%d", i))
		require.True(t, ok)
		assert.Equal(t, 1.0, m.At(i, id), "document %d must stay on row %d", i, i)
	}
}

func TestMergeTriplesUsesChunkOffsetNotArrivalOrder(t *testing.T) {
	docs := make([]records.Document, 10)
	chunks := forkjoin.Split(docs, 3, 0)
	require.Len(t, chunks, 3)

	// Every chunk reports a triple on its local row 0, column = chunk index.
	var acc []Triple
	for i := len(chunks) - 1; i >= 0; i-- {
		acc = mergeTriples(acc, chunks[i], []Triple{{Row: 0, Col: chunks[i].Index, Value: 1}})
	}
	m := FromTriples(len(docs), 3, acc)

	assert.Equal(t, 1.0, m.At(0, 0))
	assert.Equal(t, 1.0, m.At(4, 1))
	assert.Equal(t, 1.0, m.At(7, 2))
}

func TestBuildCancelled(t *testing.T) {
	docs := scenario()
	v := buildVocab(t, docs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, docs, v, forkjoin.Options{Parallelism: 2})
	assert.ErrorIs(t, err, context.Canceled)
}
