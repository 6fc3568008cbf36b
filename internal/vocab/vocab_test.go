package vocab

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/forkjoin"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/textnorm"
)

var corpus = []string{
	"Teh pandemic spred",
	"The pandemic spread",
	"",
	"SARS-CoV-2 study",
	"The (pandemic), the study.",
}

func TestBuildAssignsSortedIDs(t *testing.T) {
	v, err := Build(context.Background(), corpus, forkjoin.Options{Parallelism: 2})
	require.NoError(t, err)

	want := []string{"pandemic", "sars-cov-2", "spread", "spred", "study", "teh", "the"}
	assert.Equal(t, want, v.Terms())
	assert.Equal(t, len(want), v.Len())
	for id, term := range want {
		got, ok := v.ID(term)
		require.True(t, ok, term)
		assert.Equal(t, id, got)
		assert.Equal(t, term, v.Term(id))
	}

	pandemic, _ := v.ID("pandemic")
	assert.Equal(t, int64(3), v.Frequency(pandemic))
	the, _ := v.ID("the")
	assert.Equal(t, int64(3), v.Frequency(the))

	_, ok := v.ID("missing")
	assert.False(t, ok)
}

func TestBuildEveryTokenHasExactlyOneID(t *testing.T) {
	v, err := Build(context.Background(), corpus, forkjoin.Options{Parallelism: 3})
	require.NoError(t, err)

	seen := make(map[int]string)
	for _, text := range corpus {
		for _, token := range textnorm.Normalize(text) {
			id, ok := v.ID(token)
			require.True(t, ok, token)
			if prev, dup := seen[id]; dup {
				assert.Equal(t, prev, token)
			}
			seen[id] = token
		}
	}
	assert.Len(t, seen, v.Len())
}

func TestBuildIndependentOfChunking(t *testing.T) {
	texts := make([]string, 0, 500)
	for i := range 500 {
		texts = append(texts, fmt.Sprintf("word%d common Term%d, shared.", i%37, i%11))
	}

	ref, err := Build(context.Background(), texts, forkjoin.Options{Parallelism: 1})
	require.NoError(t, err)

	for _, opts := range []forkjoin.Options{
		{Parallelism: 2},
		{Parallelism: 8},
		{Parallelism: 3, MaxChunkSize: 7},
		{Parallelism: 64},
	} {
		v, err := Build(context.Background(), texts, opts)
		require.NoError(t, err)
		assert.Equal(t, ref.Terms(), v.Terms())
		for id := range ref.Len() {
			assert.Equal(t, ref.Frequency(id), v.Frequency(id))
		}
	}
}

func TestBuildEmptyCorpus(t *testing.T) {
	v, err := Build(context.Background(), nil, forkjoin.Options{Parallelism: 4})
	require.NoError(t, err)
	assert.Zero(t, v.Len())
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, corpus, forkjoin.Options{Parallelism: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFromTerms(t *testing.T) {
	v := FromTerms([]string{"b", "a", "b"})
	assert.Equal(t, []string{"a", "b"}, v.Terms())
	id, _ := v.ID("b")
	assert.Equal(t, int64(2), v.Frequency(id))
}
