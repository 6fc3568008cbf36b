// Package dtm builds the sparse document-term matrix. Documents are split
// into chunks that emit (row, token, count) triples with chunk-local row
// numbers; rows are shifted to global positions using each chunk's offset in
// the fixed chunk layout, so the result never depends on completion order.
package dtm

import (
	"context"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/forkjoin"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/records"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/textnorm"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/vocab"
)

// Stage is the fork-join stage name used for matrix assembly.
const Stage = "matrix"

// Build returns the len(docs) × v.Len() occurrence matrix of the documents'
// combined title and abstract tokens. Tokens missing from v are skipped.
func Build(ctx context.Context, docs []records.Document, v *vocab.Vocabulary, opts forkjoin.Options) (*Matrix, error) {
	opts.Stage = Stage
	triples, err := forkjoin.Run(ctx, docs, opts,
		func(ctx context.Context, chunk forkjoin.Chunk[records.Document]) ([]Triple, error) {
			return chunkTriples(ctx, chunk.Items, v)
		},
		mergeTriples,
		nil,
	)
	if err != nil {
		return nil, err
	}
	return FromTriples(len(docs), v.Len(), triples), nil
}

// chunkTriples emits one triple per distinct (document, token) pair of the
// chunk, with rows numbered from zero within the chunk.
func chunkTriples(ctx context.Context, docs []records.Document, v *vocab.Vocabulary) ([]Triple, error) {
	var triples []Triple
	counts := make(map[int]int32)
	add := func(token string) {
		if id, ok := v.ID(token); ok {
			counts[id]++
		}
	}
	for row, doc := range docs {
		if row%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		clear(counts)
		textnorm.Each(doc.Title, add)
		textnorm.Each(doc.Abstract, add)
		if len(counts) == 0 {
			continue
		}
		first := len(triples)
		for id, n := range counts {
			triples = append(triples, Triple{Row: row, Col: id, Value: n})
		}
		slices.SortFunc(triples[first:], func(a, b Triple) int { return a.Col - b.Col })
	}
	return triples, nil
}

// mergeTriples shifts a chunk's local rows by the chunk offset and appends
// them to the accumulated triples.
func mergeTriples(acc []Triple, chunk forkjoin.Chunk[records.Document], part []Triple) []Triple {
	for _, t := range part {
		t.Row += chunk.Offset
		acc = append(acc, t)
	}
	return acc
}
