// Package vocab builds the corpus vocabulary: every distinct normalized token
// gets a dense integer id. Token frequencies are counted per chunk in
// parallel and merged; ids follow the lexicographic order of the tokens so
// that assignment never depends on which chunk finished first.
package vocab

import (
	"context"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/forkjoin"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/textnorm"
)

// Stage is the fork-join stage name used for vocabulary counting.
const Stage = "vocabulary"

// Vocabulary maps tokens to dense ids in [0, Len()). terms is the arena
// indexed by id and ids is the reverse index. It is immutable after Build.
type Vocabulary struct {
	terms []string
	freqs []int64
	ids   map[string]int
}

// Build counts token frequencies over texts and assigns ids. texts is the
// concatenated text stream of the corpus (all titles followed by all
// abstracts). Empty strings are treated as absent text.
func Build(ctx context.Context, texts []string, opts forkjoin.Options) (*Vocabulary, error) {
	opts.Stage = Stage
	total, err := forkjoin.Run(ctx, texts, opts, countChunk, mergeCounts, make(map[string]int64))
	if err != nil {
		return nil, err
	}
	return fromCounts(total), nil
}

// FromTerms builds a vocabulary over the given tokens, each with frequency
// one per occurrence in terms.
func FromTerms(terms []string) *Vocabulary {
	counts := make(map[string]int64, len(terms))
	for _, t := range terms {
		counts[t]++
	}
	return fromCounts(counts)
}

func countChunk(ctx context.Context, chunk forkjoin.Chunk[string]) (map[string]int64, error) {
	freq := make(map[string]int64)
	for i, text := range chunk.Items {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for _, token := range textnorm.Normalize(text) {
			freq[token]++
		}
	}
	return freq, nil
}

func mergeCounts(total map[string]int64, _ forkjoin.Chunk[string], part map[string]int64) map[string]int64 {
	for token, n := range part {
		total[token] += n
	}
	return total
}

func fromCounts(counts map[string]int64) *Vocabulary {
	terms := make([]string, 0, len(counts))
	for t := range counts {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	v := &Vocabulary{
		terms: terms,
		freqs: make([]int64, len(terms)),
		ids:   make(map[string]int, len(terms)),
	}
	for id, t := range terms {
		v.ids[t] = id
		v.freqs[id] = counts[t]
	}
	return v
}

// Len returns the number of distinct tokens.
func (v *Vocabulary) Len() int {
	return len(v.terms)
}

// ID returns the id of token and whether it is in the vocabulary.
func (v *Vocabulary) ID(token string) (int, bool) {
	id, ok := v.ids[token]
	return id, ok
}

// Term returns the token with the given id.
func (v *Vocabulary) Term(id int) string {
	return v.terms[id]
}

// Frequency returns the corpus occurrence count of the token with the given id.
func (v *Vocabulary) Frequency(id int) int64 {
	return v.freqs[id]
}

// Terms returns the tokens in id order. The slice must not be modified.
func (v *Vocabulary) Terms() []string {
	return v.terms
}
