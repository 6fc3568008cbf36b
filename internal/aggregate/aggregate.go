// Package aggregate turns the document-term matrix and the error vector into
// per-document error counts and a run summary.
package aggregate

import (
	"fmt"
	"slices"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/dtm"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/records"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/vocab"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/errors"
)

// ErrorCounts returns M·E: for every document, the number of token
// occurrences whose vocabulary entry is flagged in e. It panics if e does
// not have one entry per matrix column.
func ErrorCounts(m *dtm.Matrix, e []uint8) []int {
	return m.MulVec(e)
}

// Attach pairs every document with its error count, preserving order. It
// panics if the lengths differ.
func Attach(docs []records.Document, counts []int) []records.Result {
	if len(docs) != len(counts) {
		panic(fmt.Errorf("%w: %d documents, %d error counts",
			apperrors.ErrDimensionMismatch, len(docs), len(counts)))
	}
	out := make([]records.Result, len(docs))
	for i, d := range docs {
		out[i] = records.Result{Document: d, TotalErrors: counts[i]}
	}
	return out
}

// Summary describes the error distribution of one run.
type Summary struct {
	TotalDocuments     int         `json:"total_documents"`
	DocumentsWithError int         `json:"documents_with_errors"`
	ErrorShare         float64     `json:"error_share"`
	TotalErrors        int64       `json:"total_errors"`
	MeanErrors         float64     `json:"mean_errors"`
	MedianErrors       float64     `json:"median_errors"`
	MaxErrors          int         `json:"max_errors"`
	VocabularySize     int         `json:"vocabulary_size"`
	ErrorTokens        int         `json:"error_tokens"`
	Buckets            []Bucket    `json:"buckets"`
	ByRelevance        []Relevance `json:"by_relevance"`
	TopErrorWords      []WordCount `json:"top_error_words"`
}

// Bucket counts documents whose error count lies in [Min, Max]. Max < 0
// means unbounded.
type Bucket struct {
	Label     string `json:"label"`
	Min       int    `json:"min"`
	Max       int    `json:"max"`
	Documents int    `json:"documents"`
}

// Relevance aggregates error counts of documents sharing a relevance label.
type Relevance struct {
	Label      int     `json:"label"`
	Documents  int     `json:"documents"`
	MeanErrors float64 `json:"mean_errors"`
}

// WordCount is an error token and its corpus occurrence count.
type WordCount struct {
	Word  string `json:"word"`
	Count int64  `json:"count"`
}

func buckets() []Bucket {
	return []Bucket{
		{Label: "0", Min: 0, Max: 0},
		{Label: "1-2", Min: 1, Max: 2},
		{Label: "3-5", Min: 3, Max: 5},
		{Label: ">5", Min: 6, Max: -1},
	}
}

// Summarize computes the run summary. topN bounds TopErrorWords; error words
// are ranked by their column sum in m, ties broken alphabetically.
func Summarize(results []records.Result, v *vocab.Vocabulary, e []uint8, m *dtm.Matrix, topN int) Summary {
	s := Summary{
		TotalDocuments: len(results),
		VocabularySize: v.Len(),
		Buckets:        buckets(),
	}

	counts := make([]int, len(results))
	byRel := make(map[int]*Relevance)
	relTotals := make(map[int]int64)
	for i, r := range results {
		n := r.TotalErrors
		counts[i] = n
		s.TotalErrors += int64(n)
		if n > 0 {
			s.DocumentsWithError++
		}
		s.MaxErrors = max(s.MaxErrors, n)
		for b := range s.Buckets {
			if n >= s.Buckets[b].Min && (s.Buckets[b].Max < 0 || n <= s.Buckets[b].Max) {
				s.Buckets[b].Documents++
				break
			}
		}
		rel, ok := byRel[r.Relevance]
		if !ok {
			rel = &Relevance{Label: r.Relevance}
			byRel[r.Relevance] = rel
		}
		rel.Documents++
		relTotals[r.Relevance] += int64(n)
	}

	if len(results) > 0 {
		s.ErrorShare = float64(s.DocumentsWithError) / float64(len(results))
		s.MeanErrors = float64(s.TotalErrors) / float64(len(results))
		s.MedianErrors = median(counts)
	}

	for label, rel := range byRel {
		rel.MeanErrors = float64(relTotals[label]) / float64(rel.Documents)
		s.ByRelevance = append(s.ByRelevance, *rel)
	}
	sort.Slice(s.ByRelevance, func(i, j int) bool { return s.ByRelevance[i].Label < s.ByRelevance[j].Label })

	for _, flag := range e {
		if flag != 0 {
			s.ErrorTokens++
		}
	}
	s.TopErrorWords = topErrorWords(v, e, m, topN)
	return s
}

func median(counts []int) float64 {
	sorted := slices.Clone(counts)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}

func topErrorWords(v *vocab.Vocabulary, e []uint8, m *dtm.Matrix, n int) []WordCount {
	if n <= 0 {
		return nil
	}
	sums := m.ColumnSums()
	var words []WordCount
	for id, flag := range e {
		if flag == 0 || sums[id] == 0 {
			continue
		}
		words = append(words, WordCount{Word: v.Term(id), Count: sums[id]})
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return words[i].Word < words[j].Word
	})
	if len(words) > n {
		words = words[:n]
	}
	return words
}
