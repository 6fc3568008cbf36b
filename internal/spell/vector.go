package spell

import (
	"context"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/forkjoin"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/logger"
)

// Stage is the fork-join stage name used for classification.
const Stage = "classification"

// VerdictStore persists error verdicts across runs, keyed by classifier
// fingerprint and token. Implementations may be lossy.
type VerdictStore interface {
	Lookup(ctx context.Context, fingerprint string, tokens []string) (map[string]bool, error)
	Store(ctx context.Context, fingerprint string, verdicts map[string]bool) error
}

// Stats summarizes one ErrorVector call.
type Stats struct {
	Tokens     int            `json:"tokens"`
	Classified int            `json:"classified"`
	Cached     int            `json:"cached"`
	Errors     int            `json:"errors"`
	ByReason   map[Reason]int `json:"by_reason"`
}

// ErrorVector classifies every term once and returns a vector indexed like
// terms with 1 for likely errors. terms must be distinct. When store is non
// nil, verdicts it already holds are reused and fresh ones are written back;
// store failures are logged and otherwise ignored. A failed lookup still
// contributes the verdicts it returned.
func (c *Classifier) ErrorVector(ctx context.Context, terms []string, opts forkjoin.Options, store VerdictStore) ([]uint8, Stats, error) {
	log := logger.FromContext(ctx)
	vec := make([]uint8, len(terms))
	stats := Stats{Tokens: len(terms), ByReason: make(map[Reason]int)}

	pending := make([]int, 0, len(terms))
	if store != nil && len(terms) > 0 {
		cached, err := store.Lookup(ctx, c.fingerprint, terms)
		if err != nil {
			log.Warn("verdict cache lookup failed", "error", err, "recovered", len(cached))
		}
		for i, t := range terms {
			isErr, ok := cached[t]
			if !ok {
				pending = append(pending, i)
				continue
			}
			stats.Cached++
			if isErr {
				vec[i] = 1
				stats.Errors++
			}
		}
	} else {
		for i := range terms {
			pending = append(pending, i)
		}
	}

	opts.Stage = Stage
	verdicts, err := forkjoin.Run(ctx, pending, opts,
		func(ctx context.Context, chunk forkjoin.Chunk[int]) ([]Verdict, error) {
			out := make([]Verdict, len(chunk.Items))
			for k, idx := range chunk.Items {
				if k%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return nil, err
					}
				}
				out[k] = c.Classify(terms[idx])
			}
			return out, nil
		},
		func(acc []Verdict, _ forkjoin.Chunk[int], part []Verdict) []Verdict {
			return append(acc, part...)
		},
		make([]Verdict, 0, len(pending)),
	)
	if err != nil {
		return nil, Stats{}, err
	}

	fresh := make(map[string]bool, len(verdicts))
	for k, v := range verdicts {
		idx := pending[k]
		stats.Classified++
		stats.ByReason[v.Reason]++
		if v.Error {
			vec[idx] = 1
			stats.Errors++
		}
		fresh[terms[idx]] = v.Error
	}

	if store != nil && len(fresh) > 0 {
		if err := store.Store(ctx, c.fingerprint, fresh); err != nil {
			log.Warn("verdict cache write failed", "error", err, "verdicts", len(fresh))
		}
	}
	return vec, stats, nil
}
