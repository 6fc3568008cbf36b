package sink

import (
	"context"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/aggregate"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/records"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/resilience"
)

// RunSaver persists a run. *store.Store implements it.
type RunSaver interface {
	SaveRun(ctx context.Context, runID string, summary aggregate.Summary, results []records.Result) error
}

// Postgres saves the run in one transaction, retried as a whole.
type Postgres struct {
	store  RunSaver
	policy resilience.Policy
}

func NewPostgres(store RunSaver, policy resilience.Policy) *Postgres {
	return &Postgres{store: store, policy: policy}
}

func (p *Postgres) Name() string { return "postgres" }

func (p *Postgres) Write(ctx context.Context, b Batch) error {
	return resilience.Retry(ctx, "postgres save run", p.policy, func(ctx context.Context) error {
		return p.store.SaveRun(ctx, b.RunID, b.Summary, b.Results)
	})
}

// Close is a no-op; the database handle belongs to the caller.
func (p *Postgres) Close() error { return nil }
