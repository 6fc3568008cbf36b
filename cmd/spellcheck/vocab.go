package main

import (
	"context"
	"encoding/csv"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/forkjoin"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/records"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/spell"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/vocab"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/postgres"
)

func newVocabCmd(a *app) *cobra.Command {
	var errorsOnly bool
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Dump the corpus vocabulary with frequencies and verdicts as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c, err := a.classifier()
			if err != nil {
				return err
			}
			var db *postgres.Client
			if a.cfg.Input.Source == config.SourcePostgres {
				if db, err = a.postgres(); err != nil {
					return err
				}
				defer db.Close()
			}
			docs, err := a.documents(ctx, db)
			if err != nil {
				return err
			}

			opts := forkjoin.Options{
				Parallelism:  a.cfg.Pipeline.Parallelism,
				MaxChunkSize: a.cfg.Pipeline.MaxChunkSize,
			}
			v, err := vocab.Build(ctx, records.TextStream(docs), opts)
			if err != nil {
				return err
			}
			verdicts, err := classifyTerms(ctx, c, v.Terms(), opts)
			if err != nil {
				return err
			}

			cw := csv.NewWriter(cmd.OutOrStdout())
			cw.Write([]string{"term", "frequency", "error", "reason", "correction"})
			for id, verdict := range verdicts {
				if errorsOnly && !verdict.Error {
					continue
				}
				cw.Write([]string{
					verdict.Token,
					strconv.FormatInt(v.Frequency(id), 10),
					strconv.FormatBool(verdict.Error),
					string(verdict.Reason),
					verdict.Correction,
				})
			}
			cw.Flush()
			return cw.Error()
		},
	}
	cmd.Flags().BoolVar(&errorsOnly, "errors-only", false, "only list terms classified as errors")
	return cmd
}

// classifyTerms returns the full verdict of every term, indexed like terms.
func classifyTerms(ctx context.Context, c *spell.Classifier, terms []string, opts forkjoin.Options) ([]spell.Verdict, error) {
	opts.Stage = spell.Stage
	parts, err := forkjoin.Map(ctx, terms, opts, func(ctx context.Context, chunk forkjoin.Chunk[string]) ([]spell.Verdict, error) {
		out := make([]spell.Verdict, len(chunk.Items))
		for i, t := range chunk.Items {
			out[i] = c.Classify(t)
		}
		return out, ctx.Err()
	})
	if err != nil {
		return nil, err
	}
	verdicts := make([]spell.Verdict, 0, len(terms))
	for _, p := range parts {
		verdicts = append(verdicts, p...)
	}
	return verdicts, nil
}
