package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/aggregate"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/sink"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/spell"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/metrics"
)

type runFlags struct {
	parallelism  int
	maxChunkSize int
	output       string
	sinks        []string
	noCache      bool
	jsonSummary  bool
}

func newRunCmd(a *app) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load documents, count spelling errors and write the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f.apply(cmd, a.cfg)
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return a.run(cmd.Context(), cmd.OutOrStdout(), !f.noCache, f.jsonSummary)
		},
	}
	cmd.Flags().IntVarP(&f.parallelism, "parallelism", "p", 0, "worker count (default from config)")
	cmd.Flags().IntVar(&f.maxChunkSize, "max-chunk-size", 0, "upper bound on items per chunk")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "CSV output path")
	cmd.Flags().StringSliceVar(&f.sinks, "sinks", nil, "sinks to write (csv, postgres, kafka)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "ignore the Redis verdict cache")
	cmd.Flags().BoolVar(&f.jsonSummary, "json", false, "print the run summary as JSON")
	return cmd
}

func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("parallelism") {
		cfg.Pipeline.Parallelism = f.parallelism
	}
	if cmd.Flags().Changed("max-chunk-size") {
		cfg.Pipeline.MaxChunkSize = f.maxChunkSize
	}
	if f.output != "" {
		cfg.Output.CSVPath = f.output
	}
	if len(f.sinks) > 0 {
		cfg.Output.Sinks = f.sinks
	}
}

func (a *app) run(ctx context.Context, w io.Writer, useCache, jsonSummary bool) error {
	c, err := a.classifier()
	if err != nil {
		return err
	}
	d, err := a.open(useCache)
	if err != nil {
		return err
	}
	defer d.close()

	var m *metrics.Metrics
	if a.cfg.Metrics.Enabled {
		m = metrics.New(nil)
		shutdown := metrics.StartServer(a.cfg.Metrics.Port, map[string]http.Handler{
			"/health/live":  d.checker.LiveHandler(),
			"/health/ready": d.checker.ReadyHandler(),
		})
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(sctx)
		}()
	}

	report, err := d.checker.Preflight(ctx)
	if m != nil {
		for name, comp := range report.Components {
			up := 0.0
			if comp.Status == health.StatusUp {
				up = 1
			}
			m.DependencyUp.WithLabelValues(name).Set(up)
		}
	}
	if err != nil {
		return err
	}

	docs, err := a.documents(ctx, d.db)
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		Parallelism:   a.cfg.Pipeline.Parallelism,
		MaxChunkSize:  a.cfg.Pipeline.MaxChunkSize,
		TopErrorWords: a.cfg.Pipeline.TopErrorWords,
		Metrics:       m,
	}
	if d.cache != nil {
		opts.Verdicts = d.cache
	}
	out, err := pipeline.New(c, opts).Run(ctx, docs)
	if err != nil {
		return err
	}

	var observe sink.Observer
	if m != nil {
		observe = m.ObserveSink
	}
	if err := sink.WriteAll(ctx, d.sinks, sink.Batch{
		RunID:   out.RunID,
		Results: out.Results,
		Summary: out.Summary,
	}, observe); err != nil {
		return err
	}

	if jsonSummary {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			RunID   string            `json:"run_id"`
			Summary aggregate.Summary `json:"summary"`
			Stats   spell.Stats       `json:"classification"`
		}{out.RunID, out.Summary, out.Stats})
	}
	printSummary(w, out.RunID, out.Summary, &out.Stats)
	return nil
}

func printSummary(w io.Writer, runID string, s aggregate.Summary, st *spell.Stats) {
	fmt.Fprintf(w, "run %s\n", runID)
	fmt.Fprintf(w, "documents:            %d\n", s.TotalDocuments)
	fmt.Fprintf(w, "documents with error: %d (%.1f%%)\n", s.DocumentsWithError, 100*s.ErrorShare)
	fmt.Fprintf(w, "errors:               %d total, %.2f mean, %.1f median, %d max\n",
		s.TotalErrors, s.MeanErrors, s.MedianErrors, s.MaxErrors)
	fmt.Fprintf(w, "vocabulary:           %d terms, %d error tokens\n", s.VocabularySize, s.ErrorTokens)
	if st != nil {
		fmt.Fprintf(w, "classified:           %d (%d from cache)\n", st.Classified, st.Cached)
	}
	for _, b := range s.Buckets {
		fmt.Fprintf(w, "  %-6s %d\n", b.Label, b.Documents)
	}
	for _, r := range s.ByRelevance {
		fmt.Fprintf(w, "  relevance %d: %d documents, %.2f mean errors\n", r.Label, r.Documents, r.MeanErrors)
	}
	if len(s.TopErrorWords) > 0 {
		words := make([]string, len(s.TopErrorWords))
		for i, wc := range s.TopErrorWords {
			words[i] = fmt.Sprintf("%s (%d)", wc.Word, wc.Count)
		}
		fmt.Fprintf(w, "top error words:      %s\n", strings.Join(words, ", "))
	}
}
