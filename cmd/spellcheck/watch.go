package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/sink"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/kafka"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		minErrors int
		fromStart bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow published document error events",
		Long: `watch consumes the document-errors topic and prints every document whose
error count reaches --min-errors, plus a line per completed run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			handler := func(_ context.Context, _, value []byte) error {
				head, err := kafka.Decode[struct {
					Type sink.EventType `json:"type"`
				}](value)
				if err != nil {
					return err
				}
				switch head.Type {
				case sink.EventRunCompleted:
					ev, err := kafka.Decode[sink.RunCompletedEvent](value)
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "run %s completed: %d documents, %d with errors, %d errors\n",
						ev.RunID, ev.Documents, ev.DocumentsWithError, ev.TotalErrors)
				case sink.EventDocumentErrors:
					ev, err := kafka.Decode[sink.DocumentErrorsEvent](value)
					if err != nil {
						return err
					}
					if ev.TotalErrors >= minErrors {
						fmt.Fprintf(w, "%s\t%s\ttopic=%d\trelevance=%d\terrors=%d\n",
							ev.RunID, ev.CordUID, ev.Topic, ev.Relevance, ev.TotalErrors)
					}
				}
				return nil
			}
			consumer := kafka.NewConsumer(a.cfg.Kafka, a.cfg.Kafka.Topics.DocumentErrors, fromStart, handler)
			return consumer.Run(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&minErrors, "min-errors", 1, "only print documents with at least this many errors")
	cmd.Flags().BoolVar(&fromStart, "from-start", false, "start at the oldest retained event when the group has no offset")
	return cmd
}
