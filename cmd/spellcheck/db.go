package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/records"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/store"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the Postgres tables used for documents and runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.postgres()
			if err != nil {
				return err
			}
			defer db.Close()
			return store.New(db).Migrate(cmd.Context())
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import [METADATA_CSV]",
		Short: "Replace the Postgres documents table with a metadata CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Input.MetadataPath
			if len(args) == 1 {
				path = args[0]
			}
			docs, err := records.ReadMetadataFile(path)
			if err != nil {
				return err
			}
			db, err := a.postgres()
			if err != nil {
				return err
			}
			defer db.Close()
			s := store.New(db)
			if err := s.Migrate(cmd.Context()); err != nil {
				return err
			}
			if err := s.ReplaceDocuments(cmd.Context(), docs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d documents\n", len(docs))
			return nil
		},
	}
}

func newSummaryCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the summary of the latest run saved in Postgres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.postgres()
			if err != nil {
				return err
			}
			defer db.Close()
			runID, summary, err := store.New(db).LatestSummary(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if summary == nil {
				fmt.Fprintln(w, "no runs saved")
				return nil
			}
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			printSummary(w, runID, *summary, nil)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}
