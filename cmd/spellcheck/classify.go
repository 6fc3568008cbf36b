package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/textnorm"
)

func newClassifyCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		raw    bool
	)
	cmd := &cobra.Command{
		Use:   "classify WORD...",
		Short: "Explain the verdict for each word",
		Long: `classify normalizes each argument the way document text is normalized
and prints whether it counts as a spelling error, the rule that decided it and
the dictionary correction when there is one. --raw skips normalization so
case-sensitive rules such as acronyms can be inspected.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.classifier()
			if err != nil {
				return err
			}
			tokens := args
			if !raw {
				tokens = tokens[:0:0]
				for _, arg := range args {
					tokens = append(tokens, textnorm.Normalize(arg)...)
				}
			}
			verdicts := pipeline.New(c, pipeline.Options{}).Classify(tokens)

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(verdicts)
			}
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TOKEN\tERROR\tREASON\tCORRECTION")
			for _, v := range verdicts {
				fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", v.Token, v.Error, v.Reason, v.Correction)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print verdicts as JSON")
	cmd.Flags().BoolVar(&raw, "raw", false, "classify arguments without normalizing them")
	return cmd
}
