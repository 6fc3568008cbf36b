package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/verdictcache"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/redis"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the Redis verdict cache",
	}

	var all bool
	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete cached verdicts of the current classifier, or every verdict with --all",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rdb, err := redis.NewClient(a.cfg.Redis)
			if err != nil {
				return dependencyDown("redis", err)
			}
			defer rdb.Close()
			cache, err := verdictcache.New(rdb, 0, a.cfg.Redis.CacheTTL)
			if err != nil {
				return err
			}

			fingerprint := ""
			if !all {
				c, err := a.classifier()
				if err != nil {
					return err
				}
				fingerprint = c.Fingerprint()
			}
			n, err := cache.Purge(cmd.Context(), fingerprint)
			if err != nil {
				return dependencyDown("redis", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d cached verdicts\n", n)
			return nil
		},
	}
	purge.Flags().BoolVar(&all, "all", false, "purge verdicts of every classifier configuration")
	cmd.AddCommand(purge)
	return cmd
}
