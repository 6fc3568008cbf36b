package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/logger"
)

// app carries the loaded configuration to every subcommand.
type app struct {
	configPath string
	envFile    string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "spellcheck",
		Short: "Count likely spelling errors in document titles and abstracts",
		Long: `spellcheck builds a vocabulary over every title and abstract, decides
once per distinct word whether it is a likely spelling error, and attributes
the errors back to documents through a document-term matrix.

Examples:
  spellcheck run --config configs/spellcheck.yaml
  spellcheck classify Teh pandemic spred COVID-19
  spellcheck vocab --errors-only > errors.csv
  spellcheck cache purge`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file with DSA_* overrides")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	root.AddCommand(
		newRunCmd(a),
		newClassifyCmd(a),
		newVocabCmd(a),
		newCacheCmd(a),
		newMigrateCmd(a),
		newImportCmd(a),
		newSummaryCmd(a),
		newWatchCmd(a),
	)
	return root
}

func (a *app) load() error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage, "%v", err)
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		if apperrors.ExitCode(err) == apperrors.ExitFailure {
			return apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage, "%v", err)
		}
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	// stdout carries command output; logs go to stderr.
	logger.SetupWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	a.cfg = cfg
	return nil
}
