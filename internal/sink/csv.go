package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/records"
)

// CSV writes results to a file. The file is replaced atomically, so readers
// never see a partial result set.
type CSV struct {
	path string
}

func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

func (c *CSV) Name() string { return "csv" }

func (c *CSV) Write(_ context.Context, b Batch) error {
	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(c.path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if err := records.WriteResultsCSV(tmp, b.Results); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", c.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("replacing %s: %w", c.path, err)
	}
	return nil
}

func (c *CSV) Close() error { return nil }
