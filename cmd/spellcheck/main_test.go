package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/records"
	"github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/internal/spell"
	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/errors"
)

const metadata = `cord_uid,title,abstract,relevance
d1,Teh pandemic spred,,1
d2,The pandemic spread,SARS-CoV-2 study,2
d3,,,0
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", "", "--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunWritesCSV(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "metadata.csv")
	out := filepath.Join(dir, "results.csv")
	require.NoError(t, os.WriteFile(in, []byte(metadata), 0o644))
	t.Setenv("DSA_INPUT_METADATA_PATH", in)

	stdout, err := execute(t, "run", "--output", out, "--sinks", "csv", "-p", "2", "--json")
	require.NoError(t, err)

	var printed struct {
		RunID   string `json:"run_id"`
		Summary struct {
			TotalDocuments     int `json:"total_documents"`
			DocumentsWithError int `json:"documents_with_errors"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &printed))
	assert.NotEmpty(t, printed.RunID)
	assert.Equal(t, 3, printed.Summary.TotalDocuments)
	assert.Equal(t, 1, printed.Summary.DocumentsWithError)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	docs, err := records.ReadMetadataCSV(f)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "d1", docs[0].ID)
}

func TestRunMissingMetadata(t *testing.T) {
	t.Setenv("DSA_INPUT_METADATA_PATH", filepath.Join(t.TempDir(), "missing.csv"))
	_, err := execute(t, "run", "--sinks", "csv")
	require.Error(t, err)
	assert.Equal(t, apperrors.ExitUsage, apperrors.ExitCode(err))
}

func TestRunRejectsUnknownSink(t *testing.T) {
	_, err := execute(t, "run", "--sinks", "s3")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestClassifyJSON(t *testing.T) {
	stdout, err := execute(t, "classify", "--json", "Teh", "COVID-19", "pandemic")
	require.NoError(t, err)

	var verdicts []spell.Verdict
	require.NoError(t, json.Unmarshal([]byte(stdout), &verdicts))
	require.Len(t, verdicts, 3)
	assert.Equal(t, "teh", verdicts[0].Token)
	assert.True(t, verdicts[0].Error)
	assert.Equal(t, spell.ReasonIdentifier, verdicts[1].Reason)
	assert.False(t, verdicts[2].Error)
}

func TestClassifyRaw(t *testing.T) {
	stdout, err := execute(t, "classify", "--raw", "SARS")
	require.NoError(t, err)
	assert.Contains(t, stdout, "acronym")
}

func TestVocabErrorsOnly(t *testing.T) {
	in := filepath.Join(t.TempDir(), "metadata.csv")
	require.NoError(t, os.WriteFile(in, []byte(metadata), 0o644))
	t.Setenv("DSA_INPUT_METADATA_PATH", in)

	stdout, err := execute(t, "vocab", "--errors-only")
	require.NoError(t, err)
	assert.Equal(t, "term,frequency,error,reason,correction\nspred,1,true,misspelled,spread\nteh,1,true,misspelled,the\n", stdout)
}
