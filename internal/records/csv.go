package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/errors"
)

// Column names of the metadata and result files.
const (
	ColumnID          = "cord_uid"
	ColumnTitle       = "title"
	ColumnAbstract    = "abstract"
	ColumnTopic       = "topic"
	ColumnRelevance   = "relevance"
	ColumnTotalErrors = "total_errors"
)

// ResultHeader is the header row written by WriteResultsCSV.
var ResultHeader = []string{ColumnID, ColumnTitle, ColumnAbstract, ColumnTopic, ColumnRelevance, ColumnTotalErrors}

// ReadMetadataCSV reads documents from a CSV file with a header row. The
// cord_uid, title and abstract columns are required; topic and relevance are
// read when present. Other columns are ignored and empty cells are NULL.
func ReadMetadataCSV(r io.Reader) ([]Document, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperrors.New(apperrors.ErrInvalidInput, apperrors.ExitUsage, "metadata file is empty")
	}
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage, "reading metadata header: %v", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, required := range []string{ColumnID, ColumnTitle, ColumnAbstract} {
		if _, ok := cols[required]; !ok {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage, "metadata is missing column %q", required)
		}
	}

	cell := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}
	intCell := func(rec []string, name string, line int) (int, error) {
		s := strings.TrimSpace(cell(rec, name))
		if s == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage, "line %d: invalid %s %q", line, name, s)
		}
		return n, nil
	}

	var docs []Document
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage, "reading metadata: %v", err)
		}
		line, _ := cr.FieldPos(0)
		id := strings.TrimSpace(cell(rec, ColumnID))
		if id == "" {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage, "line %d: empty %s", line, ColumnID)
		}
		rel, err := intCell(rec, ColumnRelevance, line)
		if err != nil {
			return nil, err
		}
		topic, err := intCell(rec, ColumnTopic, line)
		if err != nil {
			return nil, err
		}
		doc := NewDocument(id, cell(rec, ColumnTitle), cell(rec, ColumnAbstract), rel)
		doc.Topic = topic
		docs = append(docs, doc)
	}
	return docs, nil
}

// ReadMetadataFile opens path and reads it with ReadMetadataCSV.
func ReadMetadataFile(path string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage, "opening metadata: %v", err)
	}
	defer f.Close()
	return ReadMetadataCSV(f)
}

// WriteResultsCSV writes one row per result under ResultHeader. NULL text
// is written as an empty cell.
func WriteResultsCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ResultHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	row := make([]string, len(ResultHeader))
	for _, r := range results {
		row[0] = r.ID
		row[1] = value(r.Title)
		row[2] = value(r.Abstract)
		row[3] = strconv.Itoa(r.Topic)
		row[4] = strconv.Itoa(r.Relevance)
		row[5] = strconv.Itoa(r.TotalErrors)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing result %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
