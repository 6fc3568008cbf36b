// Package records defines the document record set consumed by the pipeline
// and the enriched result rows it produces, together with CSV and qrels
// loaders for the TREC-COVID metadata layout.
package records

import "database/sql"

// Document is one row of the input record set. Title and Abstract may be
// NULL. Topic is set when the document was selected through relevance
// judgments. Documents are never modified after loading.
type Document struct {
	ID        string
	Title     sql.NullString
	Abstract  sql.NullString
	Relevance int
	Topic     int
}

// Result is a Document with its derived spelling-error count attached.
type Result struct {
	Document
	TotalErrors int `json:"total_errors"`
}

// NewDocument builds a Document from plain strings, treating empty strings
// as NULL.
func NewDocument(id, title, abstract string, relevance int) Document {
	return Document{
		ID:        id,
		Title:     nullable(title),
		Abstract:  nullable(abstract),
		Relevance: relevance,
	}
}

// TextStream returns every title followed by every abstract, in document
// order. NULL fields contribute an empty string.
func TextStream(docs []Document) []string {
	texts := make([]string, 0, 2*len(docs))
	for _, d := range docs {
		texts = append(texts, value(d.Title))
	}
	for _, d := range docs {
		texts = append(texts, value(d.Abstract))
	}
	return texts
}

func value(s sql.NullString) string {
	if !s.Valid {
		return ""
	}
	return s.String
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
