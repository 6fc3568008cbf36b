package records

import (
	"bufio"
	"database/sql"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/errors"
)

// Qrel is one relevance judgment: document DocID judged for Topic.
type Qrel struct {
	Topic     int
	Iteration string
	DocID     string
	Relevance int
}

// LoadQrels parses whitespace-separated "topic iteration cord_uid relevance"
// lines. Blank lines are skipped.
func LoadQrels(r io.Reader) ([]Qrel, error) {
	var qrels []Qrel
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 4 {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage,
				"qrels line %d: expected 4 fields, got %d", lineNo, len(fields))
		}
		topic, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage,
				"qrels line %d: invalid topic %q", lineNo, fields[0])
		}
		rel, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage,
				"qrels line %d: invalid relevance %q", lineNo, fields[3])
		}
		qrels = append(qrels, Qrel{Topic: topic, Iteration: fields[1], DocID: fields[2], Relevance: rel})
	}
	if err := sc.Err(); err != nil {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage, "reading qrels: %v", err)
	}
	return qrels, nil
}

// LoadQrelsFile opens path and parses it with LoadQrels.
func LoadQrelsFile(path string) ([]Qrel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, apperrors.ExitUsage, "opening qrels: %v", err)
	}
	defer f.Close()
	return LoadQrels(f)
}

type judgment struct {
	topic     int
	relevance int
}

// SelectJudged keeps the metadata documents that have at least one
// judgment. Each kept document carries the highest relevance it received for
// its lowest-numbered topic. Documents are returned in metadata order, and a
// document whose (title, abstract) pair repeats an earlier kept one is
// dropped.
func SelectJudged(meta []Document, qrels []Qrel) []Document {
	best := make(map[string]map[int]int)
	for _, q := range qrels {
		topics, ok := best[q.DocID]
		if !ok {
			topics = make(map[int]int)
			best[q.DocID] = topics
		}
		if cur, seen := topics[q.Topic]; !seen || q.Relevance > cur {
			topics[q.Topic] = q.Relevance
		}
	}
	judged := make(map[string][]judgment, len(best))
	for id, topics := range best {
		js := make([]judgment, 0, len(topics))
		for topic, rel := range topics {
			js = append(js, judgment{topic: topic, relevance: rel})
		}
		sort.Slice(js, func(i, j int) bool { return js[i].topic < js[j].topic })
		judged[id] = js
	}

	type textKey struct {
		title, abstract sql.NullString
	}
	seen := make(map[textKey]struct{})
	var out []Document
	for _, d := range meta {
		js, ok := judged[d.ID]
		if !ok {
			continue
		}
		key := textKey{title: d.Title, abstract: d.Abstract}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		d.Topic = js[0].topic
		d.Relevance = js[0].relevance
		out = append(out, d)
	}
	return out
}
