package spell

import (
	"bufio"
	"bytes"
	"cmp"
	_ "embed"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"

	apperrors "github.com/Adithya-Monish-Kumar-K/Document-Spelling-Analytics/pkg/errors"
)

const (
	// MaxEditDistance is the largest edit distance a Dictionary can index.
	MaxEditDistance = 2
	prefixLength    = 7
	deletesPerWord  = 4
	maxWordBytes    = 256
)

//go:embed freq.txt
var defaultFreq []byte

// defaultDictionaries holds the bundled dictionary, loaded once per edit
// distance.
var defaultDictionaries [MaxEditDistance + 1]struct {
	once sync.Once
	dict *Dictionary
	err  error
}

// Suggestion is a correction candidate.
type Suggestion struct {
	Term      string `json:"term"`
	Distance  int    `json:"distance"`
	Frequency int64  `json:"frequency"`
}

// Dictionary is a symmetric-delete spelling dictionary. Delete variants of
// every word prefix are indexed at load time so that a lookup only compares
// the input against words sharing a delete variant. A Dictionary is
// read-only once loaded and safe for concurrent use.
type Dictionary struct {
	maxEditDistance int
	words           map[string]int64
	wordList        []string
	deletes         map[uint32][]uint32
	maxWordLen      int
	digest          *xxhash.Digest
	fingerprint     string
}

func clampDistance(maxEditDistance int) int {
	if maxEditDistance < 1 || maxEditDistance > MaxEditDistance {
		return MaxEditDistance
	}
	return maxEditDistance
}

func newDictionary(maxEditDistance, sizeHint int) *Dictionary {
	return &Dictionary{
		maxEditDistance: clampDistance(maxEditDistance),
		words:           make(map[string]int64, sizeHint),
		wordList:        make([]string, 0, sizeHint),
		deletes:         make(map[uint32][]uint32, sizeHint*deletesPerWord),
		digest:          xxhash.New(),
	}
}

// DefaultDictionary returns the bundled English frequency dictionary: a
// SCOWL-derived word list of about 170,000 entries with biomedical
// additions. It is built on first use and shared afterwards.
func DefaultDictionary(maxEditDistance int) (*Dictionary, error) {
	n := clampDistance(maxEditDistance)
	e := &defaultDictionaries[n]
	e.once.Do(func() {
		e.dict, e.err = loadDictionary(bytes.NewReader(defaultFreq), n, 1<<18)
	})
	return e.dict, e.err
}

// LoadDictionaryFile reads a frequency dictionary from path.
func LoadDictionaryFile(path string, maxEditDistance int) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrDictionary, apperrors.ExitUsage, "opening dictionary %s: %v", path, err)
	}
	defer f.Close()
	return LoadDictionary(f, maxEditDistance)
}

// LoadDictionary parses "word count" lines. Blank lines and lines starting
// with '#' are ignored; words are lower-cased. A word listed twice keeps the
// sum of its counts.
func LoadDictionary(r io.Reader, maxEditDistance int) (*Dictionary, error) {
	return loadDictionary(r, maxEditDistance, 1024)
}

func loadDictionary(r io.Reader, maxEditDistance, sizeHint int) (*Dictionary, error) {
	d := newDictionary(maxEditDistance, sizeHint)
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		sp := strings.LastIndexAny(line, " \t")
		if sp <= 0 {
			return nil, apperrors.Newf(apperrors.ErrDictionary, apperrors.ExitUsage,
				"dictionary line %d: expected \"word count\"", lineNo)
		}
		freq, err := strconv.ParseInt(line[sp+1:], 10, 64)
		if err != nil || freq < 0 {
			return nil, apperrors.Newf(apperrors.ErrDictionary, apperrors.ExitUsage,
				"dictionary line %d: invalid count %q", lineNo, line[sp+1:])
		}
		d.add(strings.TrimSpace(line[:sp]), freq)
	}
	if err := sc.Err(); err != nil {
		return nil, apperrors.Newf(apperrors.ErrDictionary, apperrors.ExitUsage, "reading dictionary: %v", err)
	}
	if len(d.wordList) == 0 {
		return nil, apperrors.New(apperrors.ErrDictionary, apperrors.ExitUsage, "dictionary is empty")
	}
	d.fingerprint = fmt.Sprintf("%016x", d.digest.Sum64())
	d.digest = nil
	return d, nil
}

func (d *Dictionary) add(word string, freq int64) {
	word = strings.ToLower(word)
	if word == "" || len(word) > maxWordBytes {
		return
	}
	fmt.Fprintf(d.digest, "%s %d\n", word, freq)
	if _, ok := d.words[word]; ok {
		d.words[word] += freq
		return
	}
	d.words[word] = freq
	idx := uint32(len(d.wordList))
	d.wordList = append(d.wordList, word)
	if n := utf8.RuneCountInString(word); n > d.maxWordLen {
		d.maxWordLen = n
	}
	prefix := truncateRunes(word, prefixLength)
	for _, del := range deletes(prefix, d.maxEditDistance) {
		h := hash(del)
		d.deletes[h] = append(d.deletes[h], idx)
	}
	h := hash(prefix)
	d.deletes[h] = append(d.deletes[h], idx)
}

// Len returns the number of distinct words.
func (d *Dictionary) Len() int { return len(d.wordList) }

// MaxDistance returns the largest edit distance indexed.
func (d *Dictionary) MaxDistance() int { return d.maxEditDistance }

// Fingerprint identifies the dictionary contents.
func (d *Dictionary) Fingerprint() string { return d.fingerprint }

// Known reports whether word is in the dictionary, ignoring case.
func (d *Dictionary) Known(word string) bool {
	_, ok := d.words[strings.ToLower(word)]
	return ok
}

// Frequency returns the count of word, or zero if it is unknown.
func (d *Dictionary) Frequency(word string) int64 {
	return d.words[strings.ToLower(word)]
}

// Correction returns the most likely spelling of word. Known words are
// returned unchanged. The second result is false when no dictionary word is
// within the maximum edit distance.
func (d *Dictionary) Correction(word string) (string, bool) {
	if d.Known(word) {
		return word, true
	}
	s := d.Suggest(word, d.maxEditDistance)
	if len(s) == 0 {
		return "", false
	}
	return s[0].Term, true
}

// Suggest returns candidates within maxDist of word, closest first and most
// frequent first among equals. A known word yields itself at distance zero.
func (d *Dictionary) Suggest(word string, maxDist int) []Suggestion {
	if word == "" || len(word) > maxWordBytes {
		return nil
	}
	if maxDist > d.maxEditDistance {
		maxDist = d.maxEditDistance
	}
	if maxDist < 0 {
		maxDist = 0
	}
	input := strings.ToLower(word)
	if freq, ok := d.words[input]; ok {
		return []Suggestion{{Term: input, Distance: 0, Frequency: freq}}
	}
	inputLen := utf8.RuneCountInString(input)
	if maxDist == 0 || inputLen-maxDist > d.maxWordLen {
		return nil
	}

	prefix := truncateRunes(input, prefixLength)
	variants := append(deletes(prefix, maxDist), prefix)

	var out []Suggestion
	seen := make(map[uint32]struct{})
	for _, v := range variants {
		for _, idx := range d.deletes[hash(v)] {
			if _, dup := seen[idx]; dup {
				continue
			}
			seen[idx] = struct{}{}
			cand := d.wordList[idx]
			diff := inputLen - utf8.RuneCountInString(cand)
			if diff < -maxDist || diff > maxDist {
				continue
			}
			if dist := osaDistance(input, cand, maxDist); dist <= maxDist {
				out = append(out, Suggestion{Term: cand, Distance: dist, Frequency: d.words[cand]})
			}
		}
	}
	slices.SortFunc(out, compareSuggestions)
	return out
}

func compareSuggestions(a, b Suggestion) int {
	return cmp.Or(
		cmp.Compare(a.Distance, b.Distance),
		cmp.Compare(b.Frequency, a.Frequency),
		strings.Compare(a.Term, b.Term),
	)
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func hash(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// deletes returns every distinct string obtained by removing between 1 and
// dist runes from s.
func deletes(s string, dist int) []string {
	if dist <= 0 || s == "" {
		return nil
	}
	type item struct {
		word  string
		depth int
	}
	seen := make(map[string]struct{})
	var out []string
	queue := []item{{s, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		r := []rune(cur.word)
		for i := range r {
			del := string(r[:i]) + string(r[i+1:])
			if _, ok := seen[del]; ok {
				continue
			}
			seen[del] = struct{}{}
			out = append(out, del)
			if cur.depth+1 < dist && del != "" {
				queue = append(queue, item{del, cur.depth + 1})
			}
		}
	}
	return out
}

// osaDistance is the optimal string alignment distance between a and b:
// insertions, deletions, substitutions and adjacent transpositions, with no
// substring edited twice. Results above limit are only known to exceed it.
func osaDistance(a, b string, limit int) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}
	if diff := la - lb; diff > limit || -diff > limit {
		return max(diff, -diff)
	}

	prev2 := make([]int, lb+1)
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			best := min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				best = min(best, prev2[j-2]+cost)
			}
			curr[j] = best
		}
		prev2, prev, curr = prev, curr, prev2
	}
	return prev[lb]
}
