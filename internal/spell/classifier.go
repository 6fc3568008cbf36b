// Package spell decides which vocabulary tokens are likely spelling errors.
//
// A Classifier applies an ordered set of false-positive suppressors before
// it ever consults the correction dictionary:
//
//  1. acronyms (all upper case, or only [A-Z0-9-]), length two or more
//  2. identifiers (containing a digit or a hyphen)
//  3. tokens shorter than three characters
//  4. domain exceptions (scientific vocabulary, Latin abbreviations)
//
// Anything left is looked up in a symmetric-delete Dictionary; the token is
// an error only when the dictionary proposes a different spelling.
//
// Classifiers are immutable after construction and shared by all workers.
package spell

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	mapset "github.com/deckarep/golang-set/v2"
)

// Reason explains a classification.
type Reason string

const (
	ReasonAcronym         Reason = "acronym"
	ReasonIdentifier      Reason = "identifier"
	ReasonShort           Reason = "short"
	ReasonDomainException Reason = "domain_exception"
	ReasonKnown           Reason = "known"
	ReasonNoCorrection    Reason = "no_correction"
	ReasonMisspelled      Reason = "misspelled"
)

const minCheckedRunes = 3

var (
	acronymClass    = regexp.MustCompile(`^[A-Z0-9-]+$`)
	identifierClass = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
)

// Corrector proposes the most likely spelling of a word. The boolean is
// false when no candidate exists.
type Corrector interface {
	Correction(word string) (string, bool)
}

// Verdict is the classification of one token.
type Verdict struct {
	Token      string `json:"token"`
	Error      bool   `json:"error"`
	Reason     Reason `json:"reason"`
	Correction string `json:"correction,omitempty"`
}

// Options configures a Classifier.
type Options struct {
	// DomainExceptions are merged with DomainTerms.
	DomainExceptions []string
	// LiteralIdentifierClass treats every token made only of ASCII letters,
	// digits and hyphens as an identifier, which exempts plain ASCII words
	// from the dictionary check.
	LiteralIdentifierClass bool
}

// Classifier is the immutable per-run classification policy.
type Classifier struct {
	corrector   Corrector
	exceptions  mapset.Set[string]
	literal     bool
	fingerprint string
}

// NewClassifier builds a classifier over corrector.
func NewClassifier(corrector Corrector, opts Options) *Classifier {
	// Read-only after construction.
	exceptions := mapset.NewThreadUnsafeSet(DomainTerms...)
	for _, t := range opts.DomainExceptions {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			exceptions.Add(t)
		}
	}
	c := &Classifier{
		corrector:  corrector,
		exceptions: exceptions,
		literal:    opts.LiteralIdentifierClass,
	}
	c.fingerprint = c.computeFingerprint()
	return c
}

// Fingerprint identifies the classification policy: the exception set, the
// identifier mode and, when the corrector exposes one, its fingerprint. Two
// classifiers with equal fingerprints return identical verdicts.
func (c *Classifier) Fingerprint() string {
	return c.fingerprint
}

func (c *Classifier) computeFingerprint() string {
	terms := c.exceptions.ToSlice()
	slices.Sort(terms)

	d := xxhash.New()
	for _, t := range terms {
		_, _ = d.WriteString(t)
		_, _ = d.WriteString("\n")
	}
	fmt.Fprintf(d, "literal=%t\n", c.literal)
	if fp, ok := c.corrector.(interface{ Fingerprint() string }); ok {
		fmt.Fprintf(d, "dictionary=%s\n", fp.Fingerprint())
	}
	return fmt.Sprintf("%016x", d.Sum64())
}

// IsError reports whether token is a likely spelling error.
func (c *Classifier) IsError(token string) bool {
	return c.Classify(token).Error
}

// Classify applies the suppression rules in order and falls back to the
// dictionary. The first matching rule decides.
func (c *Classifier) Classify(token string) Verdict {
	v := Verdict{Token: token}
	n := utf8.RuneCountInString(token)
	switch {
	case isAcronym(token, n):
		v.Reason = ReasonAcronym
	case c.isIdentifier(token):
		v.Reason = ReasonIdentifier
	case n < minCheckedRunes:
		v.Reason = ReasonShort
	case c.isException(token):
		v.Reason = ReasonDomainException
	default:
		corr, ok := c.corrector.Correction(token)
		switch {
		case !ok || corr == "":
			v.Reason = ReasonNoCorrection
		case corr == token:
			v.Reason = ReasonKnown
		default:
			v.Error = true
			v.Reason = ReasonMisspelled
			v.Correction = corr
		}
	}
	return v
}

func (c *Classifier) isException(token string) bool {
	return c.exceptions.Contains(strings.ToLower(token))
}

func isAcronym(token string, n int) bool {
	if n < 2 {
		return false
	}
	return isUpper(token) || acronymClass.MatchString(token)
}

// isUpper reports whether token has at least one cased letter and no
// lower-case or title-case letters.
func isUpper(token string) bool {
	cased := false
	for _, r := range token {
		switch {
		case unicode.IsLower(r), unicode.IsTitle(r):
			return false
		case unicode.IsUpper(r):
			cased = true
		}
	}
	return cased
}

func (c *Classifier) isIdentifier(token string) bool {
	if strings.ContainsFunc(token, unicode.IsDigit) || strings.Contains(token, "-") {
		return true
	}
	return c.literal && identifierClass.MatchString(token)
}
