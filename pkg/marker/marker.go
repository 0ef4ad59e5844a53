package marker

import (
	"sort"
	"strings"
)

// Variant identifies which tag form produced a Match.
type Variant string

const (
	VariantNone      Variant = ""
	StaticBlock      Variant = "static"
	ReferenceMarker  Variant = "replaceable"
	ReferenceComment Variant = "inline"
)

// String returns a readable name, "none" for the zero value.
func (v Variant) String() string {
	if v == VariantNone {
		return "none"
	}
	return string(v)
}

// Match describes the first schema reference found in a template. A zero
// Match means no reference was found; a found Match always has Span,
// Variant and the Start/End offsets populated. Specifier may legitimately be
// the empty string when the tag argument is an empty quoted string.
type Match struct {
	Found     bool
	Span      string
	Specifier string
	Variant   Variant

	// Start and End are byte offsets of Span in the scanned text.
	Start int
	End   int
}

// Find returns the first reference marker in text, falling back to the first
// reference comment when no marker is present. Static blocks are never
// reported: they carry no specifier.
func Find(text string) Match {
	for _, rule := range grammar {
		loc := rule.pattern.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		return newMatch(text, rule.variant, loc)
	}
	return Match{}
}

// FindAll returns every reference marker and reference comment in document
// order. Overlapping matches are not possible for a well formed template; when
// a comment sits inside a marker body only the marker is reported.
func FindAll(text string) []Match {
	var matches []Match
	for _, rule := range grammar {
		for _, loc := range rule.pattern.FindAllStringSubmatchIndex(text, -1) {
			matches = append(matches, newMatch(text, rule.variant, loc))
		}
	}
	if len(matches) < 2 {
		return matches
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Start < matches[j].Start
	})

	out := matches[:1]
	for _, m := range matches[1:] {
		last := out[len(out)-1]
		if m.Start < last.End {
			continue
		}
		out = append(out, m)
	}
	return out
}

// HasStaticBlock reports whether text contains a start tag without argument
// followed by an end tag.
func HasStaticBlock(text string) bool {
	return staticBlockPattern.MatchString(text)
}

// Classify reports the tag form that governs text: the variant of Find when a
// reference is present, StaticBlock for a template that only carries an
// inlined block, VariantNone otherwise.
func Classify(text string) Variant {
	if m := Find(text); m.Found {
		return m.Variant
	}
	if HasStaticBlock(text) {
		return StaticBlock
	}
	return VariantNone
}

// FindStaticBlock returns the byte range of the first static block.
func FindStaticBlock(text string) (start, end int, ok bool) {
	loc := staticBlockPattern.FindStringIndex(text)
	if loc == nil {
		return 0, 0, false
	}
	return loc[0], loc[1], true
}

func newMatch(text string, variant Variant, loc []int) Match {
	arg := ""
	if len(loc) >= 4 && loc[2] >= 0 {
		arg = text[loc[2]:loc[3]]
	}
	return Match{
		Found:     true,
		Span:      text[loc[0]:loc[1]],
		Specifier: unquote(arg),
		Variant:   variant,
		Start:     loc[0],
		End:       loc[1],
	}
}

// unquote strips the quote character found at the start of s from both ends.
func unquote(s string) string {
	if s == "" {
		return ""
	}
	quote := s[:1]
	if quote != "'" && quote != `"` {
		return s
	}
	s = strings.TrimPrefix(s, quote)
	return strings.TrimSuffix(s, quote)
}
