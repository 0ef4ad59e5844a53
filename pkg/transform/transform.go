// Package transform rewrites section templates so a referenced schema is
// inlined as a static {% schema %} block.
package transform

import (
	"github.com/goliatone/go-liquid-schemas/pkg/marker"
)

const (
	// StartTag and EndTag delimit the canonical inlined block.
	StartTag = "{% schema %}"
	EndTag   = "{% endschema %}"

	newline = "\n"
)

// Block returns the canonical static block wrapping payload.
func Block(payload string) string {
	return StartTag + newline + payload + newline + EndTag
}

// Rewrite inlines payload into text. Templates without a reference are
// returned unchanged. A reference marker is replaced by the block; a
// reference comment is kept and the block either replaces the existing static
// block or is appended after the text.
func Rewrite(text, payload string) string {
	d := Defer(text)
	if !d.Changed() {
		return text
	}
	return d.Fill(payload)
}

// Deferred is a rewrite whose payload is supplied later. It lets callers
// classify and rewrite a template before the referenced module has been
// evaluated.
type Deferred struct {
	text  string
	head  string
	tail  string
	match marker.Match
}

// Defer computes the rewrite of text with the payload left open.
func Defer(text string) Deferred {
	m := marker.Find(text)
	d := Deferred{text: text, match: m}
	if !m.Found {
		return d
	}

	switch m.Variant {
	case marker.ReferenceMarker:
		d.head = text[:m.Start] + StartTag + newline
		d.tail = newline + EndTag + text[m.End:]
	case marker.ReferenceComment:
		if start, end, ok := marker.FindStaticBlock(text); ok {
			d.head = text[:start] + StartTag + newline
			d.tail = newline + EndTag + text[end:]
		} else {
			d.head = text + newline + StartTag + newline
			d.tail = newline + EndTag
		}
	default:
		d.match = marker.Match{}
	}
	return d
}

// Match exposes the marker the rewrite is based on.
func (d Deferred) Match() marker.Match {
	return d.match
}

// Changed reports whether filling the rewrite alters the template.
func (d Deferred) Changed() bool {
	return d.match.Found
}

// Fill completes the rewrite with payload. When no marker was found the
// original text is returned.
func (d Deferred) Fill(payload string) string {
	if !d.match.Found {
		return d.text
	}
	return d.head + payload + d.tail
}
