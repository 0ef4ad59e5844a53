package marker

import "regexp"

// Grammar fragments shared by every tag form. Tags are built from these so the
// trim-control and quoting rules cannot drift between variants.
const (
	tagOpen  = `\{%-?\s*`
	tagClose = `\s*-?%\}`

	// quoted captures a single-line string wrapped in matching quotes. The
	// content may be empty.
	quoted = `('[^'\n]*'|"[^"\n]*")`

	startTag = tagOpen + `schema` + tagClose
	endTag   = tagOpen + `endschema` + tagClose
)

var (
	// staticBlockPattern matches a start tag without argument through the first
	// end tag that follows it.
	staticBlockPattern = regexp.MustCompile(startTag + `[\s\S]*?` + endTag)

	// referenceMarkerPattern matches a start tag carrying a quoted argument,
	// optionally followed by a body and the first end tag after it.
	referenceMarkerPattern = regexp.MustCompile(
		tagOpen + `schema\s+` + quoted + tagClose + `(?:[\s\S]*?` + endTag + `)?`,
	)

	// referenceCommentPattern matches the annotation-only comment tag.
	referenceCommentPattern = regexp.MustCompile(
		tagOpen + `#\s*import\s+schema\s+from\s+` + quoted + tagClose,
	)
)

// grammar lists the reference forms in precedence order.
var grammar = []struct {
	variant Variant
	pattern *regexp.Regexp
}{
	{variant: ReferenceMarker, pattern: referenceMarkerPattern},
	{variant: ReferenceComment, pattern: referenceCommentPattern},
}
