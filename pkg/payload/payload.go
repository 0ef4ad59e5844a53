// Package payload serializes evaluated schema values into the text inlined
// between the schema tags.
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-liquid-schemas/pkg/module"
)

// DefaultIndent mirrors JSON.stringify(value, null, 2).
const DefaultIndent = "  "

// EncodeOptions controls JSON formatting. An empty Indent produces compact
// output.
type EncodeOptions struct {
	Prefix string
	Indent string
}

// DefaultEncodeOptions returns two-space indentation.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{Indent: DefaultIndent}
}

// Encode renders value as JSON text without a trailing newline. HTML
// characters are written verbatim since schema strings routinely carry
// markup.
func Encode(value module.Value, opts EncodeOptions) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if opts.Prefix != "" || opts.Indent != "" {
		enc.SetIndent(opts.Prefix, opts.Indent)
	}
	if err := enc.Encode(value); err != nil {
		return "", fmt.Errorf("payload: encode: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
