// Package settings normalises theme settings schema modules into the array
// layout Shopify expects in config/settings_schema.json: the theme metadata
// entry first, followed by one entry per settings category.
package settings

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-liquid-schemas/pkg/module"
)

// DefaultOutput is the conventional output path inside a theme.
const DefaultOutput = "config/settings_schema.json"

var (
	// ErrInvalidSchema reports a value that is neither an array nor a
	// {meta, settings} object.
	ErrInvalidSchema = errors.New("settings: schema must be an array or an object with meta")
)

// Normalize accepts either the final array form, returned unchanged, or an
// object with a required "meta" member and an optional "settings" array,
// returned as [meta, ...settings].
func Normalize(value module.Value) (module.Value, error) {
	switch v := value.(type) {
	case []module.Value:
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: array is empty", ErrInvalidSchema)
		}
		return v, nil
	case *module.Object:
		meta, ok := v.Get("meta")
		if !ok || meta == nil {
			return nil, fmt.Errorf("%w: missing meta", ErrInvalidSchema)
		}
		out := []module.Value{meta}

		raw, ok := v.Get("settings")
		if !ok || raw == nil {
			return out, nil
		}
		categories, ok := raw.([]module.Value)
		if !ok {
			return nil, fmt.Errorf("%w: settings must be an array, got %T", ErrInvalidSchema, raw)
		}
		return append(out, categories...), nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrInvalidSchema, value)
	}
}
