package evaluator

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/goliatone/go-liquid-schemas/pkg/module"
)

// TOMLDecoder reads .toml modules. A document made of a single "default" key
// exports that key's value, which lets TOML modules export arrays; any other
// document exports its root table. Keys keep the order they are written in.
type TOMLDecoder struct{}

func (TOMLDecoder) Name() string { return "toml" }

func (TOMLDecoder) Extensions() []string { return []string{".toml"} }

func (TOMLDecoder) Decode(_ context.Context, doc module.Document) (module.Value, error) {
	var data map[string]any
	meta, err := toml.Decode(string(doc.Raw()), &data)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, module.ErrEmptyDocument
	}

	order := make(map[string]int, len(meta.Keys()))
	for i, key := range meta.Keys() {
		path := strings.Join(key, "\x00")
		if _, seen := order[path]; !seen {
			order[path] = i
		}
	}

	root, err := tomlValue(data, "", order)
	if err != nil {
		return nil, err
	}
	obj := root.(*module.Object)
	if obj.Len() == 1 {
		if value, ok := obj.Get(module.DefaultExport); ok {
			return value, nil
		}
	}
	return obj, nil
}

func tomlValue(in any, path string, order map[string]int) (module.Value, error) {
	switch v := in.(type) {
	case map[string]any:
		return tomlTable(v, path, order)
	case []map[string]any:
		items := make([]module.Value, 0, len(v))
		for _, table := range v {
			value, err := tomlTable(table, path, order)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		return items, nil
	case []any:
		items := make([]module.Value, 0, len(v))
		for _, item := range v {
			value, err := tomlValue(item, path, order)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		return items, nil
	case string, bool:
		return v, nil
	case int64:
		return module.FromAny(v)
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, fmt.Errorf("toml: %s: %v is not representable in JSON", displayPath(path), v)
		}
		return module.FromAny(v)
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	default:
		return nil, fmt.Errorf("toml: %s: unsupported value type %T", displayPath(path), v)
	}
}

func tomlTable(table map[string]any, path string, order map[string]int) (module.Value, error) {
	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}

	rank := func(key string) (int, bool) {
		idx, ok := order[childPath(path, key)]
		return idx, ok
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, oki := rank(keys[i])
		rj, okj := rank(keys[j])
		switch {
		case oki && okj:
			return ri < rj
		case oki != okj:
			return oki
		default:
			return keys[i] < keys[j]
		}
	})

	obj := &module.Object{}
	for _, key := range keys {
		value, err := tomlValue(table[key], childPath(path, key), order)
		if err != nil {
			return nil, err
		}
		obj.Set(key, value)
	}
	return obj, nil
}

func childPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "\x00" + key
}

func displayPath(path string) string {
	if path == "" {
		return "(root)"
	}
	return strings.ReplaceAll(path, "\x00", ".")
}
