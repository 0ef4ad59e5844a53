package evaluator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-liquid-schemas/pkg/module"
)

// YAMLDecoder reads .yaml and .yml modules. Only the first document of a
// stream is used.
type YAMLDecoder struct{}

func (YAMLDecoder) Name() string { return "yaml" }

func (YAMLDecoder) Extensions() []string { return []string{".yaml", ".yml"} }

func (YAMLDecoder) Decode(_ context.Context, doc module.Document) (module.Value, error) {
	var root yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(doc.Raw()))
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, module.ErrEmptyDocument
		}
		return nil, err
	}
	return yamlValue(&root)
}

func yamlValue(node *yaml.Node) (module.Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return yamlValue(node.Content[0])
	case yaml.AliasNode:
		if node.Alias == nil {
			return nil, fmt.Errorf("yaml: line %d: dangling alias", node.Line)
		}
		return yamlValue(node.Alias)
	case yaml.SequenceNode:
		items := make([]module.Value, 0, len(node.Content))
		for _, child := range node.Content {
			value, err := yamlValue(child)
			if err != nil {
				return nil, err
			}
			items = append(items, value)
		}
		return items, nil
	case yaml.MappingNode:
		return yamlMapping(node)
	case yaml.ScalarNode:
		return yamlScalar(node)
	default:
		return nil, fmt.Errorf("yaml: line %d: unsupported node kind %v", node.Line, node.Kind)
	}
}

func yamlMapping(node *yaml.Node) (module.Value, error) {
	explicit := make(map[string]struct{}, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		if key := node.Content[i]; key.ShortTag() != "!!merge" {
			explicit[key.Value] = struct{}{}
		}
	}

	obj := &module.Object{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if key.ShortTag() == "!!merge" {
			if err := yamlMerge(obj, val, explicit); err != nil {
				return nil, err
			}
			continue
		}
		value, err := yamlValue(val)
		if err != nil {
			return nil, err
		}
		obj.Set(key.Value, value)
	}
	return obj, nil
}

// yamlMerge applies a "<<" merge key. Keys written explicitly in the mapping
// win over merged ones regardless of position.
func yamlMerge(obj *module.Object, node *yaml.Node, explicit map[string]struct{}) error {
	sources := []*yaml.Node{node}
	if node.Kind == yaml.SequenceNode {
		sources = node.Content
	}
	for _, src := range sources {
		merged, err := yamlValue(src)
		if err != nil {
			return err
		}
		mapping, ok := merged.(*module.Object)
		if !ok {
			return fmt.Errorf("yaml: line %d: merge value must be a mapping", src.Line)
		}
		for _, m := range mapping.Members() {
			if _, ok := explicit[m.Key]; ok {
				continue
			}
			if _, exists := obj.Get(m.Key); exists {
				continue
			}
			obj.Set(m.Key, m.Value)
		}
	}
	return nil
}

func yamlScalar(node *yaml.Node) (module.Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool", "!!int", "!!float":
		var decoded any
		if err := node.Decode(&decoded); err != nil {
			return nil, err
		}
		value, err := module.FromAny(decoded)
		if err != nil {
			return nil, fmt.Errorf("yaml: line %d: %w", node.Line, err)
		}
		return value, nil
	default:
		return node.Value, nil
	}
}
