package evaluator

import (
	"context"

	"github.com/goliatone/go-liquid-schemas/pkg/module"
)

// JSONDecoder reads .json modules, keeping key order.
type JSONDecoder struct{}

func (JSONDecoder) Name() string { return "json" }

func (JSONDecoder) Extensions() []string { return []string{".json"} }

func (JSONDecoder) Decode(_ context.Context, doc module.Document) (module.Value, error) {
	return module.DecodeJSON(doc.Raw())
}
