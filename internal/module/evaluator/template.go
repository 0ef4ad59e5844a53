package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-liquid-schemas/pkg/module"
)

// TemplateDecoder renders .json.tpl modules with pongo2 and decodes the
// output as JSON. Autoescaping is off; the "json" filter encodes any value
// as a JSON literal.
type TemplateDecoder struct {
	set *pongo2.TemplateSet
}

// NewTemplateDecoder builds a decoder whose templates can include files from
// files and see globals as context.
func NewTemplateDecoder(files fs.FS, globals map[string]any) *TemplateDecoder {
	if files == nil {
		files = emptyFS{}
	}
	set := pongo2.NewSet("liquid-schemas", pongo2.NewFSLoader(files))
	set.Globals = make(pongo2.Context, len(globals))
	for key, value := range globals {
		if key = strings.TrimSpace(key); key != "" {
			set.Globals[key] = value
		}
	}
	registerTemplateFilters()
	return &TemplateDecoder{set: set}
}

func (*TemplateDecoder) Name() string { return "template" }

func (*TemplateDecoder) Extensions() []string { return []string{".json.tpl"} }

func (d *TemplateDecoder) Decode(ctx context.Context, doc module.Document) (module.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source := "{% autoescape off %}" + string(doc.Raw()) + "{% endautoescape %}"

	tmpl, err := d.set.FromString(source)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	rendered, err := tmpl.Execute(pongo2.Context{
		"module": map[string]any{"path": doc.Location()},
	})
	if err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}
	return module.DecodeJSON([]byte(rendered))
}

var templateFiltersOnce sync.Once

func registerTemplateFilters() {
	templateFiltersOnce.Do(func() {
		if !pongo2.FilterExists("json") {
			_ = pongo2.RegisterFilter("json", filterJSON)
		}
	})
}

func filterJSON(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	encoded, err := json.Marshal(in.Interface())
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:json", OrigError: err}
	}
	return pongo2.AsSafeValue(string(encoded)), nil
}

type emptyFS struct{}

func (emptyFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}
