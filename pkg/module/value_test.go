package module_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-liquid-schemas/pkg/module"
)

func TestDecodeJSON_PreservesKeyOrder(t *testing.T) {
	raw := []byte(`{"name":"Hero","tag":"section","settings":[{"type":"text","id":"title","label":"Title"}],"max_blocks":4}`)

	value, err := module.DecodeJSON(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	obj, ok := value.(*module.Object)
	if !ok {
		t.Fatalf("expected object, got %T", value)
	}
	if diff := cmp.Diff([]string{"name", "tag", "settings", "max_blocks"}, obj.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}

	encoded, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(encoded) != string(raw) {
		t.Fatalf("round trip mismatch\nwant: %s\n got: %s", raw, encoded)
	}
}

func TestDecodeJSON_KeepsNumberLiterals(t *testing.T) {
	value, err := module.DecodeJSON([]byte(`[1.50, 10, -3e2]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []module.Value{json.Number("1.50"), json.Number("10"), json.Number("-3e2")}
	if diff := cmp.Diff(want, value); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeJSON_Errors(t *testing.T) {
	if _, err := module.DecodeJSON([]byte("  \n")); !errors.Is(err, module.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
	if _, err := module.DecodeJSON([]byte(`{"a":1} {"b":2}`)); err == nil {
		t.Fatalf("expected trailing data error")
	}
	if _, err := module.DecodeJSON([]byte(`{"a":`)); err == nil || errors.Is(err, module.ErrEmptyDocument) {
		t.Fatalf("expected truncated document error, got %v", err)
	}
}

func TestObject_MarshalWithoutHTMLEscaping(t *testing.T) {
	obj := module.NewObject(
		module.Member{Key: "info", Value: `See <a href="/x">docs</a> & more`},
	)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(obj); err != nil {
		t.Fatalf("encode: %v", err)
	}
	encoded := strings.TrimSuffix(buf.String(), "\n")
	want := `{"info":"See <a href=\"/x\">docs</a> & more"}`
	if encoded != want {
		t.Fatalf("encoding mismatch\nwant: %s\n got: %s", want, encoded)
	}
}

func TestObject_SetKeepsPosition(t *testing.T) {
	obj := module.NewObject(
		module.Member{Key: "a", Value: "1"},
		module.Member{Key: "b", Value: "2"},
	)
	obj.Set("a", "3")

	if diff := cmp.Diff([]string{"a", "b"}, obj.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if got, _ := obj.Get("a"); got != "3" {
		t.Fatalf("expected overwritten value, got %v", got)
	}
	if obj.Len() != 2 {
		t.Fatalf("unexpected length %d", obj.Len())
	}
}

func TestFromAny_SortsMapKeys(t *testing.T) {
	value, err := module.FromAny(map[string]any{
		"b": 2,
		"a": []any{true, nil, 1.5},
	})
	if err != nil {
		t.Fatalf("from any: %v", err)
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(encoded) != `{"a":[true,null,1.5],"b":2}` {
		t.Fatalf("unexpected encoding %s", encoded)
	}
}

func TestFromAny_FormatsFloats(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 0.000001, want: "0.000001"},
		{in: 123456789.5, want: "123456789.5"},
		{in: 1e20, want: "100000000000000000000"},
		{in: 1e21, want: "1e+21"},
		{in: 1.5e-7, want: "1.5e-7"},
		{in: -2.25, want: "-2.25"},
		{in: 0, want: "0"},
	}
	for _, tt := range tests {
		value, err := module.FromAny(tt.in)
		if err != nil {
			t.Fatalf("from any %v: %v", tt.in, err)
		}
		if value != json.Number(tt.want) {
			t.Fatalf("%v: expected %s, got %v", tt.in, tt.want, value)
		}
	}
}

func TestFromAny_RejectsUnsupported(t *testing.T) {
	if _, err := module.FromAny(struct{}{}); err == nil {
		t.Fatalf("expected unsupported type error")
	}
}

func TestModuleDefault(t *testing.T) {
	mod := module.Module{Location: "schemas/hero.json", Exports: map[string]module.Value{}}
	_, err := mod.Default()
	if !errors.Is(err, module.ErrMissingDefaultExport) {
		t.Fatalf("expected ErrMissingDefaultExport, got %v", err)
	}
	if err.Error() != `no matching export in "schemas/hero.json" for import "default"` {
		t.Fatalf("unexpected message %q", err.Error())
	}

	_, err = mod.Export("named")
	if errors.Is(err, module.ErrMissingDefaultExport) {
		t.Fatalf("named export miss should not match the default sentinel")
	}
}

func TestUnresolvedError(t *testing.T) {
	var err error = &module.UnresolvedError{Specifier: "./missing", Importer: "sections/hero.liquid"}
	if !errors.Is(err, module.ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved match")
	}
	if errors.Is(err, module.ErrMissingDefaultExport) {
		t.Fatalf("resolution failures must be distinguishable from missing exports")
	}
	if err.Error() != `could not resolve "./missing" from "sections/hero.liquid"` {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestSourceKey(t *testing.T) {
	if got := module.SourceKey(module.SourceFromFS("./schemas/../schemas/hero.json")); got != "fs:schemas/hero.json" {
		t.Fatalf("unexpected key %q", got)
	}
	if module.SourceKey(nil) != "" {
		t.Fatalf("nil source should have an empty key")
	}
}
