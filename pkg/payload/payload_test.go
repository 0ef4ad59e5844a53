package payload_test

import (
	"testing"

	"github.com/goliatone/go-liquid-schemas/pkg/module"
	"github.com/goliatone/go-liquid-schemas/pkg/payload"
)

func mustDecode(t *testing.T, raw string) module.Value {
	t.Helper()
	value, err := module.DecodeJSON([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return value
}

func TestEncode_DefaultIndent(t *testing.T) {
	value := mustDecode(t, `{"name":"dynamic schema","settings":[]}`)
	got, err := payload.Encode(value, payload.DefaultEncodeOptions())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "{\n  \"name\": \"dynamic schema\",\n  \"settings\": []\n}"
	if got != want {
		t.Fatalf("encode mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestEncode_Compact(t *testing.T) {
	value := mustDecode(t, `{ "b": 1, "a": "<em>x</em>" }`)
	got, err := payload.Encode(value, payload.EncodeOptions{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got != `{"b":1,"a":"<em>x</em>"}` {
		t.Fatalf("unexpected compact output %q", got)
	}
}

func TestEncode_Nil(t *testing.T) {
	got, err := payload.Encode(nil, payload.DefaultEncodeOptions())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got != "null" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestSanitize(t *testing.T) {
	value := mustDecode(t, `{
		"name": "<script>keep()</script>",
		"settings": [
			{"type": "paragraph", "content": "Read <a href=\"https://example.com\" onclick=\"x()\">docs</a><script>alert(1)</script>"},
			{"type": "text", "id": "title", "info": "<strong>Bold</strong> tip"},
			{"type": "text", "id": "plain", "info": "Tom & Jerry"}
		]
	}`)

	cleaned := payload.Sanitize(value)
	got, err := payload.Encode(cleaned, payload.EncodeOptions{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	want := `{"name":"<script>keep()</script>","settings":[` +
		`{"type":"paragraph","content":"Read <a href=\"https://example.com\">docs</a>"},` +
		`{"type":"text","id":"title","info":"<strong>Bold</strong> tip"},` +
		`{"type":"text","id":"plain","info":"Tom & Jerry"}]}`
	if got != want {
		t.Fatalf("sanitize mismatch\nwant: %s\n got: %s", want, got)
	}
}

func TestSanitize_DoesNotMutateInput(t *testing.T) {
	value := mustDecode(t, `{"info":"<script>x</script>ok"}`)
	_ = payload.Sanitize(value, "info")

	obj := value.(*module.Object)
	if got, _ := obj.Get("info"); got != "<script>x</script>ok" {
		t.Fatalf("input was mutated: %v", got)
	}
}
