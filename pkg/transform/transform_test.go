package transform_test

import (
	"strings"
	"testing"

	"github.com/goliatone/go-liquid-schemas/pkg/marker"
	"github.com/goliatone/go-liquid-schemas/pkg/transform"
)

func TestRewrite_NoSchemaTag(t *testing.T) {
	input := `<h1>no schema tag</h1>`
	if got := transform.Rewrite(input, `{"name":"x"}`); got != input {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

func TestRewrite_StaticSchemaIsInert(t *testing.T) {
	input := "<h1>static</h1>\n{% schema %}\n{\"name\":\"static\"}\n{% endschema %}"
	if got := transform.Rewrite(input, `{"name":"other"}`); got != input {
		t.Fatalf("static block should be left alone, got %q", got)
	}
}

func TestRewrite_ReferenceMarker(t *testing.T) {
	got := transform.Rewrite(`{% schema './schema' %}`, `{"name":"x"}`)
	want := "{% schema %}\n{\"name\":\"x\"}\n{% endschema %}"
	if got != want {
		t.Fatalf("rewrite mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestRewrite_ReferenceMarkerPreservesSurroundings(t *testing.T) {
	input := "<h1>static</h1>\n\n{%- schema './schema' -%}\n{\"stale\":true}\n{%- endschema -%}\n<footer></footer>\n"
	payload := "{\n  \"name\": \"dynamic schema\"\n}"
	want := "<h1>static</h1>\n\n{% schema %}\n" + payload + "\n{% endschema %}\n<footer></footer>\n"

	if got := transform.Rewrite(input, payload); got != want {
		t.Fatalf("rewrite mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestRewrite_ReferenceCommentAppends(t *testing.T) {
	input := `{% # import schema from 'schema' %}`
	got := transform.Rewrite(input, `{"name":"y"}`)
	want := input + "\n{% schema %}\n{\"name\":\"y\"}\n{% endschema %}"
	if got != want {
		t.Fatalf("rewrite mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestRewrite_ReferenceCommentReplacesExistingBlock(t *testing.T) {
	comment := `{%- # import schema from './hero' -%}`
	input := comment + "\n<div></div>\n{% schema %}\n{\"name\":\"stale\"}\n{% endschema %}\n"
	got := transform.Rewrite(input, `{"name":"z"}`)
	want := comment + "\n<div></div>\n{% schema %}\n{\"name\":\"z\"}\n{% endschema %}\n"

	if got != want {
		t.Fatalf("rewrite mismatch\nwant: %q\n got: %q", want, got)
	}
	if strings.Contains(got, "stale") {
		t.Fatalf("stale content should be gone: %q", got)
	}
}

func TestRewrite_EmptyPayload(t *testing.T) {
	got := transform.Rewrite(`{% schema 'x' %}`, "")
	if got != "{% schema %}\n\n{% endschema %}" {
		t.Fatalf("unexpected degenerate block %q", got)
	}
}

func TestRewrite_OnlyFirstMarker(t *testing.T) {
	input := "{% schema 'a' %}\n{% schema 'b' %}"
	got := transform.Rewrite(input, "{}")
	want := "{% schema %}\n{}\n{% endschema %}\n{% schema 'b' %}"
	if got != want {
		t.Fatalf("rewrite mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestRewrite_IdempotentForReferenceMarker(t *testing.T) {
	inputs := []string{
		`{% schema './schema' %}`,
		"<p>a</p>\n{% schema \"x\" %}{}{% endschema %}\n<p>b</p>",
		"{%\n schema '@schemas/hero'\n%}",
	}
	payload := `{"name":"p"}`

	for _, input := range inputs {
		once := transform.Rewrite(input, payload)
		twice := transform.Rewrite(once, payload)
		if once != twice {
			t.Fatalf("rewrite not idempotent for %q\nonce:  %q\ntwice: %q", input, once, twice)
		}
		if m := marker.Find(once); m.Found {
			t.Fatalf("rewritten text still carries a reference: %#v", m)
		}
	}
}

func TestRewrite_IdempotentForReferenceComment(t *testing.T) {
	input := "{% # import schema from 'schema' %}\n<p></p>"
	payload := `{"name":"p"}`
	once := transform.Rewrite(input, payload)
	twice := transform.Rewrite(once, payload)
	if once != twice {
		t.Fatalf("comment rewrite not stable\nonce:  %q\ntwice: %q", once, twice)
	}
}

func TestDefer_FillMatchesRewrite(t *testing.T) {
	input := "{% # import schema from 'schema' %}\n{% schema %}{}{% endschema %}"
	d := transform.Defer(input)
	if !d.Changed() {
		t.Fatalf("expected deferred rewrite to change the template")
	}
	if d.Match().Variant != marker.ReferenceComment {
		t.Fatalf("unexpected variant %s", d.Match().Variant)
	}

	payload := `{"name":"with {{{ braces }}}"}`
	if got, want := d.Fill(payload), transform.Rewrite(input, payload); got != want {
		t.Fatalf("fill mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestDefer_NoMarker(t *testing.T) {
	d := transform.Defer("<p></p>")
	if d.Changed() {
		t.Fatalf("expected no change")
	}
	if got := d.Fill("{}"); got != "<p></p>" {
		t.Fatalf("fill should return the original text, got %q", got)
	}
}

func TestBlock(t *testing.T) {
	if got := transform.Block("{}"); got != "{% schema %}\n{}\n{% endschema %}" {
		t.Fatalf("unexpected block %q", got)
	}
}
