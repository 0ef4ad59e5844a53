package settings_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-liquid-schemas/pkg/module"
	"github.com/goliatone/go-liquid-schemas/pkg/payload"
	"github.com/goliatone/go-liquid-schemas/pkg/settings"
)

func normalize(t *testing.T, raw string) (string, error) {
	t.Helper()
	value, err := module.DecodeJSON([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	normalized, err := settings.Normalize(value)
	if err != nil {
		return "", err
	}
	out, err := payload.Encode(normalized, payload.EncodeOptions{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return out, nil
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "array passthrough",
			input: `[{"name":"theme_info"},{"name":"Colors","settings":[]}]`,
			want:  `[{"name":"theme_info"},{"name":"Colors","settings":[]}]`,
		},
		{
			name:  "object with settings",
			input: `{"meta":{"name":"theme_info","theme_name":"Dawn"},"settings":[{"name":"Colors","settings":[]}]}`,
			want:  `[{"name":"theme_info","theme_name":"Dawn"},{"name":"Colors","settings":[]}]`,
		},
		{
			name:  "object without settings",
			input: `{"meta":{"name":"theme_info"}}`,
			want:  `[{"name":"theme_info"}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalize(t, tt.input)
			if err != nil {
				t.Fatalf("normalize: %v", err)
			}
			if got != tt.want {
				t.Fatalf("normalize mismatch\nwant: %s\n got: %s", tt.want, got)
			}
		})
	}
}

func TestNormalize_Invalid(t *testing.T) {
	inputs := []string{
		`[]`,
		`{"settings":[]}`,
		`{"meta":{},"settings":{}}`,
		`"settings"`,
	}
	for _, input := range inputs {
		if _, err := normalize(t, input); !errors.Is(err, settings.ErrInvalidSchema) {
			t.Fatalf("expected ErrInvalidSchema for %s, got %v", input, err)
		}
	}
}
