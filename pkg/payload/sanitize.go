package payload

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-liquid-schemas/pkg/module"
)

// DefaultSanitizeFields are the setting members whose text the theme editor
// renders as markup.
var DefaultSanitizeFields = []string{"info", "content"}

var (
	markupPolicyOnce sync.Once
	markupPolicy     *bluemonday.Policy
)

// Sanitize returns a copy of value where string members named in fields are
// stripped of markup the theme editor does not support. Other members are
// copied untouched. When fields is empty DefaultSanitizeFields is used.
func Sanitize(value module.Value, fields ...string) module.Value {
	if len(fields) == 0 {
		fields = DefaultSanitizeFields
	}
	names := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		names[strings.TrimSpace(field)] = struct{}{}
	}
	return sanitizeValue(value, names)
}

func sanitizeValue(value module.Value, names map[string]struct{}) module.Value {
	switch v := value.(type) {
	case *module.Object:
		out := &module.Object{}
		for _, m := range v.Members() {
			if text, ok := m.Value.(string); ok {
				if _, match := names[m.Key]; match {
					out.Set(m.Key, sanitizeMarkup(text))
					continue
				}
			}
			out.Set(m.Key, sanitizeValue(m.Value, names))
		}
		return out
	case []module.Value:
		out := make([]module.Value, len(v))
		for i, item := range v {
			out[i] = sanitizeValue(item, names)
		}
		return out
	default:
		return value
	}
}

func sanitizeMarkup(raw string) string {
	if !strings.ContainsAny(raw, "<>") {
		return raw
	}
	return strings.TrimSpace(markupSanitizer().Sanitize(raw))
}

func markupSanitizer() *bluemonday.Policy {
	markupPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("b", "strong", "em", "i", "br", "p")
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowStandardURLs()
		policy.RequireNoFollowOnLinks(false)
		markupPolicy = policy
	})
	return markupPolicy
}
