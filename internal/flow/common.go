// Package flow converts untyped .waldiez flow documents to the typed object
// graph and back. Import never fails on malformed pieces: wrong types and
// unknown literals degrade to defaults, dangling references are dropped, and
// unrecognized keys survive in each entity's rest bag for lossless
// round-tripping.
package flow

import (
	"time"

	"github.com/google/uuid"

	"github.com/waldiez/waldiez-go/internal/models"
)

// Redacted replaces secret values when a flow is exported with hideSecrets.
const Redacted = "REPLACE_ME"

var fallbackPosition = models.Position{X: 20, Y: 20}

// commonKeys are the top-level entity keys the schema recognizes; everything
// else lands in the rest bag.
var commonKeys = []string{
	"id", "type", "name", "description", "tags", "requirements",
	"createdAt", "updatedAt", "data",
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func mapField(m map[string]any, key string) (map[string]any, bool) {
	if m == nil {
		return nil, false
	}
	return asMap(m[key])
}

func stringOr(m map[string]any, key, fallback string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return fallback
}

// idOf returns the entity's id, generating one when absent or non-string.
func idOf(m map[string]any) string {
	if s, ok := m["id"].(string); ok && s != "" {
		return s
	}
	return uuid.NewString()
}

func stringList(m map[string]any, key string) []string {
	out := []string{}
	items, ok := m[key].([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func stringMapOf(m map[string]any, key string) map[string]string {
	out := map[string]string{}
	sub, ok := mapField(m, key)
	if !ok {
		return out
	}
	for k, v := range sub {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

func anyMapOf(m map[string]any, key string) map[string]any {
	out := map[string]any{}
	sub, ok := mapField(m, key)
	if !ok {
		return out
	}
	for k, v := range sub {
		out[k] = v
	}
	return out
}

func boolOr(m map[string]any, key string, fallback bool) bool {
	if b, ok := m[key].(bool); ok {
		return b
	}
	return fallback
}

func floatOf(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func intOr(m map[string]any, key string, fallback int) int {
	if n, ok := floatOf(m[key]); ok {
		return int(n)
	}
	return fallback
}

func intPtr(m map[string]any, key string) *int {
	if n, ok := floatOf(m[key]); ok {
		v := int(n)
		return &v
	}
	return nil
}

func floatPtr(m map[string]any, key string) *float64 {
	if n, ok := floatOf(m[key]); ok {
		return &n
	}
	return nil
}

// timestampOr returns the value when it is a parseable ISO-8601 string,
// otherwise the current time.
func timestampOr(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		if _, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return s
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

// restOf copies every key of m not in exclude, verbatim.
func restOf(m map[string]any, exclude ...string) map[string]any {
	skip := make(map[string]bool, len(exclude))
	for _, k := range exclude {
		skip[k] = true
	}
	out := map[string]any{}
	for k, v := range m {
		if !skip[k] {
			out[k] = v
		}
	}
	return out
}

// positionOf validates an {x, y} pair. Anything short of two numbers fails.
func positionOf(v any) (models.Position, bool) {
	m, ok := asMap(v)
	if !ok {
		return models.Position{}, false
	}
	x, okX := floatOf(m["x"])
	y, okY := floatOf(m["y"])
	if !okX || !okY {
		return models.Position{}, false
	}
	return models.Position{X: x, Y: y}, true
}

// nodePosition resolves an entity's placement: an explicit position wins,
// then a well-formed "position" in the rest bag, then the fixed fallback.
func nodePosition(rest map[string]any, pos *models.Position) models.Position {
	if pos != nil {
		return *pos
	}
	if p, ok := positionOf(rest["position"]); ok {
		return p
	}
	return fallbackPosition
}

func positionMap(p models.Position) map[string]any {
	return map[string]any{"x": p.X, "y": p.Y}
}

// mergeRest adds rest-bag keys to out without overwriting schema keys.
func mergeRest(out, rest map[string]any) {
	for k, v := range rest {
		if _, taken := out[k]; !taken {
			out[k] = v
		}
	}
}
