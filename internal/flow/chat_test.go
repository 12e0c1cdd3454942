package flow

import (
	"reflect"
	"testing"

	"github.com/waldiez/waldiez-go/internal/models"
)

func chatFixture() map[string]any {
	return map[string]any{
		"id":     "wc-1",
		"type":   "chat",
		"source": "wa-1",
		"target": "wa-2",
		"data": map[string]any{
			"name": "ask",
			"message": map[string]any{
				"type":         "string",
				"content":      "What is the plan?",
				"useCarryover": true,
				"context":      map[string]any{"topic": "planning"},
			},
			"summary": map[string]any{
				"method": "reflectionWithLlm",
				"prompt": "Summarize the conversation.",
			},
			"order":    1.0,
			"maxTurns": 4.0,
			"condition": map[string]any{
				"condition_type": "string_context",
				"variable_name":  "approved",
			},
		},
	}
}

func TestImportChat(t *testing.T) {
	c, err := ImportChat(chatFixture())
	if err != nil {
		t.Fatalf("ImportChat returned error: %v", err)
	}
	if c.Type != models.ChatTypeChat || c.Source != "wa-1" || c.Target != "wa-2" {
		t.Fatalf("unexpected envelope: %+v", c)
	}
	if c.Data.Message.Type != models.MessageTypeString || c.Data.Message.Content == nil {
		t.Errorf("message not imported: %+v", c.Data.Message)
	}
	if !c.Data.Message.UseCarryover {
		t.Error("carryover flag lost")
	}
	if c.Data.Summary.Method != models.SummaryReflectionWithLLM {
		t.Errorf("summary method = %q, want reflectionWithLlm", c.Data.Summary.Method)
	}
	if c.Data.MaxTurns == nil || *c.Data.MaxTurns != 4 {
		t.Errorf("MaxTurns = %v, want 4", c.Data.MaxTurns)
	}
	if c.Data.Condition == nil || c.Data.Condition.Kind != models.ConditionStringContext {
		t.Errorf("condition not imported: %+v", c.Data.Condition)
	}
}

func TestImportChatEnvelopeValidation(t *testing.T) {
	cases := []struct {
		name string
		raw  map[string]any
	}{
		{"missing id", map[string]any{"type": "chat", "source": "a", "target": "b"}},
		{"numeric id", map[string]any{"id": 1.0, "type": "chat", "source": "a", "target": "b"}},
		{"unknown type", map[string]any{"id": "c", "type": "bond", "source": "a", "target": "b"}},
		{"missing source", map[string]any{"id": "c", "type": "chat", "target": "b"}},
		{"missing target", map[string]any{"id": "c", "type": "chat", "source": "a"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ImportChat(tc.raw); err == nil {
				t.Error("ImportChat should reject a malformed envelope")
			}
		})
	}
}

func TestSummaryMethodSpellings(t *testing.T) {
	cases := []struct {
		method any
		want   models.SummaryMethod
	}{
		{"reflectionWithLlm", models.SummaryReflectionWithLLM},
		{"reflection_with_llm", models.SummaryReflectionWithLLM},
		{"lastMsg", models.SummaryLastMsg},
		{"last_msg", models.SummaryLastMsg},
		{nil, models.SummaryNone},
		{"unknown", models.SummaryNone},
	}
	for _, tc := range cases {
		raw := chatFixture()
		raw["data"].(map[string]any)["summary"] = map[string]any{"method": tc.method}
		c, err := ImportChat(raw)
		if err != nil {
			t.Fatalf("ImportChat returned error: %v", err)
		}
		if c.Data.Summary.Method != tc.want {
			t.Errorf("method %v imported as %q, want %q", tc.method, c.Data.Summary.Method, tc.want)
		}
	}
}

func TestImportChatNestedMessages(t *testing.T) {
	raw := chatFixture()
	raw["type"] = "nested"
	raw["data"].(map[string]any)["nestedChat"] = map[string]any{
		"message": map[string]any{"type": "string", "content": "go"},
		"reply":   map[string]any{"type": "none"},
	}
	c, err := ImportChat(raw)
	if err != nil {
		t.Fatalf("ImportChat returned error: %v", err)
	}
	if c.Data.NestedChat.Message == nil || *c.Data.NestedChat.Message.Content != "go" {
		t.Errorf("nested message not imported: %+v", c.Data.NestedChat.Message)
	}
	if c.Data.NestedChat.Reply == nil || c.Data.NestedChat.Reply.Type != models.MessageTypeNone {
		t.Errorf("nested reply not imported: %+v", c.Data.NestedChat.Reply)
	}
}

func TestChatRoundTrip(t *testing.T) {
	first, err := ImportChat(chatFixture())
	if err != nil {
		t.Fatalf("ImportChat returned error: %v", err)
	}
	second, err := ImportChat(ExportChat(first))
	if err != nil {
		t.Fatalf("re-import returned error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("chat round-trip mismatch:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestChatEdgeHiddenFlag(t *testing.T) {
	raw := chatFixture()
	raw["type"] = "hidden"
	c, err := ImportChat(raw)
	if err != nil {
		t.Fatalf("ImportChat returned error: %v", err)
	}
	edge := ChatEdge(c)
	if !edge.Hidden {
		t.Error("hidden edge should carry the hidden flag")
	}
	raw["type"] = "group"
	c, _ = ImportChat(raw)
	if ChatEdge(c).Hidden {
		t.Error("group edge should not be hidden")
	}
}
