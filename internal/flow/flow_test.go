package flow

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/waldiez/waldiez-go/internal/models"
)

func flowFixture() map[string]any {
	return map[string]any{
		"type":        "flow",
		"id":          "wf-1",
		"storageId":   "wf-1",
		"name":        "Support flow",
		"description": "Routes support questions",
		"tags":        []any{"support"},
		"createdAt":   "2024-03-01T10:00:00Z",
		"updatedAt":   "2024-03-02T10:00:00Z",
		"customKey":   "custom value",
		"data": map[string]any{
			"nodes": []any{
				map[string]any{"id": "wa-1", "type": "agent", "position": map[string]any{"x": 0.0, "y": 0.0}},
				map[string]any{"id": "wa-2", "type": "agent", "position": map[string]any{"x": 200.0, "y": 0.0}},
				map[string]any{"id": "wm-1", "type": "model", "position": map[string]any{"x": 0.0, "y": 200.0}},
				map[string]any{"id": "wt-1", "type": "tool", "position": map[string]any{"x": 200.0, "y": 200.0}},
			},
			"agents": map[string]any{
				"userProxyAgents": []any{
					map[string]any{
						"id": "wa-1", "agentType": "user_proxy", "name": "user",
						"createdAt": "2024-03-01T10:00:00Z", "updatedAt": "2024-03-01T10:00:00Z",
					},
				},
				"assistants": []any{
					map[string]any{
						"id": "wa-2", "agentType": "assistant", "name": "assistant",
						"createdAt": "2024-03-01T10:00:00Z", "updatedAt": "2024-03-01T10:00:00Z",
						"data": map[string]any{
							"modelIds": []any{"wm-1"},
							"tools":    []any{map[string]any{"id": "wt-1"}},
						},
					},
				},
			},
			"models": []any{
				map[string]any{
					"id": "wm-1", "type": "model", "name": "gpt-4o",
					"createdAt": "2024-03-01T10:00:00Z", "updatedAt": "2024-03-01T10:00:00Z",
					"data": map[string]any{"apiType": "openai", "apiKey": "sk-123"},
				},
			},
			"tools": []any{
				map[string]any{
					"id": "wt-1", "type": "tool", "name": "lookup",
					"createdAt": "2024-03-01T10:00:00Z", "updatedAt": "2024-03-01T10:00:00Z",
					"data": map[string]any{"toolType": "custom", "content": "def lookup():\n    ...", "secrets": map[string]any{"KEY": "v"}},
				},
			},
			"chats": []any{
				map[string]any{
					"id": "wc-1", "type": "chat", "source": "wa-1", "target": "wa-2",
					"data": map[string]any{"order": 0.0},
				},
			},
			"isAsync":  false,
			"viewport": map[string]any{"x": 10.0, "y": 20.0, "zoom": 1.5},
		},
	}
}

func TestImportFlowEmptyDocument(t *testing.T) {
	f, err := ImportFlow([]byte(`{}`))
	if err != nil {
		t.Fatalf("ImportFlow({}) returned error: %v", err)
	}
	if f.Name != "Waldiez Flow" {
		t.Errorf("Name = %q, want default", f.Name)
	}
	if f.Description != "A waldiez flow" {
		t.Errorf("Description = %q, want default", f.Description)
	}
	if len(f.Data.Nodes) != 0 || len(f.Data.Chats) != 0 || len(f.Data.Models) != 0 || len(f.Data.Tools) != 0 {
		t.Error("empty document should import as an empty flow")
	}
	if len(f.Data.Agents.All()) != 0 {
		t.Error("empty document should have no agents")
	}
	if f.Data.Viewport.Zoom != 1 {
		t.Errorf("Zoom = %v, want 1", f.Data.Viewport.Zoom)
	}
}

func TestImportFlowInvalidJSON(t *testing.T) {
	if _, err := ImportFlow([]byte(`{not json`)); err == nil {
		t.Error("ImportFlow should fail on malformed JSON")
	}
}

func TestImportFlow(t *testing.T) {
	f := ImportFlowMap(flowFixture())
	if f.ID != "wf-1" || f.Name != "Support flow" {
		t.Fatalf("unexpected flow identity: %s / %s", f.ID, f.Name)
	}
	if len(f.Data.Agents.UserProxyAgents) != 1 || len(f.Data.Agents.Assistants) != 1 {
		t.Fatalf("unexpected buckets: %+v", f.Data.Agents)
	}
	if len(f.Data.Models) != 1 || len(f.Data.Tools) != 1 || len(f.Data.Chats) != 1 {
		t.Fatal("entity lists not imported")
	}
	if len(f.Data.Nodes) != 4 || len(f.Data.Edges) != 1 {
		t.Errorf("graph shape: %d nodes, %d edges; want 4, 1", len(f.Data.Nodes), len(f.Data.Edges))
	}
	if f.Rest["customKey"] != "custom value" {
		t.Error("unknown top-level key should survive in the rest bag")
	}
	if f.Data.Viewport.Zoom != 1.5 {
		t.Errorf("Zoom = %v, want 1.5", f.Data.Viewport.Zoom)
	}
}

func TestNodeFiltering(t *testing.T) {
	data := map[string]any{
		"nodes": []any{
			map[string]any{"id": "1", "type": "invalid", "position": map[string]any{"x": 1.0, "y": 1.0}},
			map[string]any{"id": "2", "type": "agent", "position": "nowhere"},
			map[string]any{"id": "3", "type": "model"},
			map[string]any{"type": "agent", "position": map[string]any{"x": 1.0, "y": 1.0}},
		},
	}
	nodes := importNodes(data)
	if len(nodes) != 2 {
		t.Fatalf("importNodes kept %d nodes, want 2", len(nodes))
	}
	for _, n := range nodes {
		if n.Position != fallbackPosition {
			t.Errorf("node %s position = %v, want fallback {20 20}", n.ID, n.Position)
		}
	}
}

func TestReferentialPruning(t *testing.T) {
	t.Run("agent without node is dropped", func(t *testing.T) {
		f := ImportFlowMap(map[string]any{
			"data": map[string]any{
				"nodes": []any{},
				"agents": map[string]any{
					"assistants": []any{
						map[string]any{"id": "wa-2", "agentType": "assistant", "name": "ghost"},
					},
				},
			},
		})
		if len(f.Data.Agents.Assistants) != 0 {
			t.Errorf("assistants = %d entries, want 0", len(f.Data.Agents.Assistants))
		}
	})

	t.Run("node without agent is dropped", func(t *testing.T) {
		f := ImportFlowMap(map[string]any{
			"data": map[string]any{
				"nodes": []any{
					map[string]any{"id": "wa-9", "type": "agent", "position": map[string]any{"x": 0.0, "y": 0.0}},
				},
			},
		})
		if len(f.Data.Nodes) != 0 {
			t.Errorf("nodes = %d entries, want 0", len(f.Data.Nodes))
		}
	})

	t.Run("dangling links are pruned", func(t *testing.T) {
		raw := flowFixture()
		data := raw["data"].(map[string]any)
		assistant := data["agents"].(map[string]any)["assistants"].([]any)[0].(map[string]any)
		assistant["data"] = map[string]any{
			"modelIds": []any{"wm-1", "wm-ghost"},
			"tools":    []any{map[string]any{"id": "wt-1"}, map[string]any{"id": "wt-ghost"}},
			"handoffs": []any{"wc-1", "wc-ghost"},
			"afterWork": map[string]any{
				"target_type": "AgentTarget", "target": "wa-ghost",
			},
		}
		f := ImportFlowMap(raw)
		a := f.AgentByID("wa-2")
		if a == nil {
			t.Fatal("assistant missing")
		}
		if !reflect.DeepEqual(a.Data.ModelIDs, []string{"wm-1"}) {
			t.Errorf("ModelIDs = %v, want [wm-1]", a.Data.ModelIDs)
		}
		if len(a.Data.Tools) != 1 || a.Data.Tools[0].ID != "wt-1" {
			t.Errorf("Tools = %+v, want only wt-1", a.Data.Tools)
		}
		if !reflect.DeepEqual(a.Data.Handoffs, []string{"wc-1"}) {
			t.Errorf("Handoffs = %v, want [wc-1]", a.Data.Handoffs)
		}
		if a.Data.AfterWork != nil {
			t.Errorf("AfterWork = %+v, want nil after pruning", a.Data.AfterWork)
		}
	})

	t.Run("chat with unknown endpoint is dropped", func(t *testing.T) {
		raw := flowFixture()
		data := raw["data"].(map[string]any)
		data["chats"] = append(data["chats"].([]any), map[string]any{
			"id": "wc-2", "type": "chat", "source": "wa-1", "target": "wa-ghost",
		})
		f := ImportFlowMap(raw)
		if len(f.Data.Chats) != 1 {
			t.Errorf("chats = %d, want 1", len(f.Data.Chats))
		}
	})
}

func TestImportFlowSkipsMalformedChat(t *testing.T) {
	raw := flowFixture()
	data := raw["data"].(map[string]any)
	data["chats"] = []any{
		"not an object",
		map[string]any{"id": "wc-bad", "type": "chat", "source": "wa-1"}, // no target
		data["chats"].([]any)[0],
	}
	f := ImportFlowMap(raw)
	if len(f.Data.Chats) != 1 || f.Data.Chats[0].ID != "wc-1" {
		t.Errorf("surviving chats = %+v, want only wc-1", f.Data.Chats)
	}
}

func TestFlowRoundTrip(t *testing.T) {
	first := ImportFlowMap(flowFixture())
	second := ImportFlowMap(ExportFlow(first, false, false))
	if !reflect.DeepEqual(first, second) {
		t.Errorf("flow round-trip mismatch:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestFlowRoundTripThroughJSON(t *testing.T) {
	first := ImportFlowMap(flowFixture())
	doc, err := MarshalFlow(first, false, true)
	if err != nil {
		t.Fatalf("MarshalFlow returned error: %v", err)
	}
	second, err := ImportFlow(doc)
	if err != nil {
		t.Fatalf("re-import returned error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("flow changed across a serialize/parse round-trip")
	}
}

func TestExportFlowRedactsSecrets(t *testing.T) {
	f := ImportFlowMap(flowFixture())
	out := ExportFlow(f, true, true)

	var doc map[string]any
	raw, _ := json.Marshal(out)
	json.Unmarshal(raw, &doc)

	data := doc["data"].(map[string]any)
	model := data["models"].([]any)[0].(map[string]any)
	if model["data"].(map[string]any)["apiKey"] != Redacted {
		t.Error("model apiKey not redacted")
	}
	tool := data["tools"].([]any)[0].(map[string]any)
	secrets := tool["data"].(map[string]any)["secrets"].(map[string]any)
	if secrets["KEY"] != Redacted {
		t.Error("tool secret not redacted")
	}
}

func TestExportFlowLinkEmbedding(t *testing.T) {
	f := ImportFlowMap(flowFixture())

	withLinks := ExportFlow(f, false, false)
	assistant := withLinks["data"].(map[string]any)["agents"].(map[string]any)["assistants"].([]any)[0].(map[string]any)
	if _, ok := assistant["linkedModels"]; !ok {
		t.Error("export without skipLinks should embed linked model names")
	}

	skipped := ExportFlow(f, false, true)
	assistant = skipped["data"].(map[string]any)["agents"].(map[string]any)["assistants"].([]any)[0].(map[string]any)
	if _, ok := assistant["linkedModels"]; ok {
		t.Error("export with skipLinks should not embed link names")
	}
}

func TestIdempotentDefaulting(t *testing.T) {
	first := ImportFlowMap(map[string]any{
		"id": "wf-2",
		"data": map[string]any{
			"nodes": []any{
				map[string]any{"id": "wa-1", "type": "agent", "position": map[string]any{"x": 0.0, "y": 0.0}},
			},
			"agents": map[string]any{
				"assistants": []any{map[string]any{"id": "wa-1", "agentType": "assistant"}},
			},
		},
	})
	second := ImportFlowMap(ExportFlow(first, false, true))
	third := ImportFlowMap(ExportFlow(second, false, true))
	if !reflect.DeepEqual(second, third) {
		t.Error("defaulting is not idempotent across repeated import/export")
	}
}

func TestGraphOf(t *testing.T) {
	f := ImportFlowMap(flowFixture())
	g := GraphOf(f)
	if len(g.Nodes) != 4 || len(g.Edges) != 1 {
		t.Fatalf("graph shape: %d nodes, %d edges; want 4, 1", len(g.Nodes), len(g.Edges))
	}
	byID := map[string]models.Node{}
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}
	if byID["wa-2"].Position.X != 200 {
		t.Errorf("wa-2 position = %v, want x=200", byID["wa-2"].Position)
	}
	if g.Viewport.Zoom != 1.5 {
		t.Errorf("viewport zoom = %v, want 1.5", g.Viewport.Zoom)
	}
}

func TestLinksOf(t *testing.T) {
	raw := flowFixture()
	data := raw["data"].(map[string]any)
	data["nodes"] = append(data["nodes"].([]any), map[string]any{
		"id": "wm-2", "type": "model", "position": map[string]any{"x": 0.0, "y": 400.0},
	})
	data["models"] = append(data["models"].([]any), map[string]any{
		"id": "wm-2", "type": "model", "name": "unused",
	})
	f := ImportFlowMap(raw)
	links := LinksOf(f)
	if !reflect.DeepEqual(links.AgentModels["wa-2"], []string{"wm-1"}) {
		t.Errorf("AgentModels[wa-2] = %v, want [wm-1]", links.AgentModels["wa-2"])
	}
	if !reflect.DeepEqual(links.UnusedModels, []string{"wm-2"}) {
		t.Errorf("UnusedModels = %v, want [wm-2]", links.UnusedModels)
	}
}
