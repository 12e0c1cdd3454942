package flow

import (
	"reflect"
	"testing"

	"github.com/waldiez/waldiez-go/internal/models"
)

func agentFixture(agentType string) map[string]any {
	return map[string]any{
		"id":        "wa-1",
		"type":      "agent",
		"agentType": agentType,
		"name":      "assistant",
		"createdAt": "2024-03-01T10:00:00Z",
		"updatedAt": "2024-03-01T10:00:00Z",
		"data": map[string]any{
			"systemMessage":  "You are helpful.",
			"humanInputMode": "NEVER",
			"modelIds":       []any{"wm-1"},
			"tools": []any{
				map[string]any{"id": "wt-1", "executorId": "wa-2"},
			},
			"termination": map[string]any{
				"type":     "keyword",
				"keywords": []any{"TERMINATE"},
			},
			"afterWork": map[string]any{"target_type": "TerminateTarget"},
		},
	}
}

func TestImportAgentVariantDispatch(t *testing.T) {
	cases := []struct {
		agentType string
		want      models.AgentType
	}{
		{"user_proxy", models.AgentTypeUserProxy},
		{"assistant", models.AgentTypeAssistant},
		{"group_manager", models.AgentTypeGroupManager},
		{"doc_agent", models.AgentTypeDocAgent},
		{"captain", models.AgentTypeCaptain},
		{"reasoning", models.AgentTypeReasoning},
		{"remote", models.AgentTypeRemote},
		{"holographic", models.AgentTypeOther},
		{"", models.AgentTypeOther},
	}
	for _, tc := range cases {
		t.Run(tc.agentType, func(t *testing.T) {
			a := ImportAgent(agentFixture(tc.agentType))
			if a.AgentType != tc.want {
				t.Errorf("AgentType = %q, want %q", a.AgentType, tc.want)
			}
		})
	}
}

func TestImportAgentVariantPayloads(t *testing.T) {
	t.Run("group manager", func(t *testing.T) {
		raw := agentFixture("group_manager")
		raw["data"].(map[string]any)["groupManager"] = map[string]any{
			"maxRound":       5.0,
			"initialAgentId": "wa-9",
			"speakers": map[string]any{
				"selectionMethod": "round_robin",
				"transitionsType": "disallowed",
			},
		}
		a := ImportAgent(raw)
		gm := a.Data.GroupManager
		if gm == nil {
			t.Fatal("GroupManager payload missing")
		}
		if gm.MaxRound != 5 || gm.Speakers.SelectionMethod != models.SpeakerSelectionRoundRobin {
			t.Errorf("unexpected group manager payload: %+v", gm)
		}
		if a.Data.Doc != nil || a.Data.Captain != nil {
			t.Error("foreign variant payloads should stay nil")
		}
	})

	t.Run("doc agent", func(t *testing.T) {
		raw := agentFixture("doc_agent")
		raw["data"].(map[string]any)["doc"] = map[string]any{
			"collectionName": "docs",
			"queryEngine":    map[string]any{"type": "VectorChromaQueryEngine", "enableQueryCitations": true},
		}
		a := ImportAgent(raw)
		if a.Data.Doc == nil || a.Data.Doc.QueryEngine == nil {
			t.Fatal("doc payload missing")
		}
		if !a.Data.Doc.QueryEngine.EnableCitations {
			t.Error("query engine citations flag lost")
		}
	})

	t.Run("reasoning defaults survive partial config", func(t *testing.T) {
		raw := agentFixture("reasoning")
		raw["data"].(map[string]any)["reasoning"] = map[string]any{
			"reasonConfig": map[string]any{"method": "mcts"},
		}
		a := ImportAgent(raw)
		rc := a.Data.Reasoning.ReasonConfig
		if rc.Method != "mcts" {
			t.Errorf("Method = %q, want mcts", rc.Method)
		}
		if rc.MaxDepth != 3 || rc.BeamSize != 3 {
			t.Errorf("defaults lost: %+v", rc)
		}
	})
}

func TestImportAgentCodeExecution(t *testing.T) {
	raw := agentFixture("assistant")
	raw["data"].(map[string]any)["codeExecutionConfig"] = false
	if a := ImportAgent(raw); a.Data.CodeExecution != nil {
		t.Error("codeExecutionConfig=false should disable code execution")
	}

	raw["data"].(map[string]any)["codeExecutionConfig"] = map[string]any{
		"workDir": "coding",
		"timeout": 60.0,
	}
	a := ImportAgent(raw)
	if a.Data.CodeExecution == nil || a.Data.CodeExecution.WorkDir != "coding" {
		t.Fatalf("code execution config not imported: %+v", a.Data.CodeExecution)
	}
	if a.Data.CodeExecution.Timeout == nil || *a.Data.CodeExecution.Timeout != 60 {
		t.Errorf("Timeout = %v, want 60", a.Data.CodeExecution.Timeout)
	}
}

func TestImportAgentHumanInputModeDefaults(t *testing.T) {
	userProxy := ImportAgent(map[string]any{"id": "u", "agentType": "user_proxy"})
	if userProxy.Data.HumanInputMode != models.HumanInputAlways {
		t.Errorf("user proxy default = %q, want ALWAYS", userProxy.Data.HumanInputMode)
	}
	assistant := ImportAgent(map[string]any{"id": "a", "agentType": "assistant"})
	if assistant.Data.HumanInputMode != models.HumanInputNever {
		t.Errorf("assistant default = %q, want NEVER", assistant.Data.HumanInputMode)
	}

	raw := agentFixture("assistant")
	raw["data"].(map[string]any)["humanInputMode"] = "SOMETIMES"
	a := ImportAgent(raw)
	if a.Data.HumanInputMode != models.HumanInputNever {
		t.Errorf("invalid mode = %q, want NEVER fallback", a.Data.HumanInputMode)
	}
}

func TestImportAgentToolLinks(t *testing.T) {
	raw := agentFixture("assistant")
	raw["data"].(map[string]any)["tools"] = []any{
		map[string]any{"id": "wt-1"},
		map[string]any{"executorId": "wa-2"}, // no id, dropped
		"wt-3",                               // not an object, dropped
		map[string]any{"id": "wt-4", "executorId": "wa-5"},
	}
	a := ImportAgent(raw)
	if len(a.Data.Tools) != 2 {
		t.Fatalf("Tools = %+v, want 2 surviving links", a.Data.Tools)
	}
	if a.Data.Tools[1].ExecutorID != "wa-5" {
		t.Errorf("ExecutorID = %q, want wa-5", a.Data.Tools[1].ExecutorID)
	}
}

func TestAgentRoundTrip(t *testing.T) {
	for _, agentType := range []string{"user_proxy", "assistant", "group_manager", "doc_agent", "captain", "reasoning", "remote"} {
		t.Run(agentType, func(t *testing.T) {
			first := ImportAgent(agentFixture(agentType))
			second := ImportAgent(ExportAgent(first, false))
			if !reflect.DeepEqual(first, second) {
				t.Errorf("agent round-trip mismatch:\nfirst:  %+v\nsecond: %+v", first, second)
			}
		})
	}
}
