package flow

import (
	"reflect"
	"strings"
	"testing"

	"github.com/waldiez/waldiez-go/internal/models"
)

func toolFixture() map[string]any {
	return map[string]any{
		"id":          "wt-1",
		"type":        "tool",
		"name":        "fetch_prices",
		"description": "Fetches prices",
		"tags":        []any{"finance"},
		"createdAt":   "2024-03-01T10:00:00Z",
		"updatedAt":   "2024-03-01T10:00:00Z",
		"data": map[string]any{
			"content":  "def fetch_prices():\n    ...",
			"toolType": "custom",
			"secrets":  map[string]any{"API_KEY": "sk-123", "API_SECRET": "shh", "RETRIES": 3.0},
		},
	}
}

func TestImportTool(t *testing.T) {
	tool := ImportTool(toolFixture())
	if tool.ID != "wt-1" || tool.Name != "fetch_prices" {
		t.Fatalf("unexpected identity: %s / %s", tool.ID, tool.Name)
	}
	if tool.Data.ToolType != models.ToolTypeCustom {
		t.Errorf("ToolType = %q, want custom", tool.Data.ToolType)
	}
	// non-string secret values are dropped, not coerced
	if len(tool.Data.Secrets) != 2 {
		t.Errorf("Secrets = %v, want the two string-valued entries", tool.Data.Secrets)
	}
}

func TestImportToolUnknownTypeFallsBack(t *testing.T) {
	raw := toolFixture()
	raw["data"].(map[string]any)["toolType"] = "quantum"
	tool := ImportTool(raw)
	if tool.Data.ToolType != models.ToolTypeCustom {
		t.Errorf("ToolType = %q, want custom fallback", tool.Data.ToolType)
	}
}

func TestImportToolDefaultContent(t *testing.T) {
	cases := []struct {
		toolType string
		want     string
	}{
		{"custom", "def new_tool"},
		{"shared", "Shared code"},
		{"langchain", "langchain tool"},
		{"crewai", "crewai tool"},
	}
	for _, tc := range cases {
		t.Run(tc.toolType, func(t *testing.T) {
			tool := ImportTool(map[string]any{
				"id":   "wt-2",
				"name": "new_tool",
				"data": map[string]any{"toolType": tc.toolType},
			})
			if !strings.Contains(tool.Data.Content, tc.want) {
				t.Errorf("default content for %s does not mention %q:\n%s", tc.toolType, tc.want, tool.Data.Content)
			}
		})
	}
}

func TestExportToolRedaction(t *testing.T) {
	tool := ImportTool(toolFixture())

	redacted := ExportTool(tool, true)
	secrets := redacted["data"].(map[string]any)["secrets"].(map[string]any)
	for key, value := range secrets {
		if value != Redacted {
			t.Errorf("secret %s = %v, want %q", key, value, Redacted)
		}
	}

	plain := ExportTool(tool, false)
	secrets = plain["data"].(map[string]any)["secrets"].(map[string]any)
	if secrets["API_KEY"] != "sk-123" {
		t.Errorf("unredacted secret = %v, want original value", secrets["API_KEY"])
	}
}

func TestToolRoundTrip(t *testing.T) {
	first := ImportTool(toolFixture())
	second := ImportTool(ExportTool(first, false))
	if !reflect.DeepEqual(first, second) {
		t.Errorf("tool round-trip mismatch:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestToolNodePosition(t *testing.T) {
	tool := ImportTool(toolFixture())
	node := ToolNode(tool, &models.Position{X: 100, Y: 50})
	if node.Type != "tool" || node.Position.X != 100 {
		t.Errorf("unexpected node: %+v", node)
	}
	node = ToolNode(tool, nil)
	if node.Position != fallbackPosition {
		t.Errorf("node without position = %v, want fallback", node.Position)
	}
}
