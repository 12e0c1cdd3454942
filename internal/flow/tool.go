package flow

import "github.com/waldiez/waldiez-go/internal/models"

// ImportTool builds a typed tool from an untyped JSON object. An unknown
// toolType falls back to "custom"; empty content gets the per-type template.
func ImportTool(raw map[string]any) *models.Tool {
	t := &models.Tool{
		ID:           idOf(raw),
		Name:         stringOr(raw, "name", "new_tool"),
		Description:  stringOr(raw, "description", "A new tool"),
		Tags:         stringList(raw, "tags"),
		Requirements: stringList(raw, "requirements"),
		CreatedAt:    timestampOr(raw, "createdAt"),
		UpdatedAt:    timestampOr(raw, "updatedAt"),
		Rest:         restOf(raw, commonKeys...),
	}

	data, _ := mapField(raw, "data")
	toolType := models.ToolType(stringOr(data, "toolType", ""))
	t.Data = models.NewToolData(toolType, t.Name, stringOr(data, "content", ""))
	if data != nil {
		t.Data.Secrets = stringMapOf(data, "secrets")
		t.Data.Kwargs = anyMapOf(data, "kwargs")
	}
	return t
}

// ExportTool flattens a typed tool back to plain JSON. With hideSecrets every
// secret value is replaced by the redaction sentinel.
func ExportTool(t *models.Tool, hideSecrets bool) map[string]any {
	secrets := map[string]any{}
	for k, v := range t.Data.Secrets {
		if hideSecrets {
			secrets[k] = Redacted
		} else {
			secrets[k] = v
		}
	}

	out := map[string]any{
		"id":           t.ID,
		"type":         "tool",
		"name":         t.Name,
		"description":  t.Description,
		"tags":         toAnyList(t.Tags),
		"requirements": toAnyList(t.Requirements),
		"createdAt":    t.CreatedAt,
		"updatedAt":    t.UpdatedAt,
		"data": map[string]any{
			"content":  t.Data.Content,
			"toolType": string(t.Data.ToolType),
			"secrets":  secrets,
			"kwargs":   t.Data.Kwargs,
		},
	}
	mergeRest(out, t.Rest)
	return out
}

// ToolNode projects a tool onto the graph at the given position.
func ToolNode(t *models.Tool, pos *models.Position) models.Node {
	return models.Node{
		ID:       t.ID,
		Type:     "tool",
		Position: nodePosition(t.Rest, pos),
	}
}
