package models

import "fmt"

type ToolType string

const (
	ToolTypeShared     ToolType = "shared"
	ToolTypeCustom     ToolType = "custom"
	ToolTypeLangchain  ToolType = "langchain"
	ToolTypeCrewAI     ToolType = "crewai"
	ToolTypePredefined ToolType = "predefined"
)

// KnownToolType reports whether t is a recognized tool type.
func KnownToolType(t ToolType) bool {
	switch t {
	case ToolTypeShared, ToolTypeCustom, ToolTypeLangchain, ToolTypeCrewAI, ToolTypePredefined:
		return true
	}
	return false
}

type ToolData struct {
	Content  string            `json:"content"`
	ToolType ToolType          `json:"toolType"`
	Secrets  map[string]string `json:"secrets"`
	Kwargs   map[string]any    `json:"kwargs"`
}

// Tool is a named unit of callable source content available to agents.
type Tool struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Tags         []string       `json:"tags"`
	Requirements []string       `json:"requirements"`
	CreatedAt    string         `json:"createdAt"`
	UpdatedAt    string         `json:"updatedAt"`
	Data         ToolData       `json:"data"`
	Rest         map[string]any `json:"-"`
}

// NewToolData returns tool data with defaults applied. When content is empty
// the per-type template is used.
func NewToolData(toolType ToolType, name, content string) ToolData {
	if !KnownToolType(toolType) {
		toolType = ToolTypeCustom
	}
	if content == "" {
		content = DefaultToolContent(toolType, name)
	}
	return ToolData{
		Content:  content,
		ToolType: toolType,
		Secrets:  map[string]string{},
		Kwargs:   map[string]any{},
	}
}

// DefaultToolContent is the starter source for a fresh tool of the given type.
func DefaultToolContent(toolType ToolType, name string) string {
	if name == "" {
		name = "new_tool"
	}
	switch toolType {
	case ToolTypeShared:
		return fmt.Sprintf("\"\"\"Shared code available to every agent.\"\"\"\n\n%s = \"\"\n", name)
	case ToolTypeLangchain:
		return fmt.Sprintf("\"\"\"Wrap a langchain tool.\"\"\"\n\n# %s: assign the langchain tool instance below.\n%s = None\n", name, name)
	case ToolTypeCrewAI:
		return fmt.Sprintf("\"\"\"Wrap a crewai tool.\"\"\"\n\n# %s: assign the crewai tool instance below.\n%s = None\n", name, name)
	case ToolTypePredefined:
		return ""
	default:
		return fmt.Sprintf("\"\"\"Replace this with your tool's implementation.\"\"\"\n\ndef %s():\n    ...\n", name)
	}
}
