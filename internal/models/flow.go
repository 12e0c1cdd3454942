package models

const (
	DefaultFlowName        = "Waldiez Flow"
	DefaultFlowDescription = "A waldiez flow"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// Node is the graph-layout record for one entity. The entity itself lives in
// the typed buckets of FlowData; the node only carries placement.
type Node struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"` // "agent" | "model" | "tool"
	Position Position `json:"position"`
	ParentID string   `json:"parentId,omitempty"`
}

type Edge struct {
	ID     string `json:"id"`
	Type   string `json:"type"` // "chat" | "nested" | "hidden" | "group"
	Source string `json:"source"`
	Target string `json:"target"`
	Hidden bool   `json:"hidden,omitempty"`
}

// Graph is the presentation-shaped projection of a flow: plain nodes, edges
// and a viewport, nothing framework-specific.
type Graph struct {
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Viewport Viewport `json:"viewport"`
}

type AgentBuckets struct {
	UserProxyAgents []*Agent `json:"userProxyAgents"`
	Assistants      []*Agent `json:"assistants"`
	GroupManagers   []*Agent `json:"groupManagers"`
	DocAgents       []*Agent `json:"docAgents"`
	Captains        []*Agent `json:"captains"`
	ReasoningAgents []*Agent `json:"reasoningAgents"`
	RemoteAgents    []*Agent `json:"remoteAgents"`
	OtherAgents     []*Agent `json:"otherAgents"`
}

// All returns every agent across the buckets, bucket order preserved.
func (b *AgentBuckets) All() []*Agent {
	var out []*Agent
	out = append(out, b.UserProxyAgents...)
	out = append(out, b.Assistants...)
	out = append(out, b.GroupManagers...)
	out = append(out, b.DocAgents...)
	out = append(out, b.Captains...)
	out = append(out, b.ReasoningAgents...)
	out = append(out, b.RemoteAgents...)
	out = append(out, b.OtherAgents...)
	return out
}

// Add places an agent into the bucket matching its type. Unknown types land
// in OtherAgents.
func (b *AgentBuckets) Add(a *Agent) {
	switch a.AgentType {
	case AgentTypeUserProxy:
		b.UserProxyAgents = append(b.UserProxyAgents, a)
	case AgentTypeAssistant:
		b.Assistants = append(b.Assistants, a)
	case AgentTypeGroupManager:
		b.GroupManagers = append(b.GroupManagers, a)
	case AgentTypeDocAgent:
		b.DocAgents = append(b.DocAgents, a)
	case AgentTypeCaptain:
		b.Captains = append(b.Captains, a)
	case AgentTypeReasoning:
		b.ReasoningAgents = append(b.ReasoningAgents, a)
	case AgentTypeRemote:
		b.RemoteAgents = append(b.RemoteAgents, a)
	default:
		b.OtherAgents = append(b.OtherAgents, a)
	}
}

type FlowData struct {
	Nodes     []Node       `json:"nodes"`
	Edges     []Edge       `json:"edges"`
	Agents    AgentBuckets `json:"agents"`
	Models    []*Model     `json:"models"`
	Tools     []*Tool      `json:"tools"`
	Chats     []*Chat      `json:"chats"`
	IsAsync   bool         `json:"isAsync"`
	CacheSeed *int         `json:"cacheSeed,omitempty"`
	Viewport  Viewport     `json:"viewport"`
}

type Flow struct {
	ID           string         `json:"id"`
	StorageID    string         `json:"storageId"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Tags         []string       `json:"tags"`
	Requirements []string       `json:"requirements"`
	CreatedAt    string         `json:"createdAt"`
	UpdatedAt    string         `json:"updatedAt"`
	Data         FlowData       `json:"data"`
	Rest         map[string]any `json:"-"`
}

// NewFlow returns a flow with the documented defaults applied. Mappers call
// this and then fill in whatever the source document actually provides.
func NewFlow() *Flow {
	return &Flow{
		Name:         DefaultFlowName,
		Description:  DefaultFlowDescription,
		Tags:         []string{},
		Requirements: []string{},
		Data: FlowData{
			Nodes:    []Node{},
			Edges:    []Edge{},
			Models:   []*Model{},
			Tools:    []*Tool{},
			Chats:    []*Chat{},
			Viewport: Viewport{Zoom: 1},
		},
		Rest: map[string]any{},
	}
}

// ModelByID returns the model with the given id, or nil.
func (f *Flow) ModelByID(id string) *Model {
	for _, m := range f.Data.Models {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// ToolByID returns the tool with the given id, or nil.
func (f *Flow) ToolByID(id string) *Tool {
	for _, t := range f.Data.Tools {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// AgentByID returns the agent with the given id, or nil.
func (f *Flow) AgentByID(id string) *Agent {
	for _, a := range f.Data.Agents.All() {
		if a.ID == id {
			return a
		}
	}
	return nil
}
