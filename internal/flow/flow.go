package flow

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/waldiez/waldiez-go/internal/logger"
	"github.com/waldiez/waldiez-go/internal/models"
)

var flowKeys = []string{
	"id", "type", "storageId", "name", "description", "tags", "requirements",
	"createdAt", "updatedAt", "data",
}

// bucketKeys in their canonical order; unknown bucket names in the agents map
// are still scanned (sorted) so their entries are not lost.
var bucketKeys = []string{
	"userProxyAgents", "assistants", "groupManagers", "docAgents",
	"captains", "reasoningAgents", "remoteAgents", "otherAgents",
}

// ImportFlow parses and imports a complete .waldiez document. The only error
// is malformed JSON; everything past the syntax level degrades leniently.
func ImportFlow(doc []byte) (*models.Flow, error) {
	var raw map[string]any
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("parse flow document: %w", err)
	}
	return ImportFlowMap(raw), nil
}

// ImportFlowMap imports an already-decoded document. It never fails: the
// worst case for a malformed document is an empty flow with defaults.
func ImportFlowMap(raw map[string]any) *models.Flow {
	f := models.NewFlow()
	if raw == nil {
		return f
	}

	f.ID = idOf(raw)
	f.StorageID = stringOr(raw, "storageId", f.ID)
	f.Name = stringOr(raw, "name", models.DefaultFlowName)
	f.Description = stringOr(raw, "description", models.DefaultFlowDescription)
	f.Tags = stringList(raw, "tags")
	f.Requirements = stringList(raw, "requirements")
	f.CreatedAt = timestampOr(raw, "createdAt")
	f.UpdatedAt = timestampOr(raw, "updatedAt")
	f.Rest = restOf(raw, flowKeys...)

	data, ok := mapField(raw, "data")
	if !ok {
		return f
	}

	f.Data.IsAsync = boolOr(data, "isAsync", false)
	f.Data.CacheSeed = intPtr(data, "cacheSeed")
	f.Data.Viewport = viewportOf(data["viewport"])

	nodes := importNodes(data)
	agentNodes := map[string]bool{}
	modelNodes := map[string]bool{}
	toolNodes := map[string]bool{}
	for _, n := range nodes {
		switch n.Type {
		case "agent":
			agentNodes[n.ID] = true
		case "model":
			modelNodes[n.ID] = true
		case "tool":
			toolNodes[n.ID] = true
		}
	}

	// Node membership is the source of truth: entities without a node are
	// dropped, and nodes without an entity are dropped afterwards.
	modelIDs := map[string]bool{}
	for _, item := range listField(data, "models") {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		model := ImportModel(m)
		if !modelNodes[model.ID] || modelIDs[model.ID] {
			continue
		}
		modelIDs[model.ID] = true
		f.Data.Models = append(f.Data.Models, model)
	}

	toolIDs := map[string]bool{}
	for _, item := range listField(data, "tools") {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		tool := ImportTool(m)
		if !toolNodes[tool.ID] || toolIDs[tool.ID] {
			continue
		}
		toolIDs[tool.ID] = true
		f.Data.Tools = append(f.Data.Tools, tool)
	}

	agentIDs := map[string]bool{}
	for _, item := range bucketEntries(data) {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		agent := ImportAgent(m)
		if !agentNodes[agent.ID] || agentIDs[agent.ID] {
			continue
		}
		agentIDs[agent.ID] = true
		f.Data.Agents.Add(agent)
	}

	for _, n := range nodes {
		keep := false
		switch n.Type {
		case "agent":
			keep = agentIDs[n.ID]
		case "model":
			keep = modelIDs[n.ID]
		case "tool":
			keep = toolIDs[n.ID]
		}
		if keep {
			f.Data.Nodes = append(f.Data.Nodes, n)
		}
	}

	chatIDs := map[string]bool{}
	for i, item := range listField(data, "chats") {
		m, ok := asMap(item)
		if !ok {
			logger.Warn("Skipping chat %d: not an object", i)
			continue
		}
		chat, err := ImportChat(m)
		if err != nil {
			logger.Warn("Skipping chat %d: %v", i, err)
			continue
		}
		if chatIDs[chat.ID] || !agentIDs[chat.Source] || !agentIDs[chat.Target] {
			continue
		}
		chatIDs[chat.ID] = true
		f.Data.Chats = append(f.Data.Chats, chat)
		f.Data.Edges = append(f.Data.Edges, ChatEdge(chat))
	}

	pruneReferences(f, agentIDs, modelIDs, toolIDs, chatIDs)
	return f
}

// pruneReferences drops every dangling id an entity still points at after
// node reconciliation.
func pruneReferences(f *models.Flow, agentIDs, modelIDs, toolIDs, chatIDs map[string]bool) {
	for _, a := range f.Data.Agents.All() {
		a.Data.ModelIDs = keepKnown(a.Data.ModelIDs, modelIDs)
		a.Data.Handoffs = keepKnown(a.Data.Handoffs, chatIDs)

		links := a.Data.Tools[:0]
		for _, l := range a.Data.Tools {
			if !toolIDs[l.ID] {
				continue
			}
			if l.ExecutorID != "" && !agentIDs[l.ExecutorID] {
				l.ExecutorID = ""
			}
			links = append(links, l)
		}
		a.Data.Tools = links

		a.Data.AfterWork = pruneTarget(a.Data.AfterWork, agentIDs)
		if a.Data.ParentID != "" && !agentIDs[a.Data.ParentID] {
			a.Data.ParentID = ""
		}
		if gm := a.Data.GroupManager; gm != nil {
			if gm.InitialAgentID != "" && !agentIDs[gm.InitialAgentID] {
				gm.InitialAgentID = ""
			}
		}
	}

	for _, c := range f.Data.Chats {
		c.Data.Prerequisites = keepKnown(c.Data.Prerequisites, chatIDs)
	}
}

func pruneTarget(t *models.TransitionTarget, agentIDs map[string]bool) *models.TransitionTarget {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case models.TargetAgent:
		if !agentIDs[t.Target] {
			return nil
		}
	case models.TargetRandomAgent:
		t.Targets = keepKnown(t.Targets, agentIDs)
		if len(t.Targets) == 0 {
			return nil
		}
	}
	return t
}

func keepKnown(ids []string, known map[string]bool) []string {
	out := ids[:0]
	for _, id := range ids {
		if known[id] {
			out = append(out, id)
		}
	}
	return out
}

func listField(m map[string]any, key string) []any {
	items, _ := m[key].([]any)
	return items
}

// importNodes keeps nodes with a string id and a known type; a malformed
// position degrades to the fallback coordinate instead of rejecting the node.
func importNodes(data map[string]any) []models.Node {
	var out []models.Node
	seen := map[string]bool{}
	for _, item := range listField(data, "nodes") {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		id, ok := m["id"].(string)
		if !ok || id == "" || seen[id] {
			continue
		}
		nodeType := stringOr(m, "type", "")
		switch nodeType {
		case "agent", "model", "tool":
		default:
			continue
		}
		pos, ok := positionOf(m["position"])
		if !ok {
			pos = fallbackPosition
		}
		seen[id] = true
		out = append(out, models.Node{
			ID:       id,
			Type:     nodeType,
			Position: pos,
			ParentID: stringOr(m, "parentId", ""),
		})
	}
	return out
}

func bucketEntries(data map[string]any) []any {
	agents, ok := mapField(data, "agents")
	if !ok {
		return nil
	}
	known := map[string]bool{}
	var out []any
	for _, key := range bucketKeys {
		known[key] = true
		out = append(out, listField(agents, key)...)
	}
	var extra []string
	for key := range agents {
		if !known[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		out = append(out, listField(agents, key)...)
	}
	return out
}

func viewportOf(v any) models.Viewport {
	vp := models.Viewport{Zoom: 1}
	m, ok := asMap(v)
	if !ok {
		return vp
	}
	if x, ok := floatOf(m["x"]); ok {
		vp.X = x
	}
	if y, ok := floatOf(m["y"]); ok {
		vp.Y = y
	}
	if z, ok := floatOf(m["zoom"]); ok && z > 0 {
		vp.Zoom = z
	}
	return vp
}

// ExportFlow flattens a flow back to its plain JSON document form. When
// skipLinks is false each exported agent additionally carries the resolved
// names of its linked models and tools; the importer recognizes and discards
// those so a round-trip stays stable.
func ExportFlow(f *models.Flow, hideSecrets, skipLinks bool) map[string]any {
	nodes := make([]any, len(f.Data.Nodes))
	for i, n := range f.Data.Nodes {
		nodes[i] = nodeMap(n)
	}
	edges := make([]any, len(f.Data.Chats))
	chats := make([]any, len(f.Data.Chats))
	for i, c := range f.Data.Chats {
		edges[i] = edgeMap(ChatEdge(c))
		chats[i] = ExportChat(c)
	}
	modelsOut := make([]any, len(f.Data.Models))
	for i, m := range f.Data.Models {
		modelsOut[i] = ExportModel(m, hideSecrets)
	}
	toolsOut := make([]any, len(f.Data.Tools))
	for i, t := range f.Data.Tools {
		toolsOut[i] = ExportTool(t, hideSecrets)
	}

	buckets := map[string]any{
		"userProxyAgents": exportBucket(f, f.Data.Agents.UserProxyAgents, hideSecrets, skipLinks),
		"assistants":      exportBucket(f, f.Data.Agents.Assistants, hideSecrets, skipLinks),
		"groupManagers":   exportBucket(f, f.Data.Agents.GroupManagers, hideSecrets, skipLinks),
		"docAgents":       exportBucket(f, f.Data.Agents.DocAgents, hideSecrets, skipLinks),
		"captains":        exportBucket(f, f.Data.Agents.Captains, hideSecrets, skipLinks),
		"reasoningAgents": exportBucket(f, f.Data.Agents.ReasoningAgents, hideSecrets, skipLinks),
		"remoteAgents":    exportBucket(f, f.Data.Agents.RemoteAgents, hideSecrets, skipLinks),
		"otherAgents":     exportBucket(f, f.Data.Agents.OtherAgents, hideSecrets, skipLinks),
	}

	data := map[string]any{
		"nodes":    nodes,
		"edges":    edges,
		"agents":   buckets,
		"models":   modelsOut,
		"tools":    toolsOut,
		"chats":    chats,
		"isAsync":  f.Data.IsAsync,
		"viewport": viewportMap(f.Data.Viewport),
	}
	if f.Data.CacheSeed != nil {
		data["cacheSeed"] = float64(*f.Data.CacheSeed)
	}

	out := map[string]any{
		"type":         "flow",
		"id":           f.ID,
		"storageId":    f.StorageID,
		"name":         f.Name,
		"description":  f.Description,
		"tags":         toAnyList(f.Tags),
		"requirements": toAnyList(f.Requirements),
		"createdAt":    f.CreatedAt,
		"updatedAt":    f.UpdatedAt,
		"data":         data,
	}
	mergeRest(out, f.Rest)
	return out
}

func exportBucket(f *models.Flow, agents []*models.Agent, hideSecrets, skipLinks bool) []any {
	out := make([]any, len(agents))
	for i, a := range agents {
		m := ExportAgent(a, hideSecrets)
		if !skipLinks {
			var modelNames, toolNames []any
			for _, id := range a.Data.ModelIDs {
				if model := f.ModelByID(id); model != nil {
					modelNames = append(modelNames, model.Name)
				}
			}
			for _, l := range a.Data.Tools {
				if tool := f.ToolByID(l.ID); tool != nil {
					toolNames = append(toolNames, tool.Name)
				}
			}
			m["linkedModels"] = modelNames
			m["linkedTools"] = toolNames
		}
		out[i] = m
	}
	return out
}

// MarshalFlow exports and serializes a flow document.
func MarshalFlow(f *models.Flow, hideSecrets, skipLinks bool) ([]byte, error) {
	doc, err := json.MarshalIndent(ExportFlow(f, hideSecrets, skipLinks), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal flow document: %w", err)
	}
	return doc, nil
}

func nodeMap(n models.Node) map[string]any {
	out := map[string]any{
		"id":       n.ID,
		"type":     n.Type,
		"position": positionMap(n.Position),
	}
	if n.ParentID != "" {
		out["parentId"] = n.ParentID
	}
	return out
}

func edgeMap(e models.Edge) map[string]any {
	out := map[string]any{
		"id":     e.ID,
		"type":   e.Type,
		"source": e.Source,
		"target": e.Target,
	}
	if e.Hidden {
		out["hidden"] = true
	}
	return out
}

func viewportMap(v models.Viewport) map[string]any {
	return map[string]any{"x": v.X, "y": v.Y, "zoom": v.Zoom}
}

// GraphOf projects a flow onto plain nodes, edges and a viewport. Entity
// positions come from the reconciled node list; entities that somehow lack a
// node fall back to the fixed placement.
func GraphOf(f *models.Flow) models.Graph {
	positions := make(map[string]models.Position, len(f.Data.Nodes))
	for _, n := range f.Data.Nodes {
		positions[n.ID] = n.Position
	}
	at := func(id string) *models.Position {
		if p, ok := positions[id]; ok {
			return &p
		}
		return nil
	}

	g := models.Graph{Viewport: f.Data.Viewport, Nodes: []models.Node{}, Edges: []models.Edge{}}
	for _, a := range f.Data.Agents.All() {
		g.Nodes = append(g.Nodes, AgentNode(a, at(a.ID)))
	}
	for _, m := range f.Data.Models {
		g.Nodes = append(g.Nodes, ModelNode(m, at(m.ID)))
	}
	for _, t := range f.Data.Tools {
		g.Nodes = append(g.Nodes, ToolNode(t, at(t.ID)))
	}
	for _, c := range f.Data.Chats {
		g.Edges = append(g.Edges, ChatEdge(c))
	}
	return g
}

// FlowLinks is the referential report for one flow: which models and tools
// each agent actually uses, and which entities nothing references.
type FlowLinks struct {
	AgentModels  map[string][]string `json:"agentModels"`
	AgentTools   map[string][]string `json:"agentTools"`
	UnusedModels []string            `json:"unusedModels"`
	UnusedTools  []string            `json:"unusedTools"`
}

// LinksOf computes the referential report for a flow.
func LinksOf(f *models.Flow) FlowLinks {
	links := FlowLinks{
		AgentModels:  map[string][]string{},
		AgentTools:   map[string][]string{},
		UnusedModels: []string{},
		UnusedTools:  []string{},
	}
	usedModels := map[string]bool{}
	usedTools := map[string]bool{}
	for _, a := range f.Data.Agents.All() {
		links.AgentModels[a.ID] = append([]string{}, a.Data.ModelIDs...)
		toolIDs := []string{}
		for _, l := range a.Data.Tools {
			toolIDs = append(toolIDs, l.ID)
			usedTools[l.ID] = true
		}
		links.AgentTools[a.ID] = toolIDs
		for _, id := range a.Data.ModelIDs {
			usedModels[id] = true
		}
	}
	for _, m := range f.Data.Models {
		if !usedModels[m.ID] {
			links.UnusedModels = append(links.UnusedModels, m.ID)
		}
	}
	for _, t := range f.Data.Tools {
		if !usedTools[t.ID] {
			links.UnusedTools = append(links.UnusedTools, t.ID)
		}
	}
	return links
}
