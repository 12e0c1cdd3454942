package flow

import (
	"fmt"

	"github.com/waldiez/waldiez-go/internal/models"
)

var chatKeys = []string{"id", "type", "source", "target", "data"}

// ImportChat validates the edge envelope and builds the typed chat. Unlike
// the other importers it can fail: an edge without well-typed id, type,
// source and target cannot be attached to the graph. The flow importer
// catches and logs the error per entry instead of aborting the document.
func ImportChat(raw map[string]any) (*models.Chat, error) {
	id, ok := raw["id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("chat id missing or not a string")
	}
	chatType := models.ChatType(stringOr(raw, "type", ""))
	if !models.KnownChatType(chatType) {
		return nil, fmt.Errorf("chat %s: unknown type %q", id, raw["type"])
	}
	source, ok := raw["source"].(string)
	if !ok || source == "" {
		return nil, fmt.Errorf("chat %s: source missing or not a string", id)
	}
	target, ok := raw["target"].(string)
	if !ok || target == "" {
		return nil, fmt.Errorf("chat %s: target missing or not a string", id)
	}

	c := &models.Chat{
		ID:     id,
		Type:   chatType,
		Source: source,
		Target: target,
		Data:   models.NewChatData(),
		Rest:   restOf(raw, chatKeys...),
	}

	data, ok := mapField(raw, "data")
	if !ok {
		return c, nil
	}

	c.Data.Name = stringOr(data, "name", "")
	c.Data.Description = stringOr(data, "description", "")
	c.Data.SourceType = models.AgentType(stringOr(data, "sourceType", ""))
	c.Data.TargetType = models.AgentType(stringOr(data, "targetType", ""))
	c.Data.Message = messageOf(data["message"])
	c.Data.Summary = summaryOf(data)
	c.Data.NestedChat = nestedChatMessagesOf(data)
	c.Data.Order = intOr(data, "order", -1)
	c.Data.Position = intOr(data, "position", 0)
	c.Data.MaxTurns = intPtr(data, "maxTurns")
	c.Data.ClearHistory = boolOr(data, "clearHistory", true)
	c.Data.Prerequisites = stringList(data, "prerequisites")
	c.Data.Condition = ParseCondition(data["condition"])
	c.Data.Available = ParseCondition(data["available"])
	return c, nil
}

func messageOf(v any) models.Message {
	msg := models.Message{Type: models.MessageTypeNone, Context: map[string]any{}}
	m, ok := asMap(v)
	if !ok {
		return msg
	}
	if t := models.MessageType(stringOr(m, "type", "")); models.KnownMessageType(t) {
		msg.Type = t
	}
	if s, ok := m["content"].(string); ok {
		msg.Content = &s
	}
	msg.UseCarryover = boolOr(m, "useCarryover", false)
	msg.Context = anyMapOf(m, "context")
	return msg
}

// summaryOf accepts both the camelCase and snake_case method spellings that
// appear in documents from different producers.
func summaryOf(data map[string]any) models.Summary {
	s := models.Summary{Method: models.SummaryNone, Args: map[string]any{}}
	m, ok := mapField(data, "summary")
	if !ok {
		return s
	}
	switch stringOr(m, "method", "") {
	case "reflectionWithLlm", "reflection_with_llm":
		s.Method = models.SummaryReflectionWithLLM
	case "lastMsg", "last_msg":
		s.Method = models.SummaryLastMsg
	}
	s.Prompt = stringOr(m, "prompt", "")
	s.Args = anyMapOf(m, "args")
	return s
}

func nestedChatMessagesOf(data map[string]any) models.NestedChatMessages {
	nc := models.NestedChatMessages{}
	m, ok := mapField(data, "nestedChat")
	if !ok {
		return nc
	}
	if _, ok := asMap(m["message"]); ok {
		msg := messageOf(m["message"])
		nc.Message = &msg
	}
	if _, ok := asMap(m["reply"]); ok {
		reply := messageOf(m["reply"])
		nc.Reply = &reply
	}
	return nc
}

// ExportChat flattens a typed chat back to plain JSON.
func ExportChat(c *models.Chat) map[string]any {
	data := map[string]any{
		"name":          c.Data.Name,
		"description":   c.Data.Description,
		"sourceType":    string(c.Data.SourceType),
		"targetType":    string(c.Data.TargetType),
		"message":       messageMap(c.Data.Message),
		"summary":       summaryMap(c.Data.Summary),
		"order":         float64(c.Data.Order),
		"position":      float64(c.Data.Position),
		"clearHistory":  c.Data.ClearHistory,
		"prerequisites": toAnyList(c.Data.Prerequisites),
	}
	if c.Data.NestedChat.Message != nil || c.Data.NestedChat.Reply != nil {
		nc := map[string]any{}
		if c.Data.NestedChat.Message != nil {
			nc["message"] = messageMap(*c.Data.NestedChat.Message)
		}
		if c.Data.NestedChat.Reply != nil {
			nc["reply"] = messageMap(*c.Data.NestedChat.Reply)
		}
		data["nestedChat"] = nc
	}
	if c.Data.MaxTurns != nil {
		data["maxTurns"] = float64(*c.Data.MaxTurns)
	}
	if c.Data.Condition != nil {
		data["condition"] = conditionMap(c.Data.Condition)
	}
	if c.Data.Available != nil {
		data["available"] = conditionMap(c.Data.Available)
	}

	out := map[string]any{
		"id":     c.ID,
		"type":   string(c.Type),
		"source": c.Source,
		"target": c.Target,
		"data":   data,
	}
	mergeRest(out, c.Rest)
	return out
}

func messageMap(m models.Message) map[string]any {
	out := map[string]any{
		"type":         string(m.Type),
		"useCarryover": m.UseCarryover,
		"context":      m.Context,
	}
	if m.Content != nil {
		out["content"] = *m.Content
	} else {
		out["content"] = nil
	}
	return out
}

func summaryMap(s models.Summary) map[string]any {
	return map[string]any{
		"method": string(s.Method),
		"prompt": s.Prompt,
		"args":   s.Args,
	}
}

// ChatEdge is the graph projection of a chat; edges of type "hidden" are
// marked hidden so the presentation layer can keep them out of view.
func ChatEdge(c *models.Chat) models.Edge {
	return models.Edge{
		ID:     c.ID,
		Type:   string(c.Type),
		Source: c.Source,
		Target: c.Target,
		Hidden: c.Type == models.ChatTypeHidden,
	}
}
