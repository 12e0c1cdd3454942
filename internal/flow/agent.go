package flow

import "github.com/waldiez/waldiez-go/internal/models"

// agentKeys extends the common exclusion list with the agent-only envelope
// keys, including the link arrays a non-skipLinks export embeds.
var agentKeys = append([]string{"agentType", "linkedModels", "linkedTools"}, commonKeys...)

// ImportAgent builds a typed agent from an untyped JSON object. Unknown
// agentType values fall back to the generic variant; every data field
// degrades to its variant default on type mismatch.
func ImportAgent(raw map[string]any) *models.Agent {
	agentType := models.AgentType(stringOr(raw, "agentType", ""))
	if !models.KnownAgentType(agentType) {
		agentType = models.AgentTypeOther
	}

	a := &models.Agent{
		ID:           idOf(raw),
		AgentType:    agentType,
		Name:         stringOr(raw, "name", "Agent"),
		Description:  stringOr(raw, "description", "A new agent"),
		Tags:         stringList(raw, "tags"),
		Requirements: stringList(raw, "requirements"),
		CreatedAt:    timestampOr(raw, "createdAt"),
		UpdatedAt:    timestampOr(raw, "updatedAt"),
		Data:         models.NewAgentData(agentType),
		Rest:         restOf(raw, agentKeys...),
	}

	data, ok := mapField(raw, "data")
	if !ok {
		return a
	}

	a.Data.SystemMessage = stringOr(data, "systemMessage", "")
	if mode := models.HumanInputMode(stringOr(data, "humanInputMode", "")); knownHumanInputMode(mode) {
		a.Data.HumanInputMode = mode
	}
	a.Data.CodeExecution = codeExecutionOf(data["codeExecutionConfig"])
	a.Data.AgentDefaultAutoReply = stringOr(data, "agentDefaultAutoReply", "")
	a.Data.MaxConsecutiveReply = intPtr(data, "maxConsecutiveAutoReply")
	a.Data.Termination = terminationOf(data)
	a.Data.ModelIDs = stringList(data, "modelIds")
	a.Data.Tools = toolLinksOf(data)
	a.Data.NestedChats = nestedChatsOf(data)
	a.Data.Handoffs = stringList(data, "handoffs")
	a.Data.AfterWork = ParseTransitionTarget(data["afterWork"])
	a.Data.ContextVariables = anyMapOf(data, "contextVariables")
	a.Data.ParentID = stringOr(data, "parentId", "")

	switch agentType {
	case models.AgentTypeGroupManager:
		a.Data.GroupManager = groupManagerOf(data, a.Data.GroupManager)
	case models.AgentTypeDocAgent:
		a.Data.Doc = docAgentOf(data)
	case models.AgentTypeCaptain:
		a.Data.Captain = captainOf(data, a.Data.Captain)
	case models.AgentTypeReasoning:
		a.Data.Reasoning = reasoningOf(data, a.Data.Reasoning)
	case models.AgentTypeRemote:
		a.Data.Remote = &models.RemoteData{URL: urlOf(data)}
	}
	return a
}

func knownHumanInputMode(m models.HumanInputMode) bool {
	switch m {
	case models.HumanInputAlways, models.HumanInputNever, models.HumanInputTerminate:
		return true
	}
	return false
}

// codeExecutionOf treats anything that is not a config map as "disabled";
// the JSON literal false is the common spelling.
func codeExecutionOf(v any) *models.CodeExecutionConfig {
	m, ok := asMap(v)
	if !ok {
		return nil
	}
	return &models.CodeExecutionConfig{
		WorkDir:       stringOr(m, "workDir", ""),
		UseDocker:     boolPtrOf(m, "useDocker"),
		Timeout:       intPtr(m, "timeout"),
		LastNMessages: intPtr(m, "lastNMessages"),
		Functions:     stringList(m, "functions"),
	}
}

func boolPtrOf(m map[string]any, key string) *bool {
	if b, ok := m[key].(bool); ok {
		return &b
	}
	return nil
}

func terminationOf(data map[string]any) models.TerminationConfig {
	cfg := models.TerminationConfig{
		Type:      models.TerminationNone,
		Keywords:  []string{},
		Criterion: models.CriterionFound,
	}
	m, ok := mapField(data, "termination")
	if !ok {
		return cfg
	}
	switch t := models.TerminationType(stringOr(m, "type", "")); t {
	case models.TerminationKeyword, models.TerminationMethod:
		cfg.Type = t
	}
	cfg.Keywords = stringList(m, "keywords")
	switch c := models.TerminationCriterion(stringOr(m, "criterion", "")); c {
	case models.CriterionEnding, models.CriterionStarting, models.CriterionExact:
		cfg.Criterion = c
	}
	cfg.MethodContent = stringOr(m, "methodContent", "")
	return cfg
}

// toolLinksOf keeps only entries with a string id.
func toolLinksOf(data map[string]any) []models.ToolLink {
	out := []models.ToolLink{}
	items, ok := data["tools"].([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		id, ok := m["id"].(string)
		if !ok || id == "" {
			continue
		}
		out = append(out, models.ToolLink{
			ID:         id,
			ExecutorID: stringOr(m, "executorId", ""),
		})
	}
	return out
}

func nestedChatsOf(data map[string]any) []models.NestedChatConfig {
	out := []models.NestedChatConfig{}
	items, ok := data["nestedChats"].([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		cfg := models.NestedChatConfig{
			TriggeredBy: stringList(m, "triggeredBy"),
			Messages:    []models.NestedChatRef{},
		}
		if msgs, ok := m["messages"].([]any); ok {
			for _, raw := range msgs {
				mm, ok := asMap(raw)
				if !ok {
					continue
				}
				id, ok := mm["id"].(string)
				if !ok || id == "" {
					continue
				}
				cfg.Messages = append(cfg.Messages, models.NestedChatRef{
					ID:      id,
					IsReply: boolOr(mm, "isReply", false),
				})
			}
		}
		out = append(out, cfg)
	}
	return out
}

func groupManagerOf(data map[string]any, defaults *models.GroupManagerData) *models.GroupManagerData {
	gm := *defaults
	m, ok := mapField(data, "groupManager")
	if !ok {
		return &gm
	}
	gm.MaxRound = intOr(m, "maxRound", gm.MaxRound)
	gm.AdminName = stringOr(m, "adminName", "")
	gm.InitialAgentID = stringOr(m, "initialAgentId", "")
	if speakers, ok := mapField(m, "speakers"); ok {
		switch method := models.SpeakerSelectionMethod(stringOr(speakers, "selectionMethod", "")); method {
		case models.SpeakerSelectionAuto, models.SpeakerSelectionManual, models.SpeakerSelectionRandom,
			models.SpeakerSelectionRoundRobin, models.SpeakerSelectionCustom:
			gm.Speakers.SelectionMethod = method
		}
		gm.Speakers.SelectionCustomMethod = stringOr(speakers, "selectionCustomMethod", "")
		gm.Speakers.MaxRetriesForSelect = intPtr(speakers, "maxRetriesForSelecting")
		if t := stringOr(speakers, "transitionsType", ""); t == "allowed" || t == "disallowed" {
			gm.Speakers.TransitionsType = t
		}
		gm.Speakers.Transitions = transitionsOf(speakers)
	}
	return &gm
}

func transitionsOf(speakers map[string]any) map[string][]string {
	out := map[string][]string{}
	m, ok := mapField(speakers, "allowedOrDisallowedTransitions")
	if !ok {
		return out
	}
	for k, v := range m {
		ids := []string{}
		if items, ok := v.([]any); ok {
			for _, item := range items {
				if s, ok := item.(string); ok {
					ids = append(ids, s)
				}
			}
		}
		out[k] = ids
	}
	return out
}

func docAgentOf(data map[string]any) *models.DocAgentData {
	d := &models.DocAgentData{}
	m, ok := mapField(data, "doc")
	if !ok {
		return d
	}
	d.CollectionName = stringOr(m, "collectionName", "")
	d.ResetCollection = boolOr(m, "resetCollection", false)
	d.ParsedDocsPath = stringOr(m, "parsedDocsPath", "")
	if qe, ok := mapField(m, "queryEngine"); ok {
		d.QueryEngine = &models.QueryEngineConfig{
			Type:              stringOr(qe, "type", ""),
			DBPath:            stringOr(qe, "dbPath", ""),
			EnableCitations:   boolOr(qe, "enableQueryCitations", false),
			CitationChunkSize: intPtr(qe, "citationChunkSize"),
		}
	}
	return d
}

func captainOf(data map[string]any, defaults *models.CaptainData) *models.CaptainData {
	c := *defaults
	m, ok := mapField(data, "captain")
	if !ok {
		return &c
	}
	c.ToolLib = stringOr(m, "toolLib", "")
	c.MaxRound = intOr(m, "maxRound", c.MaxRound)
	c.MaxTurns = intOr(m, "maxTurns", c.MaxTurns)
	if items, ok := m["agentLib"].([]any); ok {
		for _, item := range items {
			em, ok := asMap(item)
			if !ok {
				continue
			}
			c.AgentLib = append(c.AgentLib, models.AgentLibEntry{
				Name:          stringOr(em, "name", ""),
				Description:   stringOr(em, "description", ""),
				SystemMessage: stringOr(em, "systemMessage", ""),
			})
		}
	}
	return &c
}

func reasoningOf(data map[string]any, defaults *models.ReasoningData) *models.ReasoningData {
	r := *defaults
	m, ok := mapField(data, "reasoning")
	if !ok {
		return &r
	}
	r.Verbose = boolOr(m, "verbose", false)
	if rc, ok := mapField(m, "reasonConfig"); ok {
		switch method := stringOr(rc, "method", ""); method {
		case "beam_search", "mcts", "lats", "dfs":
			r.ReasonConfig.Method = method
		}
		r.ReasonConfig.MaxDepth = intOr(rc, "maxDepth", r.ReasonConfig.MaxDepth)
		r.ReasonConfig.ForestSize = intOr(rc, "forestSize", r.ReasonConfig.ForestSize)
		r.ReasonConfig.RatingScale = intOr(rc, "ratingScale", r.ReasonConfig.RatingScale)
		r.ReasonConfig.BeamSize = intOr(rc, "beamSize", r.ReasonConfig.BeamSize)
		if approach := stringOr(rc, "answerApproach", ""); approach == "pool" || approach == "best" {
			r.ReasonConfig.AnswerApproach = approach
		}
		r.ReasonConfig.Nsim = intOr(rc, "nsim", r.ReasonConfig.Nsim)
		if v, ok := floatOf(rc["explorationConstant"]); ok {
			r.ReasonConfig.ExplorationConstant = v
		}
	}
	return &r
}

func urlOf(data map[string]any) string {
	m, ok := mapField(data, "remote")
	if !ok {
		return ""
	}
	return stringOr(m, "url", "")
}

// ExportAgent flattens a typed agent back to plain JSON. hideSecrets is
// accepted for interface symmetry; agents carry no secret-shaped fields of
// their own.
func ExportAgent(a *models.Agent, hideSecrets bool) map[string]any {
	_ = hideSecrets

	data := map[string]any{
		"systemMessage":         a.Data.SystemMessage,
		"humanInputMode":        string(a.Data.HumanInputMode),
		"agentDefaultAutoReply": a.Data.AgentDefaultAutoReply,
		"termination":           terminationMap(a.Data.Termination),
		"modelIds":              toAnyList(a.Data.ModelIDs),
		"tools":                 toolLinksMap(a.Data.Tools),
		"nestedChats":           nestedChatsMap(a.Data.NestedChats),
		"handoffs":              toAnyList(a.Data.Handoffs),
		"contextVariables":      a.Data.ContextVariables,
	}
	if a.Data.CodeExecution != nil {
		data["codeExecutionConfig"] = codeExecutionMap(a.Data.CodeExecution)
	} else {
		data["codeExecutionConfig"] = false
	}
	if a.Data.MaxConsecutiveReply != nil {
		data["maxConsecutiveAutoReply"] = float64(*a.Data.MaxConsecutiveReply)
	}
	if a.Data.AfterWork != nil {
		data["afterWork"] = targetMap(a.Data.AfterWork)
	}
	if a.Data.ParentID != "" {
		data["parentId"] = a.Data.ParentID
	}

	switch a.AgentType {
	case models.AgentTypeGroupManager:
		if a.Data.GroupManager != nil {
			data["groupManager"] = groupManagerMap(a.Data.GroupManager)
		}
	case models.AgentTypeDocAgent:
		if a.Data.Doc != nil {
			data["doc"] = docAgentMap(a.Data.Doc)
		}
	case models.AgentTypeCaptain:
		if a.Data.Captain != nil {
			data["captain"] = captainMap(a.Data.Captain)
		}
	case models.AgentTypeReasoning:
		if a.Data.Reasoning != nil {
			data["reasoning"] = reasoningMap(a.Data.Reasoning)
		}
	case models.AgentTypeRemote:
		if a.Data.Remote != nil {
			data["remote"] = map[string]any{"url": a.Data.Remote.URL}
		}
	case models.AgentTypeUserProxy, models.AgentTypeAssistant, models.AgentTypeOther:
		// no variant payload
	}

	out := map[string]any{
		"id":           a.ID,
		"type":         "agent",
		"agentType":    string(a.AgentType),
		"name":         a.Name,
		"description":  a.Description,
		"tags":         toAnyList(a.Tags),
		"requirements": toAnyList(a.Requirements),
		"createdAt":    a.CreatedAt,
		"updatedAt":    a.UpdatedAt,
		"data":         data,
	}
	mergeRest(out, a.Rest)
	return out
}

func terminationMap(t models.TerminationConfig) map[string]any {
	return map[string]any{
		"type":          string(t.Type),
		"keywords":      toAnyList(t.Keywords),
		"criterion":     string(t.Criterion),
		"methodContent": t.MethodContent,
	}
}

func codeExecutionMap(c *models.CodeExecutionConfig) map[string]any {
	out := map[string]any{}
	if c.WorkDir != "" {
		out["workDir"] = c.WorkDir
	}
	if c.UseDocker != nil {
		out["useDocker"] = *c.UseDocker
	}
	if c.Timeout != nil {
		out["timeout"] = float64(*c.Timeout)
	}
	if c.LastNMessages != nil {
		out["lastNMessages"] = float64(*c.LastNMessages)
	}
	if len(c.Functions) > 0 {
		out["functions"] = toAnyList(c.Functions)
	}
	return out
}

func toolLinksMap(links []models.ToolLink) []any {
	out := make([]any, len(links))
	for i, l := range links {
		m := map[string]any{"id": l.ID}
		if l.ExecutorID != "" {
			m["executorId"] = l.ExecutorID
		}
		out[i] = m
	}
	return out
}

func nestedChatsMap(cfgs []models.NestedChatConfig) []any {
	out := make([]any, len(cfgs))
	for i, cfg := range cfgs {
		msgs := make([]any, len(cfg.Messages))
		for j, ref := range cfg.Messages {
			msgs[j] = map[string]any{"id": ref.ID, "isReply": ref.IsReply}
		}
		out[i] = map[string]any{
			"triggeredBy": toAnyList(cfg.TriggeredBy),
			"messages":    msgs,
		}
	}
	return out
}

func groupManagerMap(gm *models.GroupManagerData) map[string]any {
	transitions := map[string]any{}
	for k, ids := range gm.Speakers.Transitions {
		transitions[k] = toAnyList(ids)
	}
	speakers := map[string]any{
		"selectionMethod":                string(gm.Speakers.SelectionMethod),
		"selectionCustomMethod":          gm.Speakers.SelectionCustomMethod,
		"transitionsType":                gm.Speakers.TransitionsType,
		"allowedOrDisallowedTransitions": transitions,
	}
	if gm.Speakers.MaxRetriesForSelect != nil {
		speakers["maxRetriesForSelecting"] = float64(*gm.Speakers.MaxRetriesForSelect)
	}
	return map[string]any{
		"maxRound":       float64(gm.MaxRound),
		"adminName":      gm.AdminName,
		"initialAgentId": gm.InitialAgentID,
		"speakers":       speakers,
	}
}

func docAgentMap(d *models.DocAgentData) map[string]any {
	out := map[string]any{
		"collectionName":  d.CollectionName,
		"resetCollection": d.ResetCollection,
		"parsedDocsPath":  d.ParsedDocsPath,
	}
	if d.QueryEngine != nil {
		qe := map[string]any{
			"type":                 d.QueryEngine.Type,
			"dbPath":               d.QueryEngine.DBPath,
			"enableQueryCitations": d.QueryEngine.EnableCitations,
		}
		if d.QueryEngine.CitationChunkSize != nil {
			qe["citationChunkSize"] = float64(*d.QueryEngine.CitationChunkSize)
		}
		out["queryEngine"] = qe
	}
	return out
}

func captainMap(c *models.CaptainData) map[string]any {
	lib := make([]any, len(c.AgentLib))
	for i, e := range c.AgentLib {
		lib[i] = map[string]any{
			"name":          e.Name,
			"description":   e.Description,
			"systemMessage": e.SystemMessage,
		}
	}
	return map[string]any{
		"agentLib": lib,
		"toolLib":  c.ToolLib,
		"maxRound": float64(c.MaxRound),
		"maxTurns": float64(c.MaxTurns),
	}
}

func reasoningMap(r *models.ReasoningData) map[string]any {
	return map[string]any{
		"verbose": r.Verbose,
		"reasonConfig": map[string]any{
			"method":              r.ReasonConfig.Method,
			"maxDepth":            float64(r.ReasonConfig.MaxDepth),
			"forestSize":          float64(r.ReasonConfig.ForestSize),
			"ratingScale":         float64(r.ReasonConfig.RatingScale),
			"beamSize":            float64(r.ReasonConfig.BeamSize),
			"answerApproach":      r.ReasonConfig.AnswerApproach,
			"nsim":                float64(r.ReasonConfig.Nsim),
			"explorationConstant": r.ReasonConfig.ExplorationConstant,
		},
	}
}

// AgentNode projects an agent onto the graph at the given position.
func AgentNode(a *models.Agent, pos *models.Position) models.Node {
	return models.Node{
		ID:       a.ID,
		Type:     "agent",
		Position: nodePosition(a.Rest, pos),
		ParentID: a.Data.ParentID,
	}
}
