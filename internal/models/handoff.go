package models

// TargetKind discriminates the nine transition-target variants. The JSON form
// carries the kind under "target_type".
type TargetKind string

const (
	TargetAgent        TargetKind = "AgentTarget"
	TargetRandomAgent  TargetKind = "RandomAgentTarget"
	TargetGroupChat    TargetKind = "GroupChatTarget"
	TargetNestedChat   TargetKind = "NestedChatTarget"
	TargetAskUser      TargetKind = "AskUserTarget"
	TargetGroupManager TargetKind = "GroupManagerTarget"
	TargetRevertToUser TargetKind = "RevertToUserTarget"
	TargetStay         TargetKind = "StayTarget"
	TargetTerminate    TargetKind = "TerminateTarget"
)

// TransitionTarget says where control passes after an agent's turn. Which
// payload field is meaningful depends on Kind: AgentTarget, GroupChatTarget
// and NestedChatTarget carry a single id in Target, RandomAgentTarget carries
// a candidate id list in Targets, and the remaining kinds carry no payload
// beyond the optional Order.
type TransitionTarget struct {
	Kind    TargetKind `json:"target_type"`
	Target  string     `json:"target,omitempty"`
	Targets []string   `json:"targets,omitempty"`
	Order   *int       `json:"order,omitempty"`
}

// CarriesID reports whether the kind requires a single target id.
func (t *TransitionTarget) CarriesID() bool {
	switch t.Kind {
	case TargetAgent, TargetGroupChat, TargetNestedChat:
		return true
	case TargetRandomAgent,
		TargetAskUser, TargetGroupManager, TargetRevertToUser, TargetStay, TargetTerminate:
		return false
	}
	return false
}

// CarriesIDList reports whether the kind requires a target id list.
func (t *TransitionTarget) CarriesIDList() bool {
	return t.Kind == TargetRandomAgent
}

// KnownTargetKind reports whether k is one of the nine valid literals.
func KnownTargetKind(k TargetKind) bool {
	switch k {
	case TargetAgent, TargetRandomAgent, TargetGroupChat, TargetNestedChat,
		TargetAskUser, TargetGroupManager, TargetRevertToUser, TargetStay, TargetTerminate:
		return true
	}
	return false
}

// ConditionKind discriminates the four handoff-condition variants. The JSON
// form carries the kind under "condition_type".
type ConditionKind string

const (
	ConditionStringLLM         ConditionKind = "string_llm"
	ConditionContextStrLLM     ConditionKind = "context_str_llm"
	ConditionStringContext     ConditionKind = "string_context"
	ConditionExpressionContext ConditionKind = "expression_context"
)

// Condition guards a handoff. The LLM-judged kinds (string_llm,
// context_str_llm) are resolved by the external runtime; the context-judged
// kinds (string_context, expression_context) can be evaluated locally against
// a context-variable map.
type Condition struct {
	Kind         ConditionKind `json:"condition_type"`
	Prompt       string        `json:"prompt,omitempty"`
	ContextStr   string        `json:"context_str,omitempty"`
	VariableName string        `json:"variable_name,omitempty"`
	Expression   string        `json:"expression,omitempty"`
}

// LLMJudged reports whether the condition needs an LLM to resolve.
func (c *Condition) LLMJudged() bool {
	switch c.Kind {
	case ConditionStringLLM, ConditionContextStrLLM:
		return true
	case ConditionStringContext, ConditionExpressionContext:
		return false
	}
	return false
}

// KnownConditionKind reports whether k is one of the four valid literals.
func KnownConditionKind(k ConditionKind) bool {
	switch k {
	case ConditionStringLLM, ConditionContextStrLLM, ConditionStringContext, ConditionExpressionContext:
		return true
	}
	return false
}
