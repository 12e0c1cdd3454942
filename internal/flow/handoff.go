package flow

import "github.com/waldiez/waldiez-go/internal/models"

// ParseTransitionTarget returns the typed target for raw, or nil when raw is
// not a structurally valid transition target.
func ParseTransitionTarget(raw any) *models.TransitionTarget {
	m, ok := asMap(raw)
	if !ok {
		return nil
	}
	kind := models.TargetKind(stringOr(m, "target_type", ""))
	if !models.KnownTargetKind(kind) {
		return nil
	}
	t := &models.TransitionTarget{Kind: kind, Order: intPtr(m, "order")}
	switch kind {
	case models.TargetAgent, models.TargetGroupChat, models.TargetNestedChat:
		id, ok := m["target"].(string)
		if !ok {
			return nil
		}
		t.Target = id
	case models.TargetRandomAgent:
		items, ok := m["targets"].([]any)
		if !ok || len(items) == 0 {
			return nil
		}
		for _, item := range items {
			id, ok := item.(string)
			if !ok {
				return nil
			}
			t.Targets = append(t.Targets, id)
		}
	case models.TargetAskUser, models.TargetGroupManager, models.TargetRevertToUser,
		models.TargetStay, models.TargetTerminate:
		// no payload beyond the optional order
	}
	return t
}

// ValidTransitionTarget reports whether raw is a structurally valid
// transition target: a known target_type literal whose required payload field
// has the right primitive shape.
func ValidTransitionTarget(raw any) bool {
	return ParseTransitionTarget(raw) != nil
}

func targetMap(t *models.TransitionTarget) map[string]any {
	out := map[string]any{"target_type": string(t.Kind)}
	switch {
	case t.CarriesID():
		out["target"] = t.Target
	case t.CarriesIDList():
		ids := make([]any, len(t.Targets))
		for i, id := range t.Targets {
			ids[i] = id
		}
		out["targets"] = ids
	}
	if t.Order != nil {
		out["order"] = float64(*t.Order)
	}
	return out
}

// ParseCondition returns the typed condition for raw, or nil when raw is not
// a structurally valid handoff condition.
func ParseCondition(raw any) *models.Condition {
	m, ok := asMap(raw)
	if !ok {
		return nil
	}
	kind := models.ConditionKind(stringOr(m, "condition_type", ""))
	if !models.KnownConditionKind(kind) {
		return nil
	}
	c := &models.Condition{Kind: kind}
	switch kind {
	case models.ConditionStringLLM:
		s, ok := m["prompt"].(string)
		if !ok {
			return nil
		}
		c.Prompt = s
	case models.ConditionContextStrLLM:
		s, ok := m["context_str"].(string)
		if !ok {
			return nil
		}
		c.ContextStr = s
	case models.ConditionStringContext:
		s, ok := m["variable_name"].(string)
		if !ok {
			return nil
		}
		c.VariableName = s
	case models.ConditionExpressionContext:
		s, ok := m["expression"].(string)
		if !ok {
			return nil
		}
		c.Expression = s
	}
	return c
}

// ValidCondition reports whether raw is a structurally valid condition.
func ValidCondition(raw any) bool {
	return ParseCondition(raw) != nil
}

func conditionMap(c *models.Condition) map[string]any {
	out := map[string]any{"condition_type": string(c.Kind)}
	switch c.Kind {
	case models.ConditionStringLLM:
		out["prompt"] = c.Prompt
	case models.ConditionContextStrLLM:
		out["context_str"] = c.ContextStr
	case models.ConditionStringContext:
		out["variable_name"] = c.VariableName
	case models.ConditionExpressionContext:
		out["expression"] = c.Expression
	}
	return out
}
