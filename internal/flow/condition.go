package flow

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/waldiez/waldiez-go/internal/models"
)

// ErrLLMJudged marks conditions that only the external runtime can resolve.
var ErrLLMJudged = errors.New("condition requires llm judgment")

// EvaluateCondition resolves a context-judged condition against a
// context-variable map. string_context checks the named variable for
// truthiness; expression_context compiles and runs the boolean expression
// with the context variables as its environment.
func EvaluateCondition(c *models.Condition, ctx map[string]any) (bool, error) {
	if c == nil {
		return true, nil
	}
	if ctx == nil {
		ctx = map[string]any{}
	}
	switch c.Kind {
	case models.ConditionStringContext:
		return truthy(ctx[c.VariableName]), nil
	case models.ConditionExpressionContext:
		prog, err := expr.Compile(c.Expression,
			expr.Env(ctx),
			expr.AsBool(),
			expr.AllowUndefinedVariables(),
		)
		if err != nil {
			return false, fmt.Errorf("compile expression: %w", err)
		}
		out, err := expr.Run(prog, ctx)
		if err != nil {
			return false, fmt.Errorf("evaluate expression: %w", err)
		}
		b, ok := out.(bool)
		if !ok {
			return false, fmt.Errorf("expression did not yield a boolean: %T", out)
		}
		return b, nil
	case models.ConditionStringLLM, models.ConditionContextStrLLM:
		return false, ErrLLMJudged
	}
	return false, fmt.Errorf("unknown condition type: %q", c.Kind)
}

// ChatAvailable reports whether a chat's availability check passes for ctx.
// Chats without a check, or with an LLM-judged one, count as available.
func ChatAvailable(c *models.Chat, ctx map[string]any) bool {
	ok, err := EvaluateCondition(c.Data.Available, ctx)
	if errors.Is(err, ErrLLMJudged) {
		return true
	}
	if err != nil {
		return false
	}
	return ok
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && t != "false" && t != "False" && t != "0"
	case float64:
		return t != 0
	case int:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}
