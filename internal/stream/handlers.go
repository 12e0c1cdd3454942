package stream

// PrintHandler normalizes plain output events. The runtime nests the text
// under data, either directly or one level deeper as {data: {text}}.
type PrintHandler struct{}

func (PrintHandler) CanHandle(msgType string) bool {
	return msgType == "print"
}

func (PrintHandler) Handle(data map[string]any) *Result {
	text, ok := printText(data["data"])
	if !ok {
		return errorResult("print", "print event carries no text", data)
	}
	return &Result{Type: "print", Content: map[string]any{"text": text}}
}

func printText(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	if m, ok := v.(map[string]any); ok {
		if s, ok := m["text"].(string); ok {
			return s, true
		}
	}
	return "", false
}

// InputRequestHandler normalizes the runtime's request for user input. The
// request id is required so the reply can be correlated.
type InputRequestHandler struct{}

func (InputRequestHandler) CanHandle(msgType string) bool {
	return msgType == "input_request"
}

func (InputRequestHandler) Handle(data map[string]any) *Result {
	requestID, ok := data["request_id"].(string)
	if !ok || requestID == "" {
		return errorResult("input_request", "input request without request_id", data)
	}
	prompt, _ := data["prompt"].(string)
	password, _ := data["password"].(bool)
	return &Result{Type: "input_request", Content: map[string]any{
		"request_id": requestID,
		"prompt":     prompt,
		"password":   password,
	}}
}

// RunCompletionHandler normalizes the end-of-run event.
type RunCompletionHandler struct{}

func (RunCompletionHandler) CanHandle(msgType string) bool {
	return msgType == "run_completion"
}

func (RunCompletionHandler) Handle(data map[string]any) *Result {
	content := map[string]any{}
	if s, ok := data["summary"].(string); ok {
		content["summary"] = s
	}
	if history, ok := data["history"].([]any); ok {
		content["history"] = history
	}
	if cost, ok := data["cost"].(float64); ok {
		content["cost"] = cost
	}
	if len(content) == 0 {
		return errorResult("run_completion", "run completion carries no payload", data)
	}
	return &Result{Type: "run_completion", Content: content}
}

// DebugHandler normalizes step-debugger events: breakpoint notifications,
// stats and the debugger's own input requests.
type DebugHandler struct{}

var debugTypes = map[string]bool{
	"debug":               true,
	"debug_input_request": true,
	"breakpoint_added":    true,
	"breakpoint_removed":  true,
	"breakpoint_cleared":  true,
}

func (DebugHandler) CanHandle(msgType string) bool {
	return debugTypes[msgType]
}

func (DebugHandler) Handle(data map[string]any) *Result {
	msgType, _ := data["type"].(string)
	content := map[string]any{}
	for k, v := range data {
		if k != "type" {
			content[k] = v
		}
	}
	if msgType == "debug_input_request" {
		if id, ok := data["request_id"].(string); !ok || id == "" {
			return errorResult(msgType, "debug input request without request_id", data)
		}
	}
	return &Result{Type: msgType, Content: content}
}
