// Package stream normalizes the JSON events an external workflow runtime
// emits while executing a flow. Handlers are passive: they validate one event
// shape and return a normalized result (or an explicit error result), with no
// side effects of their own.
package stream

import "encoding/json"

// Result is the normalized outcome of handling one runtime event. Either
// Content or Error is set, never both.
type Result struct {
	Type    string         `json:"type"`
	Content map[string]any `json:"content,omitempty"`
	Error   *ErrorInfo     `json:"error,omitempty"`
}

// ErrorInfo carries a validation failure back to the caller together with
// the event that caused it, so the caller decides whether to surface it.
type ErrorInfo struct {
	Message      string `json:"message"`
	OriginalData any    `json:"originalData,omitempty"`
}

// Handler recognizes and normalizes one family of runtime event types.
type Handler interface {
	CanHandle(msgType string) bool
	Handle(data map[string]any) *Result
}

// Dispatcher walks its handlers in registration order and returns the first
// match's result. Unknown event types yield nil.
type Dispatcher struct {
	handlers []Handler
}

// NewDispatcher returns a dispatcher with the default handler set.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: []Handler{
		PrintHandler{},
		InputRequestHandler{},
		RunCompletionHandler{},
		DebugHandler{},
	}}
}

// Register appends a handler after the defaults.
func (d *Dispatcher) Register(h Handler) {
	d.handlers = append(d.handlers, h)
}

// DispatchMap routes one decoded event to the first handler that recognizes
// its type.
func (d *Dispatcher) DispatchMap(data map[string]any) *Result {
	msgType, _ := data["type"].(string)
	if msgType == "" {
		return nil
	}
	for _, h := range d.handlers {
		if h.CanHandle(msgType) {
			return h.Handle(data)
		}
	}
	return nil
}

// Dispatch decodes and routes one raw event. Undecodable payloads yield an
// error result rather than an error, matching the handlers' own policy.
func (d *Dispatcher) Dispatch(raw []byte) *Result {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return &Result{
			Type:  "error",
			Error: &ErrorInfo{Message: "invalid runtime event: " + err.Error(), OriginalData: string(raw)},
		}
	}
	return d.DispatchMap(data)
}

func errorResult(msgType, message string, data map[string]any) *Result {
	return &Result{
		Type:  msgType,
		Error: &ErrorInfo{Message: message, OriginalData: data},
	}
}
