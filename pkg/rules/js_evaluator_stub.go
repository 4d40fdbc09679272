//go:build !js_eval

package rules

// NewJSEvaluator returns nil when the module is built without the js_eval
// tag; rule sets treat a nil evaluator as "engine unavailable".
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = resolveJSOptions(opts)
	return nil
}

func jsEvaluatorAvailable() bool {
	return false
}
