package rules

// jsOptions is shared between the goja-backed evaluator and its tagless stub
// so callers can hand over JS options unconditionally.
type jsOptions struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// JSEvaluatorOption configures the goja-backed rule evaluator.
type JSEvaluatorOption func(*jsOptions)

// JSWithProgramCache reuses compiled rule programs across evaluations.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(o *jsOptions) {
		o.cache = cache
	}
}

// JSWithFunctionRegistry exposes the registry's functions to rule
// expressions. The registry is cloned; registrations made after this call do
// not reach the evaluator.
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(o *jsOptions) {
		if registry == nil {
			return
		}
		o.registry = registry.Clone()
	}
}

func resolveJSOptions(opts []JSEvaluatorOption) jsOptions {
	var o jsOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
