package rules

import (
	"fmt"
	"time"

	store "github.com/goliatone/go-remote-store"
	"github.com/goliatone/go-remote-store/internal/snapshot"
)

// Rule declares one validation check. Expr must evaluate to a boolean; a
// false result records a Message under Key. When, if set, gates the rule: a
// falsy guard skips it entirely.
type Rule struct {
	Key        string
	Expr       string
	When       string
	Severity   store.Severity
	Text       string
	Parameters []string
	Section    string
}

// Error builds an error-severity rule, the common case for validation.
func Error(key, expr, text string, parameters ...string) Rule {
	return Rule{Key: key, Expr: expr, Severity: store.SeverityError, Text: text, Parameters: parameters}
}

// Warning builds a warning-severity rule.
func Warning(key, expr, text string, parameters ...string) Rule {
	return Rule{Key: key, Expr: expr, Severity: store.SeverityWarning, Text: text, Parameters: parameters}
}

// RuleContext carries the inputs available to rule expressions.
type RuleContext struct {
	Entity   any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaults()
	return *ctx.Now
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// SetOption configures a rule set.
type SetOption func(*Set)

// WithEvaluator selects the expression engine; the default is expr-lang.
func WithEvaluator(evaluator Evaluator) SetOption {
	return func(s *Set) {
		if evaluator != nil {
			s.evaluator = evaluator
		}
	}
}

// WithRuleLogger attaches a logger receiving one event per evaluated rule.
func WithRuleLogger(logger RuleLogger) SetOption {
	return func(s *Set) {
		if logger == nil {
			s.logger = noopRuleLogger{}
			return
		}
		s.logger = logger
	}
}

// Set holds an ordered list of rules sharing one evaluator. A Set is
// immutable after construction and safe for concurrent Validate calls when
// its evaluator is.
type Set struct {
	rules     []Rule
	evaluator Evaluator
	logger    RuleLogger
}

// NewSet constructs a rule set. Rules with an empty Key or Expr are a
// caller-contract violation.
func NewSet(ruleList []Rule, opts ...SetOption) (*Set, error) {
	for _, rule := range ruleList {
		if rule.Key == "" {
			return nil, fmt.Errorf("rules: rule key must not be empty")
		}
		if rule.Expr == "" {
			return nil, fmt.Errorf("rules: rule %q has no expression", rule.Key)
		}
	}
	s := &Set{
		rules:     append([]Rule(nil), ruleList...),
		evaluator: NewExprEvaluator(),
		logger:    noopRuleLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Len returns the number of rules in the set.
func (s *Set) Len() int {
	return len(s.rules)
}

// Keys returns the distinct message keys the set can touch, in rule order.
func (s *Set) Keys() []string {
	seen := map[string]struct{}{}
	keys := make([]string, 0, len(s.rules))
	for _, rule := range s.rules {
		if _, ok := seen[rule.Key]; ok {
			continue
		}
		seen[rule.Key] = struct{}{}
		keys = append(keys, rule.Key)
	}
	return keys
}

// Validate runs every rule against entity and returns the collected failure
// messages, keyed per rule. An evaluation error is a programming error in the
// rule, not a validation failure, and aborts the run.
func (s *Set) Validate(entity any, ctxs ...RuleContext) (*store.Messages, error) {
	ctx := RuleContext{}
	if len(ctxs) > 0 {
		ctx = ctxs[0]
	}
	ctx.Entity = entity
	ctx = ctx.withDefaults()

	snap, err := snapshot.Take(entity)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	ctx.Entity = snap

	messages := store.NewMessages()
	for _, rule := range s.rules {
		ok, err := s.evaluateRule(ctx, rule)
		if err != nil {
			return nil, err
		}
		if !ok {
			message := store.Message{
				Severity:   rule.Severity,
				Text:       rule.Text,
				Parameters: rule.Parameters,
				Section:    rule.Section,
			}
			messages.Add(rule.Key, message)
		}
	}
	return messages, nil
}

// Apply validates entity and installs the outcome into target: every key the
// set owns is cleared first, so a field that passed this round drops its
// stale diagnostics. The aggregate error flag ends up reflecting exactly this
// run plus whatever other keys target holds.
func (s *Set) Apply(entity any, target *store.Messages, ctxs ...RuleContext) error {
	failures, err := s.Validate(entity, ctxs...)
	if err != nil {
		return err
	}
	for _, key := range s.Keys() {
		target.Clear(key)
	}
	target.Extend(failures)
	return nil
}

func (s *Set) evaluateRule(ctx RuleContext, rule Rule) (bool, error) {
	if rule.When != "" {
		guard, err := s.evaluateBool(ctx, rule, rule.When)
		if err != nil {
			return false, err
		}
		if !guard {
			return true, nil
		}
	}
	return s.evaluateBool(ctx, rule, rule.Expr)
}

func (s *Set) evaluateBool(ctx RuleContext, rule Rule, expression string) (bool, error) {
	started := time.Now()
	result, err := s.evaluator.Evaluate(ctx, expression)
	s.logger.LogRule(RuleLogEvent{
		Key:      rule.Key,
		Expr:     expression,
		Duration: time.Since(started),
		Err:      err,
	})
	if err != nil {
		return false, wrapRuleError(rule.Key, expression, err)
	}
	switch value := result.(type) {
	case bool:
		return value, nil
	case nil:
		return false, nil
	}
	return false, wrapRuleError(rule.Key, expression, fmt.Errorf("expression must evaluate to a boolean, got %T", result))
}
