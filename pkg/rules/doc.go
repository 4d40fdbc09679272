// Package rules evaluates declarative validation rules against an entity and
// turns failures into store.Messages, giving forms client-side field
// diagnostics in the same keyed shape the server reports through transfer
// envelopes.
//
// A Rule pairs a message key (usually the field name) with a boolean
// expression; Set runs every rule against a snapshot of the entity and
// collects a message per failed rule. Expressions run on a pluggable
// Evaluator: expr-lang/expr is the default engine, cel-go is available, and a
// goja-backed JS engine ships behind the js_eval build tag.
package rules
