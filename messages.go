package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-remote-store/pkg/signal"
)

// Severity classifies a diagnostic message.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// Message is one immutable diagnostic unit. Text is a stable template
// identifier resolved at display time; Parameters fill `{0}`-style
// placeholders in the localized template.
type Message struct {
	Severity   Severity
	Text       string
	Parameters []string
	Section    string
}

// ErrorMessage constructs an error-severity message.
func ErrorMessage(text string, parameters ...string) Message {
	return Message{Severity: SeverityError, Text: text, Parameters: parameters}
}

// WarningMessage constructs a warning-severity message.
func WarningMessage(text string, parameters ...string) Message {
	return Message{Severity: SeverityWarning, Text: text, Parameters: parameters}
}

// InfoMessage constructs an info-severity message.
func InfoMessage(text string, parameters ...string) Message {
	return Message{Severity: SeverityInfo, Text: text, Parameters: parameters}
}

// WithSection returns a copy of the message grouped under section.
func (m Message) WithSection(section string) Message {
	m.Section = section
	return m
}

// IsError reports whether the message carries error severity.
func (m Message) IsError() bool {
	return m.Severity == SeverityError
}

// Lookup resolves a template identifier plus its ordered parameters into
// display text. The localization table behind it is an external collaborator;
// the store only ever holds template id and parameters.
type Lookup func(text string, parameters []string) string

// Expand substitutes `{0}`, `{1}`, ... placeholders in template with the
// corresponding parameters. Lookups that only map template ids can delegate
// parameter handling here.
func Expand(template string, parameters []string) string {
	out := template
	for i, parameter := range parameters {
		out = strings.ReplaceAll(out, fmt.Sprintf("{%d}", i), parameter)
	}
	return out
}

// Localize resolves the message through lookup without mutating it.
func (m Message) Localize(lookup Lookup) string {
	if lookup == nil {
		return Expand(m.Text, m.Parameters)
	}
	return lookup(m.Text, m.Parameters)
}

// Well-known message keys shared with transport envelopes.
const (
	KeyService    = "service"
	KeyEntity     = "entity"
	KeyCollection = "collection"
)

// Messages is a keyed bag of diagnostics with aggregate error tracking and
// change notification. Each store owns exactly one; instances are never
// shared. Like the stores it belongs to, it expects a single logical owner
// and performs no locking.
type Messages struct {
	entries  map[string][]Message
	hasError bool

	errorSig *signal.Value[bool]
	changed  *signal.Value[uint64]
	anySigs  map[string]*signal.Value[bool]
	errSigs  map[string]*signal.Value[bool]
}

// NewMessages constructs an empty bag.
func NewMessages() *Messages {
	return &Messages{
		entries:  map[string][]Message{},
		errorSig: signal.NewEq(false),
		changed:  signal.New(uint64(0)),
		anySigs:  map[string]*signal.Value[bool]{},
		errSigs:  map[string]*signal.Value[bool]{},
	}
}

// FromServiceError constructs a bag holding a single service-level error.
func FromServiceError(text string, parameters ...string) *Messages {
	m := NewMessages()
	m.Set(KeyService, ErrorMessage(text, parameters...))
	return m
}

// Set replaces all messages stored under key. Passing no messages is a
// caller-contract violation: use Clear to remove a key.
func (m *Messages) Set(key string, messages ...Message) {
	if len(messages) == 0 {
		panic("store: Messages.Set requires at least one message; use Clear to remove a key")
	}
	m.entries[key] = append([]Message(nil), messages...)
	m.recompute()
	m.publish(key)
}

// Add appends one message under key, creating the key when absent.
func (m *Messages) Add(key string, message Message) {
	m.entries[key] = append(m.entries[key], message)
	if message.IsError() {
		m.hasError = true
	}
	m.publish(key)
}

// Clear removes all messages for key. The aggregate error flag is recomputed
// from the remaining keys, so clearing the sole error source resets it.
func (m *Messages) Clear(key string) {
	if _, ok := m.entries[key]; !ok {
		return
	}
	delete(m.entries, key)
	m.recompute()
	m.publish(key)
}

// ClearKeys removes every listed key in one pass. Like Extend, the aggregate
// flag is recomputed once and subscribers see a single notification. Keys
// holding no messages are ignored.
func (m *Messages) ClearKeys(keys ...string) {
	removed := false
	for _, key := range keys {
		if _, ok := m.entries[key]; ok {
			delete(m.entries, key)
			removed = true
		}
	}
	if !removed {
		return
	}
	m.recompute()
	m.publish(keys...)
}

// ClearAll removes every key.
func (m *Messages) ClearAll() {
	if len(m.entries) == 0 {
		return
	}
	touched := m.Keys()
	m.entries = map[string][]Message{}
	m.hasError = false
	m.publish(touched...)
}

// Extend merges other into the receiver; keys present in other overwrite the
// receiver's. The aggregate flag is recomputed once after the full merge and
// subscribers see a single notification.
func (m *Messages) Extend(other *Messages) {
	if other == nil || len(other.entries) == 0 {
		return
	}
	touched := make([]string, 0, len(other.entries))
	for key, messages := range other.entries {
		m.entries[key] = append([]Message(nil), messages...)
		touched = append(touched, key)
	}
	m.recompute()
	m.publish(touched...)
}

// Replace swaps the full contents of the receiver for other's.
func (m *Messages) Replace(other *Messages) {
	touched := m.Keys()
	m.entries = map[string][]Message{}
	if other != nil {
		for key, messages := range other.entries {
			m.entries[key] = append([]Message(nil), messages...)
			touched = append(touched, key)
		}
	}
	m.recompute()
	m.publish(touched...)
}

// AddServiceError records an error under the service key.
func (m *Messages) AddServiceError(text string, parameters ...string) {
	m.Add(KeyService, ErrorMessage(text, parameters...))
}

// AddServiceInfo records an info under the service key.
func (m *Messages) AddServiceInfo(text string, parameters ...string) {
	m.Add(KeyService, InfoMessage(text, parameters...))
}

// AddEntityError records an error under the entity key.
func (m *Messages) AddEntityError(text string, parameters ...string) {
	m.Add(KeyEntity, ErrorMessage(text, parameters...))
}

// AddEntityInfo records an info under the entity key.
func (m *Messages) AddEntityInfo(text string, parameters ...string) {
	m.Add(KeyEntity, InfoMessage(text, parameters...))
}

// HasError reports whether any stored message carries error severity.
func (m *Messages) HasError() bool {
	return m.hasError
}

// Len returns the number of keys currently holding messages.
func (m *Messages) Len() int {
	return len(m.entries)
}

// IsEmpty reports whether no key holds messages.
func (m *Messages) IsEmpty() bool {
	return len(m.entries) == 0
}

// Keys returns the stored keys sorted alphabetically.
func (m *Messages) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for key := range m.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ForKey returns a copy of the messages stored under key, insertion order
// preserved.
func (m *Messages) ForKey(key string) []Message {
	messages, ok := m.entries[key]
	if !ok {
		return nil
	}
	return append([]Message(nil), messages...)
}

// ErrorSignal reports the aggregate error flag; it fires only on change.
func (m *Messages) ErrorSignal() *signal.Value[bool] {
	return m.errorSig
}

// ChangedSignal increments after every mutation, in mutation order.
func (m *Messages) ChangedSignal() *signal.Value[uint64] {
	return m.changed
}

// AnythingForKeySignal reports whether key currently holds any message. It
// fires exactly when that boolean changes, not on every mutation.
func (m *Messages) AnythingForKeySignal(key string) *signal.Value[bool] {
	if sig, ok := m.anySigs[key]; ok {
		return sig
	}
	sig := signal.NewEq(len(m.entries[key]) > 0)
	m.anySigs[key] = sig
	return sig
}

// ErrorForKeySignal reports whether key currently holds an error message.
func (m *Messages) ErrorForKeySignal(key string) *signal.Value[bool] {
	if sig, ok := m.errSigs[key]; ok {
		return sig
	}
	sig := signal.NewEq(m.keyHasError(key))
	m.errSigs[key] = sig
	return sig
}

// Localize produces a resolved copy for display; the receiver keeps holding
// template ids and parameters only.
func (m *Messages) Localize(lookup Lookup) *Messages {
	out := NewMessages()
	for key, messages := range m.entries {
		localized := make([]Message, len(messages))
		for i, message := range messages {
			localized[i] = Message{
				Severity: message.Severity,
				Text:     message.Localize(lookup),
				Section:  message.Section,
			}
		}
		out.entries[key] = localized
	}
	out.recompute()
	return out
}

// String renders the bag for debugging as `key: [E: text, I: text]`.
func (m *Messages) String() string {
	var b strings.Builder
	for i, key := range m.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(key)
		b.WriteString(": [")
		for j, message := range m.entries[key] {
			if j > 0 {
				b.WriteString(", ")
			}
			switch message.Severity {
			case SeverityError:
				b.WriteString("E: ")
			case SeverityWarning:
				b.WriteString("W: ")
			default:
				b.WriteString("I: ")
			}
			b.WriteString(message.Text)
		}
		b.WriteString("]")
	}
	return b.String()
}

func (m *Messages) recompute() {
	for _, messages := range m.entries {
		for _, message := range messages {
			if message.IsError() {
				m.hasError = true
				return
			}
		}
	}
	m.hasError = false
}

func (m *Messages) keyHasError(key string) bool {
	for _, message := range m.entries[key] {
		if message.IsError() {
			return true
		}
	}
	return false
}

// publish refreshes derived signals for the touched keys and bumps the change
// counter. Delivery is synchronous, after the mutation is fully applied.
func (m *Messages) publish(keys ...string) {
	m.errorSig.Set(m.hasError)
	for _, key := range keys {
		if sig, ok := m.anySigs[key]; ok {
			sig.Set(len(m.entries[key]) > 0)
		}
		if sig, ok := m.errSigs[key]; ok {
			sig.Set(m.keyHasError(key))
		}
	}
	m.changed.Update(func(rev uint64) uint64 { return rev + 1 })
}
