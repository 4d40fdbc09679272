package fetch

import (
	store "github.com/goliatone/go-remote-store"
)

// DefaultPagingLimit applies when the server omits a page size.
const DefaultPagingLimit = 25

// Paging describes the window a collection response covers. Prev and Next are
// opaque cursors handed back verbatim on the follow-up request.
type Paging struct {
	Limit int    `json:"limit"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
}

func (p Paging) normalized() Paging {
	if p.Limit <= 0 {
		p.Limit = DefaultPagingLimit
	}
	return p
}

// wireMessage is the envelope shape of one diagnostic.
type wireMessage struct {
	Severity   string   `json:"severity"`
	Text       string   `json:"text"`
	Parameters []string `json:"parameters,omitempty"`
	Section    string   `json:"section,omitempty"`
}

// wireMessages maps message keys to diagnostics, mirroring store.Messages on
// the wire.
type wireMessages map[string][]wireMessage

// toMessages converts envelope diagnostics into a store bag. Unknown
// severities decode as errors so a mismatched server never downgrades a
// failure into a silent info line.
func (w wireMessages) toMessages() *store.Messages {
	out := store.NewMessages()
	for key, messages := range w {
		if len(messages) == 0 {
			continue
		}
		converted := make([]store.Message, len(messages))
		for i, message := range messages {
			converted[i] = store.Message{
				Severity:   severityFromWire(message.Severity),
				Text:       message.Text,
				Parameters: message.Parameters,
				Section:    message.Section,
			}
		}
		out.Set(key, converted...)
	}
	return out
}

func severityFromWire(severity string) store.Severity {
	switch severity {
	case "info":
		return store.SeverityInfo
	case "warning":
		return store.SeverityWarning
	}
	return store.SeverityError
}

// EntityResponse is the envelope for single-record operations. Entity is nil
// when the response carries diagnostics only.
type EntityResponse[E any] struct {
	Messages wireMessages `json:"messages,omitempty"`
	Entity   *E           `json:"entity,omitempty"`
}

// CollectionResponse is the envelope for collection loads. A response without
// a collection field decodes Collection to nil, which LoadMerge treats as "the
// response did not speak to the collection"; an explicitly empty collection
// arrives as a non-nil empty slice.
type CollectionResponse[E any] struct {
	Messages   wireMessages `json:"messages,omitempty"`
	Paging     *Paging      `json:"paging,omitempty"`
	Collection []E          `json:"collection,omitempty"`
}
