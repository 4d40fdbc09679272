package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AttemptIDHeader carries the attempt correlation id on the wire, so a server
// log line can be matched to the client attempt that produced it.
const AttemptIDHeader = "X-Attempt-Id"

// Request describes one transfer attempt. Every request carries a fresh
// AttemptID; the id also correlates stale responses when a caller restarts a
// pending transfer.
type Request struct {
	Method    string
	URL       string
	Header    http.Header
	Query     url.Values
	Body      any
	Timeout   time.Duration
	Quiet     bool
	AttemptID uuid.UUID
}

// NewRequest constructs a request with a fresh attempt id.
func NewRequest(method, rawURL string) *Request {
	return &Request{
		Method:    method,
		URL:       rawURL,
		Header:    http.Header{},
		Query:     url.Values{},
		AttemptID: uuid.New(),
	}
}

// Get constructs a GET request.
func Get(rawURL string) *Request {
	return NewRequest(http.MethodGet, rawURL)
}

// Post constructs a POST request carrying body.
func Post(rawURL string, body any) *Request {
	return NewRequest(http.MethodPost, rawURL).WithBody(body)
}

// Put constructs a PUT request carrying body.
func Put(rawURL string, body any) *Request {
	return NewRequest(http.MethodPut, rawURL).WithBody(body)
}

// Delete constructs a DELETE request.
func Delete(rawURL string) *Request {
	return NewRequest(http.MethodDelete, rawURL)
}

// WithHeader sets a header value.
func (r *Request) WithHeader(key, value string) *Request {
	r.Header.Set(key, value)
	return r
}

// WithQuery sets a query parameter.
func (r *Request) WithQuery(key, value string) *Request {
	r.Query.Set(key, value)
	return r
}

// WithBody attaches a JSON-encodable body.
func (r *Request) WithBody(body any) *Request {
	r.Body = body
	return r
}

// WithTimeout overrides the client-wide timeout for this request.
func (r *Request) WithTimeout(timeout time.Duration) *Request {
	r.Timeout = timeout
	return r
}

// WithQuiet suppresses transfer logging for this request.
func (r *Request) WithQuiet() *Request {
	r.Quiet = true
	return r
}

// build resolves the request against cfg into an executable http.Request. The
// returned cancel func bounds the attempt by the effective timeout and must be
// called once the response body is consumed.
func (r *Request) build(ctx context.Context, cfg Config) (*http.Request, context.CancelFunc, error) {
	target, err := resolveURL(cfg.BaseURL, r.URL)
	if err != nil {
		return nil, nil, err
	}
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body *bytes.Reader
	if r.Body != nil {
		encoded, err := json.Marshal(r.Body)
		if err != nil {
			return nil, nil, fmt.Errorf("fetch: encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = cfg.Timeout
	}
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}

	var req *http.Request
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, r.Method, target, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, r.Method, target, nil)
	}
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("fetch: build request: %w", err)
	}

	for key, values := range r.Header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	mediaType := cfg.MediaType
	if mediaType == "" {
		mediaType = defaultMediaType
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", mediaType)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", mediaType)
	}
	req.Header.Set(AttemptIDHeader, r.AttemptID.String())

	return req, cancel, nil
}

func resolveURL(base, raw string) (string, error) {
	if base == "" {
		return raw, nil
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("fetch: parse url %q: %w", raw, err)
	}
	if parsed.IsAbs() {
		return raw, nil
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(raw, "/"), nil
}
