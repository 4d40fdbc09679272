package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	store "github.com/goliatone/go-remote-store"
)

var errMissingEntity = errors.New("fetch: successful response carries no entity")

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient swaps the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// WithLogger attaches a transfer logger; logging still honors the config
// toggle and per-request Quiet.
func WithLogger(logger store.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client executes transfer attempts against a remote service. A Client holds
// no per-store state and is safe for concurrent use; the stores it feeds are
// not, so concurrent calls must target distinct stores.
type Client struct {
	http   *http.Client
	cfg    Config
	logger store.Logger
}

// NewClient constructs a client over cfg.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	if cfg.MediaType == "" {
		cfg.MediaType = defaultMediaType
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &Client{
		http:   http.DefaultClient,
		cfg:    cfg,
		logger: store.LoggerFunc(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// LoadEntity runs a cached load: when the store already finished a successful
// transfer the request is skipped entirely. Invalidate the store to force a
// reload, or use LoadEntitySkipCache.
func LoadEntity[E any](ctx context.Context, c *Client, req *Request, target *store.EntityStore[E]) error {
	if target.TransferState().OK() {
		return nil
	}
	return LoadEntitySkipCache(ctx, c, req, target)
}

// LoadEntitySkipCache performs the load round trip unconditionally and feeds
// the outcome into target exactly once.
func LoadEntitySkipCache[E any](ctx context.Context, c *Client, req *Request, target *store.EntityStore[E]) error {
	target.Start()
	var zero E

	envelope, status, err := roundTrip[EntityResponse[E]](ctx, c, req)
	if err != nil {
		target.LoadResult(zero, err)
		return err
	}
	if status.Failure() {
		terr := store.Fail(status).WithDetail(envelope.Messages.toMessages())
		target.LoadResult(zero, terr)
		return terr
	}
	if envelope.Entity == nil {
		terr := store.Fail(store.StatusDecodeFailed).WithCause(errMissingEntity)
		target.LoadResult(zero, terr)
		return terr
	}
	target.LoadResult(*envelope.Entity, nil)
	return nil
}

// SaveEntity sends the store's current record (or req.Body when set) and
// applies the outcome. A response echoing the entity replaces the record;
// a body-less success keeps the local record.
func SaveEntity[E any](ctx context.Context, c *Client, req *Request, target *store.EntityStore[E]) error {
	if req.Body == nil {
		if value, ok := target.Data(); ok {
			req.WithBody(value)
		}
	}
	target.Start()

	envelope, status, err := roundTrip[EntityResponse[E]](ctx, c, req)
	if err != nil {
		target.SaveResultKeep(err)
		return err
	}
	if status.Failure() {
		terr := store.Fail(status).WithDetail(envelope.Messages.toMessages())
		target.SaveResultKeep(terr)
		return terr
	}
	if envelope.Entity != nil {
		target.SaveResult(*envelope.Entity, nil)
		return nil
	}
	target.SaveResultKeep(nil)
	return nil
}

// DeleteEntity runs a delete round trip; only a successful outcome empties
// the store.
func DeleteEntity[E any](ctx context.Context, c *Client, req *Request, target *store.EntityStore[E]) error {
	target.Start()

	envelope, status, err := roundTrip[EntityResponse[E]](ctx, c, req)
	if err != nil {
		target.DeleteResult(err)
		return err
	}
	if status.Failure() {
		terr := store.Fail(status).WithDetail(envelope.Messages.toMessages())
		target.DeleteResult(terr)
		return terr
	}
	target.DeleteResult(nil)
	return nil
}

// LoadCollection runs a cached collection load under the merge protocol,
// returning the paging window the response covered. A store that already
// finished successfully skips the request.
func LoadCollection[E any](ctx context.Context, c *Client, req *Request, target *store.CollectionStore[E], mergeFn store.MergeFunc[E]) (Paging, error) {
	if target.TransferState().OK() {
		return Paging{}.normalized(), nil
	}
	return LoadCollectionSkipCache(ctx, c, req, target, mergeFn)
}

// LoadCollectionSkipCache performs the collection load unconditionally. The
// envelope's absent-vs-empty collection distinction flows directly into
// LoadMerge: a response without a collection never clears local items.
func LoadCollectionSkipCache[E any](ctx context.Context, c *Client, req *Request, target *store.CollectionStore[E], mergeFn store.MergeFunc[E]) (Paging, error) {
	target.Start()

	envelope, status, err := roundTrip[CollectionResponse[E]](ctx, c, req)
	if err != nil {
		target.Fail(err)
		return Paging{}.normalized(), err
	}
	if status.Failure() {
		terr := store.Fail(status).WithDetail(envelope.Messages.toMessages())
		target.Fail(terr)
		return Paging{}.normalized(), terr
	}
	target.LoadMerge(status, envelope.Collection, mergeFn)

	paging := Paging{}
	if envelope.Paging != nil {
		paging = *envelope.Paging
	}
	return paging.normalized(), nil
}

// roundTrip executes req and decodes the envelope. Transport and decode
// failures come back as *store.TransferError; HTTP-level failures come back
// as a failure status with the envelope decoded best-effort for diagnostics.
func roundTrip[R any](ctx context.Context, c *Client, req *Request) (R, store.StatusCode, error) {
	var envelope R

	httpReq, cancel, err := req.build(ctx, c.cfg)
	if err != nil {
		terr := store.Fail(store.StatusFetchFailed).WithCause(err)
		c.log(req, terr.Status, err)
		return envelope, store.StatusUndefined, terr
	}
	defer cancel()

	resp, err := c.http.Do(httpReq)
	if err != nil {
		terr := classify(err)
		c.log(req, terr.Status, err)
		return envelope, store.StatusUndefined, terr
	}
	defer resp.Body.Close()

	status := store.StatusFromHTTP(resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		terr := classify(err)
		c.log(req, terr.Status, err)
		return envelope, store.StatusUndefined, terr
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &envelope); err != nil {
			if status.Failure() {
				// Failure statuses win over an undecodable error body.
				c.log(req, status, nil)
				return envelope, status, nil
			}
			terr := store.Fail(store.StatusDecodeFailed).WithCause(err)
			c.log(req, terr.Status, err)
			return envelope, store.StatusUndefined, terr
		}
	}
	c.log(req, status, nil)
	return envelope, status, nil
}

// classify maps a transport error onto the local status codes.
func classify(err error) *store.TransferError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return store.Fail(store.StatusFetchTimeout).WithCause(err)
	case errors.Is(err, context.Canceled):
		return store.Fail(store.StatusCancelled).WithCause(err)
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return store.Fail(store.StatusFetchTimeout).WithCause(err)
	}
	return store.Fail(store.StatusFetchFailed).WithCause(err)
}

func (c *Client) log(req *Request, status store.StatusCode, err error) {
	if !c.cfg.Logging || req.Quiet {
		return
	}
	c.logger.LogTransfer(store.TransferLogEvent{
		Op:     req.Method + " " + req.URL + " attempt=" + req.AttemptID.String(),
		Status: status,
		Err:    err,
	})
}
