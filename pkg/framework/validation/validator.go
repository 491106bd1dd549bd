// Package validation checks that a submitted store URL names a reachable
// extension listing before it is tracked.
package validation

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	apperrors "github.com/garunski/extension-conductor/pkg/framework/errors"
	"github.com/garunski/extension-conductor/pkg/framework/events"
	"github.com/garunski/extension-conductor/pkg/framework/extensions"
	"github.com/garunski/extension-conductor/pkg/framework/webstore"
)

// DefaultTimeout bounds the reachability check.
const DefaultTimeout = 10 * time.Millisecond

// RequestAddAction asks for StoreURL to be validated. Completion receives
// the outcome.
type RequestAddAction struct {
	StoreURL   string
	Completion *Completion
}

func (RequestAddAction) Type() extensions.ActionType { return extensions.ActionRequestAdd }

// RequestAdd builds the action with a fresh Completion attached.
func RequestAdd(storeURL string) RequestAddAction {
	return RequestAddAction{StoreURL: storeURL, Completion: NewCompletion()}
}

// Normalizer maps a raw URL to its canonical listing.
type Normalizer func(raw string) (webstore.Match, bool)

// Dispatcher applies a state action.
type Dispatcher interface {
	Dispatch(action extensions.Action) (extensions.State, error)
}

type Config struct {
	Timeout time.Duration
	// AutoAdd dispatches an Add for the validated listing before resolving.
	AutoAdd bool
}

type Validator struct {
	config     Config
	normalize  Normalizer
	fetcher    Fetcher
	logger     logr.Logger
	recorder   events.Recorder
	dispatcher Dispatcher
	ids        extensions.IDGenerator
}

type Option func(*Validator)

func WithConfig(cfg Config) Option {
	return func(v *Validator) {
		v.config = cfg
	}
}

func WithNormalizer(n Normalizer) Option {
	return func(v *Validator) {
		v.normalize = n
	}
}

func WithEventRecorder(r events.Recorder) Option {
	return func(v *Validator) {
		v.recorder = r
	}
}

// WithDispatcher is required for AutoAdd; ids names new entries.
func WithDispatcher(d Dispatcher, ids extensions.IDGenerator) Option {
	return func(v *Validator) {
		v.dispatcher = d
		v.ids = ids
	}
}

func NewValidator(fetcher Fetcher, logger logr.Logger, opts ...Option) (*Validator, error) {
	if fetcher == nil {
		fetcher = NewHTTPFetcher(&http.Client{})
	}

	v := &Validator{
		config:    Config{Timeout: DefaultTimeout},
		normalize: webstore.Normalize,
		fetcher:   fetcher,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(v)
	}

	if v.config.Timeout <= 0 {
		return nil, fmt.Errorf("%w: validation timeout must be positive, got %s", apperrors.ErrInvalid, v.config.Timeout)
	}
	if v.config.AutoAdd && (v.dispatcher == nil || v.ids == nil) {
		return nil, fmt.Errorf("%w: auto add requires a dispatcher and an id generator", apperrors.ErrInvalid)
	}
	return v, nil
}

// RequestAdd starts validating raw and returns immediately. Each call runs
// on its own goroutine and shares nothing with other calls.
func (v *Validator) RequestAdd(ctx context.Context, raw string) *Completion {
	action := RequestAdd(raw)
	go v.Handle(ctx, action)
	return action.Completion
}

// Handle validates action.StoreURL and resolves action.Completion exactly
// once before returning.
func (v *Validator) Handle(ctx context.Context, action RequestAddAction) Result {
	result, resourceKey := v.validate(ctx, action.StoreURL)
	if action.Completion != nil && !action.Completion.Resolve(result) {
		v.logger.Info("request-add completion already resolved, dropping result", "storeUrl", action.StoreURL)
	}
	v.record(resourceKey, result)
	return result
}

func (v *Validator) validate(ctx context.Context, raw string) (Result, string) {
	match, ok := v.normalize(raw)
	if !ok || match.StoreURL == "" {
		v.logger.V(1).Info("store URL rejected", "storeUrl", raw)
		return invalidStoreURL(), raw
	}
	v.logger.V(1).Info("normalized store URL", "storeUrl", raw, "normalized", match.StoreURL)

	if result := v.checkReachable(ctx, match.StoreURL); !result.OK() {
		return result, match.StoreURL
	}

	if v.config.AutoAdd {
		entry := extensions.Entry{
			ID:       v.ids.Next(),
			Kind:     match.Kind,
			StoreURL: match.StoreURL,
		}
		if _, err := v.dispatcher.Dispatch(extensions.Add(entry)); err != nil {
			v.logger.Error(err, "failed to add validated extension", "storeUrl", match.StoreURL)
			return Result{General: addFailedPrefix + err.Error()}, match.StoreURL
		}
		v.logger.Info("Added extension", "id", entry.ID, "kind", entry.Kind, "storeUrl", entry.StoreURL)
	}

	return Result{}, match.StoreURL
}

type fetchOutcome struct {
	status int
	err    error
}

// checkReachable races the fetch against the timeout. The fetch is
// cancelled as soon as the race is decided.
func (v *Validator) checkReachable(ctx context.Context, url string) Result {
	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcome := make(chan fetchOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				outcome <- fetchOutcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		status, err := v.fetcher.Fetch(fetchCtx, url)
		outcome <- fetchOutcome{status: status, err: err}
	}()

	timer := time.NewTimer(v.config.Timeout)
	defer timer.Stop()

	select {
	case <-timer.C:
		v.logger.V(1).Info("store URL fetch timed out", "url", url, "timeout", v.config.Timeout)
		return timedOut()
	case <-ctx.Done():
		return unhandled(ctx.Err())
	case o := <-outcome:
		if o.err != nil {
			v.logger.V(1).Info("store URL fetch failed", "url", url, "error", o.err)
			return unhandled(o.err)
		}
		if o.status != http.StatusOK {
			return invalidStatus(o.status)
		}
		return Result{}
	}
}

func (v *Validator) record(resourceKey string, result Result) {
	var event events.Event
	switch {
	case result.OK():
		event = events.Success(resourceKey, events.OperationRequestAdd, "Store URL validated")
	case result.Field():
		event = events.Warning(resourceKey, events.OperationRequestAdd, result.StoreURL)
	default:
		event = events.Error(resourceKey, events.OperationRequestAdd, result.General, nil)
	}
	events.StoreEventSafe(v.recorder, v.logger, event)
}
