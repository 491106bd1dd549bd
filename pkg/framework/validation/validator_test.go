package validation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-logr/logr"

	"github.com/garunski/extension-conductor/pkg/framework/events"
	"github.com/garunski/extension-conductor/pkg/framework/extensions"
	"github.com/garunski/extension-conductor/pkg/framework/webstore"
)

const (
	testChromeID  = "cjpalhdlnbpafiamejdnhcphjbkeiagm"
	testStoreURL  = "https://chromewebstore.google.com/detail/ublock-origin/" + testChromeID
	testCanonical = "https://chrome.google.com/webstore/detail/" + testChromeID
)

type countingFetcher struct {
	calls  atomic.Int32
	status int
	err    error
	gotURL atomic.Value
}

func (f *countingFetcher) Fetch(ctx context.Context, url string) (int, error) {
	f.calls.Add(1)
	f.gotURL.Store(url)
	return f.status, f.err
}

// blockingFetcher never answers on its own; it reports when its context ends.
type blockingFetcher struct {
	cancelled chan struct{}
}

func (f *blockingFetcher) Fetch(ctx context.Context, url string) (int, error) {
	<-ctx.Done()
	close(f.cancelled)
	return 0, ctx.Err()
}

type memRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *memRecorder) StoreEvent(e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

type memDispatcher struct {
	mu      sync.Mutex
	state   extensions.State
	actions []extensions.Action
	err     error
}

func (d *memDispatcher) Dispatch(a extensions.Action) (extensions.State, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.state, d.err
	}
	d.actions = append(d.actions, a)
	d.state = extensions.Reduce(d.state, a)
	return d.state, nil
}

func newTestValidator(t *testing.T, f Fetcher, opts ...Option) *Validator {
	t.Helper()
	v, err := NewValidator(f, logr.Discard(), opts...)
	if err != nil {
		t.Fatalf("NewValidator() error = %v", err)
	}
	return v
}

func TestHandle_InvalidStoreURL(t *testing.T) {
	f := &countingFetcher{status: http.StatusOK}
	v := newTestValidator(t, f)
	action := RequestAdd("https://example.com/not-a-store")

	result := v.Handle(context.Background(), action)

	want := Result{StoreURL: "Not a valid store URL."}
	if result != want {
		t.Errorf("Handle() = %+v, want %+v", result, want)
	}
	if got, ok := action.Completion.Result(); !ok || got != want {
		t.Errorf("completion = %+v (resolved %v), want %+v", got, ok, want)
	}
	if f.calls.Load() != 0 {
		t.Errorf("fetcher called %d times, want 0", f.calls.Load())
	}
}

func TestHandle_InvalidStatus(t *testing.T) {
	v := newTestValidator(t, &countingFetcher{status: http.StatusNotFound})

	result := v.Handle(context.Background(), RequestAdd(testStoreURL))

	want := Result{StoreURL: `Invalid status of "404" at URL.`}
	if result != want {
		t.Errorf("Handle() = %+v, want %+v", result, want)
	}
	if !result.Field() {
		t.Error("status error should be field-level")
	}
}

func TestHandle_Timeout(t *testing.T) {
	f := &blockingFetcher{cancelled: make(chan struct{})}
	v := newTestValidator(t, f, WithConfig(Config{Timeout: 5 * time.Millisecond}))

	result := v.Handle(context.Background(), RequestAdd(testStoreURL))

	want := Result{General: "Connection timed out, please try again later."}
	if result != want {
		t.Errorf("Handle() = %+v, want %+v", result, want)
	}

	select {
	case <-f.cancelled:
	case <-time.After(time.Second):
		t.Error("losing fetch was not cancelled")
	}
}

func TestHandle_FetchError(t *testing.T) {
	v := newTestValidator(t, &countingFetcher{err: errors.New("connection refused")})

	result := v.Handle(context.Background(), RequestAdd(testStoreURL))

	want := Result{General: "Unhandled error while validating URL: connection refused"}
	if result != want {
		t.Errorf("Handle() = %+v, want %+v", result, want)
	}
	if result.Field() {
		t.Error("fetch error should be general, not field-level")
	}
}

func TestHandle_FetchPanics(t *testing.T) {
	f := FetcherFunc(func(ctx context.Context, url string) (int, error) {
		panic("bad request")
	})
	v := newTestValidator(t, f, WithConfig(Config{Timeout: time.Second}))

	result := v.Handle(context.Background(), RequestAdd(testStoreURL))

	if !strings.HasPrefix(result.General, "Unhandled error while validating URL: ") {
		t.Errorf("Handle() = %+v, want unhandled error", result)
	}
}

func TestHandle_Success(t *testing.T) {
	f := &countingFetcher{status: http.StatusOK}
	rec := &memRecorder{}
	v := newTestValidator(t, f, WithConfig(Config{Timeout: time.Second}), WithEventRecorder(rec))

	result := v.Handle(context.Background(), RequestAdd(testStoreURL))

	if !result.OK() {
		t.Errorf("Handle() = %+v, want success", result)
	}
	if got := f.gotURL.Load(); got != testCanonical {
		t.Errorf("fetched %v, want normalized %s", got, testCanonical)
	}
	if len(rec.events) != 1 || rec.events[0].Type != events.EventTypeSuccess || rec.events[0].ResourceKey != testCanonical {
		t.Errorf("recorded events = %+v", rec.events)
	}
}

func TestHandle_RecordsEventTypes(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		fetcher Fetcher
		want    events.EventType
	}{
		{"field error", "nope", &countingFetcher{status: 200}, events.EventTypeWarning},
		{"general error", testStoreURL, &countingFetcher{err: errors.New("x")}, events.EventTypeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &memRecorder{}
			v := newTestValidator(t, tt.fetcher, WithConfig(Config{Timeout: time.Second}), WithEventRecorder(rec))
			v.Handle(context.Background(), RequestAdd(tt.raw))
			if len(rec.events) != 1 || rec.events[0].Type != tt.want {
				t.Errorf("recorded events = %+v, want one %s", rec.events, tt.want)
			}
		})
	}
}

func TestHandle_NoAutoAddByDefault(t *testing.T) {
	d := &memDispatcher{}
	v := newTestValidator(t, &countingFetcher{status: 200},
		WithConfig(Config{Timeout: time.Second}),
		WithDispatcher(d, extensions.NewCounterIDGenerator()))

	v.Handle(context.Background(), RequestAdd(testStoreURL))

	if len(d.actions) != 0 {
		t.Errorf("dispatched %v without AutoAdd", d.actions)
	}
}

func TestHandle_AutoAdd(t *testing.T) {
	d := &memDispatcher{}
	v := newTestValidator(t, &countingFetcher{status: 200},
		WithConfig(Config{Timeout: time.Second, AutoAdd: true}),
		WithDispatcher(d, extensions.NewCounterIDGenerator()))

	result := v.Handle(context.Background(), RequestAdd(testStoreURL))

	if !result.OK() {
		t.Fatalf("Handle() = %+v, want success", result)
	}
	want := extensions.Entry{ID: "0", Kind: extensions.KindChrome, StoreURL: testCanonical}
	if got := d.state["0"]; got != want {
		t.Errorf("added entry = %+v, want %+v", got, want)
	}
}

func TestHandle_AutoAddDispatchFails(t *testing.T) {
	d := &memDispatcher{err: errors.New("storage error")}
	v := newTestValidator(t, &countingFetcher{status: 200},
		WithConfig(Config{Timeout: time.Second, AutoAdd: true}),
		WithDispatcher(d, extensions.NewCounterIDGenerator()))

	result := v.Handle(context.Background(), RequestAdd(testStoreURL))

	if result.General != "Failed to add extension: storage error" {
		t.Errorf("Handle() = %+v", result)
	}
}

func TestHandle_ResolvesOnce(t *testing.T) {
	v := newTestValidator(t, &countingFetcher{status: 200}, WithConfig(Config{Timeout: time.Second}))
	action := RequestAdd(testStoreURL)
	action.Completion.Resolve(Result{General: "already"})

	v.Handle(context.Background(), action)

	if got, _ := action.Completion.Result(); got.General != "already" {
		t.Errorf("completion overwritten: %+v", got)
	}
}

func TestRequestAdd_Async(t *testing.T) {
	v := newTestValidator(t, &countingFetcher{status: http.StatusForbidden}, WithConfig(Config{Timeout: time.Second}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	result, err := v.RequestAdd(ctx, testStoreURL).Wait(ctx)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if result.StoreURL != `Invalid status of "403" at URL.` {
		t.Errorf("result = %+v", result)
	}
}

func TestRequestAdd_Concurrent(t *testing.T) {
	f := FetcherFunc(func(ctx context.Context, url string) (int, error) {
		if strings.HasSuffix(url, "/firefox/addon/missing/") {
			return http.StatusNotFound, nil
		}
		return http.StatusOK, nil
	})
	v := newTestValidator(t, f, WithConfig(Config{Timeout: time.Second}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	const n = 20
	completions := make([]*Completion, n)
	for i := range completions {
		raw := testStoreURL
		if i%2 == 1 {
			raw = "https://addons.mozilla.org/firefox/addon/missing/"
		}
		completions[i] = v.RequestAdd(ctx, raw)
	}

	for i, c := range completions {
		result, err := c.Wait(ctx)
		if err != nil {
			t.Fatalf("completion %d: %v", i, err)
		}
		if wantOK := i%2 == 0; result.OK() != wantOK {
			t.Errorf("completion %d = %+v, want ok=%v", i, result, wantOK)
		}
	}
}

func TestRequestAdd_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusGone)
			return
		}
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	passthrough := func(raw string) (webstore.Match, bool) {
		return webstore.Match{Kind: extensions.KindChrome, StoreURL: raw}, true
	}
	v := newTestValidator(t, NewHTTPFetcher(srv.Client()),
		WithConfig(Config{Timeout: 2 * time.Second}),
		WithNormalizer(passthrough))

	ctx := context.Background()
	if result, _ := v.RequestAdd(ctx, srv.URL+"/ok").Wait(ctx); !result.OK() {
		t.Errorf("/ok result = %+v, want success", result)
	}
	if result, _ := v.RequestAdd(ctx, srv.URL+"/gone").Wait(ctx); result.StoreURL != `Invalid status of "410" at URL.` {
		t.Errorf("/gone result = %+v", result)
	}
}

func TestNewValidator_Config(t *testing.T) {
	if _, err := NewValidator(nil, logr.Discard(), WithConfig(Config{Timeout: 0})); err == nil {
		t.Error("zero timeout accepted")
	}
	if _, err := NewValidator(nil, logr.Discard(), WithConfig(Config{Timeout: time.Second, AutoAdd: true})); err == nil {
		t.Error("AutoAdd without dispatcher accepted")
	}
	v, err := NewValidator(nil, logr.Discard())
	if err != nil {
		t.Fatalf("NewValidator() error = %v", err)
	}
	if v.config.Timeout != DefaultTimeout {
		t.Errorf("default timeout = %s, want %s", v.config.Timeout, DefaultTimeout)
	}
}
