package inplace

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Overlay is the translation orchestrator. It owns the anchor guard and is
// the only writer of the result nodes it creates.
type Overlay struct {
	channel   Channel
	registry  *Registry
	committer *Committer
	guard     *Guard
	logger    *zap.Logger

	// mu serializes every DOM mutation made by the overlay.
	mu sync.Mutex
}

// Option is a functional option for configuring the Overlay.
type Option func(*Overlay)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Overlay) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRegistry replaces the adapter registry.
func WithRegistry(registry *Registry) Option {
	return func(o *Overlay) {
		if registry != nil {
			o.registry = registry
		}
	}
}

// WithSanitizer sets the policy applied to backend output. Pass nil to write
// backend output unfiltered.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(o *Overlay) {
		o.committer = NewCommitter(policy)
	}
}

// New creates an Overlay dispatching through channel. Backend output is
// sanitized with bluemonday's UGC policy unless WithSanitizer says otherwise;
// WithSanitizer(nil) writes replies exactly as the backend returned them.
func New(channel Channel, opts ...Option) *Overlay {
	o := &Overlay{
		channel:   channel,
		registry:  DefaultRegistry(),
		committer: NewCommitter(bluemonday.UGCPolicy()),
		guard:     NewGuard(),
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// TranslateAnchor starts translating anchor with the given service.
//
// The anchor is marked and its result node, holding the placeholder, is
// inserted before TranslateAnchor returns, so a second call for the same
// anchor is a no-op even while the first request is in flight. The request
// itself runs in its own goroutine; the returned Task reports its outcome.
//
// Only configuration errors are returned. Transport, reply and commit
// failures are logged, recorded on the task, and leave the placeholder in
// place. Cancelling ctx does not abort a dispatched request.
func (o *Overlay) TranslateAnchor(ctx context.Context, anchor *html.Node, service ServiceID, credential string) (*Task, error) {
	if o.channel == nil {
		return nil, &ConfigError{Message: "no dispatch channel"}
	}

	adapter, err := o.registry.Lookup(service)
	if err != nil {
		return nil, err
	}

	task, req, err := o.claim(anchor, adapter, credential)
	if err != nil || task.Skipped() {
		return task, err
	}

	o.logger.Debug("dispatching anchor",
		zap.String("task", task.ID),
		zap.String("service", string(service)),
		zap.String("tag", anchor.Data))

	go o.run(context.WithoutCancel(ctx), task, adapter, req)
	return task, nil
}

// claim runs the synchronous part of a translation under the DOM lock:
// guard check, payload build, marking and placeholder insertion.
func (o *Overlay) claim(anchor *html.Node, adapter Adapter, credential string) (*Task, Request, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.guard.ShouldTranslate(anchor) {
		return skippedTask(adapter.Service(), anchor, o.guard.State(anchor)), Request{}, nil
	}
	if anchor.Parent == nil {
		return nil, Request{}, &ConfigError{Message: "anchor is not attached to a document", Service: string(adapter.Service())}
	}

	body, err := adapter.BuildRequest(anchor, credential)
	if err != nil {
		return nil, Request{}, err
	}

	result, ok := o.guard.Claim(anchor)
	if !ok {
		return skippedTask(adapter.Service(), anchor, o.guard.State(anchor)), Request{}, nil
	}
	if err := setInnerHTML(result, RenderPlaceholder()); err != nil {
		// The placeholder is static markup; a failure here is a bug.
		o.logger.Error("rendering placeholder", zap.Error(err))
	}

	task := newTask(uuid.NewString(), adapter.Service(), anchor, result)
	return task, Request{Name: adapter.Service(), Body: body}, nil
}

// run dispatches the request and commits the reply. It never panics.
func (o *Overlay) run(ctx context.Context, t *Task, adapter Adapter, req Request) {
	log := o.logger.With(zap.String("task", t.ID), zap.String("service", string(t.Service)))

	defer close(t.done)
	defer func() {
		if r := recover(); r != nil {
			o.finish(t, StateFailed, &TransportError{Service: t.Service, Cause: fmt.Errorf("panic: %v", r)}, log)
		}
	}()

	reply, err := o.channel.Send(ctx, req)
	if err != nil {
		o.finish(t, StateFailed, &TransportError{Service: t.Service, Cause: err}, log)
		return
	}

	inner, err := o.committer.Render(adapter, reply)
	if err != nil {
		o.finish(t, StateFailed, err, log)
		return
	}

	o.mu.Lock()
	err = o.committer.write(t.result, t.Service, inner)
	o.mu.Unlock()
	if err != nil {
		o.finish(t, StateFailed, err, log)
		return
	}

	o.finish(t, StateCommitted, nil, log)
}

func (o *Overlay) finish(t *Task, state State, err error, log *zap.Logger) {
	o.mu.Lock()
	o.guard.Resolve(t.anchor, state)
	o.mu.Unlock()

	t.state = state
	t.err = err

	if err != nil {
		log.Warn("translation failed, keeping placeholder", zap.Error(err))
		return
	}
	log.Debug("translation committed")
}

// State returns the recorded state of anchor.
func (o *Overlay) State(anchor *html.Node) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.guard.State(anchor)
}

// Registry returns the adapter registry in use.
func (o *Overlay) Registry() *Registry {
	return o.registry
}
