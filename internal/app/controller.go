package app

import (
	"context"
	"sync"
	"time"
)

// DefaultIngestTimeout is how long a whole attachment batch may take
// before the watchdog kills it.
const DefaultIngestTimeout = 30 * time.Second

// callTimeout bounds every individual model call.
const callTimeout = 3 * time.Minute

// Controller owns the state machine. Dispatch feeds an event through the
// reducer under a lock, publishes the new state to subscribers, and
// executes the returned effects; effect completions come back in through
// Dispatch as internal events. At most one pipeline operation is in
// flight at a time, enforced by the reducer's phase checks.
type Controller struct {
	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int

	// pubMu serializes subscriber notification; seq is assigned under mu
	// and pubSeq tracks the newest snapshot already delivered, so a slow
	// dispatch never publishes an older state over a newer one.
	pubMu  sync.Mutex
	seq    uint64
	pubSeq uint64

	gw  Gateway
	log *Logger

	ingest      *ingestor
	watchdog    *time.Timer
	watchdogTTL time.Duration

	// auditSource supplies the source listing for the code audit overlay.
	auditSource func() (string, error)

	ctx    context.Context
	cancel context.CancelFunc
}

// ControllerOption tweaks controller construction.
type ControllerOption func(*Controller)

// WithIngestTimeout overrides the attachment watchdog duration.
func WithIngestTimeout(d time.Duration) ControllerOption {
	return func(c *Controller) { c.watchdogTTL = d }
}

// WithAuditSource overrides where the code audit reads its source from.
func WithAuditSource(fn func() (string, error)) ControllerOption {
	return func(c *Controller) { c.auditSource = fn }
}

// NewController builds a controller around a gateway. Close releases the
// worker and any in-flight calls.
func NewController(gw Gateway, log *Logger, opts ...ControllerOption) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		state:       NewState(),
		subs:        make(map[int]func(State)),
		gw:          gw,
		log:         log,
		watchdogTTL: DefaultIngestTimeout,
		auditSource: func() (string, error) { return CollectAuditSource(".") },
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers a render callback invoked with every published
// state. The callback runs outside the controller lock. The returned
// function unsubscribes.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Dispatch runs an event through the reducer and executes its effects.
// Safe for concurrent use from any goroutine.
func (c *Controller) Dispatch(ev Event) {
	c.mu.Lock()
	next, effects := Reduce(c.state, ev)
	c.state = next
	// Worker and watchdog effects mutate controller fields, so they run
	// under the lock before the state is published.
	for _, fx := range effects {
		switch fx := fx.(type) {
		case fxStartIngest:
			c.startIngestLocked(fx)
		case fxArmWatchdog:
			c.armWatchdogLocked(fx.Batch)
		case fxStopWatchdog:
			c.stopWatchdogLocked()
		case fxTerminateIngest:
			c.terminateIngestLocked()
		}
	}
	c.seq++
	seq := c.seq
	subs := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	c.publish(seq, next, subs)
	for _, fx := range effects {
		c.run(fx)
	}
}

// publish delivers a snapshot to subscribers in dispatch order. Stale
// snapshots, overtaken while their dispatch raced here, are dropped.
// Callbacks run under pubMu and must not dispatch.
func (c *Controller) publish(seq uint64, s State, subs []func(State)) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	if seq <= c.pubSeq {
		return
	}
	c.pubSeq = seq
	for _, fn := range subs {
		fn(s)
	}
}

// Close tears the controller down. No events are processed afterwards.
func (c *Controller) Close() {
	c.cancel()
	c.mu.Lock()
	c.stopWatchdogLocked()
	c.terminateIngestLocked()
	c.subs = make(map[int]func(State))
	c.mu.Unlock()
}

func (c *Controller) run(fx Effect) {
	switch fx := fx.(type) {
	case fxGenerateBase:
		go c.generateBase(fx)
	case fxTailorDescriptions:
		go c.tailorDescriptions(fx)
	case fxStreamDossier:
		go c.streamDossier(fx)
	case fxEvaluate:
		go c.evaluate(fx)
	case fxStreamPlayground:
		go c.streamPlayground(fx)
	case fxOptimize:
		go c.optimize(fx)
	case fxAudit:
		go c.audit()
	}
}

func (c *Controller) callCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.ctx, callTimeout)
}

func (c *Controller) generateBase(fx fxGenerateBase) {
	ctx, cancel := c.callCtx()
	defer cancel()
	text, err := c.gw.GenerateSimple(ctx, fx.Prompt, fx.Attachments)
	if err != nil {
		c.log.Error("base prompt generation failed", map[string]any{"error": err.Error()})
	}
	c.Dispatch(basePromptDone{Text: text, Err: err})
}

func (c *Controller) tailorDescriptions(fx fxTailorDescriptions) {
	ctx, cancel := c.callCtx()
	defer cancel()
	desc, err := GenerateValidated[map[string]string](ctx, c.gw,
		BuildTailorPrompt(fx.BasePrompt), TailorSchema(), nil)
	if err != nil {
		c.log.Error("architecture tailoring failed", map[string]any{"error": err.Error()})
	}
	c.Dispatch(tailoredDone{Descriptions: desc, Err: err})
}

func (c *Controller) streamDossier(fx fxStreamDossier) {
	ctx, cancel := c.callCtx()
	defer cancel()
	text, err := c.gw.GenerateStream(ctx, fx.Prompt, fx.Attachments, func(total string) {
		c.Dispatch(dossierChunk{Text: total})
	})
	if err != nil {
		c.log.Error("dossier stream failed", map[string]any{"error": err.Error()})
	}
	c.Dispatch(dossierDone{Text: text, Err: err})
}

func (c *Controller) evaluate(fx fxEvaluate) {
	ctx, cancel := c.callCtx()
	defer cancel()
	eval, err := GenerateValidated[Evaluation](ctx, c.gw,
		BuildEvaluationPrompt(fx.Target), EvaluationSchema(), ValidateEvaluation)
	var ep *Evaluation
	if err == nil {
		ep = &eval
	} else {
		c.log.Error("prompt evaluation failed", map[string]any{"error": err.Error()})
	}
	c.Dispatch(evaluationDone{Target: fx.Target, Eval: ep, Err: err})
}

func (c *Controller) streamPlayground(fx fxStreamPlayground) {
	ctx, cancel := c.callCtx()
	defer cancel()
	text, err := c.gw.GenerateStream(ctx, fx.Prompt, fx.Attachments, func(total string) {
		c.Dispatch(playgroundChunk{Text: total})
	})
	if err != nil {
		c.log.Error("playground stream failed", map[string]any{"error": err.Error()})
	}
	c.Dispatch(playgroundDone{Text: text, Err: err})
}

func (c *Controller) optimize(fx fxOptimize) {
	ctx, cancel := c.callCtx()
	defer cancel()
	text, err := c.gw.GenerateSimple(ctx, BuildOptimizationPrompt(fx.Prompt, fx.Instruction), nil)
	if err != nil {
		c.log.Error("prompt optimization failed", map[string]any{"error": err.Error()})
	}
	c.Dispatch(optimizeDone{NewPrompt: text, Err: err})
}

func (c *Controller) audit() {
	source, err := c.auditSource()
	if err != nil {
		c.Dispatch(auditDone{Err: err})
		return
	}
	ctx, cancel := c.callCtx()
	defer cancel()
	report, err := c.gw.GenerateSimple(ctx, BuildAuditPrompt(source), nil)
	if err != nil {
		c.log.Error("code audit failed", map[string]any{"error": err.Error()})
	}
	c.Dispatch(auditDone{Report: report, Err: err})
}

// startIngestLocked lazily creates the worker and its event pump, then
// hands it the batch. A terminated worker has already been cleared to
// nil, so the next batch gets a fresh one.
func (c *Controller) startIngestLocked(fx fxStartIngest) {
	if c.ingest == nil {
		w := newIngestor(c.log)
		c.ingest = w
		go func() {
			for ev := range w.Events() {
				c.Dispatch(ev)
			}
		}()
	}
	c.ingest.Process(fx.Batch, fx.Files)
}

func (c *Controller) armWatchdogLocked(batch string) {
	if c.watchdog != nil {
		c.watchdog.Stop()
	}
	c.watchdog = time.AfterFunc(c.watchdogTTL, func() {
		c.Dispatch(ingestTimedOut{Batch: batch})
	})
}

func (c *Controller) stopWatchdogLocked() {
	if c.watchdog != nil {
		c.watchdog.Stop()
		c.watchdog = nil
	}
}

func (c *Controller) terminateIngestLocked() {
	if c.ingest != nil {
		c.ingest.Terminate()
		c.ingest = nil
	}
}
