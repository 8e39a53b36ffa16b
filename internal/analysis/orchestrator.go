package analysis

import (
	"context"
	"fmt"
	"sync"

	"github.com/nextlight-dev/nextlight-audio-analyzer/internal/audio"
)

// Engine is the full contract the orchestrator holds the DSP collaborator
// to: one-time initialization plus the pipeline and cascade algorithm sets.
type Engine interface {
	Init(ctx context.Context) (version string, err error)
	LoudnessMeter
	TempoKeyAnalyzer
}

// request messages carried over the channel to the computation goroutine.
// Each request embeds the per-call event channel its responses go to, so
// responses are matched to their call's listener by construction.
type request interface{ isRequest() }

type initRequest struct {
	events chan Event
}

type analyzeRequest struct {
	left, right []float64
	sampleRate  int
	events      chan Event
}

type bpmKeyRequest struct {
	samples    []float64
	sampleRate int
	events     chan Event
}

func (initRequest) isRequest()    {}
func (analyzeRequest) isRequest() {}
func (bpmKeyRequest) isRequest()  {}

// Event is a response message from the computation goroutine. For any one
// call, progress and partial events arrive in emission order and the
// terminal event (Complete, BpmKeyComplete or Error) is always last; the
// event channel is closed after it.
type Event interface{ isEvent() }

// ReadyEvent terminates a successful init call.
type ReadyEvent struct{ Version string }

// ProgressEvent reports phase and percent for the in-flight call.
type ProgressEvent struct{ Progress Progress }

// PartialEvent streams one fragment of the AnalysisResult being built.
type PartialEvent struct{ Fragment Fragment }

// CompleteEvent terminates a successful analyze call.
type CompleteEvent struct{}

// BpmKeyCompleteEvent terminates a successful tempo/key call.
type BpmKeyCompleteEvent struct{ Result BpmKeyResult }

// ErrorEvent terminates a failed call.
type ErrorEvent struct{ Message string }

func (ReadyEvent) isEvent()          {}
func (ProgressEvent) isEvent()       {}
func (PartialEvent) isEvent()        {}
func (CompleteEvent) isEvent()       {}
func (BpmKeyCompleteEvent) isEvent() {}
func (ErrorEvent) isEvent()          {}

// initAttempt is one in-flight or settled initialization. Concurrent Init
// callers share the same attempt; a failed attempt is discarded so a later
// call can retry.
type initAttempt struct {
	done    chan struct{}
	version string
	err     error
}

// Orchestrator owns the background computation goroutine: lazy single
// startup, the request/response message protocol and per-call promise
// resolution. The computation goroutine is a single shared long-lived
// resource; it processes one call at a time.
type Orchestrator struct {
	eng     Engine
	mainsHz int
	logf    func(format string, args ...interface{})

	workerOnce sync.Once
	requests   chan request

	// callMu enforces the protocol's hard sequencing requirement: a second
	// analyze call must not be issued before the prior call's terminal
	// event, or responses could not be attributed.
	callMu sync.Mutex

	initMu  sync.Mutex
	attempt *initAttempt
	ready   bool
	version string
}

// NewOrchestrator wires an orchestrator to an engine. mainsHz feeds the
// pipeline's hum check; logf receives cascade tier diagnostics and may be
// nil.
func NewOrchestrator(eng Engine, mainsHz int, logf func(format string, args ...interface{})) *Orchestrator {
	return &Orchestrator{
		eng:      eng,
		mainsHz:  mainsHz,
		logf:     logf,
		requests: make(chan request),
	}
}

// Init starts the background resource if needed and resolves with the
// engine's version string. It is idempotent and single-flight: concurrent
// callers await the same in-flight attempt, a success is cached for the
// process lifetime, a failure clears the slot so a later call may retry.
func (o *Orchestrator) Init(ctx context.Context) (string, error) {
	o.initMu.Lock()
	if o.ready {
		version := o.version
		o.initMu.Unlock()
		return version, nil
	}
	if o.attempt == nil {
		att := &initAttempt{done: make(chan struct{})}
		o.attempt = att
		go o.runInit(att)
	}
	att := o.attempt
	o.initMu.Unlock()

	select {
	case <-att.done:
		return att.version, att.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// runInit dispatches the init request to the computation goroutine and
// settles the shared attempt.
func (o *Orchestrator) runInit(att *initAttempt) {
	o.ensureWorker()
	events := make(chan Event, 4)
	o.requests <- initRequest{events: events}

	for ev := range events {
		switch ev := ev.(type) {
		case ReadyEvent:
			att.version = ev.Version
		case ErrorEvent:
			att.err = fmt.Errorf("engine initialization failed: %s", ev.Message)
		}
	}

	o.initMu.Lock()
	if att.err == nil {
		o.ready = true
		o.version = att.version
	} else {
		o.attempt = nil // allow retry
	}
	o.initMu.Unlock()
	close(att.done)
}

// Analyze runs the full measurement pipeline on a buffer. Ownership of the
// buffer transfers to the orchestrator: the caller must treat it as invalid
// after the call starts and clone beforehand if the samples are needed
// again. Progress and partial callbacks fire in emission order; the
// assembled result is returned once the terminal event arrives.
//
// There is no mid-call cancellation: a canceled context abandons the call
// but the background work runs to completion.
func (o *Orchestrator) Analyze(ctx context.Context, buf *audio.Buffer, onProgress func(Progress), onPartial func(Fragment)) (AnalysisResult, error) {
	if err := o.checkReady(); err != nil {
		return AnalysisResult{}, err
	}

	o.callMu.Lock()
	o.ensureWorker()
	events := make(chan Event, 64)
	o.requests <- analyzeRequest{
		left:       buf.Left(),
		right:      buf.Right(),
		sampleRate: buf.SampleRate,
		events:     events,
	}

	result := AnalysisResult{}
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case ProgressEvent:
				if onProgress != nil {
					onProgress(ev.Progress)
				}
			case PartialEvent:
				result = result.Merge(ev.Fragment)
				if onPartial != nil {
					onPartial(ev.Fragment)
				}
			case CompleteEvent:
				o.callMu.Unlock()
				return result, nil
			case ErrorEvent:
				o.callMu.Unlock()
				return result, fmt.Errorf("analysis failed: %s", ev.Message)
			}
		case <-ctx.Done():
			o.abandon(events)
			return result, ctx.Err()
		}
	}
}

// AnalyzeBpmKey runs the tempo/key cascade on a buffer. Same ownership and
// cancellation semantics as Analyze; only progress is streamed.
func (o *Orchestrator) AnalyzeBpmKey(ctx context.Context, buf *audio.Buffer, onProgress func(Progress)) (BpmKeyResult, error) {
	if err := o.checkReady(); err != nil {
		return BpmKeyResult{}, err
	}

	o.callMu.Lock()
	o.ensureWorker()
	events := make(chan Event, 64)
	o.requests <- bpmKeyRequest{
		samples:    buf.Mono(),
		sampleRate: buf.SampleRate,
		events:     events,
	}

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case ProgressEvent:
				if onProgress != nil {
					onProgress(ev.Progress)
				}
			case BpmKeyCompleteEvent:
				o.callMu.Unlock()
				return ev.Result, nil
			case ErrorEvent:
				o.callMu.Unlock()
				return BpmKeyResult{}, fmt.Errorf("tempo/key analysis failed: %s", ev.Message)
			}
		case <-ctx.Done():
			o.abandon(events)
			return BpmKeyResult{}, ctx.Err()
		}
	}
}

func (o *Orchestrator) checkReady() error {
	o.initMu.Lock()
	defer o.initMu.Unlock()
	if !o.ready {
		return fmt.Errorf("engine not initialized: call Init first")
	}
	return nil
}

// abandon drains the remaining events of an abandoned call in the
// background so the computation goroutine never blocks, then releases the
// sequencing lock once the terminal event has passed.
func (o *Orchestrator) abandon(events chan Event) {
	go func() {
		for range events {
		}
		o.callMu.Unlock()
	}()
}

// ensureWorker starts the computation goroutine on first use.
func (o *Orchestrator) ensureWorker() {
	o.workerOnce.Do(func() {
		go o.worker()
	})
}

// worker is the background computation path. It processes requests
// sequentially, emits events to the per-call channel and closes it after
// the terminal event. Panics inside a call are contained and surfaced as
// that call's terminal error.
func (o *Orchestrator) worker() {
	for req := range o.requests {
		switch req := req.(type) {
		case initRequest:
			o.handleInit(req)
		case analyzeRequest:
			o.handleAnalyze(req)
		case bpmKeyRequest:
			o.handleBpmKey(req)
		}
	}
}

func (o *Orchestrator) handleInit(req initRequest) {
	defer close(req.events)
	defer o.recoverTo(req.events)

	version, err := o.eng.Init(context.Background())
	if err != nil {
		req.events <- ErrorEvent{Message: err.Error()}
		return
	}
	req.events <- ReadyEvent{Version: version}
}

func (o *Orchestrator) handleAnalyze(req analyzeRequest) {
	defer close(req.events)
	defer o.recoverTo(req.events)

	pipeline := NewPipeline(o.eng, o.mainsHz)
	err := pipeline.Run(req.left, req.right, req.sampleRate,
		func(p Progress) { req.events <- ProgressEvent{Progress: p} },
		func(f Fragment) { req.events <- PartialEvent{Fragment: f} },
	)
	if err != nil {
		req.events <- ErrorEvent{Message: err.Error()}
		return
	}
	req.events <- CompleteEvent{}
}

func (o *Orchestrator) handleBpmKey(req bpmKeyRequest) {
	defer close(req.events)
	defer o.recoverTo(req.events)

	cascade := NewCascade(o.eng, o.logf)
	result := cascade.Run(req.samples, req.sampleRate,
		func(p Progress) { req.events <- ProgressEvent{Progress: p} },
	)
	req.events <- BpmKeyCompleteEvent{Result: result}
}

// recoverTo converts a panic inside a call into that call's terminal error
// event.
func (o *Orchestrator) recoverTo(events chan Event) {
	if r := recover(); r != nil {
		events <- ErrorEvent{Message: fmt.Sprintf("internal error: %v", r)}
	}
}
