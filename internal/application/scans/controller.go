package scans

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/application"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/application/corrections"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
)

// DefaultPollInterval gap between one poll resolving and the next being sent.
const DefaultPollInterval = time.Second

const defaultScanFailureMessage = "An error occurred during scanning"

// State of the lifecycle state machine
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StatePolling    State = "polling"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Terminal reports whether the state ends a generation.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Snapshot is a read-only copy of the controller state.
type Snapshot struct {
	State      State                `json:"state"`
	Generation uint64               `json:"generation"`
	Job        analysis.ScanJob     `json:"job"`
	Request    analysis.ScanRequest `json:"-"`
	Error      string               `json:"error,omitempty"`
	Err        error                `json:"-"`
	StartedAt  time.Time            `json:"started_at,omitempty"`
	FinishedAt time.Time            `json:"finished_at,omitempty"`
}

// Enricher fills in missing narratives before results are delivered.
type Enricher interface {
	Enrich(ctx context.Context, files []analysis.FileAnalysis) []analysis.FileAnalysis
}

// Recorder is told about every generation that reaches a terminal state.
type Recorder interface {
	Record(ctx context.Context, snap Snapshot, results *analysis.ScanResults)
}

// Options tune a Controller; zero values pick the defaults.
type Options struct {
	PollInterval     time.Duration
	TransportRetries int
	Clock            application.Clock
	Logger           hclog.Logger
	Enricher         Enricher
	Recorder         Recorder
	OnUpdate         func(Snapshot)
}

// Controller owns the submit/poll state machine for a single active scan.
//
// Every Submit and Abandon advances the generation. A poll loop remembers the
// generation it was started for and stops touching state the moment the two
// differ, so results of a superseded scan are dropped instead of applied.
type Controller struct {
	backend  analysis.Backend
	cache    *corrections.Cache
	interval time.Duration
	retries  int
	clock    application.Clock
	logger   hclog.Logger
	enricher Enricher
	recorder Recorder
	onUpdate func(Snapshot)

	mu         sync.Mutex
	generation uint64
	state      State
	request    analysis.ScanRequest
	job        analysis.ScanJob
	results    *analysis.ScanResults
	err        error
	startedAt  time.Time
	finishedAt time.Time
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewController(backend analysis.Backend, cache *corrections.Cache, opts Options) *Controller {
	if cache == nil {
		cache = corrections.New(nil)
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.TransportRetries < 0 {
		opts.TransportRetries = 0
	}
	if opts.Clock == nil {
		opts.Clock = application.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	return &Controller{
		backend:  backend,
		cache:    cache,
		interval: opts.PollInterval,
		retries:  opts.TransportRetries,
		clock:    opts.Clock,
		logger:   opts.Logger.Named("lifecycle"),
		enricher: opts.Enricher,
		recorder: opts.Recorder,
		onUpdate: opts.OnUpdate,
		state:    StateIdle,
	}
}

// Cache the result cache this controller invalidates and feeds.
func (c *Controller) Cache() *corrections.Cache { return c.cache }

// Submit starts a new scan, superseding whatever was in flight. It returns
// once the backend has issued a job id, together with the generation the scan
// was started under; polling continues in the background.
func (c *Controller) Submit(ctx context.Context, req analysis.ScanRequest) (analysis.ScanID, uint64, error) {
	if err := req.Validate(); err != nil {
		return "", 0, err
	}

	c.mu.Lock()
	gen := c.advanceLocked(StateSubmitting)
	c.request = req
	c.startedAt = c.clock.Now()
	loopCtx := c.newLoopLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Info("scan submitting", "generation", gen, "language", req.Language, "repository", req.RepositoryURL != "")
	c.publish(snap)

	reqCtx, stop := context.WithCancel(ctx)
	defer stop()
	unlink := context.AfterFunc(loopCtx, stop)
	defer unlink()

	id, err := c.backend.Submit(reqCtx, req)
	if err == nil && id == "" {
		err = &analysis.ProtocolError{Op: "submit", Field: "scan_id"}
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.logger.Debug("submit resolved for superseded generation", "generation", gen)
		return "", 0, analysis.ErrSuperseded
	}
	if err != nil {
		c.mu.Unlock()
		c.finish(gen, StateFailed, analysis.ScanJob{}, nil, err)
		return "", 0, err
	}
	c.state = StatePolling
	c.job = analysis.ScanJob{ID: id, Status: analysis.JobPending}
	snap = c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Info("scan accepted", "generation", gen, "scan_id", id)
	c.publish(snap)

	go c.pollLoop(loopCtx, gen, id)
	return id, gen, nil
}

// Abandon stops tracking the current scan: in-flight requests are cancelled,
// any pending poll result is ignored and the cache is cleared.
func (c *Controller) Abandon() {
	c.mu.Lock()
	if c.state == StateIdle && c.cancel == nil {
		c.mu.Unlock()
		return
	}
	gen := c.advanceLocked(StateIdle)
	c.request = analysis.ScanRequest{}
	c.startedAt = time.Time{}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Info("scan abandoned", "generation", gen)
	c.publish(snap)
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Results returns the results of the current scan once it has completed.
func (c *Controller) Results() (*analysis.ScanResults, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateCompleted:
		return c.results, nil
	case StateIdle:
		return nil, analysis.ErrNoScan
	default:
		return nil, analysis.ErrScanNotCompleted
	}
}

// Wait blocks until the current generation is terminal or superseded.
func (c *Controller) Wait(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	gen := c.generation
	done := c.done
	c.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return c.Snapshot(), ctx.Err()
		}
	}
	snap := c.Snapshot()
	if snap.Generation != gen {
		return snap, analysis.ErrSuperseded
	}
	return snap, snap.Err
}

func (c *Controller) pollLoop(ctx context.Context, gen uint64, id analysis.ScanID) {
	failures := 0
	for {
		if !c.current(gen) {
			return
		}
		resp, err := c.backend.Poll(ctx, id)
		if !c.current(gen) {
			c.logger.Debug("dropping poll result of superseded generation", "generation", gen, "scan_id", id)
			return
		}
		if err != nil {
			if analysis.IsRetryable(err) && failures < c.retries {
				failures++
				c.logger.Warn("poll transport error, retrying", "scan_id", id, "attempt", failures, "error", err)
				if !c.sleep(ctx, gen) {
					return
				}
				continue
			}
			c.finish(gen, StateFailed, analysis.ScanJob{ID: id, Status: analysis.JobFailed}, nil, err)
			return
		}
		failures = 0

		job := resp.Job
		job.ID = id
		job.Progress = clampProgress(job.Progress)

		if !job.Status.Terminal() {
			if !c.progress(gen, job) || !c.sleep(ctx, gen) {
				return
			}
			continue
		}

		switch job.Status {
		case analysis.JobCompleted:
			results := resp.Results
			if results == nil {
				results = &analysis.ScanResults{}
			}
			if c.enricher != nil {
				enriched := *results
				enriched.Files = c.enricher.Enrich(ctx, results.Files)
				results = &enriched
			}
			c.finish(gen, StateCompleted, job, results, nil)
			return
		case analysis.JobFailed:
			msg := job.Message
			if msg == "" {
				msg = defaultScanFailureMessage
			}
			c.finish(gen, StateFailed, job, nil, &analysis.ScanFailure{ScanID: id, Message: msg})
			return
		}
	}
}

func (c *Controller) progress(gen uint64, job analysis.ScanJob) bool {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return false
	}
	c.job = job
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Debug("scan progress", "scan_id", job.ID, "status", job.Status, "progress", job.Progress)
	c.publish(snap)
	return true
}

// finish applies a terminal transition for gen; stale generations are ignored.
func (c *Controller) finish(gen uint64, state State, job analysis.ScanJob, results *analysis.ScanResults, err error) bool {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return false
	}
	if job.ID == "" {
		job.ID = c.job.ID
	}
	c.state = state
	c.job = job
	c.results = results
	c.err = err
	c.finishedAt = c.clock.Now()
	if state == StateCompleted {
		c.cache.Deliver(gen, results)
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.closeDoneLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("scan failed", "generation", gen, "scan_id", job.ID, "error", err)
	} else {
		c.logger.Info("scan completed", "generation", gen, "scan_id", job.ID, "files", len(results.Files))
	}
	c.publish(snap)
	if c.recorder != nil {
		c.recorder.Record(context.Background(), snap, results)
	}
	return true
}

func (c *Controller) sleep(ctx context.Context, gen uint64) bool {
	select {
	case <-c.clock.After(c.interval):
		return c.current(gen)
	case <-ctx.Done():
		return false
	}
}

func (c *Controller) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.generation
}

// advanceLocked bumps the generation, neutralizes the previous loop and
// resets per-scan state.
func (c *Controller) advanceLocked(next State) uint64 {
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.closeDoneLocked()
	c.state = next
	c.job = analysis.ScanJob{}
	c.results = nil
	c.err = nil
	c.finishedAt = time.Time{}
	c.cache.Reset(c.generation)
	return c.generation
}

func (c *Controller) newLoopLocked() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	return ctx
}

func (c *Controller) closeDoneLocked() {
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		State:      c.state,
		Generation: c.generation,
		Job:        c.job,
		Request:    c.request,
		Err:        c.err,
		StartedAt:  c.startedAt,
		FinishedAt: c.finishedAt,
	}
	if c.err != nil {
		s.Error = c.err.Error()
	}
	return s
}

func (c *Controller) publish(s Snapshot) {
	if c.onUpdate != nil {
		c.onUpdate(s)
	}
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
