// Package service provides the dashboard service behind the HTTP API: one
// session per browser client, analysis runs on a worker pool, and the
// rendered results of the last run.
package service

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	eventqueue "github.com/okian/motionlab/internal/adapters/mq/queue"
	workerpool "github.com/okian/motionlab/internal/adapters/mq/worker"
	"github.com/okian/motionlab/internal/domain/analysis"
	"github.com/okian/motionlab/internal/domain/model"
	"github.com/okian/motionlab/internal/domain/report"
	"github.com/okian/motionlab/internal/domain/results"
	"github.com/okian/motionlab/internal/domain/runguard"
	"github.com/okian/motionlab/internal/domain/upload"
	"github.com/okian/motionlab/pkg/logger"
	"github.com/okian/motionlab/pkg/metrics"
)

const (
	defaultQueueSize  = 1_000
	defaultGuardSize  = 10_000
	defaultSessionTTL = 24 * time.Hour
	defaultRunTimeout = 5 * time.Minute
	minSweepInterval  = time.Minute
)

// Errors.
var (
	ErrQueueFull  = errors.New("analysis queue is full")
	ErrNotStarted = errors.New("service not started")
	ErrNoResults  = errors.New("no analysis results yet")
)

// Publisher pushes run updates to the listeners of a client.
type Publisher interface {
	Publish(ctx context.Context, clientID string, ev model.ProgressEvent)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, model.ProgressEvent) {}

type clientSession struct {
	state    State
	doc      *results.Document
	shownAs  model.AnalysisType
	lastSeen time.Time
}

// Service implements the API dependencies for the dashboard.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*clientSession

	// Core components
	guard     runguard.Guard
	jobs      *eventqueue.InMemoryQueue
	pool      *workerpool.Pool
	analyzer  workerpool.Analyzer
	timeline  func() []model.TimelinePoint
	renderer  *results.Renderer
	publisher Publisher

	// Configuration
	workerCount        int
	queueSize          int
	guardSize          int
	sessionTTL         time.Duration
	runTimeout         time.Duration
	regenerateOnResize bool
	now                func() time.Time

	// State
	started bool
	cancel  context.CancelFunc
	stopCh  chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of analysis workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued runs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithGuardSize caps how many clients may have a run in flight.
func WithGuardSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.guardSize = size
		}
	}
}

// WithSessionTTL sets how long an idle client session is kept.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithSimulator sets the simulator used for runs and chart regeneration.
func WithSimulator(sim *analysis.Simulator) Option {
	return func(s *Service) {
		if sim != nil {
			s.analyzer = sim
			s.timeline = sim.Timeline
		}
	}
}

// WithAnalyzer replaces only the run step, keeping the timeline source.
func WithAnalyzer(a workerpool.Analyzer) Option {
	return func(s *Service) {
		if a != nil {
			s.analyzer = a
		}
	}
}

// WithPublisher sets where progress events go.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithRunTimeout bounds a single analysis run. Zero disables the bound.
func WithRunTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.runTimeout = d
		}
	}
}

// WithRegenerateOnResize makes resize redraws use a fresh timeline.
func WithRegenerateOnResize(on bool) Option {
	return func(s *Service) {
		s.regenerateOnResize = on
	}
}

// WithClock sets the clock used for report timestamps and session expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	sim := analysis.NewSimulator()
	s := &Service{
		sessions:           make(map[string]*clientSession),
		analyzer:           sim,
		timeline:           sim.Timeline,
		renderer:           results.NewRenderer(),
		publisher:          nopPublisher{},
		workerCount:        runtime.NumCPU() * 2,
		queueSize:          defaultQueueSize,
		guardSize:          defaultGuardSize,
		sessionTTL:         defaultSessionTTL,
		runTimeout:         defaultRunTimeout,
		regenerateOnResize: true,
		now:                time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	return s
}

// Start creates the queue and starts the worker pool. Runs use a context
// derived from ctx, so they end only when ctx ends or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting dashboard service...")

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.stopCh = make(chan struct{})

	s.guard = runguard.NewInMemoryGuard(runguard.WithMaxSize(s.guardSize))
	s.jobs = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.jobs, s.analyzer, s,
		workerpool.WithLogger(s.logger.Named("worker")),
		workerpool.WithRunTimeout(s.runTimeout),
	)
	s.pool.Start(runCtx)

	go s.sweep(runCtx, s.stopCh)

	s.started = true
	s.logger.Info(ctx, "dashboard service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("guardSize", s.guardSize),
	)

	return nil
}

// Stop cancels in-flight runs, drains the pool and discards uploaded files.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	cancel, pool, stopCh := s.cancel, s.pool, s.stopCh
	s.mu.Unlock()

	ctx := context.Background()
	s.logger.Info(ctx, "stopping dashboard service...")

	close(stopCh)
	cancel()
	// Workers report cancelled runs through Fail, which takes s.mu.
	if err := pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}

	s.mu.Lock()
	videos := make([]model.VideoHandle, 0, len(s.sessions))
	for id, sess := range s.sessions {
		if sess.state.Video != nil {
			videos = append(videos, *sess.state.Video)
		}
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	for _, v := range videos {
		s.discard(ctx, v)
	}
	metrics.UpdateActiveSessions(0)
	metrics.UpdateAnalysisInFlight(0)

	s.logger.Info(ctx, "dashboard service stopped")
}

// session returns the session for clientID, creating it. Callers hold s.mu.
func (s *Service) session(clientID string) *clientSession {
	sess, ok := s.sessions[clientID]
	if !ok {
		sess = &clientSession{state: InitialState(), doc: results.NewDocument()}
		s.sessions[clientID] = sess
		metrics.UpdateActiveSessions(len(s.sessions))
	}
	sess.lastSeen = s.now()
	return sess
}

// State returns the dashboard state of clientID.
func (s *Service) State(clientID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session(clientID).state
}

// SelectVideo attaches an accepted upload. A previously attached file is
// discarded.
func (s *Service) SelectVideo(ctx context.Context, clientID string, h model.VideoHandle) (State, error) {
	s.mu.Lock()
	sess := s.session(clientID)
	prev := sess.state.Video
	next, err := Dispatch(sess.state, Action{Kind: ActionSelectVideo, Video: &h})
	if err != nil {
		s.mu.Unlock()
		return sess.state, err
	}
	sess.state = next
	s.mu.Unlock()

	if prev != nil && prev.FileRef != h.FileRef {
		s.discard(ctx, *prev)
	}
	s.logger.Debug(ctx, "video selected",
		logger.String("client", clientID),
		logger.String("name", h.DisplayName),
		logger.Int64("bytes", h.ByteSize),
	)
	return next, nil
}

// RemoveVideo detaches and discards the current video and hides results.
func (s *Service) RemoveVideo(ctx context.Context, clientID string) (State, error) {
	s.mu.Lock()
	sess := s.session(clientID)
	prev := sess.state.Video
	next, err := Dispatch(sess.state, Action{Kind: ActionRemoveVideo})
	if err != nil {
		s.mu.Unlock()
		return sess.state, err
	}
	sess.state = next
	s.mu.Unlock()

	if prev != nil {
		s.discard(ctx, *prev)
	}
	return next, nil
}

// Video returns the current video of clientID.
func (s *Service) Video(clientID string) (model.VideoHandle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[clientID]
	if !ok || sess.state.Video == nil {
		return model.VideoHandle{}, false
	}
	return *sess.state.Video, true
}

// SelectType changes the selected analysis type.
func (s *Service) SelectType(_ context.Context, clientID, raw string) (State, error) {
	t, err := model.ParseAnalysisType(raw)
	if err != nil {
		return s.State(clientID), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session(clientID)
	next, err := Dispatch(sess.state, Action{Kind: ActionSelectType, Type: t})
	if err != nil {
		return sess.state, err
	}
	sess.state = next
	return next, nil
}

// StartAnalysis queues a run of type raw, or of the selected type when raw is
// empty. It fails with ErrNoVideo, ErrAnalysisRunning or ErrQueueFull and
// leaves the state unchanged in each case.
func (s *Service) StartAnalysis(ctx context.Context, clientID, raw string) (State, error) {
	var t model.AnalysisType
	if strings.TrimSpace(raw) != "" {
		parsed, err := model.ParseAnalysisType(raw)
		if err != nil {
			metrics.RecordAnalysisRejected("bad_type")
			return s.State(clientID), err
		}
		t = parsed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return State{}, ErrNotStarted
	}

	sess := s.session(clientID)
	job := model.Job{ID: uuid.NewString(), ClientID: clientID, EnqueuedAt: s.now()}
	next, err := Dispatch(sess.state, Action{Kind: ActionStartAnalysis, Type: t, JobID: job.ID})
	if err != nil {
		switch {
		case errors.Is(err, ErrNoVideo):
			metrics.RecordAnalysisRejected("no_video")
		case errors.Is(err, ErrAnalysisRunning):
			metrics.RecordAnalysisRejected("busy")
		}
		return sess.state, err
	}
	job.Type = next.Type

	if !s.guard.Acquire(ctx, clientID) {
		metrics.RecordAnalysisRejected("busy")
		return sess.state, ErrAnalysisRunning
	}
	if !s.jobs.Enqueue(ctx, job) {
		s.guard.Release(ctx, clientID)
		metrics.RecordAnalysisRejected("queue_full")
		s.logger.Warn(ctx, "analysis queue full", logger.String("client", clientID))
		return sess.state, ErrQueueFull
	}

	sess.state = next
	metrics.UpdateAnalysisInFlight(s.guard.Size())
	s.logger.Info(ctx, "analysis queued",
		logger.String("client", clientID),
		logger.String("job_id", job.ID),
		logger.String("type", string(job.Type)),
	)
	return next, nil
}

// Progress records a step of a running job and publishes it.
func (s *Service) Progress(ctx context.Context, job model.Job, p model.Progress) {
	if !s.apply(job, Action{Kind: ActionProgress, JobID: job.ID, Progress: p}, nil) {
		return
	}
	s.publisher.Publish(ctx, job.ClientID, model.ProgressEvent{
		Type:    model.EventProgress,
		JobID:   job.ID,
		Label:   p.Label,
		Percent: p.Percent,
	})
}

// Complete renders the result of a job and re-enables its client.
func (s *Service) Complete(ctx context.Context, job model.Job, res model.AnalysisResult) {
	defer s.release(ctx, job.ClientID)
	ok := s.apply(job, Action{Kind: ActionAnalysisDone, JobID: job.ID}, func(sess *clientSession) {
		s.renderer.Render(sess.doc, res)
		sess.shownAs = res.Type
	})
	if !ok {
		return
	}
	s.publisher.Publish(ctx, job.ClientID, model.ProgressEvent{
		Type:    model.EventComplete,
		JobID:   job.ID,
		Percent: 100,
	})
}

// Fail re-enables the client of a job that did not finish.
func (s *Service) Fail(ctx context.Context, job model.Job, err error) {
	defer s.release(ctx, job.ClientID)
	if !s.apply(job, Action{Kind: ActionAnalysisFailed, JobID: job.ID, Err: err}, nil) {
		return
	}
	s.publisher.Publish(ctx, job.ClientID, model.ProgressEvent{
		Type:    model.EventFailed,
		JobID:   job.ID,
		Message: err.Error(),
	})
}

// apply dispatches a job update to its client's session. It reports false
// when the session is gone or the job is no longer current.
func (s *Service) apply(job model.Job, a Action, after func(*clientSession)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[job.ClientID]
	if !ok {
		return false
	}
	next, err := Dispatch(sess.state, a)
	if err != nil {
		return false
	}
	sess.state = next
	if after != nil {
		after(sess)
	}
	return true
}

func (s *Service) release(ctx context.Context, clientID string) {
	s.mu.RLock()
	guard := s.guard
	s.mu.RUnlock()
	guard.Release(ctx, clientID)
	metrics.UpdateAnalysisInFlight(guard.Size())
}

// View returns the rendered results of the last completed run.
func (s *Service) View(clientID string) (results.View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[clientID]
	if !ok || !sess.state.HasResult {
		return results.View{}, ErrNoResults
	}
	return sess.doc.View(), nil
}

// ChartTimeline returns the series to chart. A resize redraw while results
// are shown draws a fresh timeline when regeneration is on.
func (s *Service) ChartTimeline(clientID string, resize bool) ([]model.TimelinePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[clientID]
	if !ok || !sess.state.HasResult {
		return nil, ErrNoResults
	}
	if resize && s.regenerateOnResize && sess.state.Sections.Results {
		fresh := s.timeline()
		sess.doc.DrawChart(fresh)
		return fresh, nil
	}
	return sess.doc.Timeline(), nil
}

// Report serializes the metrics currently shown and the type of the run
// that produced them. Before any result it names the selected type.
func (s *Service) Report(clientID string) (body, filename string, err error) {
	s.mu.RLock()
	shown := model.DisplayedMetrics{}
	typ := InitialState().Type
	if sess, ok := s.sessions[clientID]; ok {
		shown = sess.doc.Displayed()
		typ = sess.state.Type
		if sess.shownAs != "" {
			typ = sess.shownAs
		}
	}
	s.mu.RUnlock()

	at := s.now()
	body, err = report.Serialize(shown, typ, at)
	if err != nil {
		return "", "", err
	}
	metrics.RecordReportExported()
	return body, report.Filename(at), nil
}

// EndSession drops the dashboard of clientID and discards its video. A run
// in flight finishes unobserved.
func (s *Service) EndSession(ctx context.Context, clientID string) {
	s.mu.Lock()
	sess, ok := s.sessions[clientID]
	if ok {
		delete(s.sessions, clientID)
	}
	n := len(s.sessions)
	s.mu.Unlock()
	if !ok {
		return
	}
	metrics.UpdateActiveSessions(n)
	if sess.state.Video != nil {
		s.discard(ctx, *sess.state.Video)
	}
}

func (s *Service) discard(ctx context.Context, h model.VideoHandle) {
	if err := upload.Discard(h); err != nil {
		s.logger.Warn(ctx, "discard video", logger.String("name", h.DisplayName), logger.Error(err))
	}
}

// sweep expires idle sessions that have no run in flight.
func (s *Service) sweep(ctx context.Context, stop <-chan struct{}) {
	interval := max(s.sessionTTL/4, minSweepInterval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			s.expireIdle(ctx)
		}
	}
}

func (s *Service) expireIdle(ctx context.Context) int {
	cutoff := s.now().Add(-s.sessionTTL)
	var videos []model.VideoHandle

	s.mu.Lock()
	expired := 0
	for id, sess := range s.sessions {
		if sess.state.Analyzing || sess.lastSeen.After(cutoff) {
			continue
		}
		if sess.state.Video != nil {
			videos = append(videos, *sess.state.Video)
		}
		delete(s.sessions, id)
		expired++
	}
	n := len(s.sessions)
	s.mu.Unlock()

	for _, v := range videos {
		s.discard(ctx, v)
	}
	if expired > 0 {
		metrics.UpdateActiveSessions(n)
		s.logger.Debug(ctx, "expired idle sessions", logger.Int("count", expired))
	}
	return expired
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"guardSize":      s.guardSize,
		"activeSessions": len(s.sessions),
	}

	if s.started {
		queueLen := s.jobs.Len(ctx)
		stats["queueLength"] = queueLen
		stats["inFlight"] = s.guard.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.pool.Size())
	}

	return stats
}
