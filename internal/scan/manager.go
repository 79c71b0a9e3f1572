package scan

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"SignalScanner/internal/calculator"
	"SignalScanner/internal/model"
	"SignalScanner/internal/notifier"
	"SignalScanner/internal/recorder"
	"SignalScanner/internal/strategy"
	"SignalScanner/internal/universe"
)

var (
	ErrJobNotFound     = errors.New("job not found")
	ErrUnknownScanType = errors.New("unknown scan type")
	ErrNoSnapshot      = errors.New("no completed scan yet")
)

const errCancelledMessage = "cancelled"

// Options configures a Manager. Registry and Universe are required.
type Options struct {
	Registry *strategy.Registry
	Universe universe.Source
	Pacing   PacerFunc         // defaults to FixedPacing
	Recorder recorder.Recorder // defaults to NoopRecorder
	Notifier notifier.Notifier // optional
	Now      func() time.Time  // defaults to time.Now
}

type jobState struct {
	job    model.Job
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager runs scan jobs in the background and serves their state to readers.
// All job mutation happens under mu; readers always receive copies.
type Manager struct {
	mu   sync.RWMutex
	jobs map[string]*jobState

	latest   *LatestCache
	registry *strategy.Registry
	universe universe.Source
	pacing   PacerFunc
	recorder recorder.Recorder
	notifier notifier.Notifier
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a Manager with an empty job store and latest cache.
func NewManager(opts Options) *Manager {
	if opts.Pacing == nil {
		opts.Pacing = FixedPacing
	}
	if opts.Recorder == nil {
		opts.Recorder = recorder.NewNoopRecorder()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		jobs:     make(map[string]*jobState),
		latest:   NewLatestCache(),
		registry: opts.Registry,
		universe: opts.Universe,
		pacing:   opts.Pacing,
		recorder: opts.Recorder,
		notifier: opts.Notifier,
		now:      opts.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start registers a queued job for scanType and launches its worker. It
// returns as soon as the job is visible to Status.
func (m *Manager) Start(scanType model.ScanType) (string, error) {
	id, _, err := m.start(scanType, false)
	return id, err
}

// StartIfIdle starts a job only when no job of scanType is queued or running.
// The check and the insert happen under one lock. started is false when an
// existing job was found.
func (m *Manager) StartIfIdle(scanType model.ScanType) (id string, started bool, err error) {
	return m.start(scanType, true)
}

func (m *Manager) start(scanType model.ScanType, onlyIfIdle bool) (string, bool, error) {
	cfg, ok := m.registry.Get(scanType)
	if !ok {
		return "", false, fmt.Errorf("%w: %q", ErrUnknownScanType, scanType)
	}

	ctx, cancel := context.WithCancel(m.ctx)
	st := &jobState{
		job: model.Job{
			ID:        uuid.NewString(),
			ScanType:  scanType,
			Label:     cfg.Label,
			Status:    model.JobQueued,
			Results:   []model.SignalResult{},
			StartedAt: m.now(),
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}

	m.mu.Lock()
	if onlyIfIdle && m.runningLocked(scanType) {
		m.mu.Unlock()
		cancel()
		return "", false, nil
	}
	m.jobs[st.job.ID] = st
	m.mu.Unlock()

	logrus.WithFields(logrus.Fields{"job_id": st.job.ID, "scan_type": scanType}).Info("scan job queued")

	m.wg.Add(1)
	go m.run(ctx, st, cfg)
	return st.job.ID, true, nil
}

func (m *Manager) run(ctx context.Context, st *jobState, cfg strategy.ScanConfig) {
	defer m.wg.Done()
	defer close(st.done)
	defer st.cancel()

	log := logrus.WithFields(logrus.Fields{"job_id": st.job.ID, "scan_type": cfg.Type})

	symbols, err := m.universe.Load()
	if err == nil && len(symbols) == 0 {
		err = errors.New("no symbols")
	}
	if err != nil {
		log.WithError(err).Error("scan job failed to load symbols")
		m.fail(st, fmt.Sprintf("symbol universe unavailable: %v", err))
		return
	}

	m.update(st, func(j *model.Job) {
		j.Status = model.JobRunning
		j.Total = len(symbols)
		j.Progress = 0
	})
	log.Infof("scanning %d symbols", len(symbols))

	pacer := m.pacing(cfg.Delay)
	for _, sym := range symbols {
		if ctx.Err() != nil {
			log.Warn("scan job cancelled")
			m.fail(st, errCancelledMessage)
			return
		}

		out := strategy.Safe(ctx, cfg.Evaluator, sym)
		m.update(st, func(j *model.Job) {
			if r, ok := out.Result(); ok {
				j.Results = append(j.Results, r)
			}
			j.Progress++
		})

		// A cancelled wait surfaces at the top of the next iteration.
		_ = pacer.Wait(ctx)
	}

	m.complete(st, log)
}

func (m *Manager) complete(st *jobState, log *logrus.Entry) {
	now := m.now()
	var snap model.LatestSnapshot
	// The snapshot is published under the job lock so a poll that sees
	// completed always finds the matching latest snapshot.
	m.update(st, func(j *model.Job) {
		j.Status = model.JobCompleted
		j.CompletedAt = &now
		snap = model.LatestSnapshot{
			ScanType:     j.ScanType,
			Label:        j.Label,
			CompletedAt:  now,
			TotalScanned: j.Total,
			ResultsCount: len(j.Results),
			Results:      copyResults(j.Results),
		}
		m.latest.Publish(snap)
	})
	log.Infof("scan job completed: %d/%d symbols matched", snap.ResultsCount, snap.TotalScanned)

	if err := m.recorder.RecordScan(&snap); err != nil {
		log.WithError(err).Error("record scan")
	}
	if m.notifier != nil {
		if err := m.notifier.NotifyScan(m.ctx, &snap); err != nil {
			log.WithError(err).Error("notify scan")
		}
	}
}

func (m *Manager) fail(st *jobState, msg string) {
	now := m.now()
	m.update(st, func(j *model.Job) {
		j.Status = model.JobFailed
		j.Error = msg
		j.CompletedAt = &now
	})
}

// update applies fn under the write lock unless the job is already terminal.
func (m *Manager) update(st *jobState, fn func(j *model.Job)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st.job.Status.Terminal() {
		return
	}
	fn(&st.job)
}

// Status returns a snapshot of the job with its completion percentage.
func (m *Manager) Status(id string) (model.JobView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.jobs[id]
	if !ok {
		return model.JobView{}, ErrJobNotFound
	}
	return view(st.job), nil
}

// Results returns the job view; results are partial until the job completes.
func (m *Manager) Results(id string) (model.JobView, error) {
	return m.Status(id)
}

// Latest returns the newest completed snapshot for scanType.
func (m *Manager) Latest(scanType model.ScanType) (model.LatestSnapshot, error) {
	if _, ok := m.registry.Get(scanType); !ok {
		return model.LatestSnapshot{}, fmt.Errorf("%w: %q", ErrUnknownScanType, scanType)
	}
	snap, ok := m.latest.Get(scanType)
	if !ok {
		return model.LatestSnapshot{}, ErrNoSnapshot
	}
	snap.Results = copyResults(snap.Results)
	return snap, nil
}

// List returns every known job, newest first.
func (m *Manager) List() []model.JobView {
	m.mu.RLock()
	views := make([]model.JobView, 0, len(m.jobs))
	for _, st := range m.jobs {
		views = append(views, view(st.job))
	}
	m.mu.RUnlock()

	sort.Slice(views, func(i, j int) bool {
		if views[i].StartedAt.Equal(views[j].StartedAt) {
			return views[i].ID < views[j].ID
		}
		return views[i].StartedAt.After(views[j].StartedAt)
	})
	return views
}

// Running reports whether a job of scanType is queued or running.
func (m *Manager) Running(scanType model.ScanType) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.runningLocked(scanType)
}

func (m *Manager) runningLocked(scanType model.ScanType) bool {
	for _, st := range m.jobs {
		if st.job.ScanType == scanType && !st.job.Status.Terminal() {
			return true
		}
	}
	return false
}

// Cancel asks a job to stop before its next symbol. Cancelling a finished job
// is a no-op.
func (m *Manager) Cancel(id string) error {
	m.mu.RLock()
	st, ok := m.jobs[id]
	m.mu.RUnlock()
	if !ok {
		return ErrJobNotFound
	}
	st.cancel()
	return nil
}

// Wait blocks until the job reaches a terminal state or ctx is done.
func (m *Manager) Wait(ctx context.Context, id string) (model.JobView, error) {
	m.mu.RLock()
	st, ok := m.jobs[id]
	m.mu.RUnlock()
	if !ok {
		return model.JobView{}, ErrJobNotFound
	}
	select {
	case <-st.done:
		return m.Status(id)
	case <-ctx.Done():
		return model.JobView{}, ctx.Err()
	}
}

// Close cancels every in-flight job and waits for the workers to exit.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}

func view(j model.Job) model.JobView {
	j.Results = copyResults(j.Results)
	return model.JobView{Job: j, Percent: percent(j.Progress, j.Total)}
}

func percent(progress, total int) float64 {
	if total == 0 {
		return 0
	}
	return calculator.Round(float64(progress)/float64(total)*100, 1)
}

func copyResults(in []model.SignalResult) []model.SignalResult {
	out := make([]model.SignalResult, len(in))
	copy(out, in)
	return out
}
