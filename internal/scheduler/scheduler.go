package scheduler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"SignalScanner/internal/model"
	"SignalScanner/internal/notifier"
	"SignalScanner/internal/scan"
)

// Scans is the part of scan.Manager the scheduler drives.
type Scans interface {
	StartIfIdle(scanType model.ScanType) (id string, started bool, err error)
	Status(id string) (model.JobView, error)
	Latest(scanType model.ScanType) (model.LatestSnapshot, error)
}

// Scheduler manages the periodic scan tasks and the Telegram command surface.
type Scheduler struct {
	Cron  *cron.Cron
	Scans Scans
}

// NewScheduler creates a new Scheduler.
func NewScheduler(scans Scans) *Scheduler {
	return &Scheduler{
		Cron:  cron.New(cron.WithSeconds()),
		Scans: scans,
	}
}

// RegisterAll registers one task per scan type with a non-empty cron expression.
func (s *Scheduler) RegisterAll(specs map[model.ScanType]string) error {
	for _, t := range model.ScanTypes {
		spec := strings.TrimSpace(specs[t])
		if spec == "" {
			continue
		}
		scanType := t
		if _, err := s.Cron.AddFunc(spec, func() { s.RunNow(scanType) }); err != nil {
			return fmt.Errorf("register %s task: %w", scanType, err)
		}
		logrus.Infof("scheduled %s scan: %s", scanType, spec)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logrus.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks to return.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logrus.Info("scheduler stopped")
}

// RunNow starts a scan of scanType unless one is already in flight. It returns
// the new job id, or "" when the run was skipped or failed to start.
func (s *Scheduler) RunNow(scanType model.ScanType) string {
	log := logrus.WithField("scan_type", scanType)
	id, started, err := s.Scans.StartIfIdle(scanType)
	if err != nil {
		log.WithError(err).Error("start scheduled scan")
		return ""
	}
	if !started {
		log.Info("scan already running, skipping scheduled run")
		return ""
	}
	log.WithField("job_id", id).Info("scheduled scan started")
	return id
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText()
	}
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch fields[0] {
	case "/scan":
		t := model.ScanType(arg)
		if !t.Valid() {
			return fmt.Sprintf("Unknown scan type %q.\n\n%s", arg, helpText())
		}
		id, started, err := s.Scans.StartIfIdle(t)
		if err != nil {
			return fmt.Sprintf("❌ Could not start scan: %v", err)
		}
		if !started {
			return fmt.Sprintf("A %s scan is already running.", t)
		}
		return fmt.Sprintf("🚀 Started %s scan\nJob: <code>%s</code>", t, id)
	case "/status":
		if arg == "" {
			return "Usage: /status <job_id>"
		}
		v, err := s.Scans.Status(arg)
		if err != nil {
			return fmt.Sprintf("Job %s not found.", arg)
		}
		return notifier.FormatJobStatus(v)
	case "/latest":
		t := model.ScanType(arg)
		snap, err := s.Scans.Latest(t)
		switch {
		case errors.Is(err, scan.ErrUnknownScanType):
			return fmt.Sprintf("Unknown scan type %q.\n\n%s", arg, helpText())
		case errors.Is(err, scan.ErrNoSnapshot):
			return fmt.Sprintf("No completed %s scan yet.", t)
		case err != nil:
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatScanSummary(&snap)
	default:
		return helpText()
	}
}

func helpText() string {
	types := make([]string, len(model.ScanTypes))
	for i, t := range model.ScanTypes {
		types[i] = string(t)
	}
	return "Available commands:\n" +
		"• /scan &lt;type&gt;\n" +
		"• /status &lt;job_id&gt;\n" +
		"• /latest &lt;type&gt;\n\n" +
		"Scan types: " + strings.Join(types, ", ")
}
