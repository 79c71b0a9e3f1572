package model

import "time"

// ScanType identifies one of the fixed scan rules.
type ScanType string

const (
	ScanEMADaily  ScanType = "ema_daily"
	ScanEMAWeekly ScanType = "ema_weekly"
	ScanSMA50     ScanType = "sma50"
)

// ScanTypes lists every scan type in display order.
var ScanTypes = []ScanType{ScanEMADaily, ScanEMAWeekly, ScanSMA50}

// Valid reports whether t is a known scan type.
func (t ScanType) Valid() bool {
	for _, s := range ScanTypes {
		if s == t {
			return true
		}
	}
	return false
}

// JobStatus is the lifecycle state of a scan job.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Job is one asynchronous scan over the symbol universe.
type Job struct {
	ID          string
	ScanType    ScanType
	Label       string
	Status      JobStatus
	Progress    int
	Total       int
	Results     []SignalResult
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// JobView is a point-in-time copy of a Job safe to hand to readers.
type JobView struct {
	Job
	Percent float64
}

// LatestSnapshot is the most recent completed scan for a scan type.
type LatestSnapshot struct {
	ScanType     ScanType       `json:"scan_type"`
	Label        string         `json:"label"`
	CompletedAt  time.Time      `json:"completed_at"`
	TotalScanned int            `json:"total_scanned"`
	ResultsCount int            `json:"results_count"`
	Results      []SignalResult `json:"results"`
}
