package api

import (
	"time"

	"SignalScanner/internal/model"
)

type startRequest struct {
	Type model.ScanType `json:"type" binding:"required"`
}

type startResponse struct {
	JobID    string         `json:"job_id"`
	ScanType model.ScanType `json:"scan_type"`
	Status   string         `json:"status"`
	Message  string         `json:"message"`
}

type statusResponse struct {
	JobID        string               `json:"job_id"`
	ScanType     model.ScanType       `json:"scan_type"`
	Label        string               `json:"label"`
	Status       model.JobStatus      `json:"status"`
	Progress     int                  `json:"progress"`
	Total        int                  `json:"total"`
	Percent      float64              `json:"percent"`
	ResultsSoFar int                  `json:"results_so_far"`
	ResultsCount int                  `json:"results_count"`
	StartedAt    time.Time            `json:"started_at"`
	CompletedAt  *time.Time           `json:"completed_at"`
	Error        string               `json:"error,omitempty"`
	Results      []model.SignalResult `json:"results"`
}

func newStatusResponse(v model.JobView) statusResponse {
	return statusResponse{
		JobID:        v.ID,
		ScanType:     v.ScanType,
		Label:        v.Label,
		Status:       v.Status,
		Progress:     v.Progress,
		Total:        v.Total,
		Percent:      v.Percent,
		ResultsSoFar: len(v.Results),
		ResultsCount: len(v.Results),
		StartedAt:    v.StartedAt,
		CompletedAt:  v.CompletedAt,
		Error:        v.Error,
		Results:      v.Results,
	}
}

type resultsResponse struct {
	JobID        string               `json:"job_id"`
	ScanType     model.ScanType       `json:"scan_type"`
	Label        string               `json:"label"`
	Status       model.JobStatus      `json:"status"`
	TotalScanned int                  `json:"total_scanned"`
	ResultsCount int                  `json:"results_count"`
	Results      []model.SignalResult `json:"results"`
	StartedAt    time.Time            `json:"started_at"`
	CompletedAt  *time.Time           `json:"completed_at"`
}

// total_scanned reports live progress.
func newResultsResponse(v model.JobView) resultsResponse {
	return resultsResponse{
		JobID:        v.ID,
		ScanType:     v.ScanType,
		Label:        v.Label,
		Status:       v.Status,
		TotalScanned: v.Progress,
		ResultsCount: len(v.Results),
		Results:      v.Results,
		StartedAt:    v.StartedAt,
		CompletedAt:  v.CompletedAt,
	}
}

type jobSummary struct {
	JobID        string          `json:"job_id"`
	ScanType     model.ScanType  `json:"scan_type"`
	Label        string          `json:"label"`
	Status       model.JobStatus `json:"status"`
	Percent      float64         `json:"percent"`
	ResultsCount int             `json:"results_count"`
	StartedAt    time.Time       `json:"started_at"`
	CompletedAt  *time.Time      `json:"completed_at"`
}

type analyzeResponse struct {
	Symbol    string              `json:"symbol"`
	Timestamp time.Time           `json:"timestamp"`
	EMADaily  *model.SignalResult `json:"ema_daily"`
	EMAWeekly *model.SignalResult `json:"ema_weekly"`
	SMA50     *model.SignalResult `json:"sma50"`
}
