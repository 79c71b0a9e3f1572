package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"SignalScanner/internal/model"
	"SignalScanner/internal/scan"
)

func detail(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"detail": msg})
}

func scanTypeNames() string {
	names := make([]string, len(model.ScanTypes))
	for i, t := range model.ScanTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Trading Signals API is running",
		"timestamp": s.now(),
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": s.now()})
}

func (s *Server) listSymbols(c *gin.Context) {
	symbols, err := s.symbols.Load()
	if err != nil {
		logrus.WithError(err).Warn("load symbols")
		symbols = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(symbols), "symbols": symbols})
}

func (s *Server) analyze(c *gin.Context) {
	sym := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	res, err := s.analyzer.AnalyzeSymbol(c.Request.Context(), sym)
	if err != nil {
		logrus.WithError(err).Warn("analyze symbol")
		detail(c, http.StatusServiceUnavailable, "analysis cancelled")
		return
	}
	c.JSON(http.StatusOK, analyzeResponse{
		Symbol:    sym,
		Timestamp: s.now(),
		EMADaily:  res[model.ScanEMADaily],
		EMAWeekly: res[model.ScanEMAWeekly],
		SMA50:     res[model.ScanSMA50],
	})
}

func (s *Server) startScan(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if !req.Type.Valid() {
		detail(c, http.StatusUnprocessableEntity, fmt.Sprintf("type must be one of: %s", scanTypeNames()))
		return
	}

	id, err := s.scans.Start(req.Type)
	if err != nil {
		if errors.Is(err, scan.ErrUnknownScanType) {
			detail(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		logrus.WithError(err).Error("start scan")
		detail(c, http.StatusInternalServerError, "could not start scan")
		return
	}

	c.JSON(http.StatusOK, startResponse{
		JobID:    id,
		ScanType: req.Type,
		Status:   string(model.JobQueued),
		Message:  fmt.Sprintf("Scan started. Poll /api/scan/status/%s for live progress.", id),
	})
}

func (s *Server) scanStatus(c *gin.Context) {
	v, err := s.scans.Status(c.Param("job_id"))
	if err != nil {
		detail(c, http.StatusNotFound, "Job not found")
		return
	}
	c.JSON(http.StatusOK, newStatusResponse(v))
}

func (s *Server) scanResults(c *gin.Context) {
	v, err := s.scans.Results(c.Param("job_id"))
	if err != nil {
		detail(c, http.StatusNotFound, "Job not found")
		return
	}
	c.JSON(http.StatusOK, newResultsResponse(v))
}

func (s *Server) latestScan(c *gin.Context) {
	snap, err := s.scans.Latest(model.ScanType(c.Param("scan_type")))
	switch {
	case errors.Is(err, scan.ErrUnknownScanType):
		detail(c, http.StatusBadRequest, fmt.Sprintf("Unknown scan_type. Use: %s", scanTypeNames()))
	case errors.Is(err, scan.ErrNoSnapshot):
		detail(c, http.StatusNotFound, "No completed scan found for this type yet. Run a scan first.")
	case err != nil:
		logrus.WithError(err).Error("latest scan")
		detail(c, http.StatusInternalServerError, "could not load latest scan")
	default:
		c.JSON(http.StatusOK, snap)
	}
}

func (s *Server) listJobs(c *gin.Context) {
	views := s.scans.List()
	jobs := make([]jobSummary, 0, len(views))
	for _, v := range views {
		jobs = append(jobs, jobSummary{
			JobID:        v.ID,
			ScanType:     v.ScanType,
			Label:        v.Label,
			Status:       v.Status,
			Percent:      v.Percent,
			ResultsCount: len(v.Results),
			StartedAt:    v.StartedAt,
			CompletedAt:  v.CompletedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}
