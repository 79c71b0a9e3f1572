package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"SignalScanner/internal/model"
	"SignalScanner/internal/universe"
)

// Scans is the job surface the HTTP layer serves.
type Scans interface {
	Start(scanType model.ScanType) (string, error)
	Status(id string) (model.JobView, error)
	Results(id string) (model.JobView, error)
	Latest(scanType model.ScanType) (model.LatestSnapshot, error)
	List() []model.JobView
}

// Analyzer runs every scan rule against one symbol.
type Analyzer interface {
	AnalyzeSymbol(ctx context.Context, symbol string) (map[model.ScanType]*model.SignalResult, error)
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	scans    Scans
	analyzer Analyzer
	symbols  universe.Source
	now      func() time.Time
}

func NewServer(scans Scans, analyzer Analyzer, symbols universe.Source) *Server {
	return &Server{scans: scans, analyzer: analyzer, symbols: symbols, now: time.Now}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), Cors())

	r.GET("/", s.root)
	r.HEAD("/", s.root)

	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.GET("/symbols", s.listSymbols)
		api.GET("/analyze/:symbol", s.analyze)
		api.GET("/jobs", s.listJobs)

		scan := api.Group("/scan")
		scan.POST("/start", s.startScan)
		scan.GET("/status/:job_id", s.scanStatus)
		scan.GET("/results/:job_id", s.scanResults)
		scan.GET("/latest/:scan_type", s.latestScan)
	}
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logrus.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debug("http request")
	}
}
