// Package api exposes the HTTP and WebSocket surface of the service.
package api

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/fuelpos/receiptd/internal/config"
	"github.com/fuelpos/receiptd/internal/printer"
	"github.com/fuelpos/receiptd/internal/render"
	"github.com/fuelpos/receiptd/pkg/payload"
)

// TextPrinter is the slice of the driver the raw text endpoints need.
type TextPrinter interface {
	PrintText(text string) error
	KickDrawer(pin int) error
}

// JobQueue is the slice of the print queue the API needs.
type JobQueue interface {
	Submit(img image.Image, scale int) (printer.Job, error)
	Jobs() []printer.Job
	Job(id string) (printer.Job, bool)
	ClearCompleted() int
}

// Server is the API server.
type Server struct {
	router   *gin.Engine
	store    *config.Store
	engine   *render.Engine
	driver   TextPrinter
	queue    JobQueue
	hub      *hub
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewServer wires the routes. Pass the returned server's BroadcastJob as
// the queue's notify hook so job updates reach WebSocket clients.
func NewServer(store *config.Store, engine *render.Engine, driver TextPrinter, queue JobQueue, log *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	server := &Server{
		router: router,
		store:  store,
		engine: engine,
		driver: driver,
		queue:  queue,
		hub:    newHub(log),
		log:    log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	s.router.POST("/print", s.handlePrint)
	s.router.POST("/render", s.handleRender)
	s.router.POST("/print-slip", s.handlePrintSlip)
	s.router.POST("/print-text", s.handlePrintText)
	s.router.POST("/open-drawer", s.handleOpenDrawer)

	s.router.GET("/jobs", s.handleGetJobs)
	s.router.DELETE("/jobs", s.handleClearJobs)
	s.router.GET("/job/:id", s.handleGetJob)

	s.router.GET("/config", s.handleGetConfig)
	s.router.PUT("/config", s.handlePutConfig)

	s.router.GET("/ws", s.handleWebSocket)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

// composeReceipt parses the request body and renders it with the current
// configuration snapshot.
func (s *Server) composeReceipt(c *gin.Context) (*payload.Receipt, image.Image, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(400, gin.H{"error": "failed to read request body"})
		return nil, nil, false
	}

	rec, err := payload.Parse(body)
	if err != nil {
		var verr *payload.ValidationError
		if errors.As(err, &verr) {
			c.JSON(400, gin.H{"error": verr.Error(), "field": verr.Field})
		} else {
			c.JSON(400, gin.H{"error": err.Error()})
		}
		return nil, nil, false
	}

	cfg := s.store.Snapshot()
	img, err := s.engine.Render(rec, cfg.Layout, cfg.Printer.PixelWidth)
	if err != nil {
		s.log.Error("render failed", zap.Error(err))
		c.JSON(500, gin.H{"error": "failed to render receipt"})
		return nil, nil, false
	}

	return rec, img, true
}

// handlePrint renders the payload and enqueues it for printing.
func (s *Server) handlePrint(c *gin.Context) {
	rec, img, ok := s.composeReceipt(c)
	if !ok {
		return
	}

	job, err := s.queue.Submit(img, 100)
	if err != nil {
		c.JSON(503, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"success": true,
		"job_id":  job.ID,
		"total":   rec.Total.StringFixed(2),
	})
}

// handleRender returns the rendered receipt as a PNG without printing it.
func (s *Server) handleRender(c *gin.Context) {
	_, img, ok := s.composeReceipt(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		c.JSON(500, gin.H{"error": "failed to encode preview"})
		return
	}

	c.Data(200, "image/png", buf.Bytes())
}

// handlePrintSlip composes the payload as a text slip and sends it through
// the printer's native text path instead of rendering a bitmap.
func (s *Server) handlePrintSlip(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(400, gin.H{"error": "failed to read request body"})
		return
	}

	rec, err := payload.Parse(body)
	if err != nil {
		var verr *payload.ValidationError
		if errors.As(err, &verr) {
			c.JSON(400, gin.H{"error": verr.Error(), "field": verr.Field})
		} else {
			c.JSON(400, gin.H{"error": err.Error()})
		}
		return
	}

	cfg := s.store.Snapshot()
	slip := printer.ComposeSlip(rec, cfg.Layout, cfg.Printer.LineWidth)

	if err := s.driver.PrintText(slip); err != nil {
		s.log.Error("slip print failed", zap.Error(err))
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"success": true,
		"total":   rec.Total.StringFixed(2),
	})
}

// handlePrintText sends a raw text slip through the printer's text path.
func (s *Server) handlePrintText(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "text is required"})
		return
	}

	if err := s.driver.PrintText(req.Text); err != nil {
		s.log.Error("text print failed", zap.Error(err))
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"success": true})
}

// handleOpenDrawer pulses the cash drawer.
func (s *Server) handleOpenDrawer(c *gin.Context) {
	var req struct {
		Pin int `json:"pin"`
	}
	// Body is optional; pin defaults to 2.
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(400, gin.H{"error": "invalid request body"})
		return
	}
	if req.Pin == 0 {
		req.Pin = 2
	}

	if err := s.driver.KickDrawer(req.Pin); err != nil {
		if req.Pin != 2 && req.Pin != 5 {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		s.log.Error("drawer kick failed", zap.Error(err))
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"success": true})
}

func (s *Server) handleGetJobs(c *gin.Context) {
	c.JSON(200, gin.H{"jobs": s.queue.Jobs()})
}

// handleClearJobs evicts completed and failed jobs from the queue.
func (s *Server) handleClearJobs(c *gin.Context) {
	c.JSON(200, gin.H{"cleared": s.queue.ClearCompleted()})
}

func (s *Server) handleGetJob(c *gin.Context) {
	job, ok := s.queue.Job(c.Param("id"))
	if !ok {
		c.JSON(404, gin.H{"error": "job not found"})
		return
	}
	c.JSON(200, job)
}

func (s *Server) handleGetConfig(c *gin.Context) {
	c.JSON(200, s.store.Snapshot())
}

// handlePutConfig replaces the configuration snapshot. Fields absent from
// the request keep their current values.
func (s *Server) handlePutConfig(c *gin.Context) {
	cfg := s.store.Snapshot()
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	if err := s.store.Replace(cfg); err != nil {
		s.log.Error("config save failed", zap.Error(err))
		c.JSON(500, gin.H{"error": "failed to save configuration"})
		return
	}

	c.JSON(200, cfg)
}

// BroadcastJob pushes a job status update to all WebSocket clients.
func (s *Server) BroadcastJob(job printer.Job) {
	s.hub.broadcastJob(job)
}

// Run starts the HTTP listener.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
