package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tcgen/internal/core"
	"tcgen/internal/generator"
	"tcgen/internal/llm"
	"tcgen/internal/store"
	"tcgen/pkg/schema"
)

// Backend is the model backend the server drives: the generation gateway
// plus a liveness probe. *llm.Client satisfies it.
type Backend interface {
	generator.Gateway
	Ping(ctx context.Context) error
}

// Server hosts the HTTP API. Each generate request runs its own pipeline
// invocation; the only shared state is the log hub.
type Server struct {
	cfg     *core.Config
	backend Backend
	hub     *Hub
	router  *gin.Engine
}

// NewServer wires the routes. The configuration decides prompt coverage
// flags, validation strictness, sampling, and the output directory.
func NewServer(cfg *core.Config, backend Backend) *Server {
	s := &Server{
		cfg:     cfg,
		backend: backend,
		hub:     NewHub(),
	}

	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	api.POST("/generate", s.handleGenerate)
	api.GET("/logs/:session", s.handleLogs)
	api.GET("/health", s.handleHealth)
	api.GET("/config", s.handleConfig)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
	})

	s.router = router
	return s
}

// Handler exposes the router for serving and for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured host and port until the listener fails.
func (s *Server) Run() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.WebHost, s.cfg.WebPort)
	slog.Info("web server listening", "addr", addr)
	return s.router.Run(addr)
}

type generateRequest struct {
	UserStory          string   `json:"user_story"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
	Filename           string   `json:"filename"`
	AppendDatetime     *bool    `json:"append_datetime"`
	SessionID          string   `json:"session_id"`
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		minted, err := schema.NewSessionID()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}
		sessionID = minted
	}

	req.UserStory = strings.TrimSpace(req.UserStory)
	if req.UserStory == "" {
		s.hub.Publish(sessionID, "error", "Validation failed: No user story provided")
		c.JSON(http.StatusBadRequest, gin.H{"error": "User story is required"})
		return
	}
	if len(req.AcceptanceCriteria) == 0 {
		s.hub.Publish(sessionID, "error", "Validation failed: No acceptance criteria provided")
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one acceptance criterion is required"})
		return
	}

	s.hub.Publish(sessionID, "success", "Input validation passed")
	s.hub.Publish(sessionID, "info", fmt.Sprintf("Processing %d acceptance criteria", len(req.AcceptanceCriteria)))

	outputPath := s.outputPath(req)
	s.hub.Publish(sessionID, "info", fmt.Sprintf("Output file: %s", filepath.Base(outputPath)))
	s.hub.Publish(sessionID, "info", fmt.Sprintf("Using model: %s", s.cfg.Model))

	gen := generator.New(s.backend, generator.Options{
		MaxAttempts:          s.cfg.MaxAttempts,
		Temperature:          &s.cfg.Temperature,
		TopP:                 &s.cfg.TopP,
		MaxTokens:            s.cfg.MaxTokens,
		IncludeEdgeCases:     s.cfg.IncludeEdgeCases,
		IncludeNegativeTests: s.cfg.IncludeNegativeTests,
		StrictValidation:     s.cfg.StrictValidation,
		Model:                s.cfg.Model,
		Notifier: generator.NotifierFunc(func(e generator.Event) {
			s.hub.Publish(sessionID, levelFor(e.Type), e.Message())
		}),
	})

	records, err := gen.Run(c.Request.Context(), req.UserStory, req.AcceptanceCriteria)
	if err != nil {
		s.hub.Publish(sessionID, "error", fmt.Sprintf("Generation failed: %v", err))
		slog.Error("generation failed", "session", sessionID, "error", err)

		var clientErr *llm.ClientError
		if errors.As(err, &clientErr) && !clientErr.Retryable() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   fmt.Sprintf("Cannot connect to Ollama. Ensure Ollama is running with the %s model.", s.cfg.Model),
				"details": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to generate valid test cases",
			"details": err.Error(),
		})
		return
	}

	s.hub.Publish(sessionID, "info", fmt.Sprintf("Saving test cases to: %s", outputPath))
	opts := store.CSVOptions{
		PreserveLineBreaks: s.cfg.CSVPreserveLineBreaks,
		IncludeSummary:     s.cfg.CSVIncludeSummary,
	}
	if err := store.WriteCSV(records, outputPath, opts); err != nil {
		s.hub.Publish(sessionID, "error", fmt.Sprintf("Save failed: %v", err))
		slog.Error("save failed", "session", sessionID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to save test cases",
			"details": err.Error(),
		})
		return
	}
	s.hub.Publish(sessionID, "success", "Generation complete")

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"session_id":      sessionID,
		"file_path":       outputPath,
		"test_case_count": len(records),
		"message":         fmt.Sprintf("Successfully generated %d test cases", len(records)),
	})
}

// outputPath builds the CSV path from the requested filename, defaulting
// the name and optionally appending a timestamp for uniqueness.
func (s *Server) outputPath(req generateRequest) string {
	name := strings.TrimSpace(req.Filename)
	if name == "" {
		name = "test_cases"
	}
	name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

	appendDatetime := s.cfg.AppendDatetime
	if req.AppendDatetime != nil {
		appendDatetime = *req.AppendDatetime
	}
	if appendDatetime {
		name = fmt.Sprintf("%s_%s", name, time.Now().Format("20060102_150405"))
	}
	return filepath.Join(s.cfg.OutputDir, name+".csv")
}

// handleLogs streams the session's progress notices as server-sent events.
// The stream stays open until the client disconnects; a keepalive comment
// goes out during quiet periods so proxies do not drop the connection.
func (s *Server) handleLogs(c *gin.Context) {
	sessionID := c.Param("session")
	ch := s.hub.Subscribe(sessionID)
	defer s.hub.Unsubscribe(sessionID, ch)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	keepalive := time.NewTicker(15 * time.Second)
	defer keepalive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case entry, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("message", entry)
			return true
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := s.backend.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"ollama": "disconnected",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"ollama":     "connected",
		"model":      s.cfg.Model,
		"output_dir": s.cfg.OutputDir,
	})
}

func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"model":            s.cfg.Model,
		"output_directory": s.cfg.OutputDir,
		"max_attempts":     s.cfg.MaxAttempts,
		"temperature":      s.cfg.Temperature,
	})
}

func levelFor(t generator.EventType) string {
	switch t {
	case generator.EventSucceeded:
		return "success"
	case generator.EventAttemptFailed:
		return "warning"
	default:
		return "info"
	}
}
