package service

import (
	"net/http"
	"time"

	"challenge-orchestrator/pkgs/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// NotifyRequest is the callback a participant's server posts once it
// has deployed its artifact for a dispatched task.
type NotifyRequest struct {
	Email     string `json:"email"`
	Task      string `json:"task"`
	Round     int    `json:"round"`
	Nonce     string `json:"nonce"`
	RepoURL   string `json:"repo_url"`
	CommitSHA string `json:"commit_sha"`
	PagesURL  string `json:"pages_url"`
}

// Server is the notify intake API. It records submissions against
// previously dispatched tasks; it is not the participant-facing task
// server, which lives on the participants' side.
type Server struct {
	store  *store.Store
	engine *gin.Engine
}

func NewServer(s *store.Store) *Server {
	engine := gin.Default()
	srv := &Server{store: s, engine: engine}

	engine.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	engine.POST("/evaluation/notify", srv.handleNotify)

	return srv
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleNotify(c *gin.Context) {
	var req NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_json"})
		return
	}
	if req.Email == "" || req.Task == "" || req.Nonce == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_fields"})
		return
	}

	// Validate against the tasks we actually dispatched. The nonce is
	// the de-duplication token for retried deliveries.
	found, err := s.store.FindTask(c.Request.Context(), req.Email, req.Task, req.Round, req.Nonce)
	if err != nil {
		log.Errorf("evaluation notify error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "detail": err.Error()})
		return
	}
	if found == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no_matching_task"})
		return
	}

	sub := store.Submission{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UnixMilli(),
		Email:     req.Email,
		Task:      req.Task,
		Round:     req.Round,
		Nonce:     req.Nonce,
		RepoURL:   req.RepoURL,
		CommitSHA: req.CommitSHA,
		PagesURL:  req.PagesURL,
	}
	if err := s.store.SaveSubmission(c.Request.Context(), sub); err != nil {
		log.Errorf("evaluation notify error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Repo recorded"})
}
