package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fintrackhq/fintrack-sync/internal/models"
	"github.com/fintrackhq/fintrack-sync/internal/repository"
	"github.com/fintrackhq/fintrack-sync/internal/service"
)

// historyLimit caps the job history listing.
const historyLimit = 10

type startSyncRequest struct {
	Entities    []string `json:"entities"`
	FullRefresh bool     `json:"full_refresh"`
}

type settingsPayload struct {
	SyncIntervalHours *int `json:"sync_interval_hours"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

func (s *server) startSync(c *gin.Context) {
	var req startSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	jobID, err := s.deps.Runner.Start(c.Request.Context(), req.Entities, req.FullRefresh)
	switch {
	case errors.Is(err, service.ErrSyncInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoEntities), errors.Is(err, service.ErrUnknownEntity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		s.deps.Logger.Error("failed to start sync", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start sync"})
	default:
		c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
	}
}

func (s *server) syncStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	job, err := s.deps.Jobs.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		s.deps.Logger.Error("failed to load sync job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
		return
	}

	c.JSON(http.StatusOK, job)
}

func (s *server) syncHistory(c *gin.Context) {
	jobs, err := s.deps.Jobs.ListRecent(c.Request.Context(), historyLimit)
	if err != nil {
		s.deps.Logger.Error("failed to list sync jobs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}
	if jobs == nil {
		jobs = []models.SyncJob{}
	}

	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func (s *server) lastStatus(c *gin.Context) {
	entries, err := s.deps.SyncLog.List(c.Request.Context())
	if err != nil {
		s.deps.Logger.Error("failed to list sync log", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sync log"})
		return
	}
	if entries == nil {
		entries = []models.SyncLogEntry{}
	}

	c.JSON(http.StatusOK, gin.H{"entities": entries})
}

func (s *server) getSettings(c *gin.Context) {
	raw, err := s.deps.Settings.Get(c.Request.Context(), models.SettingSyncIntervalHours, "0")
	if err != nil {
		s.deps.Logger.Error("failed to read settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read settings"})
		return
	}

	hours, err := strconv.Atoi(raw)
	if err != nil {
		hours = 0
	}

	c.JSON(http.StatusOK, gin.H{"sync_interval_hours": hours})
}

func (s *server) updateSettings(c *gin.Context) {
	var req settingsPayload
	if err := c.ShouldBindJSON(&req); err != nil || req.SyncIntervalHours == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sync_interval_hours is required"})
		return
	}
	hours := *req.SyncIntervalHours
	if hours < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sync_interval_hours must be non-negative"})
		return
	}

	if err := s.deps.Settings.Set(c.Request.Context(), models.SettingSyncIntervalHours, strconv.Itoa(hours)); err != nil {
		s.deps.Logger.Error("failed to save settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save settings"})
		return
	}

	s.deps.Scheduler.Reschedule(hours)

	c.JSON(http.StatusOK, gin.H{"sync_interval_hours": hours})
}

func (s *server) setupStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"configured": s.deps.Tokens.Configured()})
}

func (s *server) saveToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	if err := s.deps.ValidateToken(c.Request.Context(), req.Token); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token validation failed: " + err.Error()})
		return
	}

	if err := s.deps.Tokens.Save(req.Token); err != nil {
		s.deps.Logger.Error("failed to save token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"configured": true})
}
