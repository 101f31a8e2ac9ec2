package web

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/host"
	"go.uber.org/zap"

	"github.com/actionsum/activitymon/internal/commands"
	"github.com/actionsum/activitymon/internal/config"
	"github.com/actionsum/activitymon/internal/database"
	"github.com/actionsum/activitymon/internal/events"
	"github.com/actionsum/activitymon/internal/logging"
	"github.com/actionsum/activitymon/internal/models"
	"github.com/actionsum/activitymon/internal/reporter"
	"github.com/actionsum/activitymon/internal/state"
	"github.com/actionsum/activitymon/pkg/detector"
	"github.com/actionsum/activitymon/pkg/window"
)

// Commands is the command surface exposed over HTTP.
type Commands interface {
	StartTracking(ctx context.Context, userID, teamID, token string) (string, error)
	StopTracking(ctx context.Context) error
	GetCurrentActivity(ctx context.Context) (models.Sample, error)
	LastActivity(ctx context.Context) (*models.Sample, bool)
	SendActivityData(ctx context.Context, sample models.Sample) error
}

// StateReader exposes the tracking state for status output.
type StateReader interface {
	Snapshot() state.Snapshot
}

// ErrorLister lists journaled failures.
type ErrorLister interface {
	Recent(limit int) ([]models.ErrorLog, error)
}

// StreamHandler serves the websocket event stream.
type StreamHandler interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
	Clients() int
}

// Subscriber hands out live sample feeds.
type Subscriber interface {
	Subscribe(buffer int) (<-chan models.Sample, func())
}

// Deps groups the collaborators of Handler. Journal, Stream and Events may
// be nil.
type Deps struct {
	Commands Commands
	State    StateReader
	Probe    window.Probe
	Journal  ErrorLister
	Stream   StreamHandler
	Events   Subscriber
	Version  string
}

type Handler struct {
	config  *config.Config
	deps    Deps
	started time.Time
}

func NewHandler(cfg *config.Config, deps Deps) *Handler {
	return &Handler{
		config:  cfg,
		deps:    deps,
		started: time.Now(),
	}
}

// StartRequest is the body of POST /api/tracking/start.
type StartRequest struct {
	UserID string `json:"user_id" binding:"required"`
	TeamID string `json:"team_id" binding:"required"`
	Token  string `json:"token" binding:"required"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status,omitempty"` // remote status for rejected reports
}

func (h *Handler) SetupRoutes(r gin.IRouter) {
	api := r.Group("/api", LocalOnly())
	{
		api.POST("/tracking/start", h.handleStart)
		api.POST("/tracking/stop", h.handleStop)
		api.GET("/activity/current", h.handleCurrent)
		api.GET("/activity/last", h.handleLast)
		api.POST("/activity/send", h.handleSend)
		api.GET("/status", h.handleStatus)
		api.GET("/errors", h.handleErrors)
		api.GET("/activity/stream", h.handleStream)
	}

	if h.deps.Stream != nil {
		r.GET("/ws", gin.WrapF(h.deps.Stream.ServeWS))
	}
	r.GET("/health", h.handleHealth)
}

func (h *Handler) handleStart(c *gin.Context) {
	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	sessionID, err := h.deps.Commands.StartTracking(c.Request.Context(), req.UserID, req.TeamID, req.Token)
	if err != nil {
		respondError(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tracking":   true,
		"session_id": sessionID,
	})
}

func (h *Handler) handleStop(c *gin.Context) {
	if err := h.deps.Commands.StopTracking(c.Request.Context()); err != nil {
		respondError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracking": false})
}

func (h *Handler) handleCurrent(c *gin.Context) {
	sample, err := h.deps.Commands.GetCurrentActivity(c.Request.Context())
	if err != nil {
		logging.FromContext(c.Request.Context()).Warn("probe failed", zap.Error(err))
		respondError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, sample)
}

func (h *Handler) handleLast(c *gin.Context) {
	sample, ok := h.deps.Commands.LastActivity(c.Request.Context())
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "no sample recorded yet"})
		return
	}
	c.JSON(http.StatusOK, sample)
}

// handleSend submits the sample in the body, or the last scheduled sample
// when the body is empty.
func (h *Handler) handleSend(c *gin.Context) {
	ctx := c.Request.Context()

	var sample models.Sample
	err := c.ShouldBindJSON(&sample)
	switch {
	case errors.Is(err, io.EOF):
		last, ok := h.deps.Commands.LastActivity(ctx)
		if !ok {
			c.JSON(http.StatusNotFound, errorResponse{Error: "no sample recorded yet"})
			return
		}
		sample = *last
	case err != nil:
		respondError(c, http.StatusBadRequest, err)
		return
	}

	if sample.IdleSeconds < 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "idle_time cannot be negative"})
		return
	}

	if err := h.deps.Commands.SendActivityData(ctx, sample); err != nil {
		respondError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": true, "sample": sample})
}

func (h *Handler) handleStatus(c *gin.Context) {
	snap := h.deps.State.Snapshot()

	status := gin.H{
		"running":       true,
		"version":       h.deps.Version,
		"uptime":        time.Since(h.started).Round(time.Second).String(),
		"tracking":      snap.Enabled,
		"session_id":    snap.SessionID,
		"poll_interval": h.config.Tracker.PollInterval.String(),
		"auto_report":   h.config.Tracker.AutoReport,
		"backend":       h.config.Reporter.BaseURL,
		"session_type":  detector.SessionType(),
	}
	if h.deps.Probe != nil {
		status["platform"] = h.deps.Probe.Platform()
	}
	if snap.Identity != nil {
		status["user_id"] = snap.Identity.UserID
		status["team_id"] = snap.Identity.TeamID
	}
	if snap.LastSample != nil {
		status["last_sample"] = snap.LastSample
	}
	if h.deps.Stream != nil {
		status["ws_clients"] = h.deps.Stream.Clients()
	}

	if info, err := host.InfoWithContext(c.Request.Context()); err == nil {
		status["host"] = gin.H{
			"hostname":         info.Hostname,
			"os":               info.OS,
			"platform":         info.Platform,
			"platform_version": info.PlatformVersion,
			"kernel_arch":      info.KernelArch,
		}
	} else {
		logging.FromContext(c.Request.Context()).Debug("host info unavailable", zap.Error(err))
	}

	c.JSON(http.StatusOK, status)
}

func (h *Handler) handleErrors(c *gin.Context) {
	if h.deps.Journal == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "diagnostics journal is disabled"})
		return
	}

	limit := database.DefaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		l, err := strconv.Atoi(raw)
		if err != nil || l <= 0 {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = l
	}

	logs, err := h.deps.Journal.Recent(limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"errors": logs, "count": len(logs)})
}

// handleStream relays published samples as server-sent events until the
// client goes away.
func (h *Handler) handleStream(c *gin.Context) {
	if h.deps.Events == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "event stream is disabled"})
		return
	}

	samples, cancel := h.deps.Events.Subscribe(h.config.Events.SubscriberBuffer)
	defer cancel()

	done := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-done:
			return false
		case sample, ok := <-samples:
			if !ok {
				return false
			}
			c.SSEvent(events.ActivityUpdate, sample)
			return true
		}
	})
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// statusFor maps command errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		probeErr    *window.ProbeError
		rejectedErr *reporter.RemoteRejectedError
		transErr    *reporter.TransportError
	)
	switch {
	case errors.Is(err, commands.ErrIncompleteIdentity):
		return http.StatusBadRequest
	case errors.Is(err, commands.ErrNotTracking), errors.Is(err, commands.ErrMissingIdentity):
		return http.StatusConflict
	case errors.As(err, &probeErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &rejectedErr), errors.As(err, &transErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, err error) {
	resp := errorResponse{Error: err.Error()}
	var rejected *reporter.RemoteRejectedError
	if errors.As(err, &rejected) {
		resp.Status = rejected.Status
	}
	c.JSON(code, resp)
}
