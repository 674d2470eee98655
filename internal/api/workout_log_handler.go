package api

import (
	"context"
	"net/http"

	"trainwise/fitness-app/internal/cache"
	"trainwise/fitness-app/internal/domain"
	"trainwise/fitness-app/internal/metrics"
	"trainwise/fitness-app/internal/repository"
	"trainwise/fitness-app/internal/service"

	"github.com/gin-gonic/gin"
)

// WorkoutLogHandler serves the caller's logged sessions and the sets inside them.
type WorkoutLogHandler struct {
	workoutLogService service.WorkoutLogService
	queryCache        *cache.QueryCache
	metrics           *metrics.Manager
}

func NewWorkoutLogHandler(workoutLogService service.WorkoutLogService, queryCache *cache.QueryCache, m *metrics.Manager) *WorkoutLogHandler {
	return &WorkoutLogHandler{workoutLogService: workoutLogService, queryCache: queryCache, metrics: m}
}

// CreateSessionLog godoc
// @Summary Log a workout session
// @Description plan_session_id links the log to a planned session and counts towards plan completion.
// @Tags Workout logs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param log body service.CreateSessionLogInput true "Session log"
// @Success 201 {object} domain.SessionLog
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 404 {object} gin.H "Planned session not found"
// @Router /session-logs [post]
func (h *WorkoutLogHandler) CreateSessionLog(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req service.CreateSessionLogInput
	if !bindJSON(c, &req) {
		return
	}

	sessionLog, err := h.workoutLogService.CreateSessionLog(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Failed to log session.")
		return
	}

	if h.metrics != nil {
		h.metrics.CounterSessionLogs.Inc()
	}
	h.queryCache.Invalidate(cache.FamilySessionLogs)
	c.JSON(http.StatusCreated, sessionLog)
}

func (h *WorkoutLogHandler) ListSessionLogs(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var page repository.Page
	if !bindQuery(c, &page) {
		return
	}

	key := cache.NewKey(cache.FamilySessionLogs, "list", map[string]any{
		"user":  userID,
		"page":  page.Page,
		"limit": page.Limit,
	})
	logs, err := cache.Remember(c.Request.Context(), h.queryCache, key, 0,
		func(ctx context.Context) ([]domain.SessionLog, error) {
			return h.workoutLogService.ListSessionLogs(ctx, userID, page)
		})
	if err != nil {
		respondError(c, err, "Failed to retrieve session logs.")
		return
	}

	c.JSON(http.StatusOK, logs)
}

// GetSessionLog godoc
// @Summary Get one of your session logs with its sets
// @Tags Workout logs
// @Produce json
// @Security BearerAuth
// @Param logId path string true "Session log ID"
// @Success 200 {object} domain.SessionLogWithSets
// @Failure 404 {object} gin.H "Not found or not yours"
// @Router /session-logs/{logId} [get]
func (h *WorkoutLogHandler) GetSessionLog(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	logID, ok := pathID(c, "logId")
	if !ok {
		return
	}

	key := cache.NewKey(cache.FamilySessionLogs, "detail", map[string]any{"id": logID, "user": userID})
	sessionLog, err := cache.Remember(c.Request.Context(), h.queryCache, key, 0,
		func(ctx context.Context) (*domain.SessionLogWithSets, error) {
			return h.workoutLogService.GetSessionLog(ctx, userID, logID)
		})
	if err != nil {
		respondError(c, err, "Failed to retrieve session log.")
		return
	}
	if sessionLog == nil {
		abortWithError(c, http.StatusNotFound, service.ErrSessionLogNotFound.Error())
		return
	}

	c.JSON(http.StatusOK, sessionLog)
}

// UpdateSessionLog godoc
// @Summary Update one of your session logs
// @Tags Workout logs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param logId path string true "Session log ID"
// @Param log body service.UpdateSessionLogInput true "Fields to change"
// @Success 200 {object} domain.SessionLog
// @Failure 400 {object} gin.H "Empty update"
// @Failure 403 {object} gin.H "Not your session log"
// @Router /session-logs/{logId} [patch]
func (h *WorkoutLogHandler) UpdateSessionLog(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	logID, ok := pathID(c, "logId")
	if !ok {
		return
	}
	var req service.UpdateSessionLogInput
	if !bindJSON(c, &req) {
		return
	}

	sessionLog, err := h.workoutLogService.UpdateSessionLog(c.Request.Context(), userID, logID, req)
	if err != nil {
		respondError(c, err, "Failed to update session log.")
		return
	}

	h.queryCache.Invalidate(cache.FamilySessionLogs)
	c.JSON(http.StatusOK, sessionLog)
}

func (h *WorkoutLogHandler) DeleteSessionLog(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	logID, ok := pathID(c, "logId")
	if !ok {
		return
	}

	if err := h.workoutLogService.DeleteSessionLog(c.Request.Context(), userID, logID); err != nil {
		respondError(c, err, "Failed to delete session log.")
		return
	}

	h.queryCache.Invalidate(cache.FamilySessionLogs)
	c.Status(http.StatusNoContent)
}

// AddSetLog godoc
// @Summary Record a performed set inside one of your session logs
// @Tags Workout logs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param logId path string true "Session log ID"
// @Param set body service.SetLogInput true "Set"
// @Success 201 {object} domain.SetLog
// @Failure 403 {object} gin.H "Not your session log"
// @Router /session-logs/{logId}/sets [post]
func (h *WorkoutLogHandler) AddSetLog(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	logID, ok := pathID(c, "logId")
	if !ok {
		return
	}
	var req service.SetLogInput
	if !bindJSON(c, &req) {
		return
	}

	setLog, err := h.workoutLogService.AddSetLog(c.Request.Context(), userID, logID, req)
	if err != nil {
		respondError(c, err, "Failed to record set.")
		return
	}

	h.queryCache.Invalidate(cache.FamilySessionLogs)
	c.JSON(http.StatusCreated, setLog)
}

func (h *WorkoutLogHandler) DeleteSetLog(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	setLogID, ok := pathID(c, "setLogId")
	if !ok {
		return
	}

	if err := h.workoutLogService.DeleteSetLog(c.Request.Context(), userID, setLogID); err != nil {
		respondError(c, err, "Failed to delete set.")
		return
	}

	h.queryCache.Invalidate(cache.FamilySessionLogs)
	c.Status(http.StatusNoContent)
}
