package api

import (
	"context"
	"net/http"

	"trainwise/fitness-app/internal/cache"
	"trainwise/fitness-app/internal/domain"
	"trainwise/fitness-app/internal/service"

	"github.com/gin-gonic/gin"
)

// GoalHandler serves plan goals and each user's baseline for them.
type GoalHandler struct {
	goalService service.GoalService
	queryCache  *cache.QueryCache
}

func NewGoalHandler(goalService service.GoalService, queryCache *cache.QueryCache) *GoalHandler {
	return &GoalHandler{goalService: goalService, queryCache: queryCache}
}

type BaselineRequest struct {
	Value *float64 `json:"value" binding:"required"`
}

type EvaluateGoalQuery struct {
	Current *float64 `form:"current" binding:"required"`
}

// CreateGoal godoc
// @Summary Add a goal to a plan you own
// @Tags Goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Param goal body service.CreateGoalInput true "Goal"
// @Success 201 {object} domain.PlanGoal
// @Failure 403 {object} gin.H "Not the plan owner"
// @Router /plans/{planId}/goals [post]
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "planId")
	if !ok {
		return
	}
	var req service.CreateGoalInput
	if !bindJSON(c, &req) {
		return
	}

	goal, err := h.goalService.CreateGoal(c.Request.Context(), userID, planID, req)
	if err != nil {
		respondError(c, err, "Failed to create goal.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyGoals)
	c.JSON(http.StatusCreated, goal)
}

func (h *GoalHandler) ListGoals(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "planId")
	if !ok {
		return
	}

	key := cache.NewKey(cache.FamilyGoals, "list", map[string]any{"plan": planID, "viewer": userID})
	goals, err := cache.Remember(c.Request.Context(), h.queryCache, key, 0,
		func(ctx context.Context) ([]domain.PlanGoal, error) {
			return h.goalService.ListGoals(ctx, userID, planID)
		})
	if err != nil {
		respondError(c, err, "Failed to retrieve goals.")
		return
	}

	c.JSON(http.StatusOK, goals)
}

func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	goalID, ok := pathID(c, "goalId")
	if !ok {
		return
	}
	var req service.UpdateGoalInput
	if !bindJSON(c, &req) {
		return
	}

	goal, err := h.goalService.UpdateGoal(c.Request.Context(), userID, goalID, req)
	if err != nil {
		respondError(c, err, "Failed to update goal.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyGoals)
	c.JSON(http.StatusOK, goal)
}

func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	goalID, ok := pathID(c, "goalId")
	if !ok {
		return
	}

	if err := h.goalService.DeleteGoal(c.Request.Context(), userID, goalID); err != nil {
		respondError(c, err, "Failed to delete goal.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyGoals)
	c.Status(http.StatusNoContent)
}

// SetBaseline godoc
// @Summary Record your starting value for a goal
// @Description Replaces any earlier baseline.
// @Tags Goals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param goalId path string true "Goal ID"
// @Param baseline body BaselineRequest true "Baseline value"
// @Success 200 {object} domain.UserBaseline
// @Router /goals/{goalId}/baseline [put]
func (h *GoalHandler) SetBaseline(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	goalID, ok := pathID(c, "goalId")
	if !ok {
		return
	}
	var req BaselineRequest
	if !bindJSON(c, &req) {
		return
	}

	baseline, err := h.goalService.SetBaseline(c.Request.Context(), userID, goalID, *req.Value)
	if err != nil {
		respondError(c, err, "Failed to save baseline.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyGoals)
	c.JSON(http.StatusOK, baseline)
}

func (h *GoalHandler) GetBaseline(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	goalID, ok := pathID(c, "goalId")
	if !ok {
		return
	}

	key := cache.NewKey(cache.FamilyGoals, "baseline", map[string]any{"goal": goalID, "user": userID})
	baseline, err := cache.Remember(c.Request.Context(), h.queryCache, key, 0,
		func(ctx context.Context) (*domain.UserBaseline, error) {
			return h.goalService.GetBaseline(ctx, userID, goalID)
		})
	if err != nil {
		respondError(c, err, "Failed to retrieve baseline.")
		return
	}
	if baseline == nil {
		abortWithError(c, http.StatusNotFound, service.ErrBaselineNotFound.Error())
		return
	}

	c.JSON(http.StatusOK, baseline)
}

// EvaluateGoal godoc
// @Summary Compare a current value against your baseline for the goal
// @Tags Goals
// @Produce json
// @Security BearerAuth
// @Param goalId path string true "Goal ID"
// @Param current query number true "Current value"
// @Success 200 {object} progress.GoalProgress
// @Failure 404 {object} gin.H "Goal or baseline not found"
// @Router /goals/{goalId}/progress [get]
func (h *GoalHandler) EvaluateGoal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	goalID, ok := pathID(c, "goalId")
	if !ok {
		return
	}
	var query EvaluateGoalQuery
	if !bindQuery(c, &query) {
		return
	}

	result, err := h.goalService.EvaluateGoal(c.Request.Context(), userID, goalID, *query.Current)
	if err != nil {
		respondError(c, err, "Failed to evaluate goal.")
		return
	}

	c.JSON(http.StatusOK, result)
}
