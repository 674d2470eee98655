package api

import (
	"context"
	"net/http"

	"trainwise/fitness-app/internal/cache"
	"trainwise/fitness-app/internal/domain"
	"trainwise/fitness-app/internal/metrics"
	"trainwise/fitness-app/internal/service"

	"github.com/gin-gonic/gin"
)

// PlanHandler serves training plans and their read-only nested views.
type PlanHandler struct {
	planService service.PlanService
	queryCache  *cache.QueryCache
	metrics     *metrics.Manager
}

func NewPlanHandler(planService service.PlanService, queryCache *cache.QueryCache, m *metrics.Manager) *PlanHandler {
	return &PlanHandler{planService: planService, queryCache: queryCache, metrics: m}
}

// CreatePlan godoc
// @Summary Create a training plan
// @Description A team_id shares the plan with a team the caller belongs to.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param plan body service.CreatePlanInput true "Plan details"
// @Success 201 {object} domain.Plan
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 403 {object} gin.H "Not a member of the team"
// @Router /plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req service.CreatePlanInput
	if !bindJSON(c, &req) {
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Failed to create plan.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyPlans)
	c.JSON(http.StatusCreated, plan)
}

// ListPlans godoc
// @Summary Browse plans
// @Description Public plans plus the caller's own. mine=true limits to the caller's plans.
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param mine query bool false "Only my plans"
// @Param sport query string false "Sport"
// @Param difficulty query int false "Difficulty 1-5"
// @Param search query string false "Title search"
// @Param team_id query string false "Team"
// @Param page query int false "1-based page"
// @Param limit query int false "Page size"
// @Success 200 {array} domain.Plan
// @Router /plans [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var params service.PlanListParams
	if !bindQuery(c, &params) {
		return
	}

	// private plans are visible to their owner, so every key is per viewer
	key := cache.NewKey(cache.FamilyPlans, "list", map[string]any{
		"viewer":     userID,
		"mine":       params.Mine,
		"sport":      params.Sport,
		"difficulty": params.Difficulty,
		"search":     params.Search,
		"team":       params.TeamID,
		"page":       params.Page,
		"limit":      params.Limit,
	})
	plans, err := cache.Remember(c.Request.Context(), h.queryCache, key, 0,
		func(ctx context.Context) ([]domain.Plan, error) {
			return h.planService.ListPlans(ctx, userID, params)
		})
	if err != nil {
		respondError(c, err, "Failed to retrieve plans.")
		return
	}

	c.JSON(http.StatusOK, plans)
}

// GetPlan godoc
// @Summary Get a plan
// @Description Counts a view unless the caller owns the plan, so the result is never cached.
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Success 200 {object} domain.Plan
// @Failure 404 {object} gin.H "Plan not found or private"
// @Router /plans/{planId} [get]
func (h *PlanHandler) GetPlan(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "planId")
	if !ok {
		return
	}

	plan, err := h.planService.GetPlan(c.Request.Context(), userID, planID)
	if err != nil {
		respondError(c, err, "Failed to retrieve plan.")
		return
	}

	c.JSON(http.StatusOK, plan)
}

// UpdatePlan godoc
// @Summary Update a plan you own
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Param plan body service.UpdatePlanInput true "Fields to change"
// @Success 200 {object} domain.Plan
// @Failure 403 {object} gin.H "Not the owner"
// @Router /plans/{planId} [patch]
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "planId")
	if !ok {
		return
	}
	var req service.UpdatePlanInput
	if !bindJSON(c, &req) {
		return
	}

	plan, err := h.planService.UpdatePlan(c.Request.Context(), userID, planID, req)
	if err != nil {
		respondError(c, err, "Failed to update plan.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyPlans)
	c.JSON(http.StatusOK, plan)
}

// DeletePlan godoc
// @Summary Delete a plan you own together with its structure and goals
// @Tags Plans
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Success 204
// @Failure 403 {object} gin.H "Not the owner"
// @Router /plans/{planId} [delete]
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "planId")
	if !ok {
		return
	}

	if err := h.planService.DeletePlan(c.Request.Context(), userID, planID); err != nil {
		respondError(c, err, "Failed to delete plan.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyPlans)
	c.Status(http.StatusNoContent)
}

func (h *PlanHandler) LikePlan(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "planId")
	if !ok {
		return
	}

	if err := h.planService.LikePlan(c.Request.Context(), userID, planID); err != nil {
		respondError(c, err, "Failed to like plan.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyPlans)
	c.Status(http.StatusNoContent)
}

// ForkPlan godoc
// @Summary Copy a visible plan, with its full structure, into your own private plan
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Success 201 {object} domain.Plan "The new plan"
// @Failure 404 {object} gin.H "Plan not found or private"
// @Router /plans/{planId}/fork [post]
func (h *PlanHandler) ForkPlan(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "planId")
	if !ok {
		return
	}

	fork, err := h.planService.ForkPlan(c.Request.Context(), userID, planID)
	if err != nil {
		respondError(c, err, "Failed to fork plan.")
		return
	}

	if h.metrics != nil {
		h.metrics.CounterPlanForks.Inc()
	}
	h.queryCache.Invalidate(cache.FamilyPlans)
	c.JSON(http.StatusCreated, fork)
}

// GetPlanHierarchy godoc
// @Summary Get a plan with its weeks, days, sessions, exercises and sets nested
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Success 200 {object} domain.PlanHierarchy
// @Failure 404 {object} gin.H "Plan not found or private"
// @Router /plans/{planId}/hierarchy [get]
func (h *PlanHandler) GetPlanHierarchy(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "planId")
	if !ok {
		return
	}

	key := cache.NewKey(cache.FamilyPlanHierarchy, "tree", map[string]any{"plan": planID, "viewer": userID})
	tree, err := cache.Remember(c.Request.Context(), h.queryCache, key, 0,
		func(ctx context.Context) (*domain.PlanHierarchy, error) {
			return h.planService.GetPlanHierarchy(ctx, userID, planID)
		})
	if err != nil {
		respondError(c, err, "Failed to retrieve plan hierarchy.")
		return
	}

	c.JSON(http.StatusOK, tree)
}

// GetPlanSummary godoc
// @Summary Plan rollup counters plus the caller's completion percentage
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Success 200 {object} service.PlanSummary
// @Router /plans/{planId}/summary [get]
func (h *PlanHandler) GetPlanSummary(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "planId")
	if !ok {
		return
	}

	key := cache.NewKey(cache.FamilyPlans, "summary", map[string]any{"plan": planID, "viewer": userID})
	summary, err := cache.Remember(c.Request.Context(), h.queryCache, key, 0,
		func(ctx context.Context) (*service.PlanSummary, error) {
			return h.planService.GetPlanSummary(ctx, userID, planID)
		})
	if err != nil {
		respondError(c, err, "Failed to summarize plan.")
		return
	}

	c.JSON(http.StatusOK, summary)
}
