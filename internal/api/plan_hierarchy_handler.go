package api

import (
	"context"
	"net/http"

	"trainwise/fitness-app/internal/cache"
	"trainwise/fitness-app/internal/progress"
	"trainwise/fitness-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanHierarchyHandler edits the structure of a plan: weeks, days, sessions,
// exercise entries and sets. Every write requires plan ownership.
type PlanHierarchyHandler struct {
	hierarchyService service.PlanHierarchyService
	queryCache       *cache.QueryCache
}

func NewPlanHierarchyHandler(hierarchyService service.PlanHierarchyService, queryCache *cache.QueryCache) *PlanHierarchyHandler {
	return &PlanHierarchyHandler{hierarchyService: hierarchyService, queryCache: queryCache}
}

// addNode binds In, creates the child of the parent named by parentParam and
// answers 201 with the stored row.
func addNode[In, Out any](h *PlanHierarchyHandler, c *gin.Context, parentParam string, add func(ctx context.Context, actorID, parentID primitive.ObjectID, in In) (*Out, error)) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	parentID, ok := pathID(c, parentParam)
	if !ok {
		return
	}
	var req In
	if !bindJSON(c, &req) {
		return
	}

	row, err := add(c.Request.Context(), userID, parentID, req)
	if err != nil {
		respondError(c, err, "Failed to add plan item.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyPlanHierarchy)
	c.JSON(http.StatusCreated, row)
}

func updateNode[In any](h *PlanHierarchyHandler, c *gin.Context, idParam string, update func(ctx context.Context, actorID, id primitive.ObjectID, in In) error) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, idParam)
	if !ok {
		return
	}
	var req In
	if !bindJSON(c, &req) {
		return
	}

	if err := update(c.Request.Context(), userID, id, req); err != nil {
		respondError(c, err, "Failed to update plan item.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyPlanHierarchy)
	c.Status(http.StatusNoContent)
}

func (h *PlanHierarchyHandler) deleteNode(c *gin.Context, idParam string, del func(ctx context.Context, actorID, id primitive.ObjectID) error) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, idParam)
	if !ok {
		return
	}

	if err := del(c.Request.Context(), userID, id); err != nil {
		respondError(c, err, "Failed to delete plan item.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyPlanHierarchy)
	c.Status(http.StatusNoContent)
}

// AddWeek godoc
// @Summary Append a week to a plan you own
// @Tags Plan structure
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Param week body service.WeekInput true "Week"
// @Success 201 {object} domain.PlanWeek
// @Failure 403 {object} gin.H "Not the plan owner"
// @Router /plans/{planId}/weeks [post]
func (h *PlanHierarchyHandler) AddWeek(c *gin.Context) {
	addNode(h, c, "planId", h.hierarchyService.AddWeek)
}

func (h *PlanHierarchyHandler) UpdateWeek(c *gin.Context) {
	updateNode(h, c, "weekId", h.hierarchyService.UpdateWeek)
}

func (h *PlanHierarchyHandler) DeleteWeek(c *gin.Context) {
	h.deleteNode(c, "weekId", h.hierarchyService.DeleteWeek)
}

// AddDay godoc
// @Summary Add a day to a week
// @Tags Plan structure
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param weekId path string true "Week ID"
// @Param day body service.DayInput true "Day"
// @Success 201 {object} domain.PlanDay
// @Router /plan-weeks/{weekId}/days [post]
func (h *PlanHierarchyHandler) AddDay(c *gin.Context) {
	addNode(h, c, "weekId", h.hierarchyService.AddDay)
}

func (h *PlanHierarchyHandler) UpdateDay(c *gin.Context) {
	updateNode(h, c, "dayId", h.hierarchyService.UpdateDay)
}

func (h *PlanHierarchyHandler) DeleteDay(c *gin.Context) {
	h.deleteNode(c, "dayId", h.hierarchyService.DeleteDay)
}

func (h *PlanHierarchyHandler) AddSession(c *gin.Context) {
	addNode(h, c, "dayId", h.hierarchyService.AddSession)
}

func (h *PlanHierarchyHandler) UpdateSession(c *gin.Context) {
	updateNode(h, c, "sessionId", h.hierarchyService.UpdateSession)
}

func (h *PlanHierarchyHandler) DeleteSession(c *gin.Context) {
	h.deleteNode(c, "sessionId", h.hierarchyService.DeleteSession)
}

// AddSessionExercise godoc
// @Summary Add an exercise entry to a session
// @Description Entries sharing an execution_group run back to back as a superset.
// @Tags Plan structure
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Param entry body service.SessionExerciseInput true "Entry"
// @Success 201 {object} domain.PlanSessionExercise
// @Failure 404 {object} gin.H "Session or exercise not found"
// @Router /plan-sessions/{sessionId}/exercises [post]
func (h *PlanHierarchyHandler) AddSessionExercise(c *gin.Context) {
	addNode(h, c, "sessionId", h.hierarchyService.AddSessionExercise)
}

func (h *PlanHierarchyHandler) UpdateSessionExercise(c *gin.Context) {
	updateNode(h, c, "entryId", h.hierarchyService.UpdateSessionExercise)
}

func (h *PlanHierarchyHandler) DeleteSessionExercise(c *gin.Context) {
	h.deleteNode(c, "entryId", h.hierarchyService.DeleteSessionExercise)
}

func (h *PlanHierarchyHandler) AddSet(c *gin.Context) {
	addNode(h, c, "entryId", h.hierarchyService.AddSet)
}

func (h *PlanHierarchyHandler) UpdateSet(c *gin.Context) {
	updateNode(h, c, "setId", h.hierarchyService.UpdateSet)
}

func (h *PlanHierarchyHandler) DeleteSet(c *gin.Context) {
	h.deleteNode(c, "setId", h.hierarchyService.DeleteSet)
}

// GetGroupedSets godoc
// @Summary Sets of an exercise entry with consecutive pyramid sets merged
// @Tags Plan structure
// @Produce json
// @Security BearerAuth
// @Param entryId path string true "Session exercise ID"
// @Success 200 {array} progress.SetGroup
// @Router /plan-session-exercises/{entryId}/sets [get]
func (h *PlanHierarchyHandler) GetGroupedSets(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	entryID, ok := pathID(c, "entryId")
	if !ok {
		return
	}

	key := cache.NewKey(cache.FamilyPlanHierarchy, "set_groups", map[string]any{"entry": entryID, "viewer": userID})
	groups, err := cache.Remember(c.Request.Context(), h.queryCache, key, 0,
		func(ctx context.Context) ([]progress.SetGroup, error) {
			return h.hierarchyService.GetGroupedSets(ctx, userID, entryID)
		})
	if err != nil {
		respondError(c, err, "Failed to retrieve sets.")
		return
	}

	c.JSON(http.StatusOK, groups)
}
