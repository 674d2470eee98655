package api

import (
	"context"
	"net/http"

	"trainwise/fitness-app/internal/cache"
	"trainwise/fitness-app/internal/domain"
	"trainwise/fitness-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReferenceHandler serves links attached to exercises: the shared list
// everyone sees and each user's private saved list.
type ReferenceHandler struct {
	referenceService service.ReferenceService
	queryCache       *cache.QueryCache
}

func NewReferenceHandler(referenceService service.ReferenceService, queryCache *cache.QueryCache) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService, queryCache: queryCache}
}

// AddGlobalReference godoc
// @Summary Attach a public reference link to an exercise
// @Tags References
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Param reference body service.ReferenceInput true "Link"
// @Success 201 {object} domain.ExerciseReference
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /exercises/{exerciseId}/references [post]
func (h *ReferenceHandler) AddGlobalReference(c *gin.Context) {
	h.create(c, h.referenceService.AddGlobalReference)
}

// SaveReference godoc
// @Summary Bookmark a link for an exercise in your private list
// @Tags References
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Param reference body service.ReferenceInput true "Link"
// @Success 201 {object} domain.ExerciseReference
// @Router /exercises/{exerciseId}/saved-references [post]
func (h *ReferenceHandler) SaveReference(c *gin.Context) {
	h.create(c, h.referenceService.SaveReference)
}

type createReferenceFunc func(ctx context.Context, actorID, exerciseID primitive.ObjectID, in service.ReferenceInput) (*domain.ExerciseReference, error)

func (h *ReferenceHandler) create(c *gin.Context, create createReferenceFunc) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	exerciseID, ok := pathID(c, "exerciseId")
	if !ok {
		return
	}
	var req service.ReferenceInput
	if !bindJSON(c, &req) {
		return
	}

	ref, err := create(c.Request.Context(), userID, exerciseID, req)
	if err != nil {
		respondError(c, err, "Failed to save reference.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyExerciseReferences)
	c.JSON(http.StatusCreated, ref)
}

// ListGlobalReferences godoc
// @Summary List the public reference links of an exercise
// @Tags References
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Success 200 {array} domain.ExerciseReference
// @Router /exercises/{exerciseId}/references [get]
func (h *ReferenceHandler) ListGlobalReferences(c *gin.Context) {
	exerciseID, ok := pathID(c, "exerciseId")
	if !ok {
		return
	}

	key := cache.NewKey(cache.FamilyExerciseReferences, "global", map[string]any{"exercise": exerciseID})
	refs, err := cache.Remember(c.Request.Context(), h.queryCache, key, 0,
		func(ctx context.Context) ([]domain.ExerciseReference, error) {
			return h.referenceService.ListGlobalReferences(ctx, exerciseID)
		})
	if err != nil {
		respondError(c, err, "Failed to retrieve references.")
		return
	}

	c.JSON(http.StatusOK, refs)
}

func (h *ReferenceHandler) ListSavedReferences(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	key := cache.NewKey(cache.FamilyExerciseReferences, "saved", map[string]any{"user": userID})
	refs, err := cache.Remember(c.Request.Context(), h.queryCache, key, 0,
		func(ctx context.Context) ([]domain.ExerciseReference, error) {
			return h.referenceService.ListSavedReferences(ctx, userID)
		})
	if err != nil {
		respondError(c, err, "Failed to retrieve saved references.")
		return
	}

	c.JSON(http.StatusOK, refs)
}

// UpdateGlobalReference godoc
// @Summary Edit a public reference link you added
// @Tags References
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param referenceId path string true "Reference ID"
// @Param reference body service.UpdateReferenceInput true "Fields to change"
// @Success 200 {object} domain.ExerciseReference
// @Failure 403 {object} gin.H "Not your reference"
// @Router /references/{referenceId} [patch]
func (h *ReferenceHandler) UpdateGlobalReference(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	refID, ok := pathID(c, "referenceId")
	if !ok {
		return
	}
	var req service.UpdateReferenceInput
	if !bindJSON(c, &req) {
		return
	}

	ref, err := h.referenceService.UpdateGlobalReference(c.Request.Context(), userID, refID, req)
	if err != nil {
		respondError(c, err, "Failed to update reference.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyExerciseReferences)
	c.JSON(http.StatusOK, ref)
}

func (h *ReferenceHandler) DeleteGlobalReference(c *gin.Context) {
	h.delete(c, h.referenceService.DeleteGlobalReference)
}

func (h *ReferenceHandler) DeleteSavedReference(c *gin.Context) {
	h.delete(c, h.referenceService.DeleteSavedReference)
}

func (h *ReferenceHandler) delete(c *gin.Context, del func(ctx context.Context, actorID, id primitive.ObjectID) error) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	refID, ok := pathID(c, "referenceId")
	if !ok {
		return
	}

	if err := del(c.Request.Context(), userID, refID); err != nil {
		respondError(c, err, "Failed to delete reference.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyExerciseReferences)
	c.Status(http.StatusNoContent)
}
