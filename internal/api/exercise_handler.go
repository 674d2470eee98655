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

// ExerciseHandler serves the exercise library.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
	queryCache      *cache.QueryCache
}

func NewExerciseHandler(exerciseService service.ExerciseService, queryCache *cache.QueryCache) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService, queryCache: queryCache}
}

// CreateExercise godoc
// @Summary Create a new exercise
// @Description Creates an exercise with its category, type and target muscles.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body service.CreateExerciseInput true "Exercise details"
// @Success 201 {object} domain.ExerciseWithRelations "Exercise created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req service.CreateExerciseInput
	if !bindJSON(c, &req) {
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Failed to create exercise.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyExercises)
	c.JSON(http.StatusCreated, exercise)
}

// ListExercises godoc
// @Summary Browse exercises
// @Description Filters by search term, categories, types, environment and difficulty. Paged.
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive name search"
// @Param category query []string false "Category filter"
// @Param type query []string false "Type filter"
// @Param page query int false "1-based page"
// @Param limit query int false "Page size"
// @Success 200 {array} domain.ExerciseWithRelations
// @Router /exercises [get]
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var params service.ExerciseListParams
	if !bindQuery(c, &params) {
		return
	}

	key := cache.NewKey(cache.FamilyExercises, "list", map[string]any{
		"search":      params.Search,
		"category":    params.Categories,
		"type":        params.Types,
		"environment": params.Environment,
		"difficulty":  params.Difficulty,
		"mine":        params.Mine,
		"page":        params.Page,
		"limit":       params.Limit,
		"user":        mineOwner(params.Mine, userID),
	})
	exercises, err := cache.Remember(c.Request.Context(), h.queryCache, key, 0,
		func(ctx context.Context) ([]domain.ExerciseWithRelations, error) {
			return h.exerciseService.ListExercises(ctx, userID, params)
		})
	if err != nil {
		respondError(c, err, "Failed to retrieve exercises.")
		return
	}

	c.JSON(http.StatusOK, exercises)
}

// GetExercise godoc
// @Summary Get one exercise with its relations
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Success 200 {object} domain.ExerciseWithRelations
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /exercises/{exerciseId} [get]
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exerciseID, ok := pathID(c, "exerciseId")
	if !ok {
		return
	}

	key := cache.NewKey(cache.FamilyExercises, "detail", map[string]any{"id": exerciseID})
	exercise, err := cache.Remember(c.Request.Context(), h.queryCache, key, 0,
		func(ctx context.Context) (*domain.ExerciseWithRelations, error) {
			return h.exerciseService.GetExercise(ctx, exerciseID)
		})
	if err != nil {
		respondError(c, err, "Failed to retrieve exercise.")
		return
	}
	if exercise == nil {
		abortWithError(c, http.StatusNotFound, service.ErrExerciseNotFound.Error())
		return
	}

	c.JSON(http.StatusOK, exercise)
}

// UpdateExercise godoc
// @Summary Update an exercise you created
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Param exercise body service.UpdateExerciseInput true "Fields to change"
// @Success 200 {object} domain.ExerciseWithRelations
// @Failure 400 {object} gin.H "Empty or invalid update"
// @Failure 403 {object} gin.H "Not the creator"
// @Router /exercises/{exerciseId} [patch]
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	exerciseID, ok := pathID(c, "exerciseId")
	if !ok {
		return
	}
	var req service.UpdateExerciseInput
	if !bindJSON(c, &req) {
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), userID, exerciseID, req)
	if err != nil {
		respondError(c, err, "Failed to update exercise.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyExercises)
	c.JSON(http.StatusOK, exercise)
}

// DeleteExercise godoc
// @Summary Delete an exercise you created
// @Tags Exercises
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Success 204
// @Failure 403 {object} gin.H "Not the creator"
// @Router /exercises/{exerciseId} [delete]
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	exerciseID, ok := pathID(c, "exerciseId")
	if !ok {
		return
	}

	if err := h.exerciseService.DeleteExercise(c.Request.Context(), userID, exerciseID); err != nil {
		respondError(c, err, "Failed to delete exercise.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyExercises)
	h.queryCache.Invalidate(cache.FamilyExerciseReferences)
	c.Status(http.StatusNoContent)
}

// GetInstructions godoc
// @Summary Exercise instructions rendered to sanitized HTML
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Success 200 {object} gin.H "{\"html\": \"...\"}"
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /exercises/{exerciseId}/instructions [get]
func (h *ExerciseHandler) GetInstructions(c *gin.Context) {
	exerciseID, ok := pathID(c, "exerciseId")
	if !ok {
		return
	}

	key := cache.NewKey(cache.FamilyExercises, "instructions", map[string]any{"id": exerciseID})
	html, err := cache.Remember(c.Request.Context(), h.queryCache, key, 0,
		func(ctx context.Context) (string, error) {
			return h.exerciseService.RenderInstructions(ctx, exerciseID)
		})
	if err != nil {
		respondError(c, err, "Failed to render instructions.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"html": html})
}

// RequestImageUpload godoc
// @Summary Get a presigned URL for the exercise image
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Param upload body uploadRequest true "Image content type"
// @Success 200 {object} service.UploadTicket
// @Failure 400 {object} gin.H "Unsupported content type"
// @Failure 403 {object} gin.H "Not the creator"
// @Router /exercises/{exerciseId}/image [post]
func (h *ExerciseHandler) RequestImageUpload(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	exerciseID, ok := pathID(c, "exerciseId")
	if !ok {
		return
	}
	var req uploadRequest
	if !bindJSON(c, &req) {
		return
	}

	ticket, err := h.exerciseService.RequestImageUpload(c.Request.Context(), userID, exerciseID, req.ContentType)
	if err != nil {
		respondError(c, err, "Failed to prepare image upload.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyExercises)
	c.JSON(http.StatusOK, ticket)
}

// mineOwner scopes "mine" list keys to the caller so users never share them.
func mineOwner(mine bool, userID primitive.ObjectID) any {
	if !mine {
		return nil
	}
	return userID
}
