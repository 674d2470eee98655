package api

import (
	"context"
	"net/http"

	"trainwise/fitness-app/internal/cache"
	"trainwise/fitness-app/internal/domain"
	"trainwise/fitness-app/internal/repository"
	"trainwise/fitness-app/internal/service"

	"github.com/gin-gonic/gin"
)

// MeasurementHandler serves the caller's body measurements and progress photos.
type MeasurementHandler struct {
	measurementService service.MeasurementService
	queryCache         *cache.QueryCache
}

func NewMeasurementHandler(measurementService service.MeasurementService, queryCache *cache.QueryCache) *MeasurementHandler {
	return &MeasurementHandler{measurementService: measurementService, queryCache: queryCache}
}

// CreateMeasurement godoc
// @Summary Record body measurements for a date
// @Tags Measurements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param measurement body service.CreateMeasurementInput true "Measurements"
// @Success 201 {object} domain.UserMeasurement
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 409 {object} gin.H "A measurement for this date already exists"
// @Router /measurements [post]
func (h *MeasurementHandler) CreateMeasurement(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req service.CreateMeasurementInput
	if !bindJSON(c, &req) {
		return
	}

	measurement, err := h.measurementService.CreateMeasurement(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Failed to save measurement.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyMeasurements)
	c.JSON(http.StatusCreated, measurement)
}

// ListMeasurements godoc
// @Summary List your measurements, newest first
// @Tags Measurements
// @Produce json
// @Security BearerAuth
// @Param page query int false "1-based page"
// @Param limit query int false "Page size"
// @Success 200 {array} domain.UserMeasurement
// @Router /measurements [get]
func (h *MeasurementHandler) ListMeasurements(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var page repository.Page
	if !bindQuery(c, &page) {
		return
	}

	key := cache.NewKey(cache.FamilyMeasurements, "list", map[string]any{
		"user":  userID,
		"page":  page.Page,
		"limit": page.Limit,
	})
	measurements, err := cache.Remember(c.Request.Context(), h.queryCache, key, 0,
		func(ctx context.Context) ([]domain.UserMeasurement, error) {
			return h.measurementService.ListMeasurements(ctx, userID, page)
		})
	if err != nil {
		respondError(c, err, "Failed to retrieve measurements.")
		return
	}

	c.JSON(http.StatusOK, measurements)
}

func (h *MeasurementHandler) DeleteMeasurement(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	measurementID, ok := pathID(c, "measurementId")
	if !ok {
		return
	}

	if err := h.measurementService.DeleteMeasurement(c.Request.Context(), userID, measurementID); err != nil {
		respondError(c, err, "Failed to delete measurement.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyMeasurements)
	c.Status(http.StatusNoContent)
}

// RequestPhotoUpload godoc
// @Summary Get a presigned URL for a progress photo
// @Tags Measurements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param measurementId path string true "Measurement ID"
// @Param upload body uploadRequest true "Image content type"
// @Success 200 {object} service.UploadTicket
// @Failure 403 {object} gin.H "Not your measurement"
// @Router /measurements/{measurementId}/photos [post]
func (h *MeasurementHandler) RequestPhotoUpload(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	measurementID, ok := pathID(c, "measurementId")
	if !ok {
		return
	}
	var req uploadRequest
	if !bindJSON(c, &req) {
		return
	}

	ticket, err := h.measurementService.RequestPhotoUpload(c.Request.Context(), userID, measurementID, req.ContentType)
	if err != nil {
		respondError(c, err, "Failed to prepare photo upload.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyMeasurements)
	c.JSON(http.StatusOK, ticket)
}
