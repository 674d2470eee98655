package api

import (
	"errors"
	"net/http"

	"trainwise/fitness-app/internal/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errStatus = []struct {
	err    error
	status int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrEmptyUpdate, http.StatusBadRequest},
	{service.ErrUnsupportedContentType, http.StatusBadRequest},
	{service.ErrUnauthenticated, http.StatusUnauthorized},
	{service.ErrAuthenticationFailed, http.StatusUnauthorized},
	{service.ErrInvalidToken, http.StatusUnauthorized},
	{service.ErrUserAlreadyExists, http.StatusConflict},
	{service.ErrMeasurementExists, http.StatusConflict},
	{service.ErrInvitationNotPending, http.StatusConflict},

	{service.ErrExerciseNotFound, http.StatusNotFound},
	{service.ErrPlanNotFound, http.StatusNotFound},
	{service.ErrPlanNodeNotFound, http.StatusNotFound},
	{service.ErrSessionLogNotFound, http.StatusNotFound},
	{service.ErrGoalNotFound, http.StatusNotFound},
	{service.ErrBaselineNotFound, http.StatusNotFound},
	{service.ErrTeamNotFound, http.StatusNotFound},
	{service.ErrInvitationNotFound, http.StatusNotFound},

	{service.ErrExerciseNotOwned, http.StatusForbidden},
	{service.ErrReferenceNotOwned, http.StatusForbidden},
	{service.ErrPlanAccessDenied, http.StatusForbidden},
	{service.ErrSessionLogNotOwned, http.StatusForbidden},
	{service.ErrSetLogNotOwned, http.StatusForbidden},
	{service.ErrGoalNotOwned, http.StatusForbidden},
	{service.ErrMeasurementNotOwned, http.StatusForbidden},
	{service.ErrNotTeamMember, http.StatusForbidden},
}

// respondError maps a service error to its HTTP status. Unknown errors are
// logged and reported as a generic 500 with the given fallback message.
func respondError(c *gin.Context, err error, fallback string) {
	for _, m := range errStatus {
		if errors.Is(err, m.err) {
			abortWithError(c, m.status, err.Error())
			return
		}
	}
	log.Errorf("%s %s: %s", c.Request.Method, c.FullPath(), err)
	_ = c.Error(err)
	abortWithError(c, http.StatusInternalServerError, fallback)
}

// pathID parses the named path parameter as an object id. On failure it
// writes a 400 and returns false.
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// currentUser returns the authenticated caller. On failure it writes a 401
// and returns false.
func currentUser(c *gin.Context) (primitive.ObjectID, bool) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	return userID, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return false
	}
	return true
}

type uploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}
