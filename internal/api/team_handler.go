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

// TeamHandler serves teams, their invitations and invitation emails.
type TeamHandler struct {
	teamService service.TeamService
	queryCache  *cache.QueryCache
	metrics     *metrics.Manager
}

func NewTeamHandler(teamService service.TeamService, queryCache *cache.QueryCache, m *metrics.Manager) *TeamHandler {
	return &TeamHandler{teamService: teamService, queryCache: queryCache, metrics: m}
}

type RespondInvitationRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

// CreateTeam godoc
// @Summary Create a team with yourself as its first member
// @Tags Teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param team body service.CreateTeamInput true "Team"
// @Success 201 {object} domain.Team
// @Router /teams [post]
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req service.CreateTeamInput
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teamService.CreateTeam(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Failed to create team.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyTeams)
	c.JSON(http.StatusCreated, team)
}

func (h *TeamHandler) ListMyTeams(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	key := cache.NewKey(cache.FamilyTeams, "mine", map[string]any{"user": userID})
	teams, err := cache.Remember(c.Request.Context(), h.queryCache, key, 0,
		func(ctx context.Context) ([]domain.Team, error) {
			return h.teamService.ListMyTeams(ctx, userID)
		})
	if err != nil {
		respondError(c, err, "Failed to retrieve teams.")
		return
	}

	c.JSON(http.StatusOK, teams)
}

// InviteMember godoc
// @Summary Invite someone to a team you belong to
// @Tags Teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param teamId path string true "Team ID"
// @Param invitation body service.InviteMemberInput true "Invitee email"
// @Success 201 {object} domain.TeamInvitation
// @Failure 403 {object} gin.H "Not a team member"
// @Failure 404 {object} gin.H "Team not found"
// @Router /teams/{teamId}/invitations [post]
func (h *TeamHandler) InviteMember(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	teamID, ok := pathID(c, "teamId")
	if !ok {
		return
	}
	var req service.InviteMemberInput
	if !bindJSON(c, &req) {
		return
	}

	invitation, err := h.teamService.InviteMember(c.Request.Context(), userID, teamID, req)
	if err != nil {
		respondError(c, err, "Failed to invite member.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyInvitations)
	c.JSON(http.StatusCreated, invitation)
}

func (h *TeamHandler) ListInvitations(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	teamID, ok := pathID(c, "teamId")
	if !ok {
		return
	}

	key := cache.NewKey(cache.FamilyInvitations, "list", map[string]any{"team": teamID, "viewer": userID})
	invitations, err := cache.Remember(c.Request.Context(), h.queryCache, key, 0,
		func(ctx context.Context) ([]domain.TeamInvitation, error) {
			return h.teamService.ListInvitations(ctx, userID, teamID)
		})
	if err != nil {
		respondError(c, err, "Failed to retrieve invitations.")
		return
	}

	c.JSON(http.StatusOK, invitations)
}

// RespondToInvitation godoc
// @Summary Accept or decline an invitation sent to your email
// @Tags Teams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invitationId path string true "Invitation ID"
// @Param answer body RespondInvitationRequest true "Answer"
// @Success 200 {object} domain.TeamInvitation
// @Failure 409 {object} gin.H "Invitation already answered"
// @Router /invitations/{invitationId}/respond [post]
func (h *TeamHandler) RespondToInvitation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	invitationID, ok := pathID(c, "invitationId")
	if !ok {
		return
	}
	var req RespondInvitationRequest
	if !bindJSON(c, &req) {
		return
	}

	invitation, err := h.teamService.RespondToInvitation(c.Request.Context(), userID, invitationID, *req.Accept)
	if err != nil {
		respondError(c, err, "Failed to answer invitation.")
		return
	}

	h.queryCache.Invalidate(cache.FamilyInvitations)
	c.JSON(http.StatusOK, invitation)
}

// SendInvitationEmail godoc
// @Summary Email an invitation to its invitee
// @Description Any failure is reported as 500 with the underlying error message.
// @Tags Teams
// @Produce json
// @Security BearerAuth
// @Param invitationId path string true "Invitation ID"
// @Success 200 {object} gin.H "{\"sent\": true}"
// @Failure 500 {object} gin.H "{\"error\": \"<message>\"}"
// @Router /invitations/{invitationId}/email [post]
func (h *TeamHandler) SendInvitationEmail(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	invitationID, ok := pathID(c, "invitationId")
	if !ok {
		return
	}

	if err := h.teamService.SendInvitationEmail(c.Request.Context(), userID, invitationID); err != nil {
		h.countEmail("failed")
		_ = c.Error(err)
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	h.countEmail("sent")
	c.JSON(http.StatusOK, gin.H{"sent": true})
}

func (h *TeamHandler) countEmail(outcome string) {
	if h.metrics != nil {
		h.metrics.CounterInvitationEmails.WithLabelValues(outcome).Inc()
	}
}
