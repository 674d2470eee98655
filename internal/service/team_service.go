package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"trainwise/fitness-app/internal/domain"
	"trainwise/fitness-app/internal/email"
	"trainwise/fitness-app/internal/render"
	"trainwise/fitness-app/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrTeamNotFound         = errors.New("team not found")
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrInvitationNotPending = errors.New("invitation not found or already answered")
)

type CreateTeamInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
}

type InviteMemberInput struct {
	Email string `json:"email" validate:"required,email"`
}

type TeamService interface {
	CreateTeam(ctx context.Context, actorID primitive.ObjectID, in CreateTeamInput) (*domain.Team, error)
	ListMyTeams(ctx context.Context, actorID primitive.ObjectID) ([]domain.Team, error)
	InviteMember(ctx context.Context, actorID, teamID primitive.ObjectID, in InviteMemberInput) (*domain.TeamInvitation, error)
	ListInvitations(ctx context.Context, actorID, teamID primitive.ObjectID) ([]domain.TeamInvitation, error)
	// RespondToInvitation accepts or declines a pending invitation addressed to
	// the actor's email. Accepting adds the actor to the team.
	RespondToInvitation(ctx context.Context, actorID, invitationID primitive.ObjectID, accept bool) (*domain.TeamInvitation, error)
	SendInvitationEmail(ctx context.Context, actorID, invitationID primitive.ObjectID) error
}

type teamService struct {
	teamRepo    repository.TeamRepository
	profileRepo repository.ProfileRepository
	mailer      email.Mailer
	appBaseURL  string
}

func NewTeamService(teamRepo repository.TeamRepository, profileRepo repository.ProfileRepository, mailer email.Mailer, appBaseURL string) TeamService {
	return &teamService{
		teamRepo:    teamRepo,
		profileRepo: profileRepo,
		mailer:      mailer,
		appBaseURL:  strings.TrimRight(appBaseURL, "/"),
	}
}

func isTeamMember(team *domain.Team, userID primitive.ObjectID) bool {
	return team.CreatedBy == userID || slices.Contains(team.MemberIDs, userID)
}

func (s *teamService) loadTeamForMember(ctx context.Context, teamID, actorID primitive.ObjectID) (*domain.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, storeError("get team", err)
	}
	if !isTeamMember(team, actorID) {
		return nil, ErrNotTeamMember
	}
	return team, nil
}

func (s *teamService) CreateTeam(ctx context.Context, actorID primitive.ObjectID, in CreateTeamInput) (*domain.Team, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	team := &domain.Team{
		Name:        in.Name,
		Description: in.Description,
		CreatedBy:   actorID,
		MemberIDs:   []primitive.ObjectID{actorID},
	}
	id, err := s.teamRepo.Create(ctx, team)
	if err != nil {
		return nil, storeError("create team", err)
	}
	team.ID = id
	return team, nil
}

func (s *teamService) ListMyTeams(ctx context.Context, actorID primitive.ObjectID) ([]domain.Team, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	teams, err := s.teamRepo.ListByMember(ctx, actorID)
	if err != nil {
		return nil, storeError("list teams", err)
	}
	return teams, nil
}

func (s *teamService) InviteMember(ctx context.Context, actorID, teamID primitive.ObjectID, in InviteMemberInput) (*domain.TeamInvitation, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if _, err := s.loadTeamForMember(ctx, teamID, actorID); err != nil {
		return nil, err
	}

	inv := &domain.TeamInvitation{
		TeamID:    teamID,
		InviterID: actorID,
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Status:    domain.InvitationPending,
	}
	id, err := s.teamRepo.CreateInvitation(ctx, inv)
	if err != nil {
		return nil, storeError("create invitation", err)
	}
	inv.ID = id
	return inv, nil
}

func (s *teamService) ListInvitations(ctx context.Context, actorID, teamID primitive.ObjectID) ([]domain.TeamInvitation, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if _, err := s.loadTeamForMember(ctx, teamID, actorID); err != nil {
		return nil, err
	}
	invitations, err := s.teamRepo.ListInvitations(ctx, teamID)
	if err != nil {
		return nil, storeError("list invitations", err)
	}
	return invitations, nil
}

func (s *teamService) RespondToInvitation(ctx context.Context, actorID, invitationID primitive.ObjectID, accept bool) (*domain.TeamInvitation, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, storeError("get profile", err)
	}
	inv, err := s.loadInvitation(ctx, invitationID)
	if err != nil {
		return nil, err
	}

	status := domain.InvitationDeclined
	if accept {
		status = domain.InvitationAccepted
	}
	err = s.teamRepo.RespondToInvitation(ctx, invitationID, profile.Email, status)
	if err := ownedWriteError(err, ErrInvitationNotPending, "respond to invitation"); err != nil {
		return nil, err
	}
	inv.Status = status

	if accept {
		if err := s.teamRepo.AddMember(ctx, inv.TeamID, actorID); err != nil {
			return nil, storeError("add team member", err)
		}
		log.Infof("user %s joined team %s", actorID.Hex(), inv.TeamID.Hex())
	}
	return inv, nil
}

func (s *teamService) loadInvitation(ctx context.Context, id primitive.ObjectID) (*domain.TeamInvitation, error) {
	inv, err := s.teamRepo.GetInvitation(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, storeError("get invitation", err)
	}
	return inv, nil
}

// SendInvitationEmail looks up the invitation, its team and the inviter, and
// sends the invitee one email. There is no retry.
func (s *teamService) SendInvitationEmail(ctx context.Context, actorID, invitationID primitive.ObjectID) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	inv, err := s.loadInvitation(ctx, invitationID)
	if err != nil {
		return err
	}
	team, err := s.loadTeamForMember(ctx, inv.TeamID, actorID)
	if err != nil {
		return err
	}
	inviter, err := s.profileRepo.GetByID(ctx, inv.InviterID)
	if err != nil {
		return storeError("get inviter", err)
	}

	msg, err := s.invitationMessage(inv, team, inviter)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		log.Errorf("send invitation %s: %s", invitationID.Hex(), err)
		return err
	}
	log.Infof("invitation %s emailed to %s", invitationID.Hex(), inv.Email)
	return nil
}

func (s *teamService) invitationMessage(inv *domain.TeamInvitation, team *domain.Team, inviter *domain.Profile) (email.Message, error) {
	link := fmt.Sprintf("%s/invitations/%s", s.appBaseURL, inv.ID.Hex())
	text := fmt.Sprintf("%s invited you to join the team %q on Trainwise.\n\nOpen %s to accept or decline.",
		inviter.Name, team.Name, link)

	body := fmt.Sprintf("**%s** invited you to join the team **%s** on Trainwise.\n\n[Accept or decline the invitation](%s)",
		escapeMarkdown(inviter.Name), escapeMarkdown(team.Name), link)
	html, err := render.Markdown(body)
	if err != nil {
		return email.Message{}, fmt.Errorf("render invitation email: %w", err)
	}

	return email.Message{
		To:      []string{inv.Email},
		Subject: fmt.Sprintf("You're invited to join %s", team.Name),
		HTML:    html,
		Text:    text,
	}, nil
}

// every ASCII punctuation character may be backslash-escaped in CommonMark
const markdownPunctuation = "!\"#$%&'()*+,-./:;=?@[\\]^_`{|}~"

// escapeMarkdown makes user text render literally inside one paragraph.
// Line breaks become spaces so nothing can start a heading or list.
func escapeMarkdown(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			b.WriteByte(' ')
		case r == '<':
			b.WriteString("&lt;")
		case r == '>':
			b.WriteString("&gt;")
		case strings.ContainsRune(markdownPunctuation, r):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
