package service

import (
	"context"
	"errors"
	"fmt"
	"trainwise/fitness-app/internal/domain"
	"trainwise/fitness-app/internal/progress"
	"trainwise/fitness-app/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/multierr"
)

var (
	ErrNotTeamMember = errors.New("you are not a member of this team")
)

type CreatePlanInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	Difficulty  int     `json:"difficulty" validate:"required,min=1,max=5"`
	Sport       string  `json:"sport" validate:"max=50"`
	IsPrivate   bool    `json:"is_private"`
	TeamID      *string `json:"team_id" validate:"omitempty,len=24,hexadecimal"`
}

type UpdatePlanInput struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Difficulty  *int    `json:"difficulty" validate:"omitempty,min=1,max=5"`
	Sport       *string `json:"sport" validate:"omitempty,max=50"`
	IsPrivate   *bool   `json:"is_private"`
}

type PlanListParams struct {
	Mine       bool   `form:"mine"`
	Sport      string `form:"sport"`
	Difficulty int    `form:"difficulty" validate:"omitempty,min=1,max=5"`
	Search     string `form:"search"`
	TeamID     string `form:"team_id" validate:"omitempty,len=24,hexadecimal"`
	Page       int    `form:"page" validate:"omitempty,min=1"`
	Limit      int    `form:"limit" validate:"omitempty,min=1,max=100"`
}

// PlanSummary is the rolled-up view of a plan plus the viewer's progress through it.
type PlanSummary struct {
	PlanID            primitive.ObjectID `json:"plan_id"`
	Rollup            progress.Rollup    `json:"rollup"`
	CompletedSessions int                `json:"completed_sessions"`
	CompletionPercent float64            `json:"completion_percent"`
}

type PlanService interface {
	CreatePlan(ctx context.Context, actorID primitive.ObjectID, in CreatePlanInput) (*domain.Plan, error)
	GetPlan(ctx context.Context, viewerID, planID primitive.ObjectID) (*domain.Plan, error)
	ListPlans(ctx context.Context, viewerID primitive.ObjectID, params PlanListParams) ([]domain.Plan, error)
	UpdatePlan(ctx context.Context, actorID, planID primitive.ObjectID, in UpdatePlanInput) (*domain.Plan, error)
	DeletePlan(ctx context.Context, actorID, planID primitive.ObjectID) error
	LikePlan(ctx context.Context, viewerID, planID primitive.ObjectID) error
	ForkPlan(ctx context.Context, actorID, planID primitive.ObjectID) (*domain.Plan, error)
	GetPlanHierarchy(ctx context.Context, viewerID, planID primitive.ObjectID) (*domain.PlanHierarchy, error)
	GetPlanSummary(ctx context.Context, viewerID, planID primitive.ObjectID) (*PlanSummary, error)
}

type planService struct {
	planRepo      repository.PlanRepository
	hierarchyRepo repository.PlanHierarchyRepository
	goalRepo      repository.GoalRepository
	teamRepo      repository.TeamRepository
	logRepo       repository.SessionLogRepository
}

func NewPlanService(
	planRepo repository.PlanRepository,
	hierarchyRepo repository.PlanHierarchyRepository,
	goalRepo repository.GoalRepository,
	teamRepo repository.TeamRepository,
	logRepo repository.SessionLogRepository,
) PlanService {
	return &planService{
		planRepo:      planRepo,
		hierarchyRepo: hierarchyRepo,
		goalRepo:      goalRepo,
		teamRepo:      teamRepo,
		logRepo:       logRepo,
	}
}

func (s *planService) CreatePlan(ctx context.Context, actorID primitive.ObjectID, in CreatePlanInput) (*domain.Plan, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	plan := &domain.Plan{
		CreatedBy:   actorID,
		Title:       in.Title,
		Description: in.Description,
		Difficulty:  in.Difficulty,
		Sport:       in.Sport,
		IsPrivate:   in.IsPrivate,
	}
	if in.TeamID != nil {
		teamID, _ := primitive.ObjectIDFromHex(*in.TeamID)
		if err := s.requireTeamMember(ctx, teamID, actorID); err != nil {
			return nil, err
		}
		plan.TeamID = &teamID
	}

	id, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, storeError("create plan", err)
	}
	plan.ID = id
	log.Infof("plan %s created by %s", id.Hex(), actorID.Hex())
	return plan, nil
}

func (s *planService) requireTeamMember(ctx context.Context, teamID, userID primitive.ObjectID) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTeamNotFound
		}
		return storeError("get team", err)
	}
	if !isTeamMember(team, userID) {
		return ErrNotTeamMember
	}
	return nil
}

// GetPlan returns a visible plan and counts the view. A failed view count is
// logged and otherwise ignored.
func (s *planService) GetPlan(ctx context.Context, viewerID, planID primitive.ObjectID) (*domain.Plan, error) {
	plan, err := loadVisiblePlan(ctx, s.planRepo, planID, viewerID)
	if err != nil {
		return nil, err
	}
	if plan.CreatedBy != viewerID {
		if err := s.planRepo.IncrementCounter(ctx, planID, repository.CounterViews); err != nil {
			log.Warnf("count view of plan %s: %s", planID.Hex(), err)
		} else {
			plan.ViewCount++
		}
	}
	return plan, nil
}

func (s *planService) ListPlans(ctx context.Context, viewerID primitive.ObjectID, params PlanListParams) ([]domain.Plan, error) {
	if err := validateInput(params); err != nil {
		return nil, err
	}
	filter := repository.PlanFilter{
		ViewerID:   viewerID,
		OnlyMine:   params.Mine,
		Sport:      params.Sport,
		Difficulty: params.Difficulty,
		Search:     params.Search,
		Page:       repository.Page{Page: params.Page, Limit: params.Limit}.Normalize(),
	}
	if params.Mine {
		if err := requireActor(viewerID); err != nil {
			return nil, err
		}
	}
	if params.TeamID != "" {
		teamID, _ := primitive.ObjectIDFromHex(params.TeamID)
		filter.TeamID = &teamID
	}

	plans, err := s.planRepo.List(ctx, filter)
	if err != nil {
		return nil, storeError("list plans", err)
	}
	return plans, nil
}

func (s *planService) UpdatePlan(ctx context.Context, actorID, planID primitive.ObjectID, in UpdatePlanInput) (*domain.Plan, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	fields := repository.Fields{}
	setIf(fields, "title", in.Title)
	setIf(fields, "description", in.Description)
	setIf(fields, "difficulty", in.Difficulty)
	setIf(fields, "sport", in.Sport)
	setIf(fields, "is_private", in.IsPrivate)
	if len(fields) == 0 {
		return nil, ErrEmptyUpdate
	}

	err := s.planRepo.UpdateOwned(ctx, planID, actorID, fields)
	if err := ownedWriteError(err, ErrPlanAccessDenied, "update plan"); err != nil {
		return nil, err
	}
	return loadPlan(ctx, s.planRepo, planID)
}

// DeletePlan removes the plan row first, so a non-owner never touches the
// hierarchy, then its structure and goals.
func (s *planService) DeletePlan(ctx context.Context, actorID, planID primitive.ObjectID) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	err := s.planRepo.DeleteOwned(ctx, planID, actorID)
	if err := ownedWriteError(err, ErrPlanAccessDenied, "delete plan"); err != nil {
		return err
	}

	err = multierr.Combine(
		s.hierarchyRepo.DeleteByPlan(ctx, planID),
		s.goalRepo.DeleteByPlan(ctx, planID),
	)
	if err != nil {
		return storeError("delete plan contents", err)
	}
	return nil
}

func (s *planService) LikePlan(ctx context.Context, viewerID, planID primitive.ObjectID) error {
	if err := requireActor(viewerID); err != nil {
		return err
	}
	if _, err := loadVisiblePlan(ctx, s.planRepo, planID, viewerID); err != nil {
		return err
	}
	if err := s.planRepo.IncrementCounter(ctx, planID, repository.CounterLikes); err != nil {
		return storeError("like plan", err)
	}
	return nil
}

// ForkPlan deep-copies a visible plan and its whole hierarchy into a new
// private plan owned by the actor. Goals are not copied. If any insert fails,
// the new plan and everything created under it are removed again.
func (s *planService) ForkPlan(ctx context.Context, actorID, planID primitive.ObjectID) (*domain.Plan, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	source, err := loadVisiblePlan(ctx, s.planRepo, planID, actorID)
	if err != nil {
		return nil, err
	}
	tree, err := s.loadTree(ctx, source.ID)
	if err != nil {
		return nil, err
	}

	fork := &domain.Plan{
		CreatedBy:   actorID,
		ForkedFrom:  &source.ID,
		Title:       source.Title,
		Description: source.Description,
		Difficulty:  source.Difficulty,
		Sport:       source.Sport,
		IsPrivate:   true,
	}
	forkID, err := s.planRepo.Create(ctx, fork)
	if err != nil {
		return nil, storeError("create fork", err)
	}
	fork.ID = forkID

	if err := s.copyTree(ctx, tree, forkID); err != nil {
		cleanupCtx := context.WithoutCancel(ctx)
		cleanupErr := multierr.Combine(
			s.hierarchyRepo.DeleteByPlan(cleanupCtx, forkID),
			s.planRepo.Delete(cleanupCtx, forkID),
		)
		if cleanupErr != nil {
			log.Errorf("cleanup of fork %s failed: %s", forkID.Hex(), cleanupErr)
		}
		return nil, multierr.Append(fmt.Errorf("copy plan structure: %w", err), cleanupErr)
	}

	if err := s.planRepo.IncrementCounter(ctx, source.ID, repository.CounterForks); err != nil {
		log.Warnf("count fork of plan %s: %s", source.ID.Hex(), err)
	}
	log.Infof("plan %s forked into %s by %s", source.ID.Hex(), forkID.Hex(), actorID.Hex())
	return fork, nil
}

// copyTree inserts every level of tree under planID, top down, remapping
// parent ids as it goes. Rows whose parent was not copied are skipped.
func (s *planService) copyTree(ctx context.Context, tree planRows, planID primitive.ObjectID) error {
	ids := map[primitive.ObjectID]primitive.ObjectID{}
	parent := func(kind string, row, old primitive.ObjectID) (primitive.ObjectID, bool) {
		id, ok := ids[old]
		if !ok {
			log.Warnf("fork into plan %s: skipping orphan %s %s", planID.Hex(), kind, row.Hex())
		}
		return id, ok
	}

	for _, w := range tree.weeks {
		old := w.ID
		w.ID, w.PlanID = primitive.NilObjectID, planID
		id, err := s.hierarchyRepo.CreateWeek(ctx, &w)
		if err != nil {
			return err
		}
		ids[old] = id
	}
	for _, d := range tree.days {
		weekID, ok := parent("day", d.ID, d.PlanWeekID)
		if !ok {
			continue
		}
		old := d.ID
		d.ID, d.PlanID, d.PlanWeekID = primitive.NilObjectID, planID, weekID
		id, err := s.hierarchyRepo.CreateDay(ctx, &d)
		if err != nil {
			return err
		}
		ids[old] = id
	}
	for _, ps := range tree.sessions {
		dayID, ok := parent("session", ps.ID, ps.PlanDayID)
		if !ok {
			continue
		}
		old := ps.ID
		ps.ID, ps.PlanID, ps.PlanDayID = primitive.NilObjectID, planID, dayID
		id, err := s.hierarchyRepo.CreateSession(ctx, &ps)
		if err != nil {
			return err
		}
		ids[old] = id
	}
	for _, e := range tree.exercises {
		sessionID, ok := parent("session exercise", e.ID, e.PlanSessionID)
		if !ok {
			continue
		}
		old := e.ID
		e.ID, e.PlanID, e.PlanSessionID = primitive.NilObjectID, planID, sessionID
		id, err := s.hierarchyRepo.CreateSessionExercise(ctx, &e)
		if err != nil {
			return err
		}
		ids[old] = id
	}
	for _, set := range tree.sets {
		entryID, ok := parent("set", set.ID, set.PlanSessionExerciseID)
		if !ok {
			continue
		}
		set.ID, set.PlanID, set.PlanSessionExerciseID = primitive.NilObjectID, planID, entryID
		if _, err := s.hierarchyRepo.CreateSet(ctx, &set); err != nil {
			return err
		}
	}
	return nil
}

func (s *planService) GetPlanHierarchy(ctx context.Context, viewerID, planID primitive.ObjectID) (*domain.PlanHierarchy, error) {
	plan, err := loadVisiblePlan(ctx, s.planRepo, planID, viewerID)
	if err != nil {
		return nil, err
	}
	tree, err := s.loadTree(ctx, planID)
	if err != nil {
		return nil, err
	}
	return &domain.PlanHierarchy{Plan: *plan, Weeks: buildHierarchy(tree)}, nil
}

func (s *planService) GetPlanSummary(ctx context.Context, viewerID, planID primitive.ObjectID) (*PlanSummary, error) {
	if _, err := loadVisiblePlan(ctx, s.planRepo, planID, viewerID); err != nil {
		return nil, err
	}
	tree, err := s.loadTree(ctx, planID)
	if err != nil {
		return nil, err
	}
	rollup := progress.RollupWeeks(buildHierarchy(tree))

	summary := &PlanSummary{PlanID: planID, Rollup: rollup}
	if viewerID == primitive.NilObjectID {
		return summary, nil
	}
	done, err := s.logRepo.CountCompletedSessions(ctx, viewerID, planID)
	if err != nil {
		return nil, storeError("count completed sessions", err)
	}
	summary.CompletedSessions = done
	summary.CompletionPercent = progress.CompletionPercent(done, rollup.TotalSessions)
	return summary, nil
}

// planRows holds the flat rows of every hierarchy level of one plan, each
// list already sorted by its ordering field.
type planRows struct {
	weeks     []domain.PlanWeek
	days      []domain.PlanDay
	sessions  []domain.PlanSession
	exercises []domain.PlanSessionExercise
	sets      []domain.PlanSessionExerciseSet
}

func (s *planService) loadTree(ctx context.Context, planID primitive.ObjectID) (planRows, error) {
	var (
		rows planRows
		err  error
	)
	if rows.weeks, err = s.hierarchyRepo.ListWeeks(ctx, planID); err != nil {
		return rows, storeError("list plan weeks", err)
	}
	if rows.days, err = s.hierarchyRepo.ListDays(ctx, planID); err != nil {
		return rows, storeError("list plan days", err)
	}
	if rows.sessions, err = s.hierarchyRepo.ListSessions(ctx, planID); err != nil {
		return rows, storeError("list plan sessions", err)
	}
	if rows.exercises, err = s.hierarchyRepo.ListSessionExercises(ctx, planID); err != nil {
		return rows, storeError("list plan session exercises", err)
	}
	if rows.sets, err = s.hierarchyRepo.ListSets(ctx, planID); err != nil {
		return rows, storeError("list plan sets", err)
	}
	return rows, nil
}

// buildHierarchy nests the flat rows bottom up. Rows whose parent is missing
// are dropped. Input order is kept at every level.
func buildHierarchy(rows planRows) []domain.WeekNode {
	setsByEntry := map[primitive.ObjectID][]domain.PlanSessionExerciseSet{}
	for _, set := range rows.sets {
		setsByEntry[set.PlanSessionExerciseID] = append(setsByEntry[set.PlanSessionExerciseID], set)
	}

	entriesBySession := map[primitive.ObjectID][]domain.SessionExerciseNode{}
	for _, e := range rows.exercises {
		node := domain.SessionExerciseNode{PlanSessionExercise: e, Sets: setsByEntry[e.ID]}
		entriesBySession[e.PlanSessionID] = append(entriesBySession[e.PlanSessionID], node)
	}

	sessionsByDay := map[primitive.ObjectID][]domain.SessionNode{}
	for _, ps := range rows.sessions {
		node := domain.SessionNode{PlanSession: ps, Exercises: entriesBySession[ps.ID]}
		sessionsByDay[ps.PlanDayID] = append(sessionsByDay[ps.PlanDayID], node)
	}

	daysByWeek := map[primitive.ObjectID][]domain.DayNode{}
	for _, d := range rows.days {
		node := domain.DayNode{PlanDay: d, Sessions: sessionsByDay[d.ID]}
		daysByWeek[d.PlanWeekID] = append(daysByWeek[d.PlanWeekID], node)
	}

	weeks := make([]domain.WeekNode, 0, len(rows.weeks))
	for _, w := range rows.weeks {
		weeks = append(weeks, domain.WeekNode{PlanWeek: w, Days: daysByWeek[w.ID]})
	}
	return weeks
}
