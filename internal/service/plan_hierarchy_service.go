package service

import (
	"context"
	"errors"
	"trainwise/fitness-app/internal/domain"
	"trainwise/fitness-app/internal/progress"
	"trainwise/fitness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrPlanNodeNotFound = errors.New("plan item not found")
)

type WeekInput struct {
	WeekNumber  int    `json:"week_number" validate:"required,min=1"`
	Description string `json:"description" validate:"max=2000"`
}

type UpdateWeekInput struct {
	WeekNumber  *int    `json:"week_number" validate:"omitempty,min=1"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type DayInput struct {
	DayNumber int    `json:"day_number" validate:"required,min=1"`
	Title     string `json:"title" validate:"max=200"`
	IsRestDay bool   `json:"is_rest_day"`
}

type UpdateDayInput struct {
	DayNumber *int    `json:"day_number" validate:"omitempty,min=1"`
	Title     *string `json:"title" validate:"omitempty,max=200"`
	IsRestDay *bool   `json:"is_rest_day"`
}

type SessionInput struct {
	OrderIndex int    `json:"order_index" validate:"min=0"`
	Title      string `json:"title" validate:"max=200"`
	Notes      string `json:"notes" validate:"max=2000"`
}

type UpdateSessionInput struct {
	OrderIndex *int    `json:"order_index" validate:"omitempty,min=0"`
	Title      *string `json:"title" validate:"omitempty,max=200"`
	Notes      *string `json:"notes" validate:"omitempty,max=2000"`
}

type SessionExerciseInput struct {
	ExerciseID     string `json:"exercise_id" validate:"required,len=24,hexadecimal"`
	OrderIndex     int    `json:"order_index" validate:"min=0"`
	ExecutionGroup int    `json:"execution_group" validate:"min=0"`
	Notes          string `json:"notes" validate:"max=2000"`
}

type UpdateSessionExerciseInput struct {
	OrderIndex     *int    `json:"order_index" validate:"omitempty,min=0"`
	ExecutionGroup *int    `json:"execution_group" validate:"omitempty,min=0"`
	Notes          *string `json:"notes" validate:"omitempty,max=2000"`
}

type SetInput struct {
	SetNumber       int            `json:"set_number" validate:"required,min=1"`
	SetType         domain.SetType `json:"set_type" validate:"omitempty,oneof=normal warmup pyramid drop failure"`
	Reps            *int           `json:"reps" validate:"omitempty,min=0"`
	Weight          *float64       `json:"weight" validate:"omitempty,min=0"`
	RestSeconds     *int           `json:"rest_seconds" validate:"omitempty,min=0"`
	DurationSeconds *int           `json:"duration_seconds" validate:"omitempty,min=0"`
}

type UpdateSetInput struct {
	SetNumber       *int            `json:"set_number" validate:"omitempty,min=1"`
	SetType         *domain.SetType `json:"set_type" validate:"omitempty,oneof=normal warmup pyramid drop failure"`
	Reps            *int            `json:"reps" validate:"omitempty,min=0"`
	Weight          *float64        `json:"weight" validate:"omitempty,min=0"`
	RestSeconds     *int            `json:"rest_seconds" validate:"omitempty,min=0"`
	DurationSeconds *int            `json:"duration_seconds" validate:"omitempty,min=0"`
}

// PlanHierarchyService edits the weeks/days/sessions/exercises/sets of a plan.
// Only the plan's creator may change its structure. Deleting a node removes
// its descendants; ordering numbers of the remaining siblings are left as they are.
type PlanHierarchyService interface {
	AddWeek(ctx context.Context, actorID, planID primitive.ObjectID, in WeekInput) (*domain.PlanWeek, error)
	UpdateWeek(ctx context.Context, actorID, weekID primitive.ObjectID, in UpdateWeekInput) error
	DeleteWeek(ctx context.Context, actorID, weekID primitive.ObjectID) error

	AddDay(ctx context.Context, actorID, weekID primitive.ObjectID, in DayInput) (*domain.PlanDay, error)
	UpdateDay(ctx context.Context, actorID, dayID primitive.ObjectID, in UpdateDayInput) error
	DeleteDay(ctx context.Context, actorID, dayID primitive.ObjectID) error

	AddSession(ctx context.Context, actorID, dayID primitive.ObjectID, in SessionInput) (*domain.PlanSession, error)
	UpdateSession(ctx context.Context, actorID, sessionID primitive.ObjectID, in UpdateSessionInput) error
	DeleteSession(ctx context.Context, actorID, sessionID primitive.ObjectID) error

	AddSessionExercise(ctx context.Context, actorID, sessionID primitive.ObjectID, in SessionExerciseInput) (*domain.PlanSessionExercise, error)
	UpdateSessionExercise(ctx context.Context, actorID, entryID primitive.ObjectID, in UpdateSessionExerciseInput) error
	DeleteSessionExercise(ctx context.Context, actorID, entryID primitive.ObjectID) error

	AddSet(ctx context.Context, actorID, entryID primitive.ObjectID, in SetInput) (*domain.PlanSessionExerciseSet, error)
	UpdateSet(ctx context.Context, actorID, setID primitive.ObjectID, in UpdateSetInput) error
	DeleteSet(ctx context.Context, actorID, setID primitive.ObjectID) error

	// GetGroupedSets returns the sets of one exercise entry with consecutive
	// pyramid sets merged into a single group.
	GetGroupedSets(ctx context.Context, viewerID, entryID primitive.ObjectID) ([]progress.SetGroup, error)
}

type planHierarchyService struct {
	planRepo      repository.PlanRepository
	hierarchyRepo repository.PlanHierarchyRepository
	exerciseRepo  repository.ExerciseRepository
}

func NewPlanHierarchyService(planRepo repository.PlanRepository, hierarchyRepo repository.PlanHierarchyRepository, exerciseRepo repository.ExerciseRepository) PlanHierarchyService {
	return &planHierarchyService{
		planRepo:      planRepo,
		hierarchyRepo: hierarchyRepo,
		exerciseRepo:  exerciseRepo,
	}
}

// ownedPlanOf resolves the plan of a hierarchy node and checks the actor owns it.
func (s *planHierarchyService) ownedPlanOf(ctx context.Context, actorID primitive.ObjectID, level repository.Level, id primitive.ObjectID) (primitive.ObjectID, error) {
	if err := requireActor(actorID); err != nil {
		return primitive.NilObjectID, err
	}
	planID, err := s.hierarchyRepo.PlanIDOf(ctx, level, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return primitive.NilObjectID, ErrPlanNodeNotFound
		}
		return primitive.NilObjectID, storeError("resolve plan of "+string(level), err)
	}
	if _, err := loadPlanForOwner(ctx, s.planRepo, planID, actorID); err != nil {
		return primitive.NilObjectID, err
	}
	return planID, nil
}

func (s *planHierarchyService) update(ctx context.Context, actorID primitive.ObjectID, level repository.Level, id primitive.ObjectID, fields repository.Fields) error {
	if len(fields) == 0 {
		return ErrEmptyUpdate
	}
	if _, err := s.ownedPlanOf(ctx, actorID, level, id); err != nil {
		return err
	}
	if err := s.hierarchyRepo.Update(ctx, level, id, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNodeNotFound
		}
		return storeError("update "+string(level), err)
	}
	return nil
}

func (s *planHierarchyService) delete(ctx context.Context, actorID primitive.ObjectID, level repository.Level, id primitive.ObjectID) error {
	if _, err := s.ownedPlanOf(ctx, actorID, level, id); err != nil {
		return err
	}
	if err := s.hierarchyRepo.Delete(ctx, level, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNodeNotFound
		}
		return storeError("delete "+string(level), err)
	}
	return nil
}

// --- Weeks ---

func (s *planHierarchyService) AddWeek(ctx context.Context, actorID, planID primitive.ObjectID, in WeekInput) (*domain.PlanWeek, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if _, err := loadPlanForOwner(ctx, s.planRepo, planID, actorID); err != nil {
		return nil, err
	}
	week := &domain.PlanWeek{PlanID: planID, WeekNumber: in.WeekNumber, Description: in.Description}
	id, err := s.hierarchyRepo.CreateWeek(ctx, week)
	if err != nil {
		return nil, storeError("create plan week", err)
	}
	week.ID = id
	return week, nil
}

func (s *planHierarchyService) UpdateWeek(ctx context.Context, actorID, weekID primitive.ObjectID, in UpdateWeekInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	fields := repository.Fields{}
	setIf(fields, "week_number", in.WeekNumber)
	setIf(fields, "description", in.Description)
	return s.update(ctx, actorID, repository.LevelWeek, weekID, fields)
}

func (s *planHierarchyService) DeleteWeek(ctx context.Context, actorID, weekID primitive.ObjectID) error {
	return s.delete(ctx, actorID, repository.LevelWeek, weekID)
}

// --- Days ---

func (s *planHierarchyService) AddDay(ctx context.Context, actorID, weekID primitive.ObjectID, in DayInput) (*domain.PlanDay, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	planID, err := s.ownedPlanOf(ctx, actorID, repository.LevelWeek, weekID)
	if err != nil {
		return nil, err
	}
	day := &domain.PlanDay{
		PlanID:     planID,
		PlanWeekID: weekID,
		DayNumber:  in.DayNumber,
		Title:      in.Title,
		IsRestDay:  in.IsRestDay,
	}
	id, err := s.hierarchyRepo.CreateDay(ctx, day)
	if err != nil {
		return nil, storeError("create plan day", err)
	}
	day.ID = id
	return day, nil
}

func (s *planHierarchyService) UpdateDay(ctx context.Context, actorID, dayID primitive.ObjectID, in UpdateDayInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	fields := repository.Fields{}
	setIf(fields, "day_number", in.DayNumber)
	setIf(fields, "title", in.Title)
	setIf(fields, "is_rest_day", in.IsRestDay)
	return s.update(ctx, actorID, repository.LevelDay, dayID, fields)
}

func (s *planHierarchyService) DeleteDay(ctx context.Context, actorID, dayID primitive.ObjectID) error {
	return s.delete(ctx, actorID, repository.LevelDay, dayID)
}

// --- Sessions ---

func (s *planHierarchyService) AddSession(ctx context.Context, actorID, dayID primitive.ObjectID, in SessionInput) (*domain.PlanSession, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	planID, err := s.ownedPlanOf(ctx, actorID, repository.LevelDay, dayID)
	if err != nil {
		return nil, err
	}
	session := &domain.PlanSession{
		PlanID:     planID,
		PlanDayID:  dayID,
		OrderIndex: in.OrderIndex,
		Title:      in.Title,
		Notes:      in.Notes,
	}
	id, err := s.hierarchyRepo.CreateSession(ctx, session)
	if err != nil {
		return nil, storeError("create plan session", err)
	}
	session.ID = id
	return session, nil
}

func (s *planHierarchyService) UpdateSession(ctx context.Context, actorID, sessionID primitive.ObjectID, in UpdateSessionInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	fields := repository.Fields{}
	setIf(fields, "order_index", in.OrderIndex)
	setIf(fields, "title", in.Title)
	setIf(fields, "notes", in.Notes)
	return s.update(ctx, actorID, repository.LevelSession, sessionID, fields)
}

func (s *planHierarchyService) DeleteSession(ctx context.Context, actorID, sessionID primitive.ObjectID) error {
	return s.delete(ctx, actorID, repository.LevelSession, sessionID)
}

// --- Session exercises ---

func (s *planHierarchyService) AddSessionExercise(ctx context.Context, actorID, sessionID primitive.ObjectID, in SessionExerciseInput) (*domain.PlanSessionExercise, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	planID, err := s.ownedPlanOf(ctx, actorID, repository.LevelSession, sessionID)
	if err != nil {
		return nil, err
	}
	exerciseID, _ := primitive.ObjectIDFromHex(in.ExerciseID)
	if _, err := s.exerciseRepo.GetByID(ctx, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, storeError("get exercise", err)
	}

	entry := &domain.PlanSessionExercise{
		PlanID:         planID,
		PlanSessionID:  sessionID,
		ExerciseID:     exerciseID,
		OrderIndex:     in.OrderIndex,
		ExecutionGroup: in.ExecutionGroup,
		Notes:          in.Notes,
	}
	id, err := s.hierarchyRepo.CreateSessionExercise(ctx, entry)
	if err != nil {
		return nil, storeError("create plan session exercise", err)
	}
	entry.ID = id
	return entry, nil
}

func (s *planHierarchyService) UpdateSessionExercise(ctx context.Context, actorID, entryID primitive.ObjectID, in UpdateSessionExerciseInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	fields := repository.Fields{}
	setIf(fields, "order_index", in.OrderIndex)
	setIf(fields, "execution_group", in.ExecutionGroup)
	setIf(fields, "notes", in.Notes)
	return s.update(ctx, actorID, repository.LevelExercise, entryID, fields)
}

func (s *planHierarchyService) DeleteSessionExercise(ctx context.Context, actorID, entryID primitive.ObjectID) error {
	return s.delete(ctx, actorID, repository.LevelExercise, entryID)
}

// --- Sets ---

func (s *planHierarchyService) AddSet(ctx context.Context, actorID, entryID primitive.ObjectID, in SetInput) (*domain.PlanSessionExerciseSet, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	planID, err := s.ownedPlanOf(ctx, actorID, repository.LevelExercise, entryID)
	if err != nil {
		return nil, err
	}
	setType := in.SetType
	if setType == "" {
		setType = domain.SetTypeNormal
	}
	set := &domain.PlanSessionExerciseSet{
		PlanID:                planID,
		PlanSessionExerciseID: entryID,
		SetNumber:             in.SetNumber,
		SetType:               setType,
		Reps:                  in.Reps,
		Weight:                in.Weight,
		RestSeconds:           in.RestSeconds,
		DurationSeconds:       in.DurationSeconds,
	}
	id, err := s.hierarchyRepo.CreateSet(ctx, set)
	if err != nil {
		return nil, storeError("create plan set", err)
	}
	set.ID = id
	return set, nil
}

func (s *planHierarchyService) UpdateSet(ctx context.Context, actorID, setID primitive.ObjectID, in UpdateSetInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	fields := repository.Fields{}
	setIf(fields, "set_number", in.SetNumber)
	setIf(fields, "set_type", in.SetType)
	setIf(fields, "reps", in.Reps)
	setIf(fields, "weight", in.Weight)
	setIf(fields, "rest_seconds", in.RestSeconds)
	setIf(fields, "duration_seconds", in.DurationSeconds)
	return s.update(ctx, actorID, repository.LevelSet, setID, fields)
}

func (s *planHierarchyService) DeleteSet(ctx context.Context, actorID, setID primitive.ObjectID) error {
	return s.delete(ctx, actorID, repository.LevelSet, setID)
}

func (s *planHierarchyService) GetGroupedSets(ctx context.Context, viewerID, entryID primitive.ObjectID) ([]progress.SetGroup, error) {
	planID, err := s.hierarchyRepo.PlanIDOf(ctx, repository.LevelExercise, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNodeNotFound
		}
		return nil, storeError("resolve plan of session exercise", err)
	}
	if _, err := loadVisiblePlan(ctx, s.planRepo, planID, viewerID); err != nil {
		return nil, err
	}
	sets, err := s.hierarchyRepo.ListSetsForEntry(ctx, entryID)
	if err != nil {
		return nil, storeError("list sets", err)
	}
	return progress.GroupConsecutiveSets(sets), nil
}
