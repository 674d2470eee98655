package service

import (
	"context"
	"errors"
	"time"
	"trainwise/fitness-app/internal/domain"
	"trainwise/fitness-app/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrSessionLogNotFound = errors.New("session log not found")
	ErrSessionLogNotOwned = errors.New("cannot modify another user's session log")
	ErrSetLogNotOwned     = errors.New("cannot modify another user's set log")
)

type CreateSessionLogInput struct {
	PlanSessionID *string    `json:"plan_session_id" validate:"omitempty,len=24,hexadecimal"`
	Title         string     `json:"title" validate:"max=200"`
	Notes         string     `json:"notes" validate:"max=5000"`
	StartedAt     *time.Time `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at"`
}

type UpdateSessionLogInput struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Notes       *string    `json:"notes" validate:"omitempty,max=5000"`
	CompletedAt *time.Time `json:"completed_at"`
}

type SetLogInput struct {
	ExerciseID      string         `json:"exercise_id" validate:"required,len=24,hexadecimal"`
	SetNumber       int            `json:"set_number" validate:"required,min=1"`
	SetType         domain.SetType `json:"set_type" validate:"omitempty,oneof=normal warmup pyramid drop failure"`
	Reps            *int           `json:"reps" validate:"omitempty,min=0"`
	Weight          *float64       `json:"weight" validate:"omitempty,min=0"`
	DurationSeconds *int           `json:"duration_seconds" validate:"omitempty,min=0"`
}

type WorkoutLogService interface {
	CreateSessionLog(ctx context.Context, actorID primitive.ObjectID, in CreateSessionLogInput) (*domain.SessionLog, error)
	GetSessionLog(ctx context.Context, actorID, id primitive.ObjectID) (*domain.SessionLogWithSets, error)
	ListSessionLogs(ctx context.Context, actorID primitive.ObjectID, page repository.Page) ([]domain.SessionLog, error)
	UpdateSessionLog(ctx context.Context, actorID, id primitive.ObjectID, in UpdateSessionLogInput) (*domain.SessionLog, error)
	DeleteSessionLog(ctx context.Context, actorID, id primitive.ObjectID) error
	AddSetLog(ctx context.Context, actorID, sessionLogID primitive.ObjectID, in SetLogInput) (*domain.SetLog, error)
	DeleteSetLog(ctx context.Context, actorID, setLogID primitive.ObjectID) error
}

type workoutLogService struct {
	logRepo       repository.SessionLogRepository
	hierarchyRepo repository.PlanHierarchyRepository
	now           func() time.Time
}

func NewWorkoutLogService(logRepo repository.SessionLogRepository, hierarchyRepo repository.PlanHierarchyRepository) WorkoutLogService {
	return &workoutLogService{
		logRepo:       logRepo,
		hierarchyRepo: hierarchyRepo,
		now:           time.Now,
	}
}

// CreateSessionLog records a workout. When it follows a plan session, the plan
// id is taken from that session.
func (s *workoutLogService) CreateSessionLog(ctx context.Context, actorID primitive.ObjectID, in CreateSessionLogInput) (*domain.SessionLog, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	entry := &domain.SessionLog{
		UserID:      actorID,
		Title:       in.Title,
		Notes:       in.Notes,
		StartedAt:   s.now().UTC(),
		CompletedAt: in.CompletedAt,
	}
	if in.StartedAt != nil {
		entry.StartedAt = in.StartedAt.UTC()
	}
	if in.PlanSessionID != nil {
		sessionID, _ := primitive.ObjectIDFromHex(*in.PlanSessionID)
		planID, err := s.hierarchyRepo.PlanIDOf(ctx, repository.LevelSession, sessionID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrPlanNodeNotFound
			}
			return nil, storeError("resolve plan of session", err)
		}
		entry.PlanSessionID = &sessionID
		entry.PlanID = &planID
	}

	id, err := s.logRepo.Create(ctx, entry)
	if err != nil {
		return nil, storeError("create session log", err)
	}
	entry.ID = id
	return entry, nil
}

// GetSessionLog returns the actor's log with its sets, or nil when no such log
// belongs to the actor.
func (s *workoutLogService) GetSessionLog(ctx context.Context, actorID, id primitive.ObjectID) (*domain.SessionLogWithSets, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	entry, err := s.logRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warnf("session log %s not found", id.Hex())
			return nil, nil
		}
		return nil, storeError("get session log", err)
	}
	if entry.UserID != actorID {
		log.Warnf("session log %s requested by non-owner %s", id.Hex(), actorID.Hex())
		return nil, nil
	}

	sets, err := s.logRepo.ListSets(ctx, id)
	if err != nil {
		return nil, storeError("list set logs", err)
	}
	return &domain.SessionLogWithSets{SessionLog: *entry, Sets: sets}, nil
}

func (s *workoutLogService) ListSessionLogs(ctx context.Context, actorID primitive.ObjectID, page repository.Page) ([]domain.SessionLog, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	logs, err := s.logRepo.ListByUser(ctx, actorID, page.Normalize())
	if err != nil {
		return nil, storeError("list session logs", err)
	}
	return logs, nil
}

// UpdateSessionLog writes only when user_id matches the actor; there is no
// separate ownership read.
func (s *workoutLogService) UpdateSessionLog(ctx context.Context, actorID, id primitive.ObjectID, in UpdateSessionLogInput) (*domain.SessionLog, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	fields := repository.Fields{}
	setIf(fields, "title", in.Title)
	setIf(fields, "notes", in.Notes)
	if in.CompletedAt != nil {
		fields["completed_at"] = in.CompletedAt.UTC()
	}
	if len(fields) == 0 {
		return nil, ErrEmptyUpdate
	}

	err := s.logRepo.UpdateOwned(ctx, id, actorID, fields)
	if err := ownedWriteError(err, ErrSessionLogNotOwned, "update session log"); err != nil {
		return nil, err
	}
	entry, err := s.logRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get session log", err)
	}
	return entry, nil
}

func (s *workoutLogService) DeleteSessionLog(ctx context.Context, actorID, id primitive.ObjectID) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	err := s.logRepo.DeleteOwned(ctx, id, actorID)
	if err := ownedWriteError(err, ErrSessionLogNotOwned, "delete session log"); err != nil {
		return err
	}
	if err := s.logRepo.DeleteSetsBySession(ctx, id); err != nil {
		return storeError("delete set logs", err)
	}
	return nil
}

func (s *workoutLogService) AddSetLog(ctx context.Context, actorID, sessionLogID primitive.ObjectID, in SetLogInput) (*domain.SetLog, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	entry, err := s.logRepo.GetByID(ctx, sessionLogID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionLogNotFound
		}
		return nil, storeError("get session log", err)
	}
	if entry.UserID != actorID {
		return nil, ErrSessionLogNotOwned
	}

	exerciseID, _ := primitive.ObjectIDFromHex(in.ExerciseID)
	setType := in.SetType
	if setType == "" {
		setType = domain.SetTypeNormal
	}
	set := &domain.SetLog{
		SessionLogID:    sessionLogID,
		UserID:          actorID,
		ExerciseID:      exerciseID,
		SetNumber:       in.SetNumber,
		SetType:         setType,
		Reps:            in.Reps,
		Weight:          in.Weight,
		DurationSeconds: in.DurationSeconds,
	}
	id, err := s.logRepo.CreateSet(ctx, set)
	if err != nil {
		return nil, storeError("create set log", err)
	}
	set.ID = id
	return set, nil
}

func (s *workoutLogService) DeleteSetLog(ctx context.Context, actorID, setLogID primitive.ObjectID) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	err := s.logRepo.DeleteSetOwned(ctx, setLogID, actorID)
	return ownedWriteError(err, ErrSetLogNotOwned, "delete set log")
}
