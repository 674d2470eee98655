package repository

import (
	"context"
	"trainwise/fitness-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound = RepositoryError("not found")
	// ErrNoRowsAffected is returned by conditional writes (id + owner) that
	// matched nothing: the row is missing or belongs to someone else.
	ErrNoRowsAffected = RepositoryError("no rows affected")
	ErrDuplicate      = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Fields is a partial update document. Only the keys present are written.
type Fields map[string]any

// ProfileRepository defines the interface for interacting with profile data.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Profile, error)
}

// ExerciseFilter holds the list parameters for exercises.
type ExerciseFilter struct {
	Search      string   // case-insensitive substring match on name
	Categories  []string // any of
	Types       []string // any of
	Environment string
	Difficulty  int
	CreatedBy   *primitive.ObjectID
	Page        Page
}

// ExerciseRepository covers the exercises collection and its join collections
// (exercise_to_category, exercise_to_type, exercise_muscle).
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	List(ctx context.Context, filter ExerciseFilter) ([]domain.Exercise, error)
	UpdateOwned(ctx context.Context, id, ownerID primitive.ObjectID, fields Fields) error
	DeleteOwned(ctx context.Context, id, ownerID primitive.ObjectID) error
	// Delete removes an exercise regardless of owner. Used to undo a partially
	// completed create.
	Delete(ctx context.Context, id primitive.ObjectID) error

	AddCategory(ctx context.Context, link *domain.ExerciseCategory) (primitive.ObjectID, error)
	AddType(ctx context.Context, link *domain.ExerciseType) (primitive.ObjectID, error)
	AddMuscle(ctx context.Context, link *domain.ExerciseMuscle) (primitive.ObjectID, error)
	ListCategories(ctx context.Context, exerciseIDs []primitive.ObjectID) ([]domain.ExerciseCategory, error)
	ListTypes(ctx context.Context, exerciseIDs []primitive.ObjectID) ([]domain.ExerciseType, error)
	ListMuscles(ctx context.Context, exerciseIDs []primitive.ObjectID) ([]domain.ExerciseMuscle, error)
	DeleteRelations(ctx context.Context, exerciseID primitive.ObjectID) error
}

// ExerciseReferenceRepository is implemented once per reference collection
// (exercise_reference_global, exercise_saved_references).
type ExerciseReferenceRepository interface {
	Create(ctx context.Context, ref *domain.ExerciseReference) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseReference, error)
	ListByExercise(ctx context.Context, exerciseID primitive.ObjectID) ([]domain.ExerciseReference, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.ExerciseReference, error)
	UpdateOwned(ctx context.Context, id, userID primitive.ObjectID, fields Fields) error
	DeleteOwned(ctx context.Context, id, userID primitive.ObjectID) error
}

// PlanFilter holds the list parameters for plans. Private plans are only
// returned to their creator.
type PlanFilter struct {
	ViewerID   primitive.ObjectID
	OnlyMine   bool
	Sport      string
	Difficulty int
	Search     string
	TeamID     *primitive.ObjectID
	Page       Page
}

// Engagement counters accepted by PlanRepository.IncrementCounter.
const (
	CounterForks = "fork_count"
	CounterLikes = "like_count"
	CounterViews = "view_count"
)

// PlanRepository defines the interface for interacting with plan data.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	List(ctx context.Context, filter PlanFilter) ([]domain.Plan, error)
	UpdateOwned(ctx context.Context, id, ownerID primitive.ObjectID, fields Fields) error
	DeleteOwned(ctx context.Context, id, ownerID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// IncrementCounter bumps one of the engagement counters (fork_count, like_count, view_count).
	IncrementCounter(ctx context.Context, id primitive.ObjectID, counter string) error
}

// Level names one collection of the plan hierarchy.
type Level string

const (
	LevelWeek     Level = "plan_weeks"
	LevelDay      Level = "plan_days"
	LevelSession  Level = "plan_sessions"
	LevelExercise Level = "plan_session_exercises"
	LevelSet      Level = "plan_session_exercise_sets"
)

// PlanHierarchyRepository covers weeks, days, sessions, session exercises and
// sets. Every row carries plan_id, so a whole plan loads with one query per level.
type PlanHierarchyRepository interface {
	CreateWeek(ctx context.Context, week *domain.PlanWeek) (primitive.ObjectID, error)
	CreateDay(ctx context.Context, day *domain.PlanDay) (primitive.ObjectID, error)
	CreateSession(ctx context.Context, session *domain.PlanSession) (primitive.ObjectID, error)
	CreateSessionExercise(ctx context.Context, entry *domain.PlanSessionExercise) (primitive.ObjectID, error)
	CreateSet(ctx context.Context, set *domain.PlanSessionExerciseSet) (primitive.ObjectID, error)

	// PlanIDOf returns the plan a hierarchy row belongs to.
	PlanIDOf(ctx context.Context, level Level, id primitive.ObjectID) (primitive.ObjectID, error)
	Update(ctx context.Context, level Level, id primitive.ObjectID, fields Fields) error
	// Delete removes the row and all of its descendants. Siblings keep their ordering values.
	Delete(ctx context.Context, level Level, id primitive.ObjectID) error
	DeleteByPlan(ctx context.Context, planID primitive.ObjectID) error

	ListWeeks(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanWeek, error)
	ListDays(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanDay, error)
	ListSessions(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanSession, error)
	ListSessionExercises(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanSessionExercise, error)
	ListSets(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanSessionExerciseSet, error)
	ListSetsForEntry(ctx context.Context, sessionExerciseID primitive.ObjectID) ([]domain.PlanSessionExerciseSet, error)
}

// SessionLogRepository covers session_logs and set_logs.
type SessionLogRepository interface {
	Create(ctx context.Context, log *domain.SessionLog) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SessionLog, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, page Page) ([]domain.SessionLog, error)
	UpdateOwned(ctx context.Context, id, userID primitive.ObjectID, fields Fields) error
	DeleteOwned(ctx context.Context, id, userID primitive.ObjectID) error
	// CountCompletedSessions counts distinct plan sessions of a plan the user has completed.
	CountCompletedSessions(ctx context.Context, userID, planID primitive.ObjectID) (int, error)

	CreateSet(ctx context.Context, set *domain.SetLog) (primitive.ObjectID, error)
	ListSets(ctx context.Context, sessionLogID primitive.ObjectID) ([]domain.SetLog, error)
	DeleteSetOwned(ctx context.Context, id, userID primitive.ObjectID) error
	DeleteSetsBySession(ctx context.Context, sessionLogID primitive.ObjectID) error
}

// GoalRepository covers plan_goals and user_baselines.
type GoalRepository interface {
	Create(ctx context.Context, goal *domain.PlanGoal) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanGoal, error)
	ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanGoal, error)
	UpdateOwned(ctx context.Context, id, ownerID primitive.ObjectID, fields Fields) error
	DeleteOwned(ctx context.Context, id, ownerID primitive.ObjectID) error
	DeleteByPlan(ctx context.Context, planID primitive.ObjectID) error

	UpsertBaseline(ctx context.Context, baseline *domain.UserBaseline) error
	GetBaseline(ctx context.Context, userID, goalID primitive.ObjectID) (*domain.UserBaseline, error)
}

// MeasurementRepository defines the interface for user_measurements.
type MeasurementRepository interface {
	// Create returns ErrDuplicate when the user already has a measurement for that date.
	Create(ctx context.Context, m *domain.UserMeasurement) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.UserMeasurement, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, page Page) ([]domain.UserMeasurement, error)
	DeleteOwned(ctx context.Context, id, userID primitive.ObjectID) error
	// AddPhoto appends an object storage key to a measurement owned by userID.
	AddPhoto(ctx context.Context, id, userID primitive.ObjectID, key string) error
}

// TeamRepository covers teams and team_invitations.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Team, error)
	ListByMember(ctx context.Context, userID primitive.ObjectID) ([]domain.Team, error)
	AddMember(ctx context.Context, teamID, userID primitive.ObjectID) error

	CreateInvitation(ctx context.Context, inv *domain.TeamInvitation) (primitive.ObjectID, error)
	GetInvitation(ctx context.Context, id primitive.ObjectID) (*domain.TeamInvitation, error)
	ListInvitations(ctx context.Context, teamID primitive.ObjectID) ([]domain.TeamInvitation, error)
	// RespondToInvitation moves a pending invitation addressed to email into status.
	RespondToInvitation(ctx context.Context, id primitive.ObjectID, email string, status domain.InvitationStatus) error
}
