package service

import (
	"context"
	"errors"
	"fmt"
	"trainwise/fitness-app/internal/domain"
	"trainwise/fitness-app/internal/render"
	"trainwise/fitness-app/internal/repository"
	"trainwise/fitness-app/internal/storage"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/multierr"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrExerciseNotOwned = errors.New("cannot modify another user's exercise")
)

type MuscleInput struct {
	Muscle    string `json:"muscle" validate:"required,max=50"`
	IsPrimary bool   `json:"is_primary"`
}

type CreateExerciseInput struct {
	Name         string        `json:"name" validate:"required,max=200"`
	Description  string        `json:"description" validate:"max=2000"`
	Instructions string        `json:"instructions" validate:"max=20000"`
	Difficulty   int           `json:"difficulty" validate:"omitempty,min=1,max=5"`
	Environment  string        `json:"environment" validate:"max=50"`
	Category     string        `json:"category" validate:"required,max=50"`
	Type         string        `json:"type" validate:"required,max=50"`
	Muscles      []MuscleInput `json:"muscles" validate:"dive"`
}

// UpdateExerciseInput is a partial update. Nil fields are left untouched.
type UpdateExerciseInput struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description  *string `json:"description" validate:"omitempty,max=2000"`
	Instructions *string `json:"instructions" validate:"omitempty,max=20000"`
	Difficulty   *int    `json:"difficulty" validate:"omitempty,min=1,max=5"`
	Environment  *string `json:"environment" validate:"omitempty,max=50"`
}

func (in UpdateExerciseInput) fields() repository.Fields {
	f := repository.Fields{}
	setIf(f, "name", in.Name)
	setIf(f, "description", in.Description)
	setIf(f, "instructions", in.Instructions)
	setIf(f, "difficulty", in.Difficulty)
	setIf(f, "environment", in.Environment)
	return f
}

type ExerciseListParams struct {
	Search      string   `form:"search"`
	Categories  []string `form:"category"`
	Types       []string `form:"type"`
	Environment string   `form:"environment"`
	Difficulty  int      `form:"difficulty" validate:"omitempty,min=1,max=5"`
	Mine        bool     `form:"mine"`
	Page        int      `form:"page" validate:"omitempty,min=1"`
	Limit       int      `form:"limit" validate:"omitempty,min=1,max=100"`
}

type ExerciseService interface {
	CreateExercise(ctx context.Context, actorID primitive.ObjectID, in CreateExerciseInput) (*domain.ExerciseWithRelations, error)
	GetExercise(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseWithRelations, error)
	ListExercises(ctx context.Context, actorID primitive.ObjectID, params ExerciseListParams) ([]domain.ExerciseWithRelations, error)
	UpdateExercise(ctx context.Context, actorID, id primitive.ObjectID, in UpdateExerciseInput) (*domain.ExerciseWithRelations, error)
	DeleteExercise(ctx context.Context, actorID, id primitive.ObjectID) error
	RenderInstructions(ctx context.Context, id primitive.ObjectID) (string, error)
	RequestImageUpload(ctx context.Context, actorID, id primitive.ObjectID, contentType string) (*UploadTicket, error)
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
	fileStorage  storage.FileStorage
}

func NewExerciseService(exerciseRepo repository.ExerciseRepository, fileStorage storage.FileStorage) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
		fileStorage:  fileStorage,
	}
}

// CreateExercise inserts the exercise, then its category, type and muscle
// links, one after the other. If a later insert fails the earlier ones are
// deleted again and the cleanup error, if any, is combined with the cause.
func (s *exerciseService) CreateExercise(ctx context.Context, actorID primitive.ObjectID, in CreateExerciseInput) (*domain.ExerciseWithRelations, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	exercise := &domain.Exercise{
		CreatedBy:    actorID,
		Name:         in.Name,
		Description:  in.Description,
		Instructions: in.Instructions,
		Difficulty:   in.Difficulty,
		Environment:  in.Environment,
	}
	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, storeError("create exercise", err)
	}

	undo := func(cause error) error {
		// Cleanup must run even when the request context is already cancelled.
		cleanupCtx := context.WithoutCancel(ctx)
		cleanupErr := multierr.Combine(
			s.exerciseRepo.DeleteRelations(cleanupCtx, exerciseID),
			s.exerciseRepo.Delete(cleanupCtx, exerciseID),
		)
		if cleanupErr != nil {
			log.Errorf("cleanup of exercise %s failed: %s", exerciseID.Hex(), cleanupErr)
		}
		return multierr.Append(cause, cleanupErr)
	}

	if _, err := s.exerciseRepo.AddCategory(ctx, &domain.ExerciseCategory{ExerciseID: exerciseID, Category: in.Category}); err != nil {
		return nil, undo(fmt.Errorf("add exercise category: %w", err))
	}
	if _, err := s.exerciseRepo.AddType(ctx, &domain.ExerciseType{ExerciseID: exerciseID, Type: in.Type}); err != nil {
		return nil, undo(fmt.Errorf("add exercise type: %w", err))
	}
	for _, m := range in.Muscles {
		link := &domain.ExerciseMuscle{ExerciseID: exerciseID, Muscle: m.Muscle, IsPrimary: m.IsPrimary}
		if _, err := s.exerciseRepo.AddMuscle(ctx, link); err != nil {
			return nil, undo(fmt.Errorf("add exercise muscle: %w", err))
		}
	}

	created, err := s.GetExercise(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, ErrExerciseNotFound
	}
	return created, nil
}

// GetExercise returns the exercise with its relations, or nil when it does not exist.
func (s *exerciseService) GetExercise(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseWithRelations, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warnf("exercise %s not found", id.Hex())
			return nil, nil
		}
		return nil, storeError("get exercise", err)
	}

	rich, err := s.withRelations(ctx, []domain.Exercise{*exercise})
	if err != nil {
		return nil, err
	}
	return &rich[0], nil
}

func (s *exerciseService) ListExercises(ctx context.Context, actorID primitive.ObjectID, params ExerciseListParams) ([]domain.ExerciseWithRelations, error) {
	if err := validateInput(params); err != nil {
		return nil, err
	}

	filter := repository.ExerciseFilter{
		Search:      params.Search,
		Categories:  params.Categories,
		Types:       params.Types,
		Environment: params.Environment,
		Difficulty:  params.Difficulty,
		Page:        repository.Page{Page: params.Page, Limit: params.Limit}.Normalize(),
	}
	if params.Mine {
		if err := requireActor(actorID); err != nil {
			return nil, err
		}
		filter.CreatedBy = &actorID
	}

	exercises, err := s.exerciseRepo.List(ctx, filter)
	if err != nil {
		return nil, storeError("list exercises", err)
	}
	return s.withRelations(ctx, exercises)
}

// withRelations loads the join rows of all exercises in three queries.
func (s *exerciseService) withRelations(ctx context.Context, exercises []domain.Exercise) ([]domain.ExerciseWithRelations, error) {
	out := make([]domain.ExerciseWithRelations, len(exercises))
	if len(exercises) == 0 {
		return out, nil
	}

	ids := make([]primitive.ObjectID, len(exercises))
	index := make(map[primitive.ObjectID]int, len(exercises))
	for i, e := range exercises {
		ids[i] = e.ID
		index[e.ID] = i
		out[i] = domain.ExerciseWithRelations{
			Exercise:   e,
			Categories: []domain.ExerciseCategory{},
			Types:      []domain.ExerciseType{},
			Muscles:    []domain.ExerciseMuscle{},
		}
		if e.ImagePath != "" && s.fileStorage != nil {
			out[i].ImageURL = s.fileStorage.PublicURL(e.ImagePath)
		}
	}

	categories, err := s.exerciseRepo.ListCategories(ctx, ids)
	if err != nil {
		return nil, storeError("list exercise categories", err)
	}
	for _, c := range categories {
		if i, ok := index[c.ExerciseID]; ok {
			out[i].Categories = append(out[i].Categories, c)
		}
	}

	types, err := s.exerciseRepo.ListTypes(ctx, ids)
	if err != nil {
		return nil, storeError("list exercise types", err)
	}
	for _, t := range types {
		if i, ok := index[t.ExerciseID]; ok {
			out[i].Types = append(out[i].Types, t)
		}
	}

	muscles, err := s.exerciseRepo.ListMuscles(ctx, ids)
	if err != nil {
		return nil, storeError("list exercise muscles", err)
	}
	for _, m := range muscles {
		if i, ok := index[m.ExerciseID]; ok {
			out[i].Muscles = append(out[i].Muscles, m)
		}
	}

	return out, nil
}

// UpdateExercise applies a partial update in one conditional write on created_by.
func (s *exerciseService) UpdateExercise(ctx context.Context, actorID, id primitive.ObjectID, in UpdateExerciseInput) (*domain.ExerciseWithRelations, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	fields := in.fields()
	if len(fields) == 0 {
		return nil, ErrEmptyUpdate
	}

	err := s.exerciseRepo.UpdateOwned(ctx, id, actorID, fields)
	if err := ownedWriteError(err, ErrExerciseNotOwned, "update exercise"); err != nil {
		return nil, err
	}
	return s.GetExercise(ctx, id)
}

// DeleteExercise removes an owned exercise and then its relation rows.
func (s *exerciseService) DeleteExercise(ctx context.Context, actorID, id primitive.ObjectID) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	err := s.exerciseRepo.DeleteOwned(ctx, id, actorID)
	if err := ownedWriteError(err, ErrExerciseNotOwned, "delete exercise"); err != nil {
		return err
	}
	if err := s.exerciseRepo.DeleteRelations(ctx, id); err != nil {
		return storeError("delete exercise relations", err)
	}
	return nil
}

// RenderInstructions returns the exercise instructions as sanitized HTML.
func (s *exerciseService) RenderInstructions(ctx context.Context, id primitive.ObjectID) (string, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrExerciseNotFound
		}
		return "", storeError("get exercise", err)
	}
	html, err := render.Markdown(exercise.Instructions)
	if err != nil {
		return "", fmt.Errorf("render instructions: %w", err)
	}
	return html, nil
}

// RequestImageUpload presigns an upload and points the exercise's image_path
// at the new key. Only the creator may do this.
func (s *exerciseService) RequestImageUpload(ctx context.Context, actorID, id primitive.ObjectID, contentType string) (*UploadTicket, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	key, err := newImageObjectKey("exercises", id.Hex(), contentType)
	if err != nil {
		return nil, err
	}
	ticket, err := presignImageUpload(ctx, s.fileStorage, key, contentType)
	if err != nil {
		return nil, err
	}

	err = s.exerciseRepo.UpdateOwned(ctx, id, actorID, repository.Fields{"image_path": key})
	if err := ownedWriteError(err, ErrExerciseNotOwned, "set exercise image"); err != nil {
		return nil, err
	}
	return ticket, nil
}
