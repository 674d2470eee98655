package service

import (
	"context"
	"errors"
	"trainwise/fitness-app/internal/domain"
	"trainwise/fitness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrReferenceNotOwned = errors.New("cannot modify another user's exercise reference")
)

type ReferenceInput struct {
	URL   string `json:"url" validate:"required,url,max=2048"`
	Title string `json:"title" validate:"max=200"`
}

type UpdateReferenceInput struct {
	URL   *string `json:"url" validate:"omitempty,url,max=2048"`
	Title *string `json:"title" validate:"omitempty,max=200"`
}

// ReferenceService manages links attached to exercises. Global references are
// shown to every user; saved references are a private bookmark list.
type ReferenceService interface {
	AddGlobalReference(ctx context.Context, actorID, exerciseID primitive.ObjectID, in ReferenceInput) (*domain.ExerciseReference, error)
	ListGlobalReferences(ctx context.Context, exerciseID primitive.ObjectID) ([]domain.ExerciseReference, error)
	UpdateGlobalReference(ctx context.Context, actorID, id primitive.ObjectID, in UpdateReferenceInput) (*domain.ExerciseReference, error)
	DeleteGlobalReference(ctx context.Context, actorID, id primitive.ObjectID) error

	SaveReference(ctx context.Context, actorID, exerciseID primitive.ObjectID, in ReferenceInput) (*domain.ExerciseReference, error)
	ListSavedReferences(ctx context.Context, actorID primitive.ObjectID) ([]domain.ExerciseReference, error)
	DeleteSavedReference(ctx context.Context, actorID, id primitive.ObjectID) error
}

type referenceService struct {
	exerciseRepo repository.ExerciseRepository
	globalRepo   repository.ExerciseReferenceRepository
	savedRepo    repository.ExerciseReferenceRepository
}

func NewReferenceService(exerciseRepo repository.ExerciseRepository, globalRepo, savedRepo repository.ExerciseReferenceRepository) ReferenceService {
	return &referenceService{
		exerciseRepo: exerciseRepo,
		globalRepo:   globalRepo,
		savedRepo:    savedRepo,
	}
}

func (s *referenceService) AddGlobalReference(ctx context.Context, actorID, exerciseID primitive.ObjectID, in ReferenceInput) (*domain.ExerciseReference, error) {
	return s.create(ctx, s.globalRepo, actorID, exerciseID, in)
}

func (s *referenceService) SaveReference(ctx context.Context, actorID, exerciseID primitive.ObjectID, in ReferenceInput) (*domain.ExerciseReference, error) {
	return s.create(ctx, s.savedRepo, actorID, exerciseID, in)
}

func (s *referenceService) create(ctx context.Context, repo repository.ExerciseReferenceRepository, actorID, exerciseID primitive.ObjectID, in ReferenceInput) (*domain.ExerciseReference, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if _, err := s.exerciseRepo.GetByID(ctx, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, storeError("get exercise", err)
	}

	ref := &domain.ExerciseReference{
		ExerciseID: exerciseID,
		UserID:     actorID,
		URL:        in.URL,
		Title:      in.Title,
	}
	id, err := repo.Create(ctx, ref)
	if err != nil {
		return nil, storeError("create exercise reference", err)
	}
	ref.ID = id
	return ref, nil
}

func (s *referenceService) ListGlobalReferences(ctx context.Context, exerciseID primitive.ObjectID) ([]domain.ExerciseReference, error) {
	refs, err := s.globalRepo.ListByExercise(ctx, exerciseID)
	if err != nil {
		return nil, storeError("list global references", err)
	}
	return refs, nil
}

func (s *referenceService) ListSavedReferences(ctx context.Context, actorID primitive.ObjectID) ([]domain.ExerciseReference, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	refs, err := s.savedRepo.ListByUser(ctx, actorID)
	if err != nil {
		return nil, storeError("list saved references", err)
	}
	return refs, nil
}

func (s *referenceService) UpdateGlobalReference(ctx context.Context, actorID, id primitive.ObjectID, in UpdateReferenceInput) (*domain.ExerciseReference, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	fields := repository.Fields{}
	setIf(fields, "url", in.URL)
	setIf(fields, "title", in.Title)
	if len(fields) == 0 {
		return nil, ErrEmptyUpdate
	}

	err := s.globalRepo.UpdateOwned(ctx, id, actorID, fields)
	if err := ownedWriteError(err, ErrReferenceNotOwned, "update global reference"); err != nil {
		return nil, err
	}
	ref, err := s.globalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get global reference", err)
	}
	return ref, nil
}

func (s *referenceService) DeleteGlobalReference(ctx context.Context, actorID, id primitive.ObjectID) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	err := s.globalRepo.DeleteOwned(ctx, id, actorID)
	return ownedWriteError(err, ErrReferenceNotOwned, "delete global reference")
}

func (s *referenceService) DeleteSavedReference(ctx context.Context, actorID, id primitive.ObjectID) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	err := s.savedRepo.DeleteOwned(ctx, id, actorID)
	return ownedWriteError(err, ErrReferenceNotOwned, "delete saved reference")
}
