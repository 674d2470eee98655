package service

import (
	"context"
	"errors"
	"trainwise/fitness-app/internal/domain"
	"trainwise/fitness-app/internal/repository"
	"trainwise/fitness-app/internal/storage"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrMeasurementExists   = errors.New("a measurement for this date already exists")
	ErrMeasurementNotOwned = errors.New("cannot modify another user's measurement")
)

type CreateMeasurementInput struct {
	Date             string   `json:"date" validate:"required,datetime=2006-01-02"`
	WeightKg         *float64 `json:"weight_kg" validate:"omitempty,gt=0,lt=700"`
	ChestCm          *float64 `json:"chest_cm" validate:"omitempty,gt=0,lt=400"`
	WaistCm          *float64 `json:"waist_cm" validate:"omitempty,gt=0,lt=400"`
	HipsCm           *float64 `json:"hips_cm" validate:"omitempty,gt=0,lt=400"`
	ArmCm            *float64 `json:"arm_cm" validate:"omitempty,gt=0,lt=200"`
	ThighCm          *float64 `json:"thigh_cm" validate:"omitempty,gt=0,lt=200"`
	BodyFatPct       *float64 `json:"body_fat_pct" validate:"omitempty,min=0,max=100"`
	RestingHeartRate *int     `json:"resting_heart_rate" validate:"omitempty,min=20,max=250"`
	Notes            string   `json:"notes" validate:"max=2000"`
}

// MeasurementService manages body measurements. Entries are never edited,
// only created and deleted.
type MeasurementService interface {
	CreateMeasurement(ctx context.Context, actorID primitive.ObjectID, in CreateMeasurementInput) (*domain.UserMeasurement, error)
	ListMeasurements(ctx context.Context, actorID primitive.ObjectID, page repository.Page) ([]domain.UserMeasurement, error)
	DeleteMeasurement(ctx context.Context, actorID, id primitive.ObjectID) error
	RequestPhotoUpload(ctx context.Context, actorID, id primitive.ObjectID, contentType string) (*UploadTicket, error)
}

type measurementService struct {
	measurementRepo repository.MeasurementRepository
	fileStorage     storage.FileStorage
}

func NewMeasurementService(measurementRepo repository.MeasurementRepository, fileStorage storage.FileStorage) MeasurementService {
	return &measurementService{
		measurementRepo: measurementRepo,
		fileStorage:     fileStorage,
	}
}

func (s *measurementService) CreateMeasurement(ctx context.Context, actorID primitive.ObjectID, in CreateMeasurementInput) (*domain.UserMeasurement, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	m := &domain.UserMeasurement{
		UserID:           actorID,
		Date:             in.Date,
		WeightKg:         in.WeightKg,
		ChestCm:          in.ChestCm,
		WaistCm:          in.WaistCm,
		HipsCm:           in.HipsCm,
		ArmCm:            in.ArmCm,
		ThighCm:          in.ThighCm,
		BodyFatPct:       in.BodyFatPct,
		RestingHeartRate: in.RestingHeartRate,
		Notes:            in.Notes,
	}
	id, err := s.measurementRepo.Create(ctx, m)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrMeasurementExists
		}
		return nil, storeError("create measurement", err)
	}
	m.ID = id
	return m, nil
}

// ListMeasurements returns the actor's measurements, newest date first, with
// photo keys resolved to URLs.
func (s *measurementService) ListMeasurements(ctx context.Context, actorID primitive.ObjectID, page repository.Page) ([]domain.UserMeasurement, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	measurements, err := s.measurementRepo.ListByUser(ctx, actorID, page.Normalize())
	if err != nil {
		return nil, storeError("list measurements", err)
	}
	for i := range measurements {
		measurements[i].PhotoURLs = s.photoURLs(measurements[i].PhotoPaths)
	}
	return measurements, nil
}

func (s *measurementService) photoURLs(paths []string) []string {
	if len(paths) == 0 || s.fileStorage == nil {
		return nil
	}
	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		urls = append(urls, s.fileStorage.PublicURL(p))
	}
	return urls
}

// DeleteMeasurement removes the row, then its photos. Photo cleanup failures
// are logged only; the row is already gone.
func (s *measurementService) DeleteMeasurement(ctx context.Context, actorID, id primitive.ObjectID) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	var photos []string
	if m, err := s.measurementRepo.GetByID(ctx, id); err == nil && m.UserID == actorID {
		photos = m.PhotoPaths
	}

	err := s.measurementRepo.DeleteOwned(ctx, id, actorID)
	if err := ownedWriteError(err, ErrMeasurementNotOwned, "delete measurement"); err != nil {
		return err
	}
	for _, key := range photos {
		if err := s.fileStorage.DeleteObject(ctx, key); err != nil {
			log.Warnf("delete measurement photo %s: %s", key, err)
		}
	}
	return nil
}

func (s *measurementService) RequestPhotoUpload(ctx context.Context, actorID, id primitive.ObjectID, contentType string) (*UploadTicket, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	key, err := newImageObjectKey("measurements", actorID.Hex(), contentType)
	if err != nil {
		return nil, err
	}
	ticket, err := presignImageUpload(ctx, s.fileStorage, key, contentType)
	if err != nil {
		return nil, err
	}
	err = s.measurementRepo.AddPhoto(ctx, id, actorID, key)
	if err := ownedWriteError(err, ErrMeasurementNotOwned, "attach measurement photo"); err != nil {
		return nil, err
	}
	return ticket, nil
}
