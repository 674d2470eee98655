package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"trainwise/fitness-app/internal/repository"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors shared by every service.
var (
	ErrValidation      = errors.New("validation failed")
	ErrEmptyUpdate     = errors.New("no fields to update")
	ErrUnauthenticated = errors.New("authenticated user required")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json names so messages match the request payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateInput checks the struct's validate tags. Failures wrap ErrValidation.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

func requireActor(actorID primitive.ObjectID) error {
	if actorID == primitive.NilObjectID {
		return ErrUnauthenticated
	}
	return nil
}

// ownedWriteError maps the result of a conditional (id + owner) write.
// A write that matched nothing becomes notOwned.
func ownedWriteError(err error, notOwned error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNoRowsAffected) {
		return notOwned
	}
	log.Errorf("%s: %s", op, err)
	return fmt.Errorf("%s: %w", op, err)
}

// storeError logs and wraps an unexpected repository failure.
func storeError(op string, err error) error {
	log.Errorf("%s: %s", op, err)
	return fmt.Errorf("%s: %w", op, err)
}

// setIf copies the pointer's value into fields when it is set.
func setIf[T any](fields repository.Fields, key string, v *T) {
	if v != nil {
		fields[key] = *v
	}
}
