package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"user-api/internal/entity"
	"user-api/internal/repository"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// ErrUserNotFound is returned when no user is stored under the requested ID.
var ErrUserNotFound = errors.New("user not found")

// ValidationError carries every field rule a candidate user violated.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid user: " + strings.Join(e.Errors, " ")
}

// EventWriter is satisfied by *kafka.Writer.
type EventWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// UserService validates input, drives the repository and announces changes.
type UserService struct {
	repo   *repository.UserRepository
	events EventWriter
}

// NewUserService creates a new instance of UserService. events may be nil,
// in which case no change events are published.
func NewUserService(repo *repository.UserRepository, events EventWriter) *UserService {
	return &UserService{repo: repo, events: events}
}

// GetUsers returns all users.
func (s *UserService) GetUsers(ctx context.Context) []entity.User {
	return s.repo.GetUsers()
}

// GetUserByID retrieves a user by ID.
func (s *UserService) GetUserByID(ctx context.Context, id int) (*entity.User, error) {
	user, ok := s.repo.GetUserByID(id)
	if !ok {
		return nil, ErrUserNotFound
	}

	return &user, nil
}

// CreateUser validates user and stores it under a new ID.
func (s *UserService) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	if errs := ValidateUser(*user); len(errs) > 0 {
		logger.Debug().Strs("errors", errs).Msg("Rejected user create")
		return nil, &ValidationError{Errors: errs}
	}

	created := s.repo.CreateUser(*user)
	s.publishUserEvent(ctx, &created, "created")

	return &created, nil
}

// UpdateUser validates user and replaces the stored fields for id. Validation
// runs first, so an invalid body for a missing ID is a ValidationError. The
// submitted user is returned as is.
func (s *UserService) UpdateUser(ctx context.Context, id int, user *entity.User) (*entity.User, error) {
	if errs := ValidateUser(*user); len(errs) > 0 {
		logger.Debug().Strs("errors", errs).Msgf("Rejected update of user %d", id)
		return nil, &ValidationError{Errors: errs}
	}

	stored, ok := s.repo.UpdateUser(id, *user)
	if !ok {
		logger.Warn().Msgf("Update of unknown user %d", id)
		return nil, ErrUserNotFound
	}

	s.publishUserEvent(ctx, &stored, "updated")

	return user, nil
}

// DeleteUser removes the user stored under id.
func (s *UserService) DeleteUser(ctx context.Context, id int) error {
	if !s.repo.DeleteUser(id) {
		logger.Warn().Msgf("Delete of unknown user %d", id)
		return ErrUserNotFound
	}

	s.publishUserEvent(ctx, &entity.User{ID: id}, "deleted")

	return nil
}

// publishUserEvent writes a change event keyed user-<action>-<id>. Delivery
// failures are logged and never fail the request.
func (s *UserService) publishUserEvent(ctx context.Context, user *entity.User, action string) {
	if s.events == nil {
		return
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		logger.Error().Err(err).Msgf("Error marshalling user %d", user.ID)
		return
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("user-%s-%d", action, user.ID)),
		Value: userJSON,
	}

	if err := s.events.WriteMessages(ctx, msg); err != nil {
		logger.Error().Err(err).Msgf("Error publishing %s event for user %d", action, user.ID)
	}
}
