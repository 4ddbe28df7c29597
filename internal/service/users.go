package service

import (
	"context"
	"errors"

	"github.com/mangadock/mangadock/internal/repository"
)

// UserService creates and enumerates user records.
type UserService struct {
	records *Records
}

// NewUserService creates a UserService.
func NewUserService(records *Records) *UserService {
	return &UserService{records: records}
}

// Create persists an empty record for username.
// Returns ErrUserExists if the username already has one.
func (s *UserService) Create(ctx context.Context, username string) error {
	if err := requireFields(username); err != nil {
		return err
	}

	unlock := s.records.locks.Lock(username)
	defer unlock()

	if err := s.records.store.Create(ctx, username); err != nil {
		if errors.Is(err, repository.ErrRecordExists) {
			return ErrUserExists
		}
		s.records.metrics.IncStoreError()
		return err
	}

	s.records.metrics.IncUserCreated()
	return nil
}

// List returns every known username.
func (s *UserService) List(ctx context.Context) ([]string, error) {
	users, err := s.records.store.ListUsernames(ctx)
	if err != nil {
		s.records.metrics.IncStoreError()
		return nil, err
	}
	return users, nil
}
