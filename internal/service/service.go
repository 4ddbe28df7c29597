// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/mangadock/mangadock/internal/metrics"
	"github.com/mangadock/mangadock/internal/model"
	"github.com/mangadock/mangadock/internal/repository"
)

// Service errors.
var (
	ErrMissingField    = errors.New("missing required field")
	ErrInvalidUsername = model.ErrInvalidUsername
	ErrUserExists      = errors.New("user already exists")
)

// MissingFieldError names the required fields that were empty or absent.
// It matches ErrMissingField with errors.Is.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	if len(e.Fields) == 1 {
		return e.Fields[0] + " is required"
	}
	return strings.Join(e.Fields, ", ") + " are required"
}

// Is reports whether target is ErrMissingField.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// field is a named request value checked by requireFields.
type field struct {
	name  string
	value string
}

// requireFields returns a MissingFieldError listing every blank field,
// or validates the username when all fields are present.
func requireFields(username string, fields ...field) error {
	all := append([]field{{name: "username", value: username}}, fields...)

	var missing []string
	for _, f := range all {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldError{Fields: missing}
	}

	return model.ValidateUsername(username)
}

// Records performs serialized load-mutate-save cycles against a RecordStore.
// Mutations on the same username are serialized within this process;
// different usernames never block each other.
type Records struct {
	store   repository.RecordStore
	locks   *keyedMutex
	metrics metrics.Recorder
}

// NewRecords creates a Records over store.
func NewRecords(store repository.RecordStore, recorder metrics.Recorder) *Records {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Records{
		store:   store,
		locks:   newKeyedMutex(),
		metrics: recorder,
	}
}

// Store returns the underlying record store.
func (r *Records) Store() repository.RecordStore {
	return r.store
}

// read loads a record without taking the username lock.
func (r *Records) read(ctx context.Context, username string) (*model.UserRecord, error) {
	return r.store.Load(ctx, username)
}

// update loads the record for username, applies mutate and saves the
// record when mutate reports that it must be persisted.
func (r *Records) update(ctx context.Context, username string, mutate func(*model.UserRecord) bool) (*model.UserRecord, error) {
	unlock := r.locks.Lock(username)
	defer unlock()

	record, err := r.store.Load(ctx, username)
	if err != nil {
		r.metrics.IncStoreError()
		return nil, err
	}

	if mutate(record) {
		if err := r.store.Save(ctx, username, record); err != nil {
			r.metrics.IncStoreError()
			return nil, err
		}
	}
	return record, nil
}

// keyedMutex hands out one mutex per key and forgets keys nobody holds.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

// Lock blocks until key is free and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()

	return func() {
		m.Unlock()

		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// size returns the number of tracked keys.
func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
