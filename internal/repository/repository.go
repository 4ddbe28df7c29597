// Package repository provides persistence for user records.
package repository

import (
	"context"
	"errors"

	"github.com/mangadock/mangadock/internal/model"
)

// Common errors for record store operations.
var (
	// ErrStoreIO wraps every failure to read from or write to the backend.
	ErrStoreIO = errors.New("record store I/O failure")
	// ErrRecordExists is returned by Create when the username already has a record.
	ErrRecordExists = errors.New("record already exists")
)

// RecordStore persists one UserRecord per username.
//
// Load never reports absent or corrupt data: both degrade to an empty
// record. Save replaces the whole record. There is no locking across a
// Load/Save pair; callers that need it must serialize per username.
type RecordStore interface {
	Load(ctx context.Context, username string) (*model.UserRecord, error)
	Save(ctx context.Context, username string, record *model.UserRecord) error
	Create(ctx context.Context, username string) error
	ListUsernames(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// decodeRecord parses a stored payload, treating corruption as absence.
func decodeRecord(data []byte) *model.UserRecord {
	record := model.NewUserRecord()
	if len(data) == 0 {
		return record
	}
	if err := unmarshalRecord(data, record); err != nil {
		return model.NewUserRecord()
	}
	return record.Normalize()
}
