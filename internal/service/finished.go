package service

import (
	"context"
	"slices"

	"github.com/mangadock/mangadock/internal/model"
)

// FinishedService manages the per-title finished chapter labels.
type FinishedService struct {
	records *Records
}

// NewFinishedService creates a FinishedService.
func NewFinishedService(records *Records) *FinishedService {
	return &FinishedService{records: records}
}

// Mark records chapter as finished for mangaName and returns the title's
// chapter labels. Marking an already finished chapter changes nothing.
func (s *FinishedService) Mark(ctx context.Context, username, mangaName string, chapter model.ChapterLabel) ([]string, error) {
	if err := requireFields(username,
		field{"mangaName", mangaName},
		field{"chapterNumber", chapter.String()},
	); err != nil {
		return nil, err
	}

	marked := false
	record, err := s.records.update(ctx, username, func(r *model.UserRecord) bool {
		marked = r.MarkFinished(mangaName, chapter)
		return marked
	})
	if err != nil {
		return nil, err
	}

	if marked {
		s.records.metrics.IncChapterFinished()
	}
	return slices.Clone(record.FinishedChapters(mangaName)), nil
}

// Get returns the finished chapter labels for mangaName, empty when the
// title has no entries.
func (s *FinishedService) Get(ctx context.Context, username, mangaName string) ([]string, error) {
	if err := requireFields(username, field{"mangaName", mangaName}); err != nil {
		return nil, err
	}

	record, err := s.records.read(ctx, username)
	if err != nil {
		return nil, err
	}
	return slices.Clone(record.FinishedChapters(mangaName)), nil
}
