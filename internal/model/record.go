// Package model defines domain entities for the application.
package model

import "slices"

// UserRecord is the full persisted reading state for one username.
// Favorites and each chapter list keep insertion order and never hold duplicates.
type UserRecord struct {
	Favorites []string            `json:"favorites"`
	Finished  map[string][]string `json:"finished"`
}

// NewUserRecord returns the empty record used for never-seen usernames.
func NewUserRecord() *UserRecord {
	return &UserRecord{
		Favorites: []string{},
		Finished:  map[string][]string{},
	}
}

// Normalize replaces nil collections with empty ones so the record
// always serializes as {"favorites": [], "finished": {}}.
func (r *UserRecord) Normalize() *UserRecord {
	if r.Favorites == nil {
		r.Favorites = []string{}
	}
	if r.Finished == nil {
		r.Finished = map[string][]string{}
	}
	for title, chapters := range r.Finished {
		if chapters == nil {
			r.Finished[title] = []string{}
		}
	}
	return r
}

// HasFavorite reports whether mangaName is in the favorites set.
func (r *UserRecord) HasFavorite(mangaName string) bool {
	return slices.Contains(r.Favorites, mangaName)
}

// AddFavorite appends mangaName unless already present.
// Returns true if the record changed.
func (r *UserRecord) AddFavorite(mangaName string) bool {
	if r.HasFavorite(mangaName) {
		return false
	}
	r.Favorites = append(r.Favorites, mangaName)
	return true
}

// RemoveFavorite drops every occurrence of mangaName.
// Returns true if the record changed.
func (r *UserRecord) RemoveFavorite(mangaName string) bool {
	before := len(r.Favorites)
	r.Favorites = slices.DeleteFunc(r.Favorites, func(m string) bool {
		return m == mangaName
	})
	return len(r.Favorites) != before
}

// FinishedChapters returns the chapter labels recorded for mangaName.
// A title without entries yields an empty, non-nil slice.
func (r *UserRecord) FinishedChapters(mangaName string) []string {
	chapters, ok := r.Finished[mangaName]
	if !ok || chapters == nil {
		return []string{}
	}
	return chapters
}

// MarkFinished records label under mangaName, creating the title entry
// on first use. Returns true if the label was not already present.
func (r *UserRecord) MarkFinished(mangaName string, label ChapterLabel) bool {
	if r.Finished == nil {
		r.Finished = map[string][]string{}
	}
	chapters := r.Finished[mangaName]
	if slices.Contains(chapters, label.String()) {
		return false
	}
	r.Finished[mangaName] = append(chapters, label.String())
	return true
}

// Clone returns a deep copy of the record.
func (r *UserRecord) Clone() *UserRecord {
	out := &UserRecord{
		Favorites: slices.Clone(r.Favorites),
		Finished:  make(map[string][]string, len(r.Finished)),
	}
	for title, chapters := range r.Finished {
		out.Finished[title] = slices.Clone(chapters)
	}
	return out.Normalize()
}
