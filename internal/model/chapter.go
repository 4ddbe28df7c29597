package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidChapter is returned when a chapter number is neither a JSON
// number nor a JSON string.
var ErrInvalidChapter = errors.New("chapter number must be a number or a string")

// ChapterLabel is the canonical string form of a chapter number.
// Numbers and their string spelling map to the same label: 5, 5.0 and "5"
// all become "5", and 10.5 and "10.5" both become "10.5".
type ChapterLabel string

// NewChapterLabel canonicalizes a raw chapter string.
func NewChapterLabel(raw string) ChapterLabel {
	return ChapterLabel(strings.TrimSpace(raw))
}

// ChapterLabelFromFloat canonicalizes a numeric chapter.
func ChapterLabelFromFloat(n float64) ChapterLabel {
	return ChapterLabel(strconv.FormatFloat(n, 'f', -1, 64))
}

// String returns the label text.
func (c ChapterLabel) String() string {
	return string(c)
}

// IsEmpty reports whether no chapter was supplied.
func (c ChapterLabel) IsEmpty() bool {
	return c == ""
}

// UnmarshalJSON accepts numbers, strings and null.
func (c *ChapterLabel) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = NewChapterLabel(s)
		return nil
	}

	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return ErrInvalidChapter
	}
	*c = ChapterLabelFromFloat(n)
	return nil
}
