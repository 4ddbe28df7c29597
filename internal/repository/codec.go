package repository

import (
	"encoding/json"

	"github.com/mangadock/mangadock/internal/model"
)

// encodeRecord serializes a record the way the file backend stores it:
// pretty-printed with two-space indentation.
func encodeRecord(record *model.UserRecord) ([]byte, error) {
	return json.MarshalIndent(record.Clone(), "", "  ")
}

func unmarshalRecord(data []byte, record *model.UserRecord) error {
	return json.Unmarshal(data, record)
}
