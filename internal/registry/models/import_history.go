package models

import (
	"time"

	id "orgatlas/pkg/domain"
)

type ImportStatus int

// Stored as smallint; values match existing rows.
const (
	ImportSuccess ImportStatus = 0
	ImportError   ImportStatus = 1
)

func (s ImportStatus) String() string {
	if s == ImportError {
		return "ERROR"
	}
	return "SUCCESS"
}

func (s ImportStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ImportHistory records the outcome of one bulk import request.
type ImportHistory struct {
	ID           id.ImportID  `json:"id"`
	CreationDate time.Time    `json:"creation_date"`
	Status       ImportStatus `json:"status"`
	Counter      int          `json:"counter"`
	Message      string       `json:"message,omitempty"`
}
