// Package notify delivers change notifications after a write commits.
// Delivery is best effort and at most once: nothing here can fail a request.
package notify

import (
	"encoding/json"
	"time"
)

// DefaultTopic is the single topic every change is published on.
const DefaultTopic = "orgatlas.changes"

type Entity string

const (
	EntityLocation     Entity = "location"
	EntityCoordinates  Entity = "coordinates"
	EntityAddress      Entity = "address"
	EntityOrganization Entity = "organization"
	EntityImport       Entity = "import"
)

type Action string

const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionDeleted  Action = "deleted"
	ActionMerged   Action = "merged"
	ActionImported Action = "imported"
)

// Message describes one committed change. Subscribers re-read state; the
// message carries no entity payload.
type Message struct {
	Entity     Entity    `json:"entity"`
	Action     Action    `json:"action"`
	ID         int64     `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
	RequestID  string    `json:"request_id,omitempty"`
}

// Key is the partition key used by keyed transports.
func (m Message) Key() string {
	return string(m.Entity)
}

func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}
