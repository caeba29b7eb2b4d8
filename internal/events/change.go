// Package events carries change notifications for stored rows over AMQP.
// Messages hold identifiers only; consumers read the row from the database.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"fintrack/internal/models"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Change announces that a row was written.
type Change struct {
	Entity    string    `json:"entity"`
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChange stamps a change with the current UTC time.
func NewChange(entity string, id, userID uint, action Action) Change {
	return Change{
		Entity:    entity,
		ID:        id,
		UserID:    userID,
		Action:    action,
		Timestamp: time.Now().UTC(),
	}
}

func (c Change) Validate() error {
	if _, ok := models.EntityTables[c.Entity]; !ok {
		return fmt.Errorf("unknown entity %q", c.Entity)
	}
	if c.ID == 0 {
		return fmt.Errorf("missing id")
	}
	switch c.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
	default:
		return fmt.Errorf("unknown action %q", c.Action)
	}
	return nil
}

func (c Change) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// ParseChange decodes and validates a message body.
func ParseChange(body []byte) (Change, error) {
	var c Change
	if err := json.Unmarshal(body, &c); err != nil {
		return c, fmt.Errorf("decode change: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("invalid change: %w", err)
	}
	return c, nil
}
