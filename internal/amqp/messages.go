package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types published after successful writes.
const (
	EventExpenseChanged = "expense.changed"
	EventBudgetChanged  = "budget.changed"
)

// Actions carried by an event.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionUpsert = "upsert"
)

// Event tells the worker that a user's spending picture changed.
// It carries ids only; the worker reloads current state from the store.
type Event struct {
	Type      string    `json:"type"`
	Action    string    `json:"action"`
	UserID    string    `json:"user_id"`
	ExpenseID string    `json:"expense_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEvent(userID, expenseID, action string) *Event {
	return &Event{
		Type:      EventExpenseChanged,
		Action:    action,
		UserID:    userID,
		ExpenseID: expenseID,
		Timestamp: time.Now().UTC(),
	}
}

func NewBudgetEvent(userID string) *Event {
	return &Event{
		Type:      EventBudgetChanged,
		Action:    ActionUpsert,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes and checks a message body.
func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Type {
	case EventExpenseChanged, EventBudgetChanged:
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.UserID == "" {
		return nil, fmt.Errorf("event %s has no user id", e.Type)
	}
	return &e, nil
}
