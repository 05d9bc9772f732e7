package core

import (
	"context"
	"time"
)

const (
	EventSubmissionCreated       = "submission.created"
	EventCourseEnrollmentChanged = "course.enrollment_changed"
	EventCourseDeleted           = "course.deleted"
)

// Event is a domain notification published after a successful mutation.
type Event struct {
	Type       string                 `json:"type"`
	Key        string                 `json:"key"`
	OccurredAt time.Time              `json:"occurredAt"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

func NewEvent(typ, key string, data map[string]interface{}) Event {
	return Event{Type: typ, Key: key, OccurredAt: time.Now().UTC(), Data: data}
}

// EventPublisher delivers events to interested consumers.
// Publishing is best effort: a failure never rolls back the mutation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}
