package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/chaitanyaghughuskar/cdac-project/core"
	"github.com/chaitanyaghughuskar/cdac-project/ports"
)

const (
	// TopicAttendanceMarked carries successful attendance marks.
	TopicAttendanceMarked = "attendance.marked"
	// TopicCredentialEnrolled carries completed device enrollments.
	TopicCredentialEnrolled = "credential.enrolled"
)

// AttendanceMarkedEvent is the payload published after a record commits.
type AttendanceMarkedEvent struct {
	RecordID  string    `json:"record_id"`
	SessionID string    `json:"session_id"`
	StudentID string    `json:"student_id"`
	MarkedAt  time.Time `json:"marked_at"`
}

// CredentialEnrolledEvent is the payload published after enrollment.
type CredentialEnrolledEvent struct {
	UserID     string    `json:"user_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishAttendanceMarked publishes an attendance.marked event.
func (p *WatermillPublisher) PublishAttendanceMarked(ctx context.Context, rec core.AttendanceRecord) error {
	event := AttendanceMarkedEvent{
		RecordID:  rec.ID,
		SessionID: rec.SessionID,
		StudentID: rec.StudentID,
		MarkedAt:  rec.MarkedAt,
	}
	return p.publish(TopicAttendanceMarked, rec.ID, event)
}

// PublishCredentialEnrolled publishes a credential.enrolled event.
func (p *WatermillPublisher) PublishCredentialEnrolled(ctx context.Context, userID string) error {
	event := CredentialEnrolledEvent{
		UserID:     userID,
		EnrolledAt: time.Now(),
	}
	return p.publish(TopicCredentialEnrolled, userID, event)
}

func (p *WatermillPublisher) publish(topic, id string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(id, payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

var _ ports.EventPublisher = (*WatermillPublisher)(nil)
