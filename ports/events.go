package ports

import (
	"context"

	"github.com/chaitanyaghughuskar/cdac-project/core"
)

// EventPublisher notifies downstream consumers (dashboards, reports)
// about protocol outcomes.
type EventPublisher interface {
	PublishAttendanceMarked(ctx context.Context, rec core.AttendanceRecord) error
	PublishCredentialEnrolled(ctx context.Context, userID string) error
}
