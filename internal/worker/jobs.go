package worker

import (
	"context"

	"github.com/chesspost/chesspost/internal/notify"
)

// SendNotificationJob delivers one notification through the configured
// notifier.
type SendNotificationJob struct {
	Notifier notify.Notifier
	To       string
	Subject  string
	Body     string
}

func (j *SendNotificationJob) Name() string {
	return "send_notification"
}

func (j *SendNotificationJob) Run(ctx context.Context) error {
	return j.Notifier.Send(ctx, j.To, j.Subject, j.Body)
}
