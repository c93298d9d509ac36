package jobs

import (
	"github.com/chesspost/chesspost/internal/notify"
	"github.com/chesspost/chesspost/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	notifyPool *worker.Pool
	notifier   notify.Notifier
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(notifyPool *worker.Pool, notifier notify.Notifier) JobQueue {
	return &WorkerQueue{
		notifyPool: notifyPool,
		notifier:   notifier,
	}
}

func (q *WorkerQueue) EnqueueNotification(to, subject, body string) error {
	return q.notifyPool.Submit(&worker.SendNotificationJob{
		Notifier: q.notifier,
		To:       to,
		Subject:  subject,
		Body:     body,
	})
}
