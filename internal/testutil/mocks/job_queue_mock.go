package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueNotification(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}
