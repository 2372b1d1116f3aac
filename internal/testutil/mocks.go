package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/sigainv/siga-backend/internal/db"
)

// MockEmailService is a mock implementation of the queue's email sender
type MockEmailService struct {
	mock.Mock
}

func NewMockEmailService(t *testing.T) *MockEmailService {
	m := &MockEmailService{}
	m.Test(t)
	return m
}

func (m *MockEmailService) SendEmail(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// ExpectSendEmail sets up expectation for SendEmail
func (m *MockEmailService) ExpectSendEmail(to string, err error) *mock.Call {
	return m.On("SendEmail", mock.Anything, to, mock.Anything, mock.Anything).Return(err)
}

// MockNotifier is a mock implementation of the workflow notifier
type MockNotifier struct {
	mock.Mock
}

func NewMockNotifier(t *testing.T) *MockNotifier {
	m := &MockNotifier{}
	m.Test(t)
	return m
}

func (m *MockNotifier) NotifyLowStock(ctx context.Context, material db.Material) error {
	args := m.Called(ctx, material)
	return args.Error(0)
}

// ExpectNotifyLowStock sets up expectation for NotifyLowStock
func (m *MockNotifier) ExpectNotifyLowStock() *mock.Call {
	return m.On("NotifyLowStock", mock.Anything, mock.Anything).Return(nil)
}
