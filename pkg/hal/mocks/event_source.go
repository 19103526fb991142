package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/halio-project/halio-go/pkg/hal"
)

// EventSource is a mock implementation of hal.EventSource.
type EventSource struct {
	mock.Mock
}

// RegisterCallback provides a mock function with given fields: h, e, fn.
func (m *EventSource) RegisterCallback(h hal.Handle, e hal.Event, fn hal.Trampoline) error {
	args := m.Called(h, e, fn)
	return args.Error(0)
}

// UnregisterCallback provides a mock function with given fields: h, e.
func (m *EventSource) UnregisterCallback(h hal.Handle, e hal.Event) error {
	args := m.Called(h, e)
	return args.Error(0)
}

// NewEventSource creates a new mock with expectations asserted on test
// cleanup.
func NewEventSource(t interface {
	mock.TestingT
	Cleanup(func())
}) *EventSource {
	m := &EventSource{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Compile-time interface satisfaction check.
var _ hal.EventSource = (*EventSource)(nil)
