package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

// MockMessagePublisher мок для MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// EventTypes возвращает event_type всех отправленных сообщений по порядку
func (m *MockMessagePublisher) EventTypes() []string {
	var types []string
	for _, call := range m.Calls {
		if call.Method != "PublishMessage" {
			continue
		}
		var event struct {
			EventType string `json:"event_type"`
		}
		if err := json.Unmarshal(call.Arguments.Get(2).([]byte), &event); err == nil {
			types = append(types, event.EventType)
		}
	}
	return types
}

// Removed возвращает поле removed каждого отправленного события типа eventType
func (m *MockMessagePublisher) Removed(eventType string) []map[string]int64 {
	var out []map[string]int64
	for _, call := range m.Calls {
		if call.Method != "PublishMessage" {
			continue
		}
		var event struct {
			EventType string           `json:"event_type"`
			Removed   map[string]int64 `json:"removed"`
		}
		if err := json.Unmarshal(call.Arguments.Get(2).([]byte), &event); err == nil && event.EventType == eventType {
			out = append(out, event.Removed)
		}
	}
	return out
}
