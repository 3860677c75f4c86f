package logging

import "sync"

// MockLogger records messages for assertions in tests.
type MockLogger struct {
	mu       sync.Mutex
	Messages []string
}

// NewMockLogger creates a MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) record(level, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, level+": "+msg)
}

func (m *MockLogger) Debug(msg string, fields ...Field) { m.record("DEBUG", msg) }
func (m *MockLogger) Info(msg string, fields ...Field)  { m.record("INFO", msg) }
func (m *MockLogger) Warn(msg string, fields ...Field)  { m.record("WARN", msg) }
func (m *MockLogger) Error(msg string, fields ...Field) { m.record("ERROR", msg) }

func (m *MockLogger) WithError(err error) Logger                        { return m }
func (m *MockLogger) WithField(key string, value interface{}) Logger    { return m }
func (m *MockLogger) WithFields(fields ...Field) Logger                 { return m }
