package mqtt

import "sync"

// MockClient records published messages for tests.
type MockClient struct {
	mu       sync.Mutex
	Messages map[string][][]byte
	FailAll  bool
}

// NewMockClient creates a new MockClient.
func NewMockClient() *MockClient {
	return &MockClient{Messages: make(map[string][][]byte)}
}

// Publish stores the payload under the topic or fails if configured to.
func (m *MockClient) Publish(topic string, payload []byte, qos byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return errPublishFailed
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	m.Messages[topic] = append(m.Messages[topic], cp)
	return nil
}

// Published returns the payloads recorded for a topic.
func (m *MockClient) Published(topic string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Messages[topic]
}

// Close is a no-op.
func (m *MockClient) Close() {}

type publishError string

func (e publishError) Error() string { return string(e) }

const errPublishFailed = publishError("publish failed")
