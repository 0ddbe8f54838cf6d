package providers

import (
	"context"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockReply is one scripted response for the mock client.
type MockReply struct {
	Content string
	Err     error
}

// MockClient is a ChatClient for testing. Replies are consumed in order;
// once exhausted, the last reply repeats.
type MockClient struct {
	Replies []MockReply
	Latency time.Duration

	requestCount atomic.Int64
}

// NewMockClient creates a mock that always returns content.
func NewMockClient(content string) *MockClient {
	return &MockClient{Replies: []MockReply{{Content: content}}}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// RequestCount returns the number of Chat calls made so far.
func (c *MockClient) RequestCount() int {
	return int(c.requestCount.Load())
}

// Chat returns the next scripted reply.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	n := c.requestCount.Add(1)

	if c.Latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.Latency):
		}
	}

	idx := int(n) - 1
	if idx >= len(c.Replies) {
		idx = len(c.Replies) - 1
	}
	if idx < 0 {
		return &ChatResult{Provider: MockClientName, RequestID: req.RequestID}, nil
	}

	reply := c.Replies[idx]
	if reply.Err != nil {
		return nil, reply.Err
	}
	return &ChatResult{
		Content:   reply.Content,
		Provider:  MockClientName,
		ModelUsed: "mock-model",
		RequestID: req.RequestID,
	}, nil
}
