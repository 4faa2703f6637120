package testutil

import (
	"context"
	"errors"
	"sync"
)

// MockConn implements chat.Conn for testing. It records every payload and
// can be switched to fail sends to simulate a dead connection.
type MockConn struct {
	mu       sync.Mutex
	messages [][]byte
	failErr  error
}

// NewMockConn creates a healthy mock connection.
func NewMockConn() *MockConn {
	return &MockConn{}
}

// Send records a payload, or returns the configured failure.
func (m *MockConn) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.messages = append(m.messages, cp)
	return nil
}

// Fail makes every subsequent Send return an error.
func (m *MockConn) Fail() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = errors.New("connection gone")
}

// Messages returns a copy of all payloads delivered so far.
func (m *MockConn) Messages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([][]byte, len(m.messages))
	copy(cp, m.messages)
	return cp
}

// FakeDurable implements chat.DurableStore in memory, newest entries first.
// Individual operations can be made to fail to exercise fallback paths.
type FakeDurable struct {
	mu       sync.Mutex
	lists    map[string][]string
	FailPing bool
	FailPush bool
	FailTrim bool
	FailRead bool
}

// NewFakeDurable creates an empty fake store.
func NewFakeDurable() *FakeDurable {
	return &FakeDurable{lists: make(map[string][]string)}
}

func (f *FakeDurable) Ping(ctx context.Context) error {
	if f.FailPing {
		return errors.New("ping failed")
	}
	return nil
}

func (f *FakeDurable) PushFront(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailPush {
		return errors.New("push failed")
	}
	f.lists[key] = append([]string{value}, f.lists[key]...)
	return nil
}

func (f *FakeDurable) Trim(ctx context.Context, key string, start, stop int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailTrim {
		return errors.New("trim failed")
	}
	list := f.lists[key]
	if start < 0 || start >= int64(len(list)) {
		return nil
	}
	if stop >= int64(len(list)) {
		stop = int64(len(list)) - 1
	}
	f.lists[key] = list[start : stop+1]
	return nil
}

func (f *FakeDurable) Range(ctx context.Context, key string, start, stop int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailRead {
		return nil, errors.New("range failed")
	}
	list := f.lists[key]
	if start >= int64(len(list)) {
		return nil, nil
	}
	if stop >= int64(len(list)) {
		stop = int64(len(list)) - 1
	}
	out := make([]string, stop-start+1)
	copy(out, list[start:stop+1])
	return out, nil
}

// Len returns the stored list length for key.
func (f *FakeDurable) Len(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.lists[key])
}

// Inject places a raw record at the front of the list, bypassing failure
// switches. Useful for seeding undecodable entries.
func (f *FakeDurable) Inject(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[key] = append([]string{value}, f.lists[key]...)
}
