package storage

import "sync"

// Memory is a KV kept in process memory. It is used by tests and by
// callers that do not want anything written to disk.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
	// FailWrites makes every write return the given error.
	FailWrites error
}

var _ KV = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{values: map[string]string{}}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	return m.SetMany(map[string]string{key: value})
}

func (m *Memory) SetMany(entries map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	for k, v := range entries {
		m.values[k] = v
	}
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	delete(m.values, key)
	return nil
}
