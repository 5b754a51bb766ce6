package storage

// Memory is an in-process KV. It is not safe for concurrent use.
type Memory struct {
	slots map[string]string
	// Writes counts successful Set calls.
	Writes int
}

func NewMemory() *Memory {
	return &Memory{slots: map[string]string{}}
}

func (m *Memory) Get(key string) (string, bool, error) {
	v, ok := m.slots[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.slots[key] = value
	m.Writes++
	return nil
}

func (m *Memory) Close() error { return nil }
