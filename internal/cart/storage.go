package cart

import (
	"encoding/json"
	"errors"
	"sync"
)

// StorageKey is the fixed key the cart is persisted under.
const StorageKey = "cart"

var ErrNoValue = errors.New("no value")

// Storage is a non-volatile key/value store.
type Storage interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Load re-hydrates the cart from storage. Missing or unparsable state yields an empty cart.
func Load(s Storage) *Cart {
	c := &Cart{storage: s}
	data, err := s.Get(StorageKey)
	if err != nil {
		return c
	}
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return c
	}
	for _, l := range lines {
		if l.Quantity > 0 {
			c.lines = append(c.lines, l)
		}
	}
	return c
}

func (c *Cart) persist() {
	if c.storage == nil {
		return
	}
	data, err := json.Marshal(c.Lines())
	if err != nil {
		return
	}
	_ = c.storage.Set(StorageKey, data)
}

// MemoryStorage is a Storage backed by a map.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (m *MemoryStorage) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNoValue
	}
	return v, nil
}

func (m *MemoryStorage) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
