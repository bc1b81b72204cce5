package cache

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// memory is the in-process L1 in front of the file cache.
type memory struct {
	c *ristretto.Cache[string, []byte]
}

func newMemory(maxCostBytes int64) (*memory, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: max(maxCostBytes/100*10, 1000),
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &memory{c: c}, nil
}

func (m *memory) get(key string) (string, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return "", false
	}
	return string(v), true
}

// set stores value and waits for the write buffer to drain so that an
// immediate get observes it.
func (m *memory) set(key, value string, ttl time.Duration) {
	m.c.SetWithTTL(key, []byte(value), int64(len(value)), ttl)
	m.c.Wait()
}

func (m *memory) del(key string) {
	m.c.Del(key)
}

func (m *memory) clear() {
	m.c.Clear()
}

func (m *memory) close() {
	m.c.Close()
}
