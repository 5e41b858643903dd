package index

import (
	"context"
	"sync"

	"github.com/sdejongh/doppelganger/pkg/models"
)

// slot tracks one fingerprint: seen once (first set) or clustered
type slot struct {
	first   models.FileRecord
	cluster *models.Cluster
}

// Memory is an in-process index. Each fingerprint moves from unseen to
// seen-once to clustered; clusters are reported in the order they formed.
type Memory struct {
	mu       sync.Mutex
	slots    map[uint64]*slot
	clusters []*models.Cluster
	count    int
}

// NewMemory creates an empty in-memory index
func NewMemory() *Memory {
	return &Memory{
		slots: make(map[uint64]*slot),
	}
}

// Add inserts a record in amortised constant time
func (m *Memory) Add(record models.FileRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.count++

	s, ok := m.slots[record.Fingerprint]
	if !ok {
		m.slots[record.Fingerprint] = &slot{first: record}
		return
	}

	if s.cluster == nil {
		s.cluster = models.NewCluster(s.first, record)
		s.first = models.FileRecord{}
		m.clusters = append(m.clusters, s.cluster)
		return
	}

	s.cluster.Append(record)
}

// Clusters returns every fingerprint with at least two members
func (m *Memory) Clusters(ctx context.Context) ([]*models.Cluster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*models.Cluster, len(m.clusters))
	copy(out, m.clusters)
	return out, nil
}

// Len returns the number of records added
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// Close drops all state
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots = make(map[uint64]*slot)
	m.clusters = nil
	return nil
}
