package session

import (
	"context"
	"sync"
	"time"

	"school_inspection_bot/internal/domain/collection"
)

// MemoryDraftStore keeps one session per submitter in-process. Sessions idle
// longer than the timeout are treated as gone.
type MemoryDraftStore struct {
	mu          sync.Mutex
	sessions    map[int64]collection.Session
	idleTimeout time.Duration
	now         func() time.Time
}

// NewMemoryDraftStore builds a store; idleTimeout <= 0 disables expiry.
func NewMemoryDraftStore(idleTimeout time.Duration) *MemoryDraftStore {
	return &MemoryDraftStore{
		sessions:    make(map[int64]collection.Session),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

func (m *MemoryDraftStore) Get(ctx context.Context, submitterID int64) (*collection.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[submitterID]
	if !ok {
		return nil, collection.ErrDraftNotFound
	}
	if m.expired(s, m.now()) {
		delete(m.sessions, submitterID)
		return nil, collection.ErrDraftNotFound
	}
	return &s, nil
}

func (m *MemoryDraftStore) Save(ctx context.Context, s *collection.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.SubmitterID] = *s
	return nil
}

func (m *MemoryDraftStore) Delete(ctx context.Context, submitterID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, submitterID)
	return nil
}

// PurgeIdle drops every expired session and reports how many were removed.
func (m *MemoryDraftStore) PurgeIdle(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	purged := 0
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
			purged++
		}
	}
	return purged, nil
}

func (m *MemoryDraftStore) expired(s collection.Session, now time.Time) bool {
	return m.idleTimeout > 0 && now.Sub(s.UpdatedAt) > m.idleTimeout
}
