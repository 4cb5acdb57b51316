package memory

import "sync"

// HistoryStore is the in-memory password history backend. Hashes are kept
// newest-first and trimmed to the requested window on insert.
type HistoryStore struct {
	mu     sync.RWMutex
	hashes map[string][]string
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{hashes: make(map[string][]string)}
}

func (s *HistoryStore) Add(userID, passwordHash string, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := append([]string{passwordHash}, s.hashes[userID]...)
	if keep > 0 && len(entries) > keep {
		entries = entries[:keep]
	}
	s.hashes[userID] = entries
	return nil
}

func (s *HistoryStore) Hashes(userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.hashes[userID]
	out := make([]string, len(entries))
	copy(out, entries)
	return out, nil
}
