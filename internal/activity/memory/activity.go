package memory

import (
	"sync"

	"github.com/commercemobile/storefront-admin/internal/activity"
)

// ActivityRepository keeps the log in memory, newest first, capped at
// activity.MaxEntries.
type ActivityRepository struct {
	mu      sync.RWMutex
	entries []*activity.Entry
}

func NewActivityRepository() activity.Repository {
	return &ActivityRepository{}
}

func (r *ActivityRepository) Insert(entry *activity.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *entry
	r.entries = append([]*activity.Entry{&copied}, r.entries...)
	if len(r.entries) > activity.MaxEntries {
		r.entries = r.entries[:activity.MaxEntries]
	}
	return nil
}

func (r *ActivityRepository) List(filter activity.Filter, offset, limit int) ([]*activity.Entry, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*activity.Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if filter.Matches(e) {
			matched = append(matched, e)
		}
	}
	total := int64(len(matched))

	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}

	out := make([]*activity.Entry, len(matched))
	for i, e := range matched {
		copied := *e
		out[i] = &copied
	}
	return out, total, nil
}

func (r *ActivityRepository) Clear() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := int64(len(r.entries))
	r.entries = nil
	return removed, nil
}
