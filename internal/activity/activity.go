package activity

import (
	"time"

	activitylogDatamodel "github.com/commercemobile/storefront-admin/internal/core/datamodel/activitylog"
)

// MaxEntries bounds the log. Once full the oldest entry is evicted for each
// new one.
const MaxEntries = 1000

// Entry is a single audit record. Entries are append-only and immutable once
// written.
type Entry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resource_id,omitempty"`
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
}

// Filter narrows a log query. Zero values mean "any". The date bounds are
// inclusive.
type Filter struct {
	UserID    string
	Action    string
	Resource  string
	StartDate *time.Time
	EndDate   *time.Time
}

func (f Filter) Matches(e *Entry) bool {
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.Resource != "" && e.Resource != f.Resource {
		return false
	}
	if f.StartDate != nil && e.Timestamp.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && e.Timestamp.After(*f.EndDate) {
		return false
	}
	return true
}

// Repository persists activity entries. Insert enforces the MaxEntries cap by
// evicting the oldest entries. List applies the filter before pagination and
// returns the pre-pagination total.
type Repository interface {
	Insert(entry *Entry) error
	List(filter Filter, offset, limit int) ([]*Entry, int64, error)
	Clear() (int64, error)
}

func ToDataModel(e *Entry) *activitylogDatamodel.ActivityLog {
	return &activitylogDatamodel.ActivityLog{
		ID:         e.ID,
		UserID:     e.UserID,
		UserName:   e.UserName,
		Action:     e.Action,
		Resource:   e.Resource,
		ResourceID: e.ResourceID,
		Details:    e.Details,
		Timestamp:  e.Timestamp,
		IPAddress:  e.IPAddress,
		UserAgent:  e.UserAgent,
	}
}

func FromDataModel(record *activitylogDatamodel.ActivityLog) *Entry {
	return &Entry{
		ID:         record.ID,
		UserID:     record.UserID,
		UserName:   record.UserName,
		Action:     record.Action,
		Resource:   record.Resource,
		ResourceID: record.ResourceID,
		Details:    record.Details,
		Timestamp:  record.Timestamp,
		IPAddress:  record.IPAddress,
		UserAgent:  record.UserAgent,
	}
}
