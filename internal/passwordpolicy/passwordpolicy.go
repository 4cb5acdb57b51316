package passwordpolicy

import "time"

// Policy is the global password policy. There is exactly one; it is only
// mutated through the update/reset operations and every change is audited.
type Policy struct {
	MinLength           int  `json:"min_length"`
	RequireUppercase    bool `json:"require_uppercase"`
	RequireLowercase    bool `json:"require_lowercase"`
	RequireNumbers      bool `json:"require_numbers"`
	RequireSpecialChars bool `json:"require_special_chars"`
	ExpiryDays          int  `json:"expiry_days"`
	PreventReuse        int  `json:"prevent_reuse"`
}

// ValidationResult carries every violated rule, not just the first, so a
// client can render the complete checklist.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// HistoryStore keeps the most recent password hashes per user, bounded by
// the policy's prevent_reuse count.
type HistoryStore interface {
	Add(userID, passwordHash string, keep int) error
	Hashes(userID string) ([]string, error)
}

func ExpiryDate(lastChange time.Time, expiryDays int) time.Time {
	return lastChange.AddDate(0, 0, expiryDays)
}

// IsExpired reports whether the expiry timestamp has passed. A nil expiry
// means the password never expires.
func IsExpired(expires *time.Time) bool {
	if expires == nil {
		return false
	}
	return expires.Before(time.Now())
}
