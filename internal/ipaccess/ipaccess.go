package ipaccess

import (
	"net/netip"
	"strings"

	"github.com/commercemobile/storefront-admin/internal"
)

// Mode selects how the rule list is interpreted.
type Mode string

const (
	// ModeAllowlist admits only addresses matching a rule.
	ModeAllowlist Mode = "allowlist"
	// ModeDenylist admits everything except addresses matching a rule.
	ModeDenylist Mode = "denylist"
)

func (m Mode) Valid() bool {
	return m == ModeAllowlist || m == ModeDenylist
}

// Rule is a single IPv4 address or CIDR range.
type Rule struct {
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// Settings is the global IP restriction configuration consulted at login.
// While Enabled is false every address is admitted.
type Settings struct {
	Enabled bool   `json:"enabled"`
	Mode    Mode   `json:"mode"`
	Rules   []Rule `json:"rules"`
}

// ValidateRule accepts a bare IPv4 address or an IPv4 CIDR range.
func ValidateRule(value string) error {
	if strings.Contains(value, "/") {
		prefix, err := netip.ParsePrefix(value)
		if err != nil || !prefix.Addr().Is4() {
			return internal.NewValidationError("invalid IPv4 CIDR range: "+value, internal.ErrCodeInvalidIP)
		}
		return nil
	}
	addr, err := netip.ParseAddr(value)
	if err != nil || !addr.Is4() {
		return internal.NewValidationError("invalid IPv4 address: "+value, internal.ErrCodeInvalidIP)
	}
	return nil
}

// ruleMatches reports whether addr falls under the rule. Rules that fail to
// parse never match.
func ruleMatches(rule string, addr netip.Addr) bool {
	if strings.Contains(rule, "/") {
		prefix, err := netip.ParsePrefix(rule)
		if err != nil {
			return false
		}
		return prefix.Contains(addr)
	}
	ruleAddr, err := netip.ParseAddr(rule)
	if err != nil {
		return false
	}
	return ruleAddr == addr
}
