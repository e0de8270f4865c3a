// Package tier defines the entitlement levels and their limits.
//
// The limits table is an immutable value passed to the entitlement engine
// rather than a mutable package global, so tests can substitute alternate
// tables without touching process state.
package tier

// Tier is a named entitlement level.
type Tier string

const (
	Trial   Tier = "trial"
	Free    Tier = "free"
	Basic   Tier = "basic"
	Premium Tier = "premium"
	Elite   Tier = "elite"
)

// Unlimited marks a quota with no daily cap.
const Unlimited = -1

// Module access scopes.
const (
	ModulesAll   = "all"
	ModulesBasic = "basic"
)

// Limits describes what a tier may do.
type Limits struct {
	AIMessagesPerDay int    `json:"aiMessagesPerDay"`
	ModulesAccess    string `json:"modulesAccess"`
	BookingAccess    bool   `json:"bookingAccess"`
	VoiceCallAccess  bool   `json:"voiceCallAccess"`
}

// Table maps tiers to limits.
type Table map[Tier]Limits

// DefaultTable returns the compiled tier configuration.
func DefaultTable() Table {
	return Table{
		Trial: {
			AIMessagesPerDay: Unlimited,
			ModulesAccess:    ModulesAll,
			BookingAccess:    true,
			VoiceCallAccess:  true,
		},
		Free: {
			AIMessagesPerDay: 5,
			ModulesAccess:    ModulesBasic,
			BookingAccess:    false,
			VoiceCallAccess:  false,
		},
		Basic: {
			AIMessagesPerDay: Unlimited,
			ModulesAccess:    ModulesAll,
			BookingAccess:    false,
			VoiceCallAccess:  false,
		},
		Premium: {
			AIMessagesPerDay: Unlimited,
			ModulesAccess:    ModulesAll,
			BookingAccess:    true,
			VoiceCallAccess:  true,
		},
		Elite: {
			AIMessagesPerDay: Unlimited,
			ModulesAccess:    ModulesAll,
			BookingAccess:    true,
			VoiceCallAccess:  true,
		},
	}
}

// Limits resolves a tier's limits, falling back to the free tier for
// unknown values so a bad row never grants unlimited access.
func (t Table) Limits(tr Tier) Limits {
	if limits, ok := t[tr]; ok {
		return limits
	}
	return t[Free]
}

// Known reports whether the tier exists in the table.
func (t Table) Known(tr Tier) bool {
	_, ok := t[tr]
	return ok
}

// Tiers returns the tier names in a stable order.
func (t Table) Tiers() []Tier {
	order := []Tier{Trial, Free, Basic, Premium, Elite}
	out := make([]Tier, 0, len(order))
	for _, tr := range order {
		if _, ok := t[tr]; ok {
			out = append(out, tr)
		}
	}
	return out
}
