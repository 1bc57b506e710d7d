// Package subscriptions tracks the account's tier and gates premium
// features. There is exactly one subscription row; the free tier is the
// absence of anything else.
package subscriptions

import "time"

// Tier is the subscription level.
type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

// Entitlement names a gated capability.
type Entitlement string

const (
	EntitlementAnalytics        Entitlement = "analytics"
	EntitlementExport           Entitlement = "export"
	EntitlementUnlimitedPallets Entitlement = "unlimited_pallets"
)

// tierEntitlements maps each tier to what it unlocks. Free gets the
// core tracker only, capped at the configured pallet limit.
var tierEntitlements = map[Tier][]Entitlement{
	TierFree: {},
	TierPro:  {EntitlementAnalytics, EntitlementExport, EntitlementUnlimitedPallets},
}

// Subscription is the single account subscription record.
type Subscription struct {
	Tier      Tier       `json:"tier"`
	ExpiresAt *time.Time `json:"expires_at"` // nil means no expiry
	UpdatedAt time.Time  `json:"updated_at"`
}

// Active reports whether the subscription grants its tier right now.
// An expired pro subscription behaves as free.
func (s Subscription) Active(now time.Time) bool {
	if s.Tier == TierFree {
		return true
	}
	return s.ExpiresAt == nil || s.ExpiresAt.After(now)
}

// EffectiveTier is the tier after expiry is applied.
func (s Subscription) EffectiveTier(now time.Time) Tier {
	if !s.Active(now) {
		return TierFree
	}
	return s.Tier
}

// Allows reports whether the subscription currently grants an entitlement.
func (s Subscription) Allows(e Entitlement, now time.Time) bool {
	for _, granted := range tierEntitlements[s.EffectiveTier(now)] {
		if granted == e {
			return true
		}
	}
	return false
}
