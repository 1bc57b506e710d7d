package subscriptions

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/palletpulse/palletpulse/internal/events"
)

// Service manages the account tier and enforces premium gates.
type Service struct {
	repo     *Repository
	eventMgr *events.Manager
	log      zerolog.Logger
}

// NewService creates a new subscription service
func NewService(repo *Repository, eventMgr *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		eventMgr: eventMgr,
		log:      log.With().Str("service", "subscriptions").Logger(),
	}
}

// Current returns the stored subscription.
func (s *Service) Current() (Subscription, error) {
	return s.repo.Get()
}

// Upgrade switches the account to a tier, with an optional expiry.
func (s *Service) Upgrade(tier Tier, expiresAt *time.Time) (Subscription, error) {
	if tier != TierFree && tier != TierPro {
		return Subscription{}, fmt.Errorf("unknown tier %q", tier)
	}

	sub := Subscription{Tier: tier, ExpiresAt: expiresAt, UpdatedAt: time.Now().UTC()}
	if err := s.repo.Set(sub); err != nil {
		return Subscription{}, err
	}

	s.log.Info().Str("tier", string(tier)).Msg("Subscription updated")
	return sub, nil
}

// Allows reports whether the current subscription grants an entitlement.
func (s *Service) Allows(e Entitlement) (bool, error) {
	sub, err := s.repo.Get()
	if err != nil {
		return false, err
	}
	return sub.Allows(e, time.Now().UTC()), nil
}

// UnlimitedPallets reports whether the pallet-count cap applies.
// Satisfies the pallets module's quota interface.
func (s *Service) UnlimitedPallets() (bool, error) {
	return s.Allows(EntitlementUnlimitedPallets)
}

// Sweep downgrades an expired pro subscription to free. Run daily by the
// scheduler.
func (s *Service) Sweep() error {
	sub, err := s.repo.Get()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if sub.Tier == TierFree || sub.Active(now) {
		return nil
	}

	if err := s.repo.Set(Subscription{Tier: TierFree, UpdatedAt: now}); err != nil {
		return fmt.Errorf("failed to downgrade expired subscription: %w", err)
	}

	s.log.Info().
		Str("was", string(sub.Tier)).
		Time("expired_at", *sub.ExpiresAt).
		Msg("Expired subscription swept to free tier")

	s.eventMgr.Emit(events.SubscriptionSwept, "subscriptions", map[string]interface{}{
		"was": string(sub.Tier),
	})
	return nil
}

// Require is chi middleware that rejects requests with 402 Payment
// Required unless the current tier grants the entitlement.
func (s *Service) Require(e Entitlement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := s.Allows(e)
			if err != nil {
				s.log.Error().Err(err).Msg("Failed to check entitlement")
				http.Error(w, `{"error":"failed to check subscription"}`, http.StatusInternalServerError)
				return
			}
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusPaymentRequired)
				fmt.Fprintf(w, `{"error":"%s requires a pro subscription"}`, e)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
