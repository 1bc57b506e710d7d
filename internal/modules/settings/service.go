package settings

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/palletpulse/palletpulse/internal/domain"
	"github.com/palletpulse/palletpulse/internal/modules/profit"
)

// Service exposes typed settings access and derived configuration such as
// the marketplace fee schedule.
type Service struct {
	repo *Repository
	log  zerolog.Logger
}

// NewService creates a new settings service
func NewService(repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("service", "settings").Logger(),
	}
}

// GetString returns a setting value, or empty string when unset.
func (s *Service) GetString(key string) (string, error) {
	val, err := s.repo.Get(key)
	if err != nil {
		return "", err
	}
	if val == nil {
		return "", nil
	}
	return *val, nil
}

// GetFloat returns a numeric setting, falling back to the seeded default.
func (s *Service) GetFloat(key string) (float64, error) {
	fallback := 0.0
	if def, ok := SettingDefaults[key].(float64); ok {
		fallback = def
	}
	return s.repo.GetFloat(key, fallback)
}

// GetBool returns a boolean setting, falling back to the seeded default.
func (s *Service) GetBool(key string) (bool, error) {
	fallback := false
	if def, ok := SettingDefaults[key].(float64); ok {
		fallback = def != 0
	}
	return s.repo.GetBool(key, fallback)
}

// Set stores a setting value.
func (s *Service) Set(key, value string) error {
	return s.repo.Set(key, value, nil)
}

// All returns every stored setting.
func (s *Service) All() (map[string]string, error) {
	return s.repo.GetAll()
}

// FeeSchedule builds the authoritative marketplace fee schedule from the
// settings store. Missing or invalid rates fall back to the static
// defaults, so the schedule is always complete.
func (s *Service) FeeSchedule() (profit.FeeSchedule, error) {
	schedule := make(profit.FeeSchedule, len(domain.Marketplaces))

	for _, m := range domain.Marketplaces {
		def := profit.DefaultFeeRates[m]

		local, err := s.repo.GetFloat(feeLocalKey(m), def.Local)
		if err != nil {
			return nil, fmt.Errorf("failed to read fee rate for %s: %w", m, err)
		}
		shipped, err := s.repo.GetFloat(feeShippedKey(m), def.Shipped)
		if err != nil {
			return nil, fmt.Errorf("failed to read fee rate for %s: %w", m, err)
		}

		schedule[m] = profit.FeeRate{Local: local, Shipped: shipped}
	}

	return schedule, nil
}

// AllocationPolicy resolves the configured unsellable-item policy.
func (s *Service) AllocationPolicy() (profit.AllocationPolicy, error) {
	include, err := s.GetBool("allocation_include_unsellable")
	if err != nil {
		return profit.ExcludeUnsellable, err
	}
	if include {
		return profit.IncludeUnsellable, nil
	}
	return profit.ExcludeUnsellable, nil
}
