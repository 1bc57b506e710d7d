package mileage

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/palletpulse/palletpulse/internal/domain"
)

// RateProvider resolves the per-mile deduction rate from settings.
// Implemented by the settings service.
type RateProvider interface {
	GetFloat(key string) (float64, error)
}

// RateSettingKey is the settings key holding the per-mile rate.
const RateSettingKey = "mileage_rate_per_mile"

// DefaultRatePerMile is the IRS standard mileage rate in dollars per mile.
// It seeds the settings default and backstops unreadable settings.
const DefaultRatePerMile = 0.70

// Service computes deduction values for logged trips.
type Service struct {
	repo  *Repository
	rates RateProvider
	log   zerolog.Logger
}

// NewService creates a new mileage service
func NewService(repo *Repository, rates RateProvider, log zerolog.Logger) *Service {
	return &Service{
		repo:  repo,
		rates: rates,
		log:   log.With().Str("service", "mileage").Logger(),
	}
}

// Entry is a logged trip with its deduction value at the current rate.
type Entry struct {
	domain.MileageEntry
	Deduction float64 `json:"deduction"`
}

// Summary totals logged miles and their deduction value.
type Summary struct {
	TotalMiles     float64 `json:"total_miles"`
	RatePerMile    float64 `json:"rate_per_mile"`
	TotalDeduction float64 `json:"total_deduction"`
	EntryCount     int     `json:"entry_count"`
}

// Deduction converts miles to dollars at the configured rate, rounded to
// the cent.
func (s *Service) Deduction(miles float64) float64 {
	d := decimal.NewFromFloat(miles).Mul(decimal.NewFromFloat(s.rate())).Round(2)
	f, _ := d.Float64()
	return f
}

func (s *Service) rate() float64 {
	rate, err := s.rates.GetFloat(RateSettingKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read mileage rate, using default")
		return DefaultRatePerMile
	}
	return rate
}

// List returns all entries with deduction values at the current rate.
func (s *Service) List() ([]Entry, error) {
	raw, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(raw))
	for _, e := range raw {
		entries = append(entries, Entry{
			MileageEntry: e,
			Deduction:    s.Deduction(e.Miles),
		})
	}
	return entries, nil
}

// Log records a new trip.
func (s *Service) Log(e domain.MileageEntry) (Entry, error) {
	if e.Miles <= 0 {
		return Entry{}, fmt.Errorf("miles must be > 0")
	}
	if e.Date.IsZero() {
		e.Date = time.Now().UTC()
	}

	created, err := s.repo.Create(e)
	if err != nil {
		return Entry{}, err
	}

	s.log.Info().
		Str("entry", created.ID).
		Float64("miles", created.Miles).
		Msg("Trip logged")

	return Entry{MileageEntry: created, Deduction: s.Deduction(created.Miles)}, nil
}

// Delete removes a logged trip.
func (s *Service) Delete(id string) error {
	return s.repo.Delete(id)
}

// Summarize totals the logged miles, optionally within a date range. The
// entry count covers the same range as the mileage total.
func (s *Service) Summarize(from, to *time.Time) (Summary, error) {
	miles, count, err := s.repo.Totals(from, to)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		TotalMiles:     miles,
		RatePerMile:    s.rate(),
		TotalDeduction: s.Deduction(miles),
		EntryCount:     count,
	}, nil
}
