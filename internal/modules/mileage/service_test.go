package mileage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palletpulse/palletpulse/internal/database"
	"github.com/palletpulse/palletpulse/internal/domain"
)

type fixedRate float64

func (r fixedRate) GetFloat(key string) (float64, error) { return float64(r), nil }

type brokenRate struct{}

func (brokenRate) GetFloat(key string) (float64, error) {
	return 0, errors.New("settings unavailable")
}

func newTestService(t *testing.T, rate float64) *Service {
	t.Helper()

	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "inventory.db"),
		Name: "inventory",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	repo := NewRepository(db.Conn(), zerolog.Nop())
	return NewService(repo, fixedRate(rate), zerolog.Nop())
}

func TestService_DeductionRoundsToCent(t *testing.T) {
	svc := newTestService(t, 0.67)

	// 23.5 mi * 0.67 = 15.745, rounds to 15.75 (not float-truncated)
	assert.Equal(t, 15.75, svc.Deduction(23.5))
	assert.Equal(t, 0.0, svc.Deduction(0))
	assert.Equal(t, 6.7, svc.Deduction(10))
}

func TestService_DeductionFallsBackToDefaultRate(t *testing.T) {
	svc := newTestService(t, 0.67)
	svc.rates = brokenRate{}

	// 10 mi at the seeded default when settings are unreadable
	assert.Equal(t, 10*DefaultRatePerMile, svc.Deduction(10))
}

func TestService_LogAndList(t *testing.T) {
	svc := newTestService(t, 0.70)

	entry, err := svc.Log(domain.MileageEntry{
		Miles:   42,
		Purpose: "pallet pickup",
		Date:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, 29.4, entry.Deduction)

	entries, err := svc.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "pallet pickup", entries[0].Purpose)
}

func TestService_LogRejectsNonPositiveMiles(t *testing.T) {
	svc := newTestService(t, 0.70)

	_, err := svc.Log(domain.MileageEntry{Miles: 0})
	assert.Error(t, err)

	_, err = svc.Log(domain.MileageEntry{Miles: -3})
	assert.Error(t, err)
}

func TestService_SummarizeFiltersByDate(t *testing.T) {
	svc := newTestService(t, 0.70)

	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

	_, err := svc.Log(domain.MileageEntry{Miles: 10, Date: jan})
	require.NoError(t, err)
	_, err = svc.Log(domain.MileageEntry{Miles: 20, Date: feb})
	require.NoError(t, err)

	all, err := svc.Summarize(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 30.0, all.TotalMiles)
	assert.Equal(t, 21.0, all.TotalDeduction)
	assert.Equal(t, 2, all.EntryCount)

	cutoff := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	febOnly, err := svc.Summarize(&cutoff, nil)
	require.NoError(t, err)
	assert.Equal(t, 20.0, febOnly.TotalMiles)
	assert.Equal(t, 1, febOnly.EntryCount, "count covers the same range as the total")
	assert.Equal(t, 14.0, febOnly.TotalDeduction)

	janOnly, err := svc.Summarize(nil, &cutoff)
	require.NoError(t, err)
	assert.Equal(t, 10.0, janOnly.TotalMiles)
	assert.Equal(t, 1, janOnly.EntryCount)
}

func TestRepository_Delete(t *testing.T) {
	svc := newTestService(t, 0.70)

	entry, err := svc.Log(domain.MileageEntry{Miles: 5})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(entry.ID))
	assert.Error(t, svc.Delete(entry.ID), "second delete reports not found")
}
