package snapshots

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palletpulse/palletpulse/internal/database"
	"github.com/palletpulse/palletpulse/internal/domain"
	"github.com/palletpulse/palletpulse/internal/events"
	"github.com/palletpulse/palletpulse/internal/modules/profit"
)

type fakeInventory struct {
	pallets   []domain.Pallet
	summaries map[string]profit.PalletSummary
}

func (f *fakeInventory) GetAll() ([]domain.Pallet, error) { return f.pallets, nil }

func (f *fakeInventory) Summary(palletID string) (profit.PalletSummary, error) {
	return f.summaries[palletID], nil
}

func newTestService(t *testing.T, inv *fakeInventory) *Service {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "history.db"),
		Name:    "history",
		Profile: database.ProfileHistory,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	repo := NewRepository(db.Conn(), zerolog.Nop())
	mgr := events.NewManager(events.NewBus(), zerolog.Nop())
	return NewService(repo, inv, inv, mgr, zerolog.Nop())
}

func TestService_CaptureRollsUpPallets(t *testing.T) {
	inv := &fakeInventory{
		pallets: []domain.Pallet{
			{ID: "a", Name: "Lot A"},
			{ID: "b", Name: "Lot B"},
		},
		summaries: map[string]profit.PalletSummary{
			"a": {UnsoldValue: 300, NetProfit: 50, TotalCount: 10, ROI: 25},
			"b": {UnsoldValue: 120, NetProfit: -10, TotalCount: 4, ROI: -8},
		},
	}
	svc := newTestService(t, inv)

	now := time.Date(2026, 3, 15, 2, 0, 0, 0, time.UTC)
	snap, err := svc.Capture(now)
	require.NoError(t, err)

	assert.Equal(t, "2026-03-15", snap.Date)
	assert.Equal(t, 420.0, snap.TotalValue)
	assert.Equal(t, 40.0, snap.RealizedProfit)
	assert.Equal(t, 14, snap.ItemCount)
	assert.Equal(t, 2, snap.PalletCount)

	details, err := DecodeDetail(snap)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "Lot A", details[0].Name)
	assert.Equal(t, 300.0, details[0].UnsoldValue)
}

func TestService_CaptureSameDayReplaces(t *testing.T) {
	inv := &fakeInventory{
		pallets:   []domain.Pallet{{ID: "a", Name: "Lot A"}},
		summaries: map[string]profit.PalletSummary{"a": {UnsoldValue: 100}},
	}
	svc := newTestService(t, inv)

	now := time.Date(2026, 3, 15, 2, 0, 0, 0, time.UTC)
	_, err := svc.Capture(now)
	require.NoError(t, err)

	// Inventory changed; same-day recapture must replace, not duplicate
	inv.summaries["a"] = profit.PalletSummary{UnsoldValue: 80}
	_, err = svc.Capture(now)
	require.NoError(t, err)

	history, err := svc.History("2026-03-01", "2026-03-31")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 80.0, history[0].TotalValue)
}

func TestService_HistoryAndLatest(t *testing.T) {
	inv := &fakeInventory{
		pallets:   []domain.Pallet{{ID: "a", Name: "Lot A"}},
		summaries: map[string]profit.PalletSummary{"a": {UnsoldValue: 100}},
	}
	svc := newTestService(t, inv)

	latest, err := svc.Latest()
	require.NoError(t, err)
	assert.Nil(t, latest, "no snapshots yet")

	for day := 1; day <= 3; day++ {
		_, err := svc.Capture(time.Date(2026, 3, day, 2, 0, 0, 0, time.UTC))
		require.NoError(t, err)
	}

	history, err := svc.History("2026-03-02", "2026-03-03")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	latest, err = svc.Latest()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "2026-03-03", latest.Date)
}
