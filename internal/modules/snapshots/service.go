package snapshots

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/palletpulse/palletpulse/internal/domain"
	"github.com/palletpulse/palletpulse/internal/events"
	"github.com/palletpulse/palletpulse/internal/modules/profit"
)

// PalletLister lists pallets. Implemented by the pallets repository.
type PalletLister interface {
	GetAll() ([]domain.Pallet, error)
}

// SummaryProvider computes one pallet's rollup. Implemented by the pallets
// service.
type SummaryProvider interface {
	Summary(palletID string) (profit.PalletSummary, error)
}

// PalletDetail is the per-pallet slice of a snapshot, stored msgpack-encoded
// in the detail blob.
type PalletDetail struct {
	PalletID    string  `msgpack:"pallet_id" json:"pallet_id"`
	Name        string  `msgpack:"name" json:"name"`
	UnsoldValue float64 `msgpack:"unsold_value" json:"unsold_value"`
	NetProfit   float64 `msgpack:"net_profit" json:"net_profit"`
	ROI         float64 `msgpack:"roi" json:"roi"`
}

// Service captures and serves inventory snapshots.
type Service struct {
	repo      *Repository
	pallets   PalletLister
	summaries SummaryProvider
	eventMgr  *events.Manager
	log       zerolog.Logger
}

// NewService creates a new snapshot service
func NewService(repo *Repository, pallets PalletLister, summaries SummaryProvider, eventMgr *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		pallets:   pallets,
		summaries: summaries,
		eventMgr:  eventMgr,
		log:       log.With().Str("service", "snapshots").Logger(),
	}
}

// Capture records today's valuation. Capturing the same day twice replaces
// the earlier snapshot, so the daily job is safe to re-run.
func (s *Service) Capture(now time.Time) (Snapshot, error) {
	all, err := s.pallets.GetAll()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to list pallets: %w", err)
	}

	snap := Snapshot{
		Date:        now.UTC().Format("2006-01-02"),
		PalletCount: len(all),
	}

	details := make([]PalletDetail, 0, len(all))
	for _, p := range all {
		summary, err := s.summaries.Summary(p.ID)
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to summarize pallet %s: %w", p.ID, err)
		}

		snap.TotalValue += summary.UnsoldValue
		snap.RealizedProfit += summary.NetProfit
		snap.ItemCount += summary.TotalCount

		details = append(details, PalletDetail{
			PalletID:    p.ID,
			Name:        p.Name,
			UnsoldValue: summary.UnsoldValue,
			NetProfit:   summary.NetProfit,
			ROI:         summary.ROI,
		})
	}

	snap.Detail, err = msgpack.Marshal(details)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to encode snapshot detail: %w", err)
	}

	if err := s.repo.Save(snap); err != nil {
		return Snapshot{}, err
	}

	s.log.Info().
		Str("date", snap.Date).
		Float64("total_value", snap.TotalValue).
		Int("pallets", snap.PalletCount).
		Msg("Inventory snapshot captured")

	s.eventMgr.Emit(events.SnapshotCaptured, "snapshots", map[string]interface{}{
		"date":        snap.Date,
		"total_value": snap.TotalValue,
	})

	return snap, nil
}

// History returns the snapshot series between two dates inclusive.
func (s *Service) History(from, to string) ([]Snapshot, error) {
	return s.repo.Range(from, to)
}

// Latest returns the newest snapshot, or nil.
func (s *Service) Latest() (*Snapshot, error) {
	return s.repo.Latest()
}

// DecodeDetail unpacks a snapshot's per-pallet detail blob.
func DecodeDetail(snap Snapshot) ([]PalletDetail, error) {
	if len(snap.Detail) == 0 {
		return nil, nil
	}

	var details []PalletDetail
	if err := msgpack.Unmarshal(snap.Detail, &details); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot detail: %w", err)
	}
	return details, nil
}
