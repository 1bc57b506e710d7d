package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/palletpulse/palletpulse/internal/domain"
	"github.com/palletpulse/palletpulse/internal/events"
	"github.com/palletpulse/palletpulse/internal/modules/profit"
	"github.com/palletpulse/palletpulse/internal/storage"
)

// ItemLister lists all items. Implemented by the items repository.
type ItemLister interface {
	GetAll() ([]domain.Item, error)
}

// PalletLister lists all pallets. Implemented by the pallets repository.
type PalletLister interface {
	GetAll() ([]domain.Pallet, error)
}

// SummaryProvider computes one pallet's rollup. Implemented by the pallets
// service.
type SummaryProvider interface {
	Summary(palletID string) (profit.PalletSummary, error)
}

// ExpenseLister lists all expenses. Implemented by the expenses repository.
type ExpenseLister interface {
	GetAll() ([]domain.Expense, error)
}

// Service generates CSV exports and optionally mirrors them to S3.
type Service struct {
	repo      *Repository
	items     ItemLister
	pallets   PalletLister
	summaries SummaryProvider
	expenses  ExpenseLister
	s3        *storage.Client // nil when uploads are disabled
	eventMgr  *events.Manager
	log       zerolog.Logger
}

// NewService creates a new export service. s3 may be nil.
func NewService(repo *Repository, items ItemLister, pallets PalletLister, summaries SummaryProvider,
	expenses ExpenseLister, s3 *storage.Client, eventMgr *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		items:     items,
		pallets:   pallets,
		summaries: summaries,
		expenses:  expenses,
		s3:        s3,
		eventMgr:  eventMgr,
		log:       log.With().Str("service", "export").Logger(),
	}
}

// Result is a rendered export ready to serve or upload.
type Result struct {
	Kind     Kind
	Filename string
	Data     []byte
	Rows     int
	Entry    LogEntry
}

// Generate renders one export kind, mirrors it to S3 when configured, and
// records it in the export log.
func (s *Service) Generate(ctx context.Context, kind Kind) (Result, error) {
	var buf bytes.Buffer

	rows, err := s.render(&buf, kind)
	if err != nil {
		return Result{}, err
	}

	filename := fmt.Sprintf("%s-%s.csv", kind, time.Now().UTC().Format("20060102-150405"))

	destination := "download"
	if s.s3 != nil {
		uri, err := s.s3.Upload(ctx, "exports/"+filename, bytes.NewReader(buf.Bytes()), "text/csv")
		if err != nil {
			// The caller still gets their file; the mirror is best effort.
			s.log.Error().Err(err).Str("kind", string(kind)).Msg("Export upload failed")
		} else {
			destination = uri
		}
	}

	entry, err := s.repo.Record(kind, rows, destination)
	if err != nil {
		return Result{}, err
	}

	s.eventMgr.Emit(events.ExportCompleted, "export", map[string]interface{}{
		"kind":        string(kind),
		"rows":        rows,
		"destination": destination,
	})

	return Result{
		Kind:     kind,
		Filename: filename,
		Data:     buf.Bytes(),
		Rows:     rows,
		Entry:    entry,
	}, nil
}

// History returns recent exports.
func (s *Service) History(limit int) ([]LogEntry, error) {
	return s.repo.History(limit)
}

func (s *Service) render(buf *bytes.Buffer, kind Kind) (int, error) {
	switch kind {
	case KindItems:
		items, err := s.items.GetAll()
		if err != nil {
			return 0, fmt.Errorf("failed to list items: %w", err)
		}
		return WriteItemsCSV(buf, items)

	case KindPallets:
		all, err := s.pallets.GetAll()
		if err != nil {
			return 0, fmt.Errorf("failed to list pallets: %w", err)
		}
		rows := make([]PalletRow, 0, len(all))
		for _, p := range all {
			summary, err := s.summaries.Summary(p.ID)
			if err != nil {
				return 0, fmt.Errorf("failed to summarize pallet %s: %w", p.ID, err)
			}
			rows = append(rows, PalletRow{Pallet: p, Summary: summary})
		}
		return WritePalletsCSV(buf, rows)

	case KindExpenses:
		expenses, err := s.expenses.GetAll()
		if err != nil {
			return 0, fmt.Errorf("failed to list expenses: %w", err)
		}
		return WriteExpensesCSV(buf, expenses)

	default:
		return 0, fmt.Errorf("unknown export kind %q", kind)
	}
}
