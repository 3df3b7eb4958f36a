package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cashdesk/internal/dto"
	"cashdesk/internal/model"
	"cashdesk/internal/reconcile"

	"github.com/rs/zerolog/log"
)

// defaultImportReason justifies opening-balance overrides in historical rows
// that carry no reason of their own.
const defaultImportReason = "historical import"

type ImportService interface {
	// ImportHistory replays pre-parsed day rows through the regular
	// open → append → close sequence, oldest day first, so imported sessions
	// and entries satisfy every invariant of organically-created ones. All
	// records carry the imported provenance flag. Admin only.
	//
	// Days are committed one at a time: on failure the already-imported days
	// remain and the error names the failed day so the caller can resume.
	ImportHistory(ctx context.Context, actor model.Actor, req dto.ImportRequest) (*dto.ImportResult, error)
}

type importService struct {
	sessions SessionService
	ledger   LedgerService
	loc      *time.Location
}

func NewImportService(sessions SessionService, ledger LedgerService, loc *time.Location) ImportService {
	return &importService{sessions: sessions, ledger: ledger, loc: loc}
}

func (s *importService) ImportHistory(ctx context.Context, actor model.Actor, req dto.ImportRequest) (*dto.ImportResult, error) {
	if !actor.Admin() {
		return nil, ErrPermission
	}
	if len(req.Days) == 0 {
		return nil, validationf("no days to import")
	}

	days := make([]dto.ImportDay, len(req.Days))
	copy(days, req.Days)
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	for i := 1; i < len(days); i++ {
		if days[i].Date == days[i-1].Date {
			return nil, validationf("duplicate day %s", days[i].Date)
		}
	}

	result := &dto.ImportResult{}
	for _, day := range days {
		detail, err := s.importDay(ctx, actor, day)
		if err != nil {
			return nil, fmt.Errorf("day %s: %w", day.Date, err)
		}
		result.Days++
		result.Entries += detail.Entries
		result.Detail = append(result.Detail, *detail)
	}

	log.Info().
		Str("imported_by", actor.Name).
		Int("days", result.Days).
		Int("entries", result.Entries).
		Msg("historical import completed")
	return result, nil
}

// importDay runs one simulated day: open with carry-forward (or the row's
// declared opening balance), append the rows, close against the recorded
// counted balance.
func (s *importService) importDay(ctx context.Context, actor model.Actor, day dto.ImportDay) (*dto.ImportDayResult, error) {
	open := dto.OpenSessionRequest{Date: day.Date, Imported: true}
	if day.OpeningBalance != nil {
		open.OpeningBalance = *day.OpeningBalance
		open.Reason = day.Reason
		if open.Reason == "" {
			open.Reason = defaultImportReason
		}
	} else {
		// Accept the carry-forward proposal verbatim — no justification needed.
		proposal, err := s.sessions.Proposal(ctx, day.Date)
		if err != nil {
			return nil, err
		}
		open.OpeningBalance = proposal.ProposedBalance
	}
	if _, err := s.sessions.Open(ctx, actor, open); err != nil {
		return nil, err
	}

	for i, row := range day.Entries {
		occurredAt, err := entryTime(day.Date, row.Time, s.loc)
		if err != nil {
			return nil, validationf("entry %d: %v", i, err)
		}
		_, err = s.ledger.Append(ctx, actor, dto.AppendEntryRequest{
			Type:       row.Type,
			Label:      row.Label,
			Category:   row.Category,
			Amount:     row.Amount,
			OccurredAt: &occurredAt,
			Imported:   true,
		})
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	counted := day.ClosingBalance
	closure, err := s.sessions.Close(ctx, actor, dto.CloseSessionRequest{
		Date:            day.Date,
		CountedOverride: &counted,
		Imported:        true,
	})
	if err != nil {
		return nil, err
	}

	return &dto.ImportDayResult{
		Date:        day.Date,
		Entries:     len(day.Entries),
		Discrepancy: closure.Discrepancy,
		Balanced:    closure.Balanced,
	}, nil
}

func entryTime(date, clock string, loc *time.Location) (time.Time, error) {
	if clock == "" {
		clock = "12:00"
	}
	t, err := time.ParseInLocation(reconcile.DateLayout+" 15:04", date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q", clock)
	}
	return t, nil
}
