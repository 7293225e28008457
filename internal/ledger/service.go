package ledger

import (
	"context"
)

// Service exposes read paths over the journal.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListEntries returns journal lines, newest first.
func (s *Service) ListEntries(ctx context.Context, filter EntryFilter) ([]Entry, error) {
	if filter.Limit <= 0 {
		filter.Limit = 200
	}
	return s.repo.ListEntries(ctx, filter)
}

// TrialBalance aggregates all accounts' debits and credits.
func (s *Service) TrialBalance(ctx context.Context, filter EntryFilter) (TrialBalance, error) {
	rows, err := s.repo.TrialBalance(ctx, filter)
	if err != nil {
		return TrialBalance{}, err
	}
	return BuildTrialBalance(rows), nil
}
