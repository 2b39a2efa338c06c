package coa

import (
	"context"
)

// RepositoryPort abstracts account persistence for the service.
type RepositoryPort interface {
	Create(ctx context.Context, in CreateInput) (Account, error)
	Get(ctx context.Context, id int64) (Account, error)
	GetByCode(ctx context.Context, code string) (Account, error)
	Find(ctx context.Context, filter Filter) ([]Account, error)
	Update(ctx context.Context, in UpdateInput) (Account, error)
	CountLedgerReferences(ctx context.Context, id int64) (int64, error)
	Deactivate(ctx context.Context, id int64) error
}

// Service manages the chart of accounts registry.
type Service struct {
	repo RepositoryPort
}

// NewService constructs the registry service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create registers a new account. Codes are unique and never reused.
func (s *Service) Create(ctx context.Context, in CreateInput) (Account, error) {
	if err := in.Validate(); err != nil {
		return Account{}, err
	}
	return s.repo.Create(ctx, in)
}

// Get fetches one account.
func (s *Service) Get(ctx context.Context, id int64) (Account, error) {
	return s.repo.Get(ctx, id)
}

// GetByCode fetches one account by its code.
func (s *Service) GetByCode(ctx context.Context, code string) (Account, error) {
	return s.repo.GetByCode(ctx, code)
}

// Find lists accounts matching the filter.
func (s *Service) Find(ctx context.Context, filter Filter) ([]Account, error) {
	return s.repo.Find(ctx, filter)
}

// Update changes name, sub type, or classification. Code and type stay
// fixed once issued.
func (s *Service) Update(ctx context.Context, in UpdateInput) (Account, error) {
	if in.ID == 0 {
		return Account{}, ErrAccountNotFound
	}
	return s.repo.Update(ctx, in)
}

// Deactivate removes an account from listings. Accounts referenced by
// ledger rows are refused so historic reports stay resolvable.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	refs, err := s.repo.CountLedgerReferences(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return ErrAccountReferenced
	}
	return s.repo.Deactivate(ctx, id)
}
