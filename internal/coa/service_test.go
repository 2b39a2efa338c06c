package coa

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeAccountRepo struct {
	byID       map[int64]Account
	byCode     map[string]int64
	references map[int64]int64
	nextID     int64
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		byID:       make(map[int64]Account),
		byCode:     make(map[string]int64),
		references: make(map[int64]int64),
	}
}

func (f *fakeAccountRepo) Create(ctx context.Context, in CreateInput) (Account, error) {
	if _, exists := f.byCode[in.Code]; exists {
		return Account{}, ErrDuplicateCode
	}
	f.nextID++
	account := Account{
		ID:             f.nextID,
		Code:           in.Code,
		Name:           in.Name,
		Type:           in.Type,
		SubType:        in.SubType,
		Classification: in.Classification,
		IsActive:       true,
		CreatedAt:      time.Now(),
	}
	f.byID[account.ID] = account
	f.byCode[account.Code] = account.ID
	return account, nil
}

func (f *fakeAccountRepo) Get(ctx context.Context, id int64) (Account, error) {
	account, ok := f.byID[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return account, nil
}

func (f *fakeAccountRepo) GetByCode(ctx context.Context, code string) (Account, error) {
	id, ok := f.byCode[code]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return f.byID[id], nil
}

func (f *fakeAccountRepo) Find(ctx context.Context, filter Filter) ([]Account, error) {
	var out []Account
	for _, account := range f.byID {
		if filter.Type != "" && account.Type != filter.Type {
			continue
		}
		out = append(out, account)
	}
	return out, nil
}

func (f *fakeAccountRepo) Update(ctx context.Context, in UpdateInput) (Account, error) {
	account, ok := f.byID[in.ID]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	account.Name = in.Name
	account.SubType = in.SubType
	account.Classification = in.Classification
	f.byID[in.ID] = account
	return account, nil
}

func (f *fakeAccountRepo) CountLedgerReferences(ctx context.Context, id int64) (int64, error) {
	return f.references[id], nil
}

func (f *fakeAccountRepo) Deactivate(ctx context.Context, id int64) error {
	account, ok := f.byID[id]
	if !ok {
		return ErrAccountNotFound
	}
	account.IsActive = false
	f.byID[id] = account
	return nil
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	svc := NewService(newFakeAccountRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Code: "1001", Name: "Bank Cash", Type: AccountTypeAsset})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{Code: "1001", Name: "Other", Type: AccountTypeAsset})
	require.ErrorIs(t, err, ErrDuplicateCode)
}

func TestCreateValidatesInput(t *testing.T) {
	svc := NewService(newFakeAccountRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Code: "", Name: "No Code", Type: AccountTypeAsset})
	require.Error(t, err)

	_, err = svc.Create(ctx, CreateInput{Code: "9001", Name: "Weird", Type: AccountType("MYSTERY")})
	require.Error(t, err)
}

func TestUpdateKeepsCodeAndType(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Code: "2001", Name: "Accounts Payable", Type: AccountTypeLiability})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, UpdateInput{ID: created.ID, Name: "Trade Payables", SubType: "current"})
	require.NoError(t, err)
	require.Equal(t, "Trade Payables", updated.Name)
	require.Equal(t, "2001", updated.Code)
	require.Equal(t, AccountTypeLiability, updated.Type)
}

func TestDeactivateRefusesReferencedAccount(t *testing.T) {
	repo := newFakeAccountRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Code: "1001", Name: "Bank Cash", Type: AccountTypeAsset})
	require.NoError(t, err)
	repo.references[created.ID] = 4

	err = svc.Deactivate(ctx, created.ID)
	require.ErrorIs(t, err, ErrAccountReferenced)

	other, err := svc.Create(ctx, CreateInput{Code: "1002", Name: "Petty Cash", Type: AccountTypeAsset})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, other.ID))

	fetched, err := svc.Get(ctx, other.ID)
	require.NoError(t, err)
	require.False(t, fetched.IsActive)
}
