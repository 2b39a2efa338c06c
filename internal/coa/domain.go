package coa

import (
	"errors"
	"strings"
	"time"
)

// AccountType enumerates chart of accounts categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeIncome    AccountType = "INCOME"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// Account models a chart of accounts node. Code is the stable external
// key; it is never reused and never changed once a ledger row refers to
// the account.
type Account struct {
	ID             int64
	Code           string
	Name           string
	Type           AccountType
	SubType        string
	Classification string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateInput groups the fields required to register an account.
type CreateInput struct {
	Code           string
	Name           string
	Type           AccountType
	SubType        string
	Classification string
}

// UpdateInput carries the mutable account fields. Code and type are
// deliberately absent.
type UpdateInput struct {
	ID             int64
	Name           string
	SubType        string
	Classification string
}

// Filter narrows account listings.
type Filter struct {
	Type   AccountType
	Search string
}

var (
	// ErrDuplicateCode indicates the account code is already registered.
	ErrDuplicateCode = errors.New("coa: account code already exists")
	// ErrAccountNotFound indicates a missing account.
	ErrAccountNotFound = errors.New("coa: account not found")
	// ErrAccountReferenced indicates the account has ledger rows and cannot be removed.
	ErrAccountReferenced = errors.New("coa: account referenced by ledger entries")
)

var validTypes = map[AccountType]bool{
	AccountTypeAsset:     true,
	AccountTypeLiability: true,
	AccountTypeEquity:    true,
	AccountTypeIncome:    true,
	AccountTypeExpense:   true,
}

// Validate ensures create input meets minimum criteria.
func (in CreateInput) Validate() error {
	if strings.TrimSpace(in.Code) == "" {
		return errors.New("coa: code required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("coa: name required")
	}
	if !validTypes[in.Type] {
		return errors.New("coa: unknown account type")
	}
	return nil
}
