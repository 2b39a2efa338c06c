package reports

import (
	"sort"

	"github.com/meridian-ops/meridian/internal/coa"
)

var accountTypeOrder = []coa.AccountType{
	coa.AccountTypeAsset,
	coa.AccountTypeLiability,
	coa.AccountTypeEquity,
	coa.AccountTypeIncome,
	coa.AccountTypeExpense,
}

// BuildTrialBalance groups per-account period totals by account type.
// With no date filter the global double-entry law makes Difference 0;
// a nonzero value means the ledger has been written outside the poster.
func BuildTrialBalance(balances []AccountBalance) TrialBalance {
	grouped := make(map[coa.AccountType][]TrialBalanceRow)
	var totalDebit, totalCredit float64
	for _, b := range balances {
		if b.Debit == 0 && b.Credit == 0 {
			continue
		}
		grouped[b.Type] = append(grouped[b.Type], TrialBalanceRow{
			Code:   b.Code,
			Name:   b.Name,
			Debit:  b.Debit,
			Credit: b.Credit,
		})
		totalDebit += b.Debit
		totalCredit += b.Credit
	}

	groups := make([]TrialBalanceGroup, 0, len(grouped))
	for _, accountType := range accountTypeOrder {
		rows, ok := grouped[accountType]
		if !ok {
			continue
		}
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })
		groups = append(groups, TrialBalanceGroup{Type: accountType, Rows: rows})
	}

	return TrialBalance{
		Groups:      groups,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		Difference:  totalDebit - totalCredit,
	}
}
