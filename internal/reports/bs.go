package reports

import (
	"sort"

	"github.com/meridian-ops/meridian/internal/coa"
)

// BuildBalanceSheet restricts the ledger to Asset, Liability and Equity
// accounts. Assets carry debit-normal balances, the other two sides are
// credit-normal, so a clean ledger yields Difference 0.
func BuildBalanceSheet(balances []AccountBalance) BalanceSheet {
	var sheet BalanceSheet
	for _, b := range balances {
		if b.Debit == 0 && b.Credit == 0 {
			continue
		}
		switch b.Type {
		case coa.AccountTypeAsset:
			balance := b.Debit - b.Credit
			sheet.Assets = append(sheet.Assets, BalanceRow{Code: b.Code, Name: b.Name, Balance: balance})
			sheet.TotalDebit += balance
		case coa.AccountTypeLiability:
			balance := b.Credit - b.Debit
			sheet.Liabilities = append(sheet.Liabilities, BalanceRow{Code: b.Code, Name: b.Name, Balance: balance})
			sheet.TotalCredit += balance
		case coa.AccountTypeEquity:
			balance := b.Credit - b.Debit
			sheet.Equity = append(sheet.Equity, BalanceRow{Code: b.Code, Name: b.Name, Balance: balance})
			sheet.TotalCredit += balance
		}
	}
	sortByCode(sheet.Assets)
	sortByCode(sheet.Liabilities)
	sortByCode(sheet.Equity)
	sheet.Difference = sheet.TotalDebit - sheet.TotalCredit
	return sheet
}

func sortByCode(rows []BalanceRow) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })
}
