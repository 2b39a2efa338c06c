package reports

import (
	"github.com/meridian-ops/meridian/internal/coa"
)

// BuildProfitLoss restricts the ledger to Income and Expense accounts.
// Income is credit-normal, Expense is debit-normal. A non-negative net
// result is labelled Profit, a negative one Loss.
func BuildProfitLoss(balances []AccountBalance) ProfitLoss {
	var pl ProfitLoss
	for _, b := range balances {
		if b.Debit == 0 && b.Credit == 0 {
			continue
		}
		switch b.Type {
		case coa.AccountTypeIncome:
			balance := b.Credit - b.Debit
			pl.Income = append(pl.Income, BalanceRow{Code: b.Code, Name: b.Name, Balance: balance})
			pl.TotalIncome += balance
		case coa.AccountTypeExpense:
			balance := b.Debit - b.Credit
			pl.Expense = append(pl.Expense, BalanceRow{Code: b.Code, Name: b.Name, Balance: balance})
			pl.TotalExpense += balance
		}
	}
	sortByCode(pl.Income)
	sortByCode(pl.Expense)
	pl.NetResult = pl.TotalIncome - pl.TotalExpense
	if pl.NetResult >= 0 {
		pl.NetType = "Profit"
	} else {
		pl.NetType = "Loss"
	}
	return pl
}
