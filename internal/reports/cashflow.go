package reports

import (
	"sort"
)

const adjustmentCategory = "Adjustment"

// BuildCashFlow classifies receipts as inflow and payments as outflow,
// bucketed by bank name. Journal lines contribute under the Adjustment
// category, debit lines as inflow and credit lines as outflow.
func BuildCashFlow(payments, receipts, journals []VoucherRow) CashFlow {
	categories := make(map[string]*CashFlowCategory)
	bucket := func(name string) *CashFlowCategory {
		if c, ok := categories[name]; ok {
			return c
		}
		c := &CashFlowCategory{Category: name}
		categories[name] = c
		return c
	}

	var flow CashFlow
	for _, r := range receipts {
		c := bucket(categoryName(r.BankName))
		c.Inflow += r.Amount
		flow.Inflows += r.Amount
	}
	for _, p := range payments {
		c := bucket(categoryName(p.BankName))
		c.Outflow += p.Amount
		flow.Outflows += p.Amount
	}
	for _, j := range journals {
		for _, line := range j.Lines {
			c := bucket(adjustmentCategory)
			c.Inflow += line.Debit
			c.Outflow += line.Credit
			flow.Inflows += line.Debit
			flow.Outflows += line.Credit
		}
	}

	flow.Categories = make([]CashFlowCategory, 0, len(categories))
	for _, c := range categories {
		c.Net = c.Inflow - c.Outflow
		flow.Categories = append(flow.Categories, *c)
	}
	sort.SliceStable(flow.Categories, func(i, j int) bool {
		return flow.Categories[i].Category < flow.Categories[j].Category
	})

	flow.ClosingBalance = flow.OpeningBalance + flow.Inflows - flow.Outflows
	return flow
}

func categoryName(bankName string) string {
	if bankName == "" {
		return adjustmentCategory
	}
	return bankName
}
