package reports

import (
	"sort"

	"github.com/meridian-ops/meridian/internal/voucher"
)

// SOAReportType selects between summary-only and full statements.
type SOAReportType string

const (
	SOASummaryOnly  SOAReportType = "summary"
	SOATransactions SOAReportType = "transactions"
)

// BuildSOA merges one partner's vouchers into a chronological statement
// with a running balance. Confirmed notes act as the invoiced side,
// payments and receipts as the settled side; opening covers everything
// before the range. Journal vouchers store no partner reference, so the
// statement is built only from payments, receipts, and notes; a journal
// adjustment posted against a partner's control account moves the
// account ledger but never shows on that partner's statement.
func BuildSOA(partner string, partnerType voucher.PartnerType, before, inRange []VoucherRow, reportType SOAReportType) SOA {
	statement := SOA{Partner: partner}

	var opening float64
	for _, row := range before {
		opening += signedSOAAmount(partnerType, row)
	}
	statement.Summary.OpeningBalance = opening

	sorted := append([]VoucherRow(nil), inRange...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	balance := opening
	transactions := make([]SOATransaction, 0, len(sorted))
	for _, row := range sorted {
		amount := signedSOAAmount(partnerType, row)
		if amount == 0 {
			continue
		}
		balance += amount
		switch row.Kind {
		case voucher.KindCreditNote, voucher.KindDebitNote:
			statement.Summary.InvoicedAmount += amount
		case voucher.KindPayment, voucher.KindReceipt:
			statement.Summary.AmountPaid += row.Amount
		}
		transactions = append(transactions, SOATransaction{
			Date:      row.Date,
			Number:    row.Number,
			Kind:      string(row.Kind),
			Narration: row.Narration,
			Amount:    amount,
			Balance:   balance,
		})
	}

	statement.Summary.ClosingBalance = balance
	if reportType == SOATransactions {
		statement.Transactions = transactions
	}
	return statement
}

// signedSOAAmount orients a voucher on the partner's balance. Debit
// notes raise a customer balance, credit notes reduce it; settlements
// move the balance back toward zero. Vendors mirror the customer signs.
func signedSOAAmount(partnerType voucher.PartnerType, row VoucherRow) float64 {
	gross := row.Amount + row.VATAmount
	switch row.Kind {
	case voucher.KindDebitNote:
		if row.Status != voucher.NoteStatusConfirmed {
			return 0
		}
		return gross
	case voucher.KindCreditNote:
		if row.Status != voucher.NoteStatusConfirmed {
			return 0
		}
		return -gross
	case voucher.KindReceipt:
		if partnerType == voucher.PartnerCustomer {
			return -row.Amount
		}
		return row.Amount
	case voucher.KindPayment:
		if partnerType == voucher.PartnerVendor {
			return -row.Amount
		}
		return row.Amount
	}
	return 0
}
