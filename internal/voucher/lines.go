package voucher

import (
	"github.com/meridian-ops/meridian/internal/ledger"
)

// The functions below turn a voucher into its ledger lines. They are the
// only place posting direction is decided, so every kind flows through
// ledger.ValidateBalanced with lines built here.

func paymentLines(v Voucher, bank Bank) []ledger.Line {
	return []ledger.Line{
		{AccountID: v.PartyAccountID, Debit: v.Amount, Narration: v.Narration},
		{AccountID: bank.GLAccountID, Credit: v.Amount, Narration: v.Narration},
	}
}

func receiptLines(v Voucher, bank Bank) []ledger.Line {
	return []ledger.Line{
		{AccountID: bank.GLAccountID, Debit: v.Amount, Narration: v.Narration},
		{AccountID: v.FromAccountID, Credit: v.Amount, Narration: v.Narration},
	}
}

func journalLines(v Voucher) []ledger.Line {
	lines := make([]ledger.Line, 0, len(v.Lines))
	for _, line := range v.Lines {
		narration := line.Narration
		if narration == "" {
			narration = v.Narration
		}
		lines = append(lines, ledger.Line{
			AccountID: line.AccountID,
			Debit:     line.Debit,
			Credit:    line.Credit,
			Narration: narration,
		})
	}
	return lines
}

// noteLines posts a confirmed credit or debit note. A credit note
// reduces the party receivable, a debit note increases it. VAT is posted
// as its own line so the tax component stays traceable per account.
func noteLines(v Voucher) []ledger.Line {
	gross := v.Amount + v.VATAmount
	var lines []ledger.Line
	switch v.Kind {
	case KindCreditNote:
		lines = append(lines, ledger.Line{AccountID: v.OffsetAccountID, Debit: v.Amount, Narration: v.Narration})
		if v.VATAmount > 0 {
			lines = append(lines, ledger.Line{AccountID: v.VATAccountID, Debit: v.VATAmount, Narration: v.Narration})
		}
		lines = append(lines, ledger.Line{AccountID: v.PartyAccountID, Credit: gross, Narration: v.Narration})
	case KindDebitNote:
		lines = append(lines, ledger.Line{AccountID: v.PartyAccountID, Debit: gross, Narration: v.Narration})
		lines = append(lines, ledger.Line{AccountID: v.OffsetAccountID, Credit: v.Amount, Narration: v.Narration})
		if v.VATAmount > 0 {
			lines = append(lines, ledger.Line{AccountID: v.VATAccountID, Credit: v.VATAmount, Narration: v.Narration})
		}
	}
	return lines
}

func transferLines(v Voucher, from, to Bank) []ledger.Line {
	return []ledger.Line{
		{AccountID: to.GLAccountID, Debit: v.Amount, Narration: v.Narration},
		{AccountID: from.GLAccountID, Credit: v.Amount, Narration: v.Narration},
	}
}
