package reports

import (
	"sort"

	"github.com/meridian-ops/meridian/internal/voucher"
)

// BuildDayBook unifies payments (debit side), receipts (credit side)
// and flattened journal lines into one chronological register.
func BuildDayBook(payments, receipts, journals []VoucherRow) DayBook {
	entries := make([]DayBookEntry, 0, len(payments)+len(receipts)+len(journals))
	for _, p := range payments {
		entries = append(entries, DayBookEntry{
			Date:        p.Date,
			Number:      p.Number,
			Kind:        string(voucher.KindPayment),
			Particulars: particulars(p.PartyName, p.Narration),
			Debit:       p.Amount,
		})
	}
	for _, r := range receipts {
		entries = append(entries, DayBookEntry{
			Date:        r.Date,
			Number:      r.Number,
			Kind:        string(voucher.KindReceipt),
			Particulars: particulars(r.PartyName, r.Narration),
			Credit:      r.Amount,
		})
	}
	for _, j := range journals {
		for _, line := range j.Lines {
			narration := line.Narration
			if narration == "" {
				narration = j.Narration
			}
			entries = append(entries, DayBookEntry{
				Date:        j.Date,
				Number:      j.Number,
				Kind:        string(voucher.KindJournal),
				Particulars: narration,
				Debit:       line.Debit,
				Credit:      line.Credit,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })

	var book DayBook
	book.Entries = entries
	for _, e := range entries {
		book.TotalDebit += e.Debit
		book.TotalCredit += e.Credit
	}
	book.Difference = book.TotalDebit - book.TotalCredit
	return book
}

func particulars(party, narration string) string {
	if party != "" {
		return party
	}
	return narration
}
