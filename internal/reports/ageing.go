package reports

import (
	"sort"
	"time"

	"github.com/meridian-ops/meridian/internal/voucher"
)

// BuildAgeing groups a partner type's open transactions by partner and
// splits each partner's balance into day-range buckets measured against
// asOn. Customer receipts contribute positively, vendor payments
// negatively, so the two sides read symmetrically.
func BuildAgeing(partnerType voucher.PartnerType, asOn time.Time, rows []VoucherRow) []AgeingRow {
	byPartner := make(map[string]*AgeingRow)
	for _, row := range rows {
		amount := signedAgeingAmount(partnerType, row)
		if amount == 0 {
			continue
		}
		partner := row.PartyName
		entry, ok := byPartner[partner]
		if !ok {
			entry = &AgeingRow{Partner: partner}
			byPartner[partner] = entry
		}
		addToBucket(&entry.Buckets, diffDays(asOn, row.Date), amount)
		entry.Balance += amount
	}

	out := make([]AgeingRow, 0, len(byPartner))
	for _, entry := range byPartner {
		out = append(out, *entry)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Balance > out[j].Balance })
	return out
}

func signedAgeingAmount(partnerType voucher.PartnerType, row VoucherRow) float64 {
	switch partnerType {
	case voucher.PartnerCustomer:
		if row.Kind == voucher.KindReceipt {
			return row.Amount
		}
	case voucher.PartnerVendor:
		if row.Kind == voucher.KindPayment {
			return -row.Amount
		}
	}
	return 0
}

// diffDays floors the age to whole days; a same-day transaction ages 0.
func diffDays(asOn, txnDate time.Time) int {
	return int(asOn.Sub(txnDate).Hours() / 24)
}

func addToBucket(buckets *AgeingBuckets, days int, amount float64) {
	switch {
	case days <= 30:
		buckets.Days0To30 += amount
	case days <= 60:
		buckets.Days31To60 += amount
	case days <= 90:
		buckets.Days61To90 += amount
	default:
		buckets.Days91Plus += amount
	}
}
