package reports

import (
	"time"

	"github.com/google/uuid"

	"github.com/meridian-ops/meridian/internal/coa"
	"github.com/meridian-ops/meridian/internal/voucher"
)

// AccountBalance is one account's debit/credit totals within a date
// range, joined with its registry fields for grouping.
type AccountBalance struct {
	AccountID int64
	Code      string
	Name      string
	Type      coa.AccountType
	Debit     float64
	Credit    float64
}

// VoucherRow is the projection of a voucher the report builders consume.
// BankName comes from the bank master join and feeds cash flow
// categorisation; Lines is populated for journal vouchers only.
type VoucherRow struct {
	ID        uuid.UUID
	Kind      voucher.Kind
	Number    string
	Date      time.Time
	Amount    float64
	VATAmount float64
	Narration string
	PartyName string
	PartyType voucher.PartnerType
	Status    voucher.NoteStatus
	BankName  string
	Lines     []voucher.JournalLine
}

// TrialBalanceRow is one account line of the trial balance.
type TrialBalanceRow struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Debit  float64 `json:"debit"`
	Credit float64 `json:"credit"`
}

// TrialBalanceGroup collects the rows of one account type.
type TrialBalanceGroup struct {
	Type coa.AccountType   `json:"type"`
	Rows []TrialBalanceRow `json:"rows"`
}

// TrialBalance is the full statement. Difference is surfaced instead of
// raised so operators can spot bookkeeping corruption without the
// report failing.
type TrialBalance struct {
	Groups      []TrialBalanceGroup `json:"groups"`
	TotalDebit  float64             `json:"totalDebit"`
	TotalCredit float64             `json:"totalCredit"`
	Difference  float64             `json:"difference"`
}

// BalanceRow is one account line of the balance sheet or P&L.
type BalanceRow struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

// BalanceSheet restricts the ledger to Asset, Liability and Equity.
type BalanceSheet struct {
	Assets      []BalanceRow `json:"assets"`
	Liabilities []BalanceRow `json:"liabilities"`
	Equity      []BalanceRow `json:"equity"`
	TotalDebit  float64      `json:"totalDebit"`
	TotalCredit float64      `json:"totalCredit"`
	Difference  float64      `json:"difference"`
}

// ProfitLoss restricts the ledger to Income and Expense.
type ProfitLoss struct {
	Income       []BalanceRow `json:"income"`
	Expense      []BalanceRow `json:"expense"`
	TotalIncome  float64      `json:"totalIncome"`
	TotalExpense float64      `json:"totalExpense"`
	NetResult    float64      `json:"netResult"`
	NetType      string       `json:"netType"`
}

// DayBookEntry is one unified row of the day book.
type DayBookEntry struct {
	Date        time.Time `json:"date"`
	Number      string    `json:"number"`
	Kind        string    `json:"kind"`
	Particulars string    `json:"particulars"`
	Debit       float64   `json:"debit"`
	Credit      float64   `json:"credit"`
}

// DayBook unifies payments, receipts and flattened journal lines.
type DayBook struct {
	Entries     []DayBookEntry `json:"entries"`
	TotalDebit  float64        `json:"totalDebit"`
	TotalCredit float64        `json:"totalCredit"`
	Difference  float64        `json:"difference"`
}

// CashFlowCategory buckets inflow/outflow by bank name, with journal
// adjustments under their own key.
type CashFlowCategory struct {
	Category string  `json:"category"`
	Inflow   float64 `json:"inflow"`
	Outflow  float64 `json:"outflow"`
	Net      float64 `json:"net"`
}

// CashFlow is the period cash movement statement.
type CashFlow struct {
	OpeningBalance float64            `json:"openingBalance"`
	Inflows        float64            `json:"inflows"`
	Outflows       float64            `json:"outflows"`
	ClosingBalance float64            `json:"closingBalance"`
	Categories     []CashFlowCategory `json:"categories"`
}

// AgeingBuckets holds the four signed day-range buckets.
type AgeingBuckets struct {
	Days0To30  float64 `json:"days0to30"`
	Days31To60 float64 `json:"days31to60"`
	Days61To90 float64 `json:"days61to90"`
	Days91Plus float64 `json:"days91plus"`
}

// AgeingRow is one partner's outstanding balance split by age.
type AgeingRow struct {
	Partner string        `json:"partner"`
	Buckets AgeingBuckets `json:"buckets"`
	Balance float64       `json:"balance"`
}

// SOATransaction is one chronological row of a statement of account.
type SOATransaction struct {
	Date      time.Time `json:"date"`
	Number    string    `json:"number"`
	Kind      string    `json:"kind"`
	Narration string    `json:"narration"`
	Amount    float64   `json:"amount"`
	Balance   float64   `json:"balance"`
}

// SOASummary aggregates one partner's statement period.
type SOASummary struct {
	OpeningBalance float64 `json:"openingBalance"`
	InvoicedAmount float64 `json:"invoicedAmount"`
	AmountPaid     float64 `json:"amountPaid"`
	ClosingBalance float64 `json:"closingBalance"`
}

// SOA is the statement of account. Transactions is nil for
// summary-only requests.
type SOA struct {
	Partner      string           `json:"partner"`
	Summary      SOASummary       `json:"summary"`
	Transactions []SOATransaction `json:"transactions,omitempty"`
}
