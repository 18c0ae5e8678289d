package types

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TargetKind says whether a Target names a category or a transfer account
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetCategory
	TargetTransfer
)

// Target is the category-or-transfer destination of a transaction or split.
// A bracketed value ("[Savings]") is a transfer, anything else a category.
type Target struct {
	Kind TargetKind
	Name string
}

// ParseTarget classifies a raw L or S payload
func ParseTarget(raw string) Target {
	if raw == "" {
		return Target{}
	}
	if strings.HasPrefix(raw, "[") {
		return Target{Kind: TargetTransfer, Name: strings.TrimSuffix(raw[1:], "]")}
	}
	return Target{Kind: TargetCategory, Name: raw}
}

// Category returns the category name if the target is a category
func (t Target) Category() (string, bool) {
	return t.Name, t.Kind == TargetCategory
}

// Transfer returns the account name if the target is a transfer
func (t Target) Transfer() (string, bool) {
	return t.Name, t.Kind == TargetTransfer
}

func (t Target) String() string {
	if t.Kind == TargetTransfer {
		return "[" + t.Name + "]"
	}
	return t.Name
}

// AmountSplit is one allocation of a split transaction
type AmountSplit struct {
	Target  Target
	Memo    string
	Amount  decimal.Decimal
	Address []string
}

// Loan holds the amortization fields of a loan-tracking transaction, as
// written by the exporter.
type Loan struct {
	FirstPaymentDate string `json:"first_payment_date,omitempty" yaml:"first_payment_date,omitempty"`
	Term             string `json:"term,omitempty" yaml:"term,omitempty"`
	PaymentsMade     string `json:"payments_made,omitempty" yaml:"payments_made,omitempty"`
	PeriodsPerYear   string `json:"periods_per_year,omitempty" yaml:"periods_per_year,omitempty"`
	InterestRate     string `json:"interest_rate,omitempty" yaml:"interest_rate,omitempty"`
	CurrentBalance   string `json:"current_balance,omitempty" yaml:"current_balance,omitempty"`
	OriginalAmount   string `json:"original_amount,omitempty" yaml:"original_amount,omitempty"`
}

// Entry holds the fields shared by dated and memorized transactions
type Entry struct {
	Num     string
	Amount  decimal.Decimal
	Cleared string
	Payee   string
	Memo    string
	Target  Target
	Splits  []*AmountSplit
	Address []string
	Loan    *Loan
}

// AddSplit appends a new split and returns it
func (e *Entry) AddSplit(target Target) *AmountSplit {
	s := &AmountSplit{Target: target}
	e.Splits = append(e.Splits, s)
	return s
}

// LastSplit returns the most recently added split, or nil
func (e *Entry) LastSplit() *AmountSplit {
	if len(e.Splits) == 0 {
		return nil
	}
	return e.Splits[len(e.Splits)-1]
}

// LoanFields returns the loan block, creating it on first use
func (e *Entry) LoanFields() *Loan {
	if e.Loan == nil {
		e.Loan = &Loan{}
	}
	return e.Loan
}

// Activity is a transaction-like record that can be attached to an account:
// *Transaction, *Investment or *MemorizedTransaction.
type Activity interface {
	activity()
}

// Transaction is a dated bank, cash, card or asset/liability register entry
type Transaction struct {
	Date time.Time
	Entry
}

// MemorizedTransaction is an undated transaction template
type MemorizedTransaction struct {
	Type string
	Entry
}

// Investment is an investment account action
type Investment struct {
	Date            time.Time
	Action          string
	Security        string
	Price           decimal.NullDecimal
	Quantity        decimal.NullDecimal
	Amount          decimal.NullDecimal
	TransferAmount  decimal.NullDecimal
	Commission      decimal.NullDecimal
	Cleared         string
	Memo            string
	FirstLine       string
	TransferAccount string
}

func (*Transaction) activity()          {}
func (*MemorizedTransaction) activity() {}
func (*Investment) activity()           {}

// ActivityKind returns the store name of an activity's concrete type
func ActivityKind(a Activity) string {
	switch a.(type) {
	case *Transaction:
		return "transaction"
	case *Investment:
		return "investment"
	case *MemorizedTransaction:
		return "memorized"
	}
	return "unknown"
}
