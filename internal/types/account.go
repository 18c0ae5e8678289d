package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is an account's statement balance as of a date
type Balance struct {
	Amount decimal.NullDecimal
	Date   time.Time
}

// AccountEntry is an activity together with the header it was recorded under
type AccountEntry struct {
	Header   string
	Activity Activity
}

// Account is a QIF account definition and the activity recorded against it
type Account struct {
	Name        string
	Description string
	Type        string
	CreditLimit decimal.NullDecimal
	Balance     *Balance
	Entries     []AccountEntry
}

// AccountKey identifies an account by name and type
type AccountKey struct {
	Name string
	Type string
}

// Key returns the account's lookup key
func (a *Account) Key() AccountKey {
	return AccountKey{Name: a.Name, Type: a.Type}
}

// BalanceFields returns the balance block, creating it on first use
func (a *Account) BalanceFields() *Balance {
	if a.Balance == nil {
		a.Balance = &Balance{}
	}
	return a.Balance
}

// AddActivity appends an activity recorded under header
func (a *Account) AddActivity(header string, act Activity) {
	a.Entries = append(a.Entries, AccountEntry{Header: header, Activity: act})
}

// Category is a QIF category list item
type Category struct {
	Name        string
	Description string
	Expense     bool
	Income      bool
	TaxRelated  bool
	Budget      decimal.NullDecimal
	TaxSchedule string
}

// NewCategory returns a category with the expense default set
func NewCategory() *Category {
	return &Category{Expense: true}
}

// Class is a QIF class list item
type Class struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Security is a QIF security list item
type Security struct {
	Name   string `json:"name" yaml:"name"`
	Symbol string `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Type   string `json:"type,omitempty" yaml:"type,omitempty"`
	Goal   string `json:"goal,omitempty" yaml:"goal,omitempty"`
}
