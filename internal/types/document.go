package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Document is a flattened, serializable view of a Qif used for JSON and YAML
// output. Amounts are decimal strings and dates ISO strings.
type Document struct {
	AutoSwitch bool               `json:"auto_switch" yaml:"auto_switch"`
	Accounts   []AccountDoc       `json:"accounts,omitempty" yaml:"accounts,omitempty"`
	Categories []CategoryDoc      `json:"categories,omitempty" yaml:"categories,omitempty"`
	Classes    []Class            `json:"classes,omitempty" yaml:"classes,omitempty"`
	Securities []Security         `json:"securities,omitempty" yaml:"securities,omitempty"`
	Unassigned []ActivityGroupDoc `json:"unassigned,omitempty" yaml:"unassigned,omitempty"`
}

// AccountDoc is an account with its activity flattened
type AccountDoc struct {
	Name          string        `json:"name" yaml:"name"`
	Type          string        `json:"type,omitempty" yaml:"type,omitempty"`
	Description   string        `json:"description,omitempty" yaml:"description,omitempty"`
	CreditLimit   string        `json:"credit_limit,omitempty" yaml:"credit_limit,omitempty"`
	BalanceAmount string        `json:"balance_amount,omitempty" yaml:"balance_amount,omitempty"`
	BalanceDate   string        `json:"balance_date,omitempty" yaml:"balance_date,omitempty"`
	Activities    []ActivityDoc `json:"activities,omitempty" yaml:"activities,omitempty"`
}

// CategoryDoc is a category with its budget as a decimal string
type CategoryDoc struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Income      bool   `json:"income" yaml:"income"`
	TaxRelated  bool   `json:"tax_related,omitempty" yaml:"tax_related,omitempty"`
	Budget      string `json:"budget,omitempty" yaml:"budget,omitempty"`
	TaxSchedule string `json:"tax_schedule,omitempty" yaml:"tax_schedule,omitempty"`
}

// ActivityGroupDoc holds activity recorded under a header before any account
type ActivityGroupDoc struct {
	Header     string        `json:"header" yaml:"header"`
	Activities []ActivityDoc `json:"activities" yaml:"activities"`
}

// SplitDoc is one split of a transaction
type SplitDoc struct {
	Category string   `json:"category,omitempty" yaml:"category,omitempty"`
	Transfer string   `json:"transfer,omitempty" yaml:"transfer,omitempty"`
	Memo     string   `json:"memo,omitempty" yaml:"memo,omitempty"`
	Amount   string   `json:"amount" yaml:"amount"`
	Address  []string `json:"address,omitempty" yaml:"address,omitempty"`
}

// ActivityDoc covers all three activity kinds; Kind tells them apart
type ActivityDoc struct {
	Kind     string     `json:"kind" yaml:"kind"`
	Header   string     `json:"header,omitempty" yaml:"header,omitempty"`
	Date     string     `json:"date,omitempty" yaml:"date,omitempty"`
	Num      string     `json:"num,omitempty" yaml:"num,omitempty"`
	Amount   string     `json:"amount,omitempty" yaml:"amount,omitempty"`
	Cleared  string     `json:"cleared,omitempty" yaml:"cleared,omitempty"`
	Payee    string     `json:"payee,omitempty" yaml:"payee,omitempty"`
	Memo     string     `json:"memo,omitempty" yaml:"memo,omitempty"`
	Category string     `json:"category,omitempty" yaml:"category,omitempty"`
	Transfer string     `json:"transfer,omitempty" yaml:"transfer,omitempty"`
	Splits   []SplitDoc `json:"splits,omitempty" yaml:"splits,omitempty"`
	Address  []string   `json:"address,omitempty" yaml:"address,omitempty"`
	Loan     *Loan      `json:"loan,omitempty" yaml:"loan,omitempty"`

	MemorizedType string `json:"memorized_type,omitempty" yaml:"memorized_type,omitempty"`

	Action         string `json:"action,omitempty" yaml:"action,omitempty"`
	Security       string `json:"security,omitempty" yaml:"security,omitempty"`
	Price          string `json:"price,omitempty" yaml:"price,omitempty"`
	Quantity       string `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	TransferAmount string `json:"transfer_amount,omitempty" yaml:"transfer_amount,omitempty"`
	Commission     string `json:"commission,omitempty" yaml:"commission,omitempty"`
	FirstLine      string `json:"first_line,omitempty" yaml:"first_line,omitempty"`
}

// FormatDate renders a date as YYYY-MM-DD, or "" for the zero time
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

// Document builds the serializable view of q
func (q *Qif) Document() Document {
	doc := Document{AutoSwitch: q.AutoSwitch}
	for _, a := range q.accounts {
		ad := AccountDoc{
			Name:        a.Name,
			Type:        a.Type,
			Description: a.Description,
			CreditLimit: nullString(a.CreditLimit),
		}
		if a.Balance != nil {
			ad.BalanceAmount = nullString(a.Balance.Amount)
			ad.BalanceDate = FormatDate(a.Balance.Date)
		}
		for _, e := range a.Entries {
			ad.Activities = append(ad.Activities, ActivityDocument(e.Header, e.Activity))
		}
		doc.Accounts = append(doc.Accounts, ad)
	}
	for _, c := range q.Categories {
		doc.Categories = append(doc.Categories, CategoryDoc{
			Name:        c.Name,
			Description: c.Description,
			Income:      c.Income,
			TaxRelated:  c.TaxRelated,
			Budget:      nullString(c.Budget),
			TaxSchedule: c.TaxSchedule,
		})
	}
	for _, c := range q.Classes {
		doc.Classes = append(doc.Classes, *c)
	}
	for _, s := range q.Securities {
		doc.Securities = append(doc.Securities, *s)
	}
	for _, h := range q.headers {
		group := ActivityGroupDoc{Header: h}
		for _, act := range q.activities[h] {
			group.Activities = append(group.Activities, ActivityDocument("", act))
		}
		doc.Unassigned = append(doc.Unassigned, group)
	}
	return doc
}

// ActivityDocument flattens one activity
func ActivityDocument(header string, a Activity) ActivityDoc {
	d := ActivityDoc{Kind: ActivityKind(a), Header: header}
	switch v := a.(type) {
	case *Transaction:
		d.Date = FormatDate(v.Date)
		fillEntry(&d, &v.Entry)
	case *MemorizedTransaction:
		d.MemorizedType = v.Type
		fillEntry(&d, &v.Entry)
	case *Investment:
		d.Date = FormatDate(v.Date)
		d.Action = v.Action
		d.Security = v.Security
		d.Price = nullString(v.Price)
		d.Quantity = nullString(v.Quantity)
		d.Amount = nullString(v.Amount)
		d.TransferAmount = nullString(v.TransferAmount)
		d.Commission = nullString(v.Commission)
		d.Cleared = v.Cleared
		d.Memo = v.Memo
		d.FirstLine = v.FirstLine
		d.Transfer = v.TransferAccount
	}
	return d
}

func fillEntry(d *ActivityDoc, e *Entry) {
	d.Num = e.Num
	d.Amount = e.Amount.String()
	d.Cleared = e.Cleared
	d.Payee = e.Payee
	d.Memo = e.Memo
	switch e.Target.Kind {
	case TargetCategory:
		d.Category = e.Target.Name
	case TargetTransfer:
		d.Transfer = e.Target.Name
	}
	d.Address = e.Address
	d.Loan = e.Loan
	for _, s := range e.Splits {
		sd := SplitDoc{Memo: s.Memo, Amount: s.Amount.String(), Address: s.Address}
		switch s.Target.Kind {
		case TargetCategory:
			sd.Category = s.Target.Name
		case TargetTransfer:
			sd.Transfer = s.Target.Name
		}
		d.Splits = append(d.Splits, sd)
	}
}
