package types

import (
	"golang.org/x/exp/slices"
)

// Qif is the parsed document: accounts, lists, and any activity recorded
// before the first account definition.
type Qif struct {
	accounts []*Account
	index    map[AccountKey]*Account

	Categories []*Category
	Classes    []*Class
	Securities []*Security

	headers    []string
	activities map[string][]Activity

	// AutoSwitch is the state of the auto-switch directive at end of file
	AutoSwitch bool
}

// New creates an empty document
func New() *Qif {
	return &Qif{
		index:      make(map[AccountKey]*Account),
		activities: make(map[string][]Activity),
	}
}

// AddAccount registers an account. A later definition with the same name and
// type takes over the lookup key; the earlier one stays in Accounts.
func (q *Qif) AddAccount(a *Account) *Account {
	q.accounts = append(q.accounts, a)
	q.index[a.Key()] = a
	return a
}

// Account looks up an account by name and type
func (q *Qif) Account(name, accountType string) (*Account, bool) {
	a, ok := q.index[AccountKey{Name: name, Type: accountType}]
	return a, ok
}

// Accounts returns all account definitions in file order
func (q *Qif) Accounts() []*Account {
	return slices.Clone(q.accounts)
}

// AddCategory appends a category
func (q *Qif) AddCategory(c *Category) {
	q.Categories = append(q.Categories, c)
}

// AddClass appends a class
func (q *Qif) AddClass(c *Class) {
	q.Classes = append(q.Classes, c)
}

// AddSecurity appends a security
func (q *Qif) AddSecurity(s *Security) {
	q.Securities = append(q.Securities, s)
}

// AddActivity records an activity that has no owning account under header
func (q *Qif) AddActivity(header string, a Activity) {
	if _, ok := q.activities[header]; !ok {
		q.headers = append(q.headers, header)
	}
	q.activities[header] = append(q.activities[header], a)
}

// Activities returns the unowned activities recorded under header
func (q *Qif) Activities(header string) []Activity {
	return slices.Clone(q.activities[header])
}

// Headers returns the headers that have unowned activities, in first-seen order
func (q *Qif) Headers() []string {
	return slices.Clone(q.headers)
}

// ActivityCount returns the number of activities across accounts and headers
func (q *Qif) ActivityCount() int {
	n := 0
	for _, a := range q.accounts {
		n += len(a.Entries)
	}
	for _, acts := range q.activities {
		n += len(acts)
	}
	return n
}
