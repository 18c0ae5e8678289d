package qif

// Kind is the record kind a chunk is parsed as
type Kind int

const (
	KindNone Kind = iota
	KindCategory
	KindAccount
	KindTransaction
	KindInvestment
	KindClass
	KindMemorized
	KindSecurity
)

func (k Kind) String() string {
	switch k {
	case KindCategory:
		return "category"
	case KindAccount:
		return "account"
	case KindTransaction:
		return "transaction"
	case KindInvestment:
		return "investment"
	case KindClass:
		return "class"
	case KindMemorized:
		return "memorized"
	case KindSecurity:
		return "security"
	}
	return "none"
}

// activity reports whether chunks of this kind attach to an account
func (k Kind) activity() bool {
	return k == KindTransaction || k == KindInvestment || k == KindMemorized
}

// Header lines
const (
	HeaderAccount    = "!Account"
	HeaderCategory   = "!Type:Cat"
	HeaderClass      = "!Type:Class"
	HeaderMemorized  = "!Type:Memorized"
	HeaderSecurity   = "!Type:Security"
	HeaderInvestment = "!Type:Invst"

	HeaderCash           = "!Type:Cash"
	HeaderBank           = "!Type:Bank"
	HeaderCreditCard     = "!Type:CCard"
	HeaderOtherAsset     = "!Type:Oth A"
	HeaderOtherLiability = "!Type:Oth L"

	// HeaderInvoice is only written by Quicken for business
	HeaderInvoice = "!Type:Invoice"
)

// Option directives
const (
	OptionAllXfr     = "!Option:AllXfr"
	OptionAutoSwitch = "!Option:AutoSwitch"
	ClearAutoSwitch  = "!Clear:AutoSwitch"
)

// nonInvestmentHeaders are the account-type headers that introduce a
// transaction list
var nonInvestmentHeaders = map[string]bool{
	HeaderCash:           true,
	HeaderBank:           true,
	HeaderCreditCard:     true,
	HeaderOtherAsset:     true,
	HeaderOtherLiability: true,
	HeaderInvoice:        true,
}

func isOption(line string) bool {
	return line == OptionAllXfr || line == OptionAutoSwitch || line == ClearAutoSwitch
}
