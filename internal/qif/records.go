package qif

import (
	"fmt"
	"strings"

	"github.com/lox/qifparse/internal/types"
)

var errNoSplit = fmt.Errorf("%w: split field before any S line", ErrInconsistentChunkState)

// field is one tagged line of a chunk body
type field struct {
	tag   byte
	value string
	line  string
}

// eachField calls fn for every field line of c, skipping blank lines and
// stray header markers.
func eachField(c Chunk, fn func(f field) error) error {
	for _, line := range c.Lines {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "!Type") || strings.HasPrefix(line, HeaderAccount) {
			continue
		}
		if line[0] == '!' {
			return chunkError(c.Index, line, fmt.Errorf("%w: header inside record body", ErrInconsistentChunkState))
		}
		if err := fn(field{tag: line[0], value: line[1:], line: line}); err != nil {
			return chunkError(c.Index, line, err)
		}
	}
	return nil
}

func (p *Parser) skipField(c Chunk, f field) {
	p.logger.Warn("Skipping unknown line", "chunk", c.Index, "kind", c.Kind, "line", f.line)
}

// parseChunk dispatches c to the record parser for its kind
func (p *Parser) parseChunk(c Chunk) (any, error) {
	switch c.Kind {
	case KindCategory:
		return p.parseCategory(c)
	case KindAccount:
		return p.parseAccount(c)
	case KindTransaction:
		return p.parseTransaction(c)
	case KindInvestment:
		return p.parseInvestment(c)
	case KindClass:
		return p.parseClass(c)
	case KindMemorized:
		return p.parseMemorized(c)
	case KindSecurity:
		return p.parseSecurity(c)
	}
	return nil, chunkError(c.Index, "", fmt.Errorf("%w: chunk has no record type", ErrInconsistentChunkState))
}

func (p *Parser) parseCategory(c Chunk) (*types.Category, error) {
	item := types.NewCategory()
	err := eachField(c, func(f field) error {
		switch f.tag {
		case 'N':
			item.Name = f.value
		case 'D':
			item.Description = f.value
		case 'E':
			item.Expense, item.Income = true, false
		case 'I':
			item.Income, item.Expense = true, false
		case 'T':
			item.TaxRelated = true
		case 'B':
			budget, err := parseNullAmount(f.value)
			if err != nil {
				return err
			}
			item.Budget = budget
		case 'R':
			item.TaxSchedule = f.value
		default:
			p.skipField(c, f)
		}
		return nil
	})
	return item, err
}

func (p *Parser) parseClass(c Chunk) (*types.Class, error) {
	item := &types.Class{}
	err := eachField(c, func(f field) error {
		switch f.tag {
		case 'N':
			item.Name = f.value
		case 'D':
			item.Description = f.value
		default:
			p.skipField(c, f)
		}
		return nil
	})
	return item, err
}

func (p *Parser) parseSecurity(c Chunk) (*types.Security, error) {
	item := &types.Security{}
	err := eachField(c, func(f field) error {
		switch f.tag {
		case 'N':
			item.Name = f.value
		case 'S':
			item.Symbol = f.value
		case 'T':
			item.Type = f.value
		case 'G':
			item.Goal = f.value
		default:
			p.skipField(c, f)
		}
		return nil
	})
	return item, err
}

func (p *Parser) parseAccount(c Chunk) (*types.Account, error) {
	item := &types.Account{}
	err := eachField(c, func(f field) error {
		switch f.tag {
		case 'N':
			item.Name = f.value
		case 'D':
			item.Description = f.value
		case 'T':
			item.Type = f.value
		case 'L':
			limit, err := parseNullAmount(f.value)
			if err != nil {
				return err
			}
			item.CreditLimit = limit
		case '/':
			date, err := ParseDate(f.value, p.dates)
			if err != nil {
				return err
			}
			item.BalanceFields().Date = date
		case '$':
			amount, err := parseNullAmount(f.value)
			if err != nil {
				return err
			}
			item.BalanceFields().Amount = amount
		default:
			p.skipField(c, f)
		}
		return nil
	})
	return item, err
}

func (p *Parser) parseTransaction(c Chunk) (*types.Transaction, error) {
	item := &types.Transaction{}
	err := eachField(c, func(f field) error {
		if f.tag == 'D' {
			date, err := ParseDate(f.value, p.dates)
			if err != nil {
				return err
			}
			item.Date = date
			return nil
		}
		return p.entryField(c, &item.Entry, f)
	})
	return item, err
}

func (p *Parser) parseMemorized(c Chunk) (*types.MemorizedTransaction, error) {
	item := &types.MemorizedTransaction{}
	err := eachField(c, func(f field) error {
		if f.tag == 'K' {
			item.Type = f.value
			return nil
		}
		return p.entryField(c, &item.Entry, f)
	})
	return item, err
}

// entryField applies a field shared by dated and memorized transactions.
// E, A and $ after an S line belong to the last split.
func (p *Parser) entryField(c Chunk, e *types.Entry, f field) error {
	switch f.tag {
	case 'N':
		e.Num = f.value
	case 'T', 'U':
		amount, err := ParseAmount(f.value)
		if err != nil {
			return err
		}
		e.Amount = amount
	case 'C':
		e.Cleared = f.value
	case 'P':
		e.Payee = f.value
	case 'M':
		e.Memo = f.value
	case 'L':
		e.Target = types.ParseTarget(f.value)
	case '1':
		e.LoanFields().FirstPaymentDate = f.value
	case '2':
		e.LoanFields().Term = f.value
	case '3':
		e.LoanFields().PaymentsMade = f.value
	case '4':
		e.LoanFields().PeriodsPerYear = f.value
	case '5':
		e.LoanFields().InterestRate = f.value
	case '6':
		e.LoanFields().CurrentBalance = f.value
	case '7':
		e.LoanFields().OriginalAmount = f.value
	case 'S':
		e.AddSplit(types.ParseTarget(f.value))
	case 'A':
		if split := e.LastSplit(); split != nil {
			split.Address = append(split.Address, f.value)
		} else {
			e.Address = append(e.Address, f.value)
		}
	case 'E':
		split := e.LastSplit()
		if split == nil {
			return errNoSplit
		}
		split.Memo = f.value
	case '$':
		split := e.LastSplit()
		if split == nil {
			return errNoSplit
		}
		amount, err := ParseAmount(f.value)
		if err != nil {
			return err
		}
		split.Amount = amount
	default:
		p.skipField(c, f)
	}
	return nil
}

func (p *Parser) parseInvestment(c Chunk) (*types.Investment, error) {
	item := &types.Investment{}
	err := eachField(c, func(f field) error {
		var err error
		switch f.tag {
		case 'D':
			item.Date, err = ParseDate(f.value, p.dates)
		case 'N':
			item.Action = f.value
		case 'Y':
			item.Security = f.value
		case 'I':
			item.Price, err = parseNullAmount(f.value)
		case 'Q':
			item.Quantity, err = parseNullAmount(f.value)
		case 'T', 'U':
			item.Amount, err = parseNullAmount(f.value)
		case '$':
			item.TransferAmount, err = parseNullAmount(f.value)
		case 'O':
			item.Commission, err = parseNullAmount(f.value)
		case 'C':
			item.Cleared = f.value
		case 'M':
			item.Memo = f.value
		case 'P':
			item.FirstLine = f.value
		case 'L':
			item.TransferAccount = strings.TrimSuffix(strings.TrimPrefix(f.value, "["), "]")
		default:
			p.skipField(c, f)
		}
		return err
	})
	return item, err
}
