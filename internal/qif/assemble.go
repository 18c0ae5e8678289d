package qif

import (
	"fmt"

	"github.com/lox/qifparse/internal/types"
)

// assembler routes parsed records into the document. current is the most
// recently defined account; activity attaches to it when set.
type assembler struct {
	doc     *types.Qif
	current *types.Account
}

func (a *assembler) add(c Chunk, record any) error {
	switch item := record.(type) {
	case *types.Account:
		a.current = a.doc.AddAccount(item)
	case *types.Transaction, *types.Investment, *types.MemorizedTransaction:
		act := item.(types.Activity)
		if a.current != nil {
			a.current.AddActivity(c.Header, act)
		} else {
			a.doc.AddActivity(c.Header, act)
		}
	case *types.Category:
		a.doc.AddCategory(item)
	case *types.Class:
		a.doc.AddClass(item)
	case *types.Security:
		a.doc.AddSecurity(item)
	default:
		return chunkError(c.Index, "", fmt.Errorf("%w: unexpected record %T", ErrInconsistentChunkState, record))
	}
	return nil
}
