package qif

import (
	"fmt"
	"strings"
)

// Chunk is one ^-delimited record of the document, classified and with its
// header lines removed.
type Chunk struct {
	Index int
	Kind  Kind
	// Header is the transaction-list header in force, set for
	// transaction, investment and memorized chunks.
	Header string
	// AutoSwitch is the auto-switch flag after this chunk's directives
	AutoSwitch bool
	Lines      []string
}

// segmentState is carried from one chunk to the next
type segmentState struct {
	kind       Kind
	header     string
	autoSwitch bool
}

// Segment splits data into chunks and classifies each one. A chunk without a
// header line takes the kind of the chunk before it.
func Segment(data string) ([]Chunk, error) {
	chunks, _, err := segment(data)
	return chunks, err
}

// segment is Segment plus the state left after the last chunk, which
// includes directives in chunks that yield no record.
func segment(data string) ([]Chunk, segmentState, error) {
	if len(data) == 0 {
		return nil, segmentState{}, ErrEmptyInput
	}
	data = strings.ReplaceAll(data, "\r\n", "\n")
	if strings.HasSuffix(data, "\n^") {
		data += "\n"
	}
	data = strings.TrimPrefix(data, "^\n")

	var (
		st     segmentState
		chunks []Chunk
	)
	for i, raw := range strings.Split(data, "\n^\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		next, c, ok, err := classify(st, i, strings.Split(raw, "\n"))
		if err != nil {
			return nil, segmentState{}, err
		}
		st = next
		if ok {
			chunks = append(chunks, c)
		}
	}
	return chunks, st, nil
}

// classify applies one chunk to the state. ok is false when the chunk held
// nothing but option directives and header lines.
func classify(st segmentState, index int, lines []string) (segmentState, Chunk, bool, error) {
	for len(lines) > 0 && isOption(firstLine(lines)) {
		switch firstLine(lines) {
		case OptionAutoSwitch:
			st.autoSwitch = true
		case ClearAutoSwitch:
			st.autoSwitch = false
		}
		lines = lines[1:]
	}
	if isBlank(lines) {
		return st, Chunk{}, false, nil
	}

	first := firstLine(lines)
	switch {
	case first == HeaderCategory:
		st.kind, lines = KindCategory, lines[1:]
	case first == HeaderAccount:
		st.kind, lines = KindAccount, lines[1:]
	case nonInvestmentHeaders[first], first == HeaderInvestment:
		if len(lines) > 1 && strings.TrimRight(lines[1], " \t\r") == HeaderAccount {
			st.kind, lines = KindAccount, lines[2:]
			break
		}
		st.kind, st.header, lines = KindTransaction, first, lines[1:]
		if first == HeaderInvestment {
			st.kind = KindInvestment
		}
	case first == HeaderClass:
		st.kind, lines = KindClass, lines[1:]
	case first == HeaderMemorized:
		st.kind, st.header, lines = KindMemorized, first, lines[1:]
	case first == HeaderSecurity:
		st.kind, lines = KindSecurity, lines[1:]
	case strings.HasPrefix(first, "!"):
		return st, Chunk{}, false, chunkError(index, first, fmt.Errorf("%w: <%s>", ErrUnrecognizedHeader, first))
	case st.kind == KindNone:
		return st, Chunk{}, false, chunkError(index, first, fmt.Errorf("%w: no record type before headerless chunk", ErrInconsistentChunkState))
	}

	if isBlank(lines) {
		return st, Chunk{}, false, nil
	}

	c := Chunk{
		Index:      index,
		Kind:       st.kind,
		AutoSwitch: st.autoSwitch,
		Lines:      lines,
	}
	if st.kind.activity() {
		c.Header = st.header
	}
	return st, c, true, nil
}

func firstLine(lines []string) string {
	return strings.TrimRight(lines[0], " \t\r")
}

func isBlank(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}
