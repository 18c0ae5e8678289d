package qif

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/qifparse/internal/types"
	"golang.org/x/sync/errgroup"
)

// Parser converts QIF documents into a types.Qif
type Parser struct {
	dates       DateOptions
	concurrency int
	logger      *log.Logger
}

// Option configures a Parser
type Option func(*Parser)

// WithMonthBeforeDay sets whether dates are read month first
func WithMonthBeforeDay(v bool) Option {
	return func(p *Parser) {
		p.dates.MonthBeforeDay = v
	}
}

// WithY2KRule sets whether two-digit years below 69 are read as 20xx
func WithY2KRule(v bool) Option {
	return func(p *Parser) {
		p.dates.Y2KRule = v
	}
}

// WithDateOptions replaces both date settings
func WithDateOptions(opts DateOptions) Option {
	return func(p *Parser) {
		p.dates = opts
	}
}

// WithConcurrency parses chunk bodies on up to n goroutines once the chunks
// have been classified. Values below 2 parse sequentially.
func WithConcurrency(n int) Option {
	return func(p *Parser) {
		p.concurrency = n
	}
}

// WithLogger sets the logger used for diagnostics such as skipped lines
func WithLogger(logger *log.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// New creates a parser. The default reads dates day first without the Y2K
// rule and logs nowhere.
func New(opts ...Option) *Parser {
	p := &Parser{
		concurrency: 1,
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DateOptions returns the date settings in use
func (p *Parser) DateOptions() DateOptions {
	return p.dates
}

// Parse reads the whole of r and parses it
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*types.Qif, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read QIF data: %w", err)
	}
	return p.ParseString(ctx, string(data))
}

// ParseString parses a complete QIF document
func (p *Parser) ParseString(ctx context.Context, data string) (*types.Qif, error) {
	startTime := time.Now()

	chunks, final, err := segment(data)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("Segmented QIF data", "chunks", len(chunks), "bytes", len(data))

	records, err := p.parseChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	asm := &assembler{doc: types.New()}
	for i, c := range chunks {
		if err := asm.add(c, records[i]); err != nil {
			return nil, err
		}
	}
	asm.doc.AutoSwitch = final.autoSwitch

	p.logger.Debug("Parsed QIF data",
		"accounts", len(asm.doc.Accounts()),
		"categories", len(asm.doc.Categories),
		"activities", asm.doc.ActivityCount(),
		"duration", time.Since(startTime))

	return asm.doc, nil
}

// parseChunks parses every chunk body. Chunks are independent once
// classified, so they may be parsed in parallel; the error reported is the
// one from the earliest failing chunk either way.
func (p *Parser) parseChunks(ctx context.Context, chunks []Chunk) ([]any, error) {
	records := make([]any, len(chunks))
	errs := make([]error, len(chunks))

	if p.concurrency < 2 {
		for i, c := range chunks {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			record, err := p.parseChunk(c)
			if err != nil {
				return nil, err
			}
			records[i] = record
		}
		return records, nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, c := range chunks {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			records[i], errs[i] = p.parseChunk(c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return records, nil
}

// ParseReader parses QIF data from r
func ParseReader(r io.Reader, opts ...Option) (*types.Qif, error) {
	return New(opts...).Parse(context.Background(), r)
}

// ParseFile reads a QIF file and parses it
func ParseFile(filename string, opts ...Option) (*types.Qif, error) {
	infile, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer infile.Close()

	return ParseReader(infile, opts...)
}
