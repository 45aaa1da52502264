package beancount

import (
	"cmp"
	"context"
	"errors"
	"io"
	"iter"
	"slices"
	"strings"

	"github.com/robinvdvleuten/beancount/ast"
	"github.com/robinvdvleuten/beancount/parser"
)

// Parser hands out the directives of a ledger in source order. The text is
// parsed in one pass on the first call to Next.
type Parser struct {
	input  string
	lines  []int
	parsed bool
	queue  []Directive
	err    error
}

// NewParser returns a Parser over input. Nothing is parsed until Next.
func NewParser(input string) *Parser {
	return &Parser{input: input}
}

// Next returns the next directive, or io.EOF once the input is exhausted.
// The first error is sticky: every later call returns it again.
func (p *Parser) Next() (Directive, error) {
	if p.err != nil {
		return nil, p.err
	}
	if !p.parsed {
		p.parsed = true
		if err := p.load(context.Background()); err != nil {
			p.err = err
			return nil, err
		}
	}
	if len(p.queue) == 0 {
		p.err = io.EOF
		return nil, p.err
	}
	d := p.queue[0]
	p.queue = p.queue[1:]
	return d, nil
}

// Directives yields the directives of input. The sequence ends after the
// first error, and stops as soon as the consumer stops ranging.
func Directives(input string) iter.Seq2[Directive, error] {
	return func(yield func(Directive, error) bool) {
		p := NewParser(input)
		for {
			d, err := p.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(d, nil) {
				return
			}
		}
	}
}

func (p *Parser) load(ctx context.Context) error {
	tree, err := parser.ParseString(ctx, p.input)
	if err != nil {
		return err
	}
	p.lines = lineStarts(p.input)

	var out []Directive
	for _, d := range tree.Directives {
		converted, err := p.directive(d)
		if err != nil {
			return err
		}
		out = append(out, converted)
	}
	for _, inc := range tree.Includes {
		out = append(out, &Include{Pos: position(inc.Pos), Path: inc.Filename})
	}
	for _, opt := range tree.Options {
		out = append(out, &Other{Pos: position(opt.Pos), Directive: KindOption})
	}

	// Includes and options are kept apart from dated directives in the tree.
	slices.SortStableFunc(out, func(a, b Directive) int {
		pa, pb := a.Position(), b.Position()
		return cmp.Or(cmp.Compare(pa.Line, pb.Line), cmp.Compare(pa.Column, pb.Column))
	})
	p.queue = out
	return nil
}

func (p *Parser) directive(d ast.Directive) (Directive, error) {
	switch d := d.(type) {
	case *ast.Transaction:
		return p.transaction(d)
	case *ast.Balance:
		return p.balance(d)
	}

	pos := position(d.Position())
	c := p.cursor(pos)
	var date Date
	if c.dated() {
		var err error
		if date, err = c.date(); err != nil {
			return nil, err
		}
	}
	return &Other{Pos: pos, Date: date, Directive: Kind(c.word())}, nil
}

func (p *Parser) transaction(t *ast.Transaction) (*Transaction, error) {
	pos := position(t.Pos)
	c := p.cursor(pos)
	date, err := c.date()
	if err != nil {
		return nil, err
	}
	txn := &Transaction{Pos: pos, Date: date, Flag: transactionFlag(c.word())}

	h, err := c.header()
	if err != nil {
		return nil, err
	}
	switch {
	case len(h.texts) == 1:
		txn.Narration = &h.texts[0]
	case len(h.texts) >= 2:
		txn.Payee = &h.texts[0]
		txn.Narration = &h.texts[1]
	}
	txn.Tags = h.tags
	txn.Links = h.links

	for _, ps := range t.Postings {
		posting := Posting{
			Pos:     position(ps.Pos),
			Flag:    postingFlag(ps.Flag),
			Account: string(ps.Account),
		}
		if ps.Amount != nil {
			amount := convertAmount(ps.Amount)
			posting.Amount = &amount
		}
		txn.Postings = append(txn.Postings, posting)
	}
	return txn, nil
}

func (p *Parser) balance(b *ast.Balance) (*Balance, error) {
	pos := position(b.Pos)
	date, err := p.cursor(pos).date()
	if err != nil {
		return nil, err
	}
	if b.Amount == nil {
		return nil, &ParseError{Line: pos.Line, Column: pos.Column, Message: "balance without amount"}
	}
	return &Balance{Pos: pos, Date: date, Account: string(b.Account), Amount: convertAmount(b.Amount)}, nil
}

func (p *Parser) cursor(pos Position) *cursor {
	start := len(p.input)
	if pos.Line >= 1 && pos.Line <= len(p.lines) {
		start = p.lines[pos.Line-1]
	}
	return &cursor{src: p.input, pos: start, start: start, line: pos.Line}
}

func convertAmount(a *ast.Amount) Amount {
	return Amount{Value: EvalNumber(a.Value), Currency: a.Currency}
}

func position(p ast.Position) Position {
	return Position{Line: p.Line, Column: p.Column}
}

// transactionFlag maps the token after a transaction's date. Flags other
// than '!' count as cleared.
func transactionFlag(tok string) Flag {
	switch tok {
	case "txn":
		return FlagNone
	case "!":
		return FlagPending
	}
	return FlagCleared
}

func postingFlag(flag string) Flag {
	switch strings.TrimSpace(flag) {
	case "":
		return FlagNone
	case "!":
		return FlagPending
	}
	return FlagCleared
}

func lineStarts(s string) []int {
	starts := []int{0}
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}
