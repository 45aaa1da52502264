package beancount

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind names a directive type as it is spelled in a ledger.
type Kind string

const (
	KindTransaction Kind = "transaction"
	KindBalance     Kind = "balance"
	KindInclude     Kind = "include"
	KindOpen        Kind = "open"
	KindClose       Kind = "close"
	KindCommodity   Kind = "commodity"
	KindPad         Kind = "pad"
	KindNote        Kind = "note"
	KindDocument    Kind = "document"
	KindEvent       Kind = "event"
	KindPrice       Kind = "price"
	KindQuery       Kind = "query"
	KindCustom      Kind = "custom"
	KindOption      Kind = "option"
	KindPlugin      Kind = "plugin"
	KindPushtag     Kind = "pushtag"
	KindPoptag      Kind = "poptag"
)

// Position locates a directive in the input. Both fields are 1-based.
type Position struct {
	Line   int
	Column int
}

// Directive is one parsed entry of a ledger.
type Directive interface {
	Kind() Kind
	Position() Position
}

// Date is a calendar date without time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Valid reports whether d names a real calendar day.
func (d Date) Valid() bool {
	if d.Month < time.January || d.Month > time.December || d.Day < 1 {
		return false
	}
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	return t.Year() == d.Year && t.Month() == d.Month && t.Day() == d.Day
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Flag is the status marker of a transaction or posting.
type Flag int

const (
	FlagNone    Flag = iota // "txn" keyword or no posting flag
	FlagCleared             // '*'
	FlagPending             // '!'
)

func (f Flag) String() string {
	switch f {
	case FlagCleared:
		return "*"
	case FlagPending:
		return "!"
	}
	return ""
}

// Amount is a quantity of a single commodity. Value is invalid when the
// ledger's number expression cannot be evaluated, as with a division by zero.
type Amount struct {
	Value    decimal.NullDecimal
	Currency string
}

func (a Amount) String() string {
	if !a.Value.Valid {
		return "? " + a.Currency
	}
	return a.Value.Decimal.String() + " " + a.Currency
}

// Posting is one leg of a transaction. Amount is nil when the ledger leaves
// it to be inferred.
type Posting struct {
	Pos     Position
	Flag    Flag
	Account string
	Amount  *Amount
}

// Transaction is a dated entry with postings. Payee and Narration are nil
// when the header omits them; an empty quoted string yields a non-nil "".
type Transaction struct {
	Pos       Position
	Date      Date
	Flag      Flag
	Payee     *string
	Narration *string
	Tags      []string
	Links     []string
	Postings  []Posting
}

func (t *Transaction) Kind() Kind         { return KindTransaction }
func (t *Transaction) Position() Position { return t.Pos }

// Balance asserts the amount held by an account at the start of Date.
type Balance struct {
	Pos     Position
	Date    Date
	Account string
	Amount  Amount
}

func (b *Balance) Kind() Kind         { return KindBalance }
func (b *Balance) Position() Position { return b.Pos }

// Include references another ledger file. Path is kept verbatim.
type Include struct {
	Pos  Position
	Path string
}

func (i *Include) Kind() Kind         { return KindInclude }
func (i *Include) Position() Position { return i.Pos }

// Other is any recognized directive whose contents are not retained.
// Date is the zero value for undated directives such as option.
type Other struct {
	Pos       Position
	Date      Date
	Directive Kind
}

func (o *Other) Kind() Kind         { return o.Directive }
func (o *Other) Position() Position { return o.Pos }

var (
	_ Directive = (*Transaction)(nil)
	_ Directive = (*Balance)(nil)
	_ Directive = (*Include)(nil)
	_ Directive = (*Other)(nil)
)
