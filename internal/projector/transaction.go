package projector

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/nu_plugin_beancount/internal/beancount"
	"github.com/cleared-dev/nu_plugin_beancount/internal/value"
)

// Transaction projects a transaction with its postings in source order.
func Transaction(txn *beancount.Transaction, span value.Span) value.Value {
	postings := make([]value.Value, len(txn.Postings))
	for i := range txn.Postings {
		postings[i] = Posting(&txn.Postings[i], span)
	}
	return value.Record(
		[]string{"date", "directive", "flag", "payee", "narration", "postings"},
		[]value.Value{
			Date(txn.Date, span),
			value.String("txn", span),
			Flag(txn.Flag, span),
			optional(txn.Payee, span),
			optional(txn.Narration, span),
			value.List(postings, span),
		},
		span,
	)
}

// Posting projects a posting. A missing amount becomes Nothing.
func Posting(p *beancount.Posting, span value.Span) value.Value {
	amount := value.Nothing(span)
	if p.Amount != nil {
		amount = Amount(*p.Amount, span)
	}
	return value.Record(
		[]string{"account", "amount"},
		[]value.Value{value.String(p.Account, span), amount},
		span,
	)
}

// Amount projects an amount as a one-column record keyed by currency. A
// number that could not be evaluated becomes Nothing.
func Amount(a beancount.Amount, span value.Span) value.Value {
	num := value.Nothing(span)
	if a.Value.Valid {
		num = Number(a.Value.Decimal, span)
	}
	return value.Record([]string{a.Currency}, []value.Value{num}, span)
}

// Number converts a decimal to a float. Values that do not fit in a float64
// become Nothing rather than an infinity.
func Number(d decimal.Decimal, span value.Span) value.Value {
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return value.Nothing(span)
	}
	return value.Float(f, span)
}

// Flag renders a transaction flag. A transaction without a flag counts as
// cleared.
func Flag(f beancount.Flag, span value.Span) value.Value {
	if f == beancount.FlagPending {
		return value.String("!", span)
	}
	return value.String("*", span)
}

func optional(s *string, span value.Span) value.Value {
	if s == nil {
		return value.Nothing(span)
	}
	return value.String(*s, span)
}
