package projector

import (
	"fmt"
	"time"

	"github.com/cleared-dev/nu_plugin_beancount/internal/beancount"
	"github.com/cleared-dev/nu_plugin_beancount/internal/value"
)

// Date anchors a ledger date at midnight UTC.
//
// The parser only produces real calendar dates, so an impossible one is a
// bug in the caller and panics.
func Date(d beancount.Date, span value.Span) value.Value {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	if t.Year() != d.Year || t.Month() != d.Month || t.Day() != d.Day {
		panic(fmt.Sprintf("projector: invalid date %s from directive source", d))
	}
	return value.Date(t, span)
}
