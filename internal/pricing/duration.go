package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

var minutesPerHour = decimal.NewFromInt(60)

// Aggregate sums the windows into billable hours and classifies the
// engagement's lead time against the reference clock `now`. Windows must
// already be expanded and ordered (ExpandSchedule output).
//
// Same-day and rush are mutually exclusive: an engagement starting today is
// same-day only, even when it also falls inside the rush lead time.
func Aggregate(windows []Window, now time.Time, cfg Config) Totals {
	if len(windows) == 0 {
		return Totals{Hours: decimal.Zero}
	}

	var total time.Duration
	for _, w := range windows {
		total += w.Duration()
	}

	increment := cfg.BillingIncrement
	if increment <= 0 {
		increment = 15 * time.Minute
	}
	// Partial increments round up: 1h50m at a 15m increment bills as 2h.
	if rem := total % increment; rem != 0 {
		total += increment - rem
	}

	hours := decimal.NewFromInt(int64(total / time.Minute)).Div(minutesPerHour)

	earliest := windows[0]
	for _, w := range windows[1:] {
		if w.StartsAt.Before(earliest.StartsAt) {
			earliest = w
		}
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	localNow := now.In(loc)

	sameDay := earliest.Date.Year() == localNow.Year() &&
		earliest.Date.Month() == localNow.Month() &&
		earliest.Date.Day() == localNow.Day()

	// Rush only applies to engagements still ahead of the clock; a schedule
	// in the past (reprices of old quotes) is neither rush nor same-day.
	lead := earliest.StartsAt.Sub(localNow)
	rush := !sameDay && lead >= 0 && lead < cfg.RushLeadTime

	return Totals{Hours: hours, IsSameDay: sameDay, IsRush: rush}
}
