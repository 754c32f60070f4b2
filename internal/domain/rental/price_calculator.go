package rental

import "time"

// PriceCalculator prices rentals from a date interval. Day counting is done
// on calendar days in a fixed reference location so that partial-day
// components of the timestamps never change the count.
type PriceCalculator struct {
	loc *time.Location
}

func NewPriceCalculator(loc *time.Location) *PriceCalculator {
	if loc == nil {
		loc = time.UTC
	}
	return &PriceCalculator{loc: loc}
}

// PriceCents computes the rental amount. An open rental (end nil) is not
// priced and yields 0. Otherwise the price covers every calendar day from
// start to end inclusive, plus the flat shipping fee when requested.
// The interval must already be validated: end is never before start here.
func (c *PriceCalculator) PriceCents(start time.Time, end *time.Time, dailyRateCents int64, withShipping bool, shippingFeeCents int64) int64 {
	if end == nil {
		return 0
	}

	days := c.daysInclusive(start, *end)
	amount := int64(days) * dailyRateCents
	if withShipping {
		amount += shippingFeeCents
	}
	return amount
}

func (c *PriceCalculator) daysInclusive(start, end time.Time) int {
	s := calendarDay(start.In(c.loc))
	e := calendarDay(end.In(c.loc))
	return int(e.Sub(s).Hours()/24) + 1
}

// calendarDay rebuilds the local calendar date in UTC so that day
// differences are exact multiples of 24h even across DST transitions.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
