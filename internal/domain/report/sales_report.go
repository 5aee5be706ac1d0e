package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/balcao/backend/internal/domain/shared"
	"github.com/balcao/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// Named report ranges
const (
	RangeToday = "today"
	RangeWeek  = "week"
	RangeMonth = "month"
	RangeYear  = "year"
)

// DefaultTopN is how many products a summary ranks when no limit is given
const DefaultTopN = 10

// Period is a half-open interval of sale dates [From, To)
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Sale dates carry no time of day and are stored as UTC midnight, so period
// bounds are UTC midnights of calendar days.
func utcDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseRange resolves a named range relative to now. The calendar day of now
// in its own location is "today". Every range ends at the start of tomorrow
// so today's sales are included; "week" is today and the six days before it.
func ParseRange(name string, now time.Time) (Period, error) {
	today := utcDay(now)
	end := today.AddDate(0, 0, 1)

	switch strings.ToLower(strings.TrimSpace(name)) {
	case RangeToday:
		return Period{From: today, To: end}, nil
	case RangeWeek:
		return Period{From: today.AddDate(0, 0, -6), To: end}, nil
	case "", RangeMonth:
		return Period{From: today.AddDate(0, 0, 1-today.Day()), To: end}, nil
	case RangeYear:
		return Period{From: time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), To: end}, nil
	default:
		return Period{}, shared.NewDomainError("INVALID_RANGE",
			fmt.Sprintf("unknown range '%s', expected today, week, month or year", name))
	}
}

// NewPeriod builds an explicit period covering the calendar days from..to inclusive
func NewPeriod(from, to time.Time) (Period, error) {
	from = utcDay(from)
	to = utcDay(to).AddDate(0, 0, 1)
	if !from.Before(to) {
		return Period{}, shared.NewDomainError("INVALID_RANGE", "range start must not be after its end")
	}
	return Period{From: from, To: to}, nil
}

// DayRevenue is the revenue booked on a single day
type DayRevenue struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

// SalesSummary is the headline view of a period of trading
type SalesSummary struct {
	Period      Period               `json:"period"`
	Revenue     decimal.Decimal      `json:"revenue"`
	Profit      decimal.Decimal      `json:"profit"`
	Margin      decimal.Decimal      `json:"margin"`
	SaleCount   int                  `json:"sale_count"`
	BestDay     *DayRevenue          `json:"best_day,omitempty"`
	TopProducts []trade.ProductSales `json:"top_products"`
}

// Summarize folds sale headers into a summary. Margin is profit over revenue,
// zero when there is no revenue. Ties for the best day go to the earliest day.
func Summarize(period Period, sales []trade.Sale) SalesSummary {
	summary := SalesSummary{
		Period:      period,
		Revenue:     decimal.Zero,
		Profit:      decimal.Zero,
		Margin:      decimal.Zero,
		SaleCount:   len(sales),
		TopProducts: []trade.ProductSales{},
	}

	byDay := make(map[string]decimal.Decimal)
	for i := range sales {
		s := &sales[i]
		summary.Revenue = summary.Revenue.Add(s.TotalAmount)
		summary.Profit = summary.Profit.Add(s.TotalProfit)
		day := s.SoldAt.UTC().Format(time.DateOnly)
		byDay[day] = byDay[day].Add(s.TotalAmount)
	}
	if !summary.Revenue.IsZero() {
		summary.Margin = summary.Profit.Div(summary.Revenue).Round(4)
	}

	for day, revenue := range byDay {
		best := summary.BestDay
		if best == nil || revenue.GreaterThan(best.Revenue) || (revenue.Equal(best.Revenue) && day < best.Date) {
			summary.BestDay = &DayRevenue{Date: day, Revenue: revenue}
		}
	}
	return summary
}
