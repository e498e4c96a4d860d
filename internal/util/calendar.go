package util

import (
	"time"

	"tradegate/internal/domain"
)

// TradingCalendar provides market-hours awareness for a specific market.
// Weekends are handled; statutory holidays are not modeled and count as
// trading days.
type TradingCalendar struct {
	market domain.Market
	loc    *time.Location

	openHour, openMin   int
	closeHour, closeMin int
}

// NewTradingCalendar creates a TradingCalendar for the given market.
func NewTradingCalendar(market domain.Market) *TradingCalendar {
	tc := &TradingCalendar{market: market}

	switch market {
	case domain.MarketUS:
		tc.loc = loadLocation("America/New_York", -5*3600)
		tc.openHour, tc.openMin = 9, 30
		tc.closeHour, tc.closeMin = 16, 0
	default:
		// Taiwan regular session. After-hours books are handled by the
		// venue adapters, not the calendar.
		tc.loc = loadLocation("Asia/Taipei", 8*3600)
		tc.openHour, tc.openMin = 9, 0
		tc.closeHour, tc.closeMin = 13, 30
	}
	return tc
}

func loadLocation(name string, fallbackOffset int) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(name, fallbackOffset)
	}
	return loc
}

// Location returns the market's local time zone.
func (tc *TradingCalendar) Location() *time.Location {
	return tc.loc
}

// IsTradingDay reports whether t falls on a weekday in market-local time.
func (tc *TradingCalendar) IsTradingDay(t time.Time) bool {
	wd := t.In(tc.loc).Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// IsMarketOpen returns whether the regular session is open at time t.
func (tc *TradingCalendar) IsMarketOpen(t time.Time) bool {
	if !tc.IsTradingDay(t) {
		return false
	}
	lt := t.In(tc.loc)
	mins := lt.Hour()*60 + lt.Minute()
	return mins >= tc.openHour*60+tc.openMin && mins < tc.closeHour*60+tc.closeMin
}

// OpenOn returns the regular-session open instant on the given date.
func (tc *TradingCalendar) OpenOn(day time.Time) time.Time {
	d := day.In(tc.loc)
	return time.Date(d.Year(), d.Month(), d.Day(), tc.openHour, tc.openMin, 0, 0, tc.loc)
}

// CloseOn returns the regular-session close instant on the given date.
func (tc *TradingCalendar) CloseOn(day time.Time) time.Time {
	d := day.In(tc.loc)
	return time.Date(d.Year(), d.Month(), d.Day(), tc.closeHour, tc.closeMin, 0, 0, tc.loc)
}

// NextOpen returns the next regular-session open at or after t.
func (tc *TradingCalendar) NextOpen(t time.Time) time.Time {
	d := t.In(tc.loc)
	for {
		open := tc.OpenOn(d)
		if tc.IsTradingDay(open) && !open.Before(t) {
			return open
		}
		d = d.AddDate(0, 0, 1)
	}
}

// NextClose returns the next regular-session close at or after t.
func (tc *TradingCalendar) NextClose(t time.Time) time.Time {
	d := t.In(tc.loc)
	for {
		close := tc.CloseOn(d)
		if tc.IsTradingDay(close) && !close.Before(t) {
			return close
		}
		d = d.AddDate(0, 0, 1)
	}
}

// LatestFinishedTradingDay returns the most recent trading day whose regular
// session had already closed at time now. The result is truncated to
// midnight in the market's local zone.
func (tc *TradingCalendar) LatestFinishedTradingDay(now time.Time) time.Time {
	d := now.In(tc.loc)
	for {
		if tc.IsTradingDay(d) && !now.Before(tc.CloseOn(d)) {
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, tc.loc)
		}
		d = d.AddDate(0, 0, -1)
	}
}

// DayWindow widens [start, end] to full market-local days: start at
// 00:00:00 and end at 23:59:59.999999. Queries that filter trades by trade
// date use this so same-day boundaries are inclusive.
func (tc *TradingCalendar) DayWindow(start, end time.Time) (time.Time, time.Time) {
	s := start.In(tc.loc)
	e := end.In(tc.loc)
	from := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, tc.loc)
	to := time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, 999999000, tc.loc)
	return from, to
}
