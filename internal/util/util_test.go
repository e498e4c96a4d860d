package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"tradegate/internal/domain"
)

func TestRetry(t *testing.T) {
	attempts := 0
	targetAttempts := 3

	err := Retry(context.Background(), 5, 0, func() error {
		attempts++
		if attempts < targetAttempts {
			return errors.New("transient error")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Retry returned unexpected error: %v", err)
	}
	if attempts != targetAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, targetAttempts)
	}
}

func TestRetryAllFail(t *testing.T) {
	attempts := 0
	maxAttempts := 3
	sentinel := errors.New("persistent error")

	err := Retry(context.Background(), maxAttempts, 0, func() error {
		attempts++
		return sentinel
	})

	if !errors.Is(err, sentinel) {
		t.Fatalf("Retry error = %v, want wrapped sentinel", err)
	}
	if attempts != maxAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, maxAttempts)
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := Retry(ctx, 5, time.Hour, func() error {
		attempts++
		cancel()
		return errors.New("transient error")
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Retry error = %v, want context.Canceled", err)
	}
	if attempts != 1 {
		t.Errorf("Retry called fn %d times after cancel, want 1", attempts)
	}
}

func TestTradingCalendarTW(t *testing.T) {
	cal := NewTradingCalendar(domain.MarketTW)
	loc := cal.Location()

	// Wednesday 2024-03-06.
	during := time.Date(2024, 3, 6, 10, 15, 0, 0, loc)
	if !cal.IsMarketOpen(during) {
		t.Error("10:15 on a weekday should be inside the TW session")
	}

	atClose := time.Date(2024, 3, 6, 13, 30, 0, 0, loc)
	if cal.IsMarketOpen(atClose) {
		t.Error("13:30 is the close instant, session should be over")
	}

	saturday := time.Date(2024, 3, 9, 10, 0, 0, 0, loc)
	if cal.IsMarketOpen(saturday) {
		t.Error("Saturday should not be a trading session")
	}

	close := cal.CloseOn(during)
	if close.Hour() != 13 || close.Minute() != 30 {
		t.Errorf("CloseOn = %02d:%02d, want 13:30", close.Hour(), close.Minute())
	}
}

func TestLatestFinishedTradingDay(t *testing.T) {
	cal := NewTradingCalendar(domain.MarketTW)
	loc := cal.Location()

	// Saturday morning: latest finished day is Friday.
	saturday := time.Date(2024, 3, 9, 9, 0, 0, 0, loc)
	got := cal.LatestFinishedTradingDay(saturday)
	want := time.Date(2024, 3, 8, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("LatestFinishedTradingDay(sat) = %v, want %v", got, want)
	}

	// Wednesday before the close: Tuesday has finished, Wednesday has not.
	wedMorning := time.Date(2024, 3, 6, 11, 0, 0, 0, loc)
	got = cal.LatestFinishedTradingDay(wedMorning)
	want = time.Date(2024, 3, 5, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("LatestFinishedTradingDay(wed 11:00) = %v, want %v", got, want)
	}

	// Wednesday after the close: Wednesday itself.
	wedLate := time.Date(2024, 3, 6, 15, 0, 0, 0, loc)
	got = cal.LatestFinishedTradingDay(wedLate)
	want = time.Date(2024, 3, 6, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("LatestFinishedTradingDay(wed 15:00) = %v, want %v", got, want)
	}
}

func TestDayWindow(t *testing.T) {
	cal := NewTradingCalendar(domain.MarketTW)
	loc := cal.Location()

	start := time.Date(2024, 3, 6, 14, 22, 7, 0, loc)
	end := time.Date(2024, 3, 8, 9, 1, 0, 0, loc)
	from, to := cal.DayWindow(start, end)

	if from.Hour() != 0 || from.Minute() != 0 || from.Second() != 0 {
		t.Errorf("window start = %v, want midnight", from)
	}
	if to.Hour() != 23 || to.Minute() != 59 || to.Second() != 59 {
		t.Errorf("window end = %v, want end of day", to)
	}
	if from.Day() != 6 || to.Day() != 8 {
		t.Errorf("window days = %d..%d, want 6..8", from.Day(), to.Day())
	}

	// A trade at the close of the end day must fall inside the window.
	closeTrade := cal.CloseOn(end)
	if closeTrade.After(to) {
		t.Error("close-of-day trade falls outside the widened window")
	}
}
