package fubon

import (
	"strconv"
	"strings"
	"time"

	"tradegate/internal/domain"
)

// normalizeOrder converts one venue order snapshot into a canonical order.
// The venue reports quantities in after_qty (the post-mutation total) and
// filled_qty, both in native units; canonical quantities divide by the board
// lot unless the snapshot sits on an odd-lot book. An error means the
// snapshot's shape is unreadable and the record should be skipped.
func normalizeOrder(r Record, now func() time.Time, loc *time.Location) (domain.Order, error) {
	id := resolveOrderID(r, now)
	symbol, _ := probeString(r, "stock_no")

	price, err := probeFloat(r, "price")
	if err != nil {
		return domain.Order{}, err
	}
	code, err := probeInt(r, "status")
	if err != nil {
		return domain.Order{}, err
	}
	filledNative, err := probeFloat(r, "filled_qty")
	if err != nil {
		return domain.Order{}, err
	}
	totalNative, err := probeFloat(r, "after_qty")
	if err != nil {
		return domain.Order{}, err
	}

	divisor := lotDivisor(isOddLotRecord(r))

	side, ok := resolveSide(r)
	condition := domain.ConditionCash
	if ok {
		condition = resolveCondition(r)
	} else {
		side = domain.OrderSideBuy
	}

	return domain.Order{
		ID:        id,
		Symbol:    symbol,
		Side:      side,
		Price:     price,
		Quantity:  totalNative / divisor,
		FilledQty: filledNative / divisor,
		Status:    resolveStatus(code, filledNative, totalNative),
		Condition: condition,
		Time:      parseOrderTime(r, now, loc),
		Raw:       r,
	}, nil
}

// resolveOrderID digs the order id out of a venue record. The venue has
// shipped several spellings; a record with none gets a synthetic id so the
// caller still has a handle to key and log.
func resolveOrderID(r Record, now func() time.Time) string {
	if id, ok := probeString(r, "order_no", "orderNo", "ordNo", "seq_no", "seqNo"); ok && id != "" {
		return id
	}
	return "unknown_" + strconv.FormatInt(now().Unix(), 10)
}

// resolveSide maps the snapshot's direction field. Beyond the canonical
// enum values the venue has been seen sending single-letter and uppercase
// spellings.
func resolveSide(r Record) (domain.OrderSide, bool) {
	raw, ok := probeString(r, "buy_sell")
	if !ok {
		return domain.OrderSideBuy, false
	}
	switch raw {
	case string(BSBuy):
		return domain.OrderSideBuy, true
	case string(BSSell):
		return domain.OrderSideSell, true
	}
	switch strings.ToUpper(raw) {
	case "B", "BUY":
		return domain.OrderSideBuy, true
	case "S", "SELL":
		return domain.OrderSideSell, true
	}
	return domain.OrderSideBuy, false
}

// resolveCondition maps the snapshot's financing field, falling back to
// substring matching on the venue's display strings. Unrecognized values
// mean cash.
func resolveCondition(r Record) domain.Condition {
	raw, ok := probeString(r, "order_type")
	if !ok {
		return domain.ConditionCash
	}
	switch raw {
	case string(OrderTypeStock):
		return domain.ConditionCash
	case string(OrderTypeMargin):
		return domain.ConditionMargin
	case string(OrderTypeShort):
		return domain.ConditionShort
	case string(OrderTypeDayTrade):
		return domain.ConditionDayTrade
	}

	upper := strings.ToUpper(raw)
	switch {
	case strings.Contains(upper, "現股") || strings.Contains(upper, "STOCK"):
		return domain.ConditionCash
	case strings.Contains(upper, "融資") || strings.Contains(upper, "MARGIN"):
		return domain.ConditionMargin
	case strings.Contains(upper, "融券") || strings.Contains(upper, "SHORT"):
		return domain.ConditionShort
	case strings.Contains(upper, "當沖") || strings.Contains(upper, "DAYTRADE"):
		return domain.ConditionDayTrade
	}
	return domain.ConditionCash
}

// parseOrderTime reads the snapshot's date and last_time fields. Dates come
// as YYYY/MM/DD, MM/DD, or YYYYMMDD; times as HH:MM:SS with an optional
// millisecond suffix. Anything unparseable falls back to the current time so
// a malformed stamp never discards the order.
func parseOrderTime(r Record, now func() time.Time, loc *time.Location) time.Time {
	dateStr, _ := probeString(r, "date")
	timeStr, _ := probeString(r, "last_time")
	if dateStr == "" || timeStr == "" {
		return now()
	}

	year, month, day, ok := parseVenueDate(dateStr, now)
	if !ok {
		return now()
	}

	parts := strings.Split(timeStr, ":")
	if len(parts) < 3 {
		return now()
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return now()
	}

	secParts := strings.SplitN(parts[2], ".", 2)
	second, err := strconv.Atoi(secParts[0])
	if err != nil {
		return now()
	}
	nanos := 0
	if len(secParts) == 2 {
		ms, err := strconv.Atoi(secParts[1])
		if err != nil {
			return now()
		}
		nanos = ms * int(time.Millisecond)
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, nanos, loc)
}

func parseVenueDate(s string, now func() time.Time) (year, month, day int, ok bool) {
	if strings.Contains(s, "/") {
		parts := strings.Split(s, "/")
		switch len(parts) {
		case 3:
			y, e1 := strconv.Atoi(parts[0])
			m, e2 := strconv.Atoi(parts[1])
			d, e3 := strconv.Atoi(parts[2])
			if e1 != nil || e2 != nil || e3 != nil {
				return 0, 0, 0, false
			}
			return y, m, d, true
		case 2:
			m, e1 := strconv.Atoi(parts[0])
			d, e2 := strconv.Atoi(parts[1])
			if e1 != nil || e2 != nil {
				return 0, 0, 0, false
			}
			return now().Year(), m, d, true
		}
		return 0, 0, 0, false
	}
	if len(s) < 8 {
		return 0, 0, 0, false
	}
	y, e1 := strconv.Atoi(s[:4])
	m, e2 := strconv.Atoi(s[4:6])
	d, e3 := strconv.Atoi(s[6:8])
	if e1 != nil || e2 != nil || e3 != nil {
		return 0, 0, 0, false
	}
	return y, m, d, true
}

// normalizeQuote converts one venue quote payload into a canonical quote.
// Field names differ between the REST and object shapes, so each price walks
// its known aliases. An error means the payload shape is unreadable; the
// caller substitutes a zero quote under the fallback symbol.
func normalizeQuote(r Record, fallbackSymbol string) (domain.Quote, error) {
	symbol, _ := probeString(r, "symbol")
	if symbol == "" {
		symbol = fallbackSymbol
	}

	open, err := probeFloat(r, "openPrice", "open_price")
	if err != nil {
		return domain.Quote{}, err
	}
	high, err := probeFloat(r, "highPrice", "high_price")
	if err != nil {
		return domain.Quote{}, err
	}
	low, err := probeFloat(r, "lowPrice", "low_price")
	if err != nil {
		return domain.Quote{}, err
	}
	closePrice, err := probeFloat(r, "close_price", "closePrice", "lastPrice")
	if err != nil {
		return domain.Quote{}, err
	}

	q := domain.Quote{
		Symbol: symbol,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
	}

	if bids, ok := probeList(r, "bids"); ok && len(bids) > 0 {
		q.BidPrice, q.BidVolume, err = depthLevel(bids[0])
		if err != nil {
			return domain.Quote{}, err
		}
	}
	if asks, ok := probeList(r, "asks"); ok && len(asks) > 0 {
		q.AskPrice, q.AskVolume, err = depthLevel(asks[0])
		if err != nil {
			return domain.Quote{}, err
		}
	}
	return q, nil
}

func depthLevel(r Record) (price, volume float64, err error) {
	price, err = probeFloat(r, "price")
	if err != nil {
		return 0, 0, err
	}
	volume, err = probeFloat(r, "size")
	if err != nil {
		return 0, 0, err
	}
	return price, volume, nil
}

// conditionFromCode maps a venue financing enum value to the canonical
// condition. Unlike resolveCondition it matches exact enum values only;
// inventory and realized-pnl payloads carry the enum, never display strings.
func conditionFromCode(raw string) domain.Condition {
	switch raw {
	case string(OrderTypeMargin):
		return domain.ConditionMargin
	case string(OrderTypeShort):
		return domain.ConditionShort
	case string(OrderTypeDayTrade):
		return domain.ConditionDayTrade
	default:
		return domain.ConditionCash
	}
}

// parseTradeDate reads a settlement-style date, either YYYYMMDD or
// YYYY/MM/DD. Unparseable dates fall back to the current time.
func parseTradeDate(s string, now func() time.Time, loc *time.Location) time.Time {
	if len(s) == 8 && isDigits(s) {
		if t, err := time.ParseInLocation("20060102", s, loc); err == nil {
			return t
		}
		return now()
	}
	if t, err := time.ParseInLocation("2006/01/02", s, loc); err == nil {
		return t
	}
	return now()
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
