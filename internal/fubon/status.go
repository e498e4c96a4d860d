package fubon

import "tradegate/internal/domain"

// mapStatus converts a venue status code into the canonical lifecycle state.
// Unknown codes map to new so a snapshot with a novel code still surfaces as
// a live order instead of disappearing.
func mapStatus(code int) domain.OrderStatus {
	switch code {
	case statusCodeAccepted:
		return domain.OrderStatusNew
	case statusCodeCancelled, statusCodeFailed:
		return domain.OrderStatusCancelled
	case statusCodeFilled:
		return domain.OrderStatusFilled
	default:
		return domain.OrderStatusNew
	}
}

// resolveStatus derives the final lifecycle state from the venue code and the
// fill counters. A progressing fill overrides everything except a cancel:
// the venue keeps reporting the pre-cancel code on partially filled orders,
// so the counters are the authority on partial fills.
func resolveStatus(code int, filled, total float64) domain.OrderStatus {
	status := mapStatus(code)
	if filled > 0 && filled < total && status != domain.OrderStatusCancelled {
		return domain.OrderStatusPartiallyFilled
	}
	return status
}
