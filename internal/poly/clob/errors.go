package clob

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/exhuman777/claude-trader/internal/order"
)

// ErrOrderNotFound marks a cancel against an order the exchange no longer
// knows about. Callers treat it as an idempotent success.
var ErrOrderNotFound = errors.New("order not found")

// apiError carries the HTTP status and exchange error message so the
// gateway can classify the failure without re-parsing.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("clob http %d: %s", e.status, e.message)
}

// Classify maps an exchange call failure onto the order failure taxonomy.
func Classify(err error) order.Kind {
	if err == nil {
		return order.KindNone
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return order.KindTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return order.KindTransient
	}
	status := 0
	msg := strings.ToLower(err.Error())
	var api *apiError
	if errors.As(err, &api) {
		status = api.status
		msg = strings.ToLower(api.message)
	}
	switch {
	case status == 429 || strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests"):
		return order.KindRateLimited
	case strings.Contains(msg, "not enough balance") || strings.Contains(msg, "allowance"):
		return order.KindInsufficientBalance
	case strings.Contains(msg, "market is closed") || strings.Contains(msg, "not accepting orders") || strings.Contains(msg, "resolved"):
		return order.KindMarketClosed
	case status >= 500:
		return order.KindTransient
	}
	return order.KindUnknown
}
