package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/findash/internal/client/api"
	"github.com/dmitrijs2005/findash/internal/client/models"
	"github.com/dmitrijs2005/findash/internal/common"
	"github.com/shopspring/decimal"
)

const (
	DefaultTrendMonths = 6
	MinTrendMonths     = 1
	MaxTrendMonths     = 24

	TrendEmptyMessage  = "No revenue recorded in this range yet."
	TrendFailedMessage = "Could not load the revenue trend. Please try again."
)

type TrendFetcher interface {
	RevenueTrend(ctx context.Context, months int) (*models.RevenueTrend, error)
}

// TrendResult is one revenue trend load. Months is the number of past full
// months requested; the backend adds the current month to date.
type TrendResult struct {
	State   State
	Months  int
	Points  []models.RevenuePoint
	Message string
	Err     error
	// Discarded is set when the load was cancelled or superseded.
	Discarded bool
}

// ParseTrendMonths reads the optional month count of "dashboard trend [N]".
func ParseTrendMonths(args []string) (int, error) {
	switch len(args) {
	case 0:
		return DefaultTrendMonths, nil
	case 1:
	default:
		return 0, fmt.Errorf("%w: too many arguments", common.ErrorValidation)
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: months %q: expected a number", common.ErrorValidation, args[0])
	}
	if err := checkTrendMonths(n); err != nil {
		return 0, err
	}
	return n, nil
}

func checkTrendMonths(n int) error {
	if n < MinTrendMonths || n > MaxTrendMonths {
		return fmt.Errorf("%w: months must be between %d and %d", common.ErrorValidation, MinTrendMonths, MaxTrendMonths)
	}
	return nil
}

// LoadTrend fetches the revenue trend for the last months months. An out of
// range count is rejected without a request.
func (l *Loader) LoadTrend(ctx context.Context, months int) TrendResult {
	if err := checkTrendMonths(months); err != nil {
		return TrendResult{State: Failed, Months: months, Message: err.Error(), Err: err}
	}
	if l.trend == nil {
		err := errors.New("revenue trend not available")
		return TrendResult{State: Failed, Months: months, Message: TrendFailedMessage, Err: err}
	}

	gen := l.begin()
	snap := l.sess.Snapshot()

	tr, err := l.trend.RevenueTrend(api.WithToken(ctx, snap.Token), months)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return TrendResult{Months: months, Err: ctxErr, Discarded: true}
	}
	if !l.current(gen) {
		return TrendResult{Months: months, Err: ErrSuperseded, Discarded: true}
	}

	if err == nil {
		if !hasRevenue(tr.Points) {
			return TrendResult{State: Empty, Months: months, Points: tr.Points, Message: TrendEmptyMessage}
		}
		return TrendResult{State: Ready, Months: months, Points: tr.Points}
	}

	if errors.Is(err, api.ErrUnauthorized) {
		if expErr := l.sess.Expire(ctx, snap.Generation); expErr != nil {
			l.log.Error(ctx, "failed to clear session", "error", expErr)
		}
		return TrendResult{State: Failed, Months: months, Message: ExpiredMessage, Err: err}
	}

	if api.StatusCode(err) != 0 && api.BodyContains(err, noDataPhrases...) {
		return TrendResult{State: Empty, Months: months, Message: TrendEmptyMessage, Err: err}
	}

	l.log.Warn(ctx, "revenue trend load failed", "months", months, "error", err)
	msg := TrendFailedMessage
	if d := api.Detail(err); d != "" {
		msg = TrendFailedMessage + " (" + d + ")"
	}
	return TrendResult{State: Failed, Months: months, Message: msg, Err: err}
}

func hasRevenue(points []models.RevenuePoint) bool {
	for _, p := range points {
		if !Decimal(p.Revenue).IsZero() {
			return true
		}
	}
	return false
}

// TrendBar draws amount as a bar of at most width cells, scaled to peak.
// Months without positive revenue get no bar.
func TrendBar(amount, peak decimal.Decimal, width int) string {
	if width <= 0 || !peak.IsPositive() || !amount.IsPositive() {
		return ""
	}
	cells := amount.Div(peak).Mul(decimal.NewFromInt(int64(width))).Round(0).IntPart()
	cells = min(max(cells, 1), int64(width))
	return strings.Repeat("#", int(cells))
}

// PeakRevenue is the largest monthly revenue in points, or zero.
func PeakRevenue(points []models.RevenuePoint) decimal.Decimal {
	peak := decimal.Zero
	for _, p := range points {
		if d := Decimal(p.Revenue); d.GreaterThan(peak) {
			peak = d
		}
	}
	return peak
}
