package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/findash/internal/client/dashboard"
	"github.com/dmitrijs2005/findash/internal/client/models"
)

// Dashboard shows the summary for a period: a preset name, a start/end date
// pair, or the last period shown (the current month at first).
// "dashboard trend [months]" shows monthly revenue instead.
func (a *App) Dashboard(ctx context.Context, args []string) error {
	if !a.guard(ctx) {
		return nil
	}

	if len(args) > 0 && args[0] == "trend" {
		months, err := dashboard.ParseTrendMonths(args[1:])
		if err != nil {
			fmt.Fprintln(a.out, err)
			return err
		}
		a.selector.NavigateToDashboard()
		return a.showTrend(ctx, months)
	}

	p := a.currentPeriod()
	if len(args) > 0 {
		var err error
		p, err = dashboard.ParsePeriod(args, a.now())
		if err != nil {
			fmt.Fprintln(a.out, err)
			return err
		}
	}

	a.selector.NavigateToDashboard()
	return a.showDashboard(ctx, p)
}

func (a *App) showDashboard(ctx context.Context, p models.Period) error {
	a.period = &p
	fmt.Fprintf(a.out, "Loading dashboard for %s...\n", p)

	res := a.loader.Load(ctx, p)
	if res.Discarded {
		return res.Err
	}
	renderDashboard(a.out, res)

	if !a.isLoggedIn() {
		a.settle(ctx)
	}
	return res.Err
}

func (a *App) showTrend(ctx context.Context, months int) error {
	fmt.Fprintf(a.out, "Loading revenue trend for the last %d months...\n", months)

	res := a.loader.LoadTrend(ctx, months)
	if res.Discarded {
		return res.Err
	}
	renderTrend(a.out, res)

	if !a.isLoggedIn() {
		a.settle(ctx)
	}
	return res.Err
}
