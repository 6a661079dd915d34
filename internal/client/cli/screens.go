package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/findash/internal/client/dashboard"
	"github.com/dmitrijs2005/findash/internal/client/models"
	"github.com/dmitrijs2005/findash/internal/client/upload"
	"github.com/dmitrijs2005/findash/internal/client/views"
)

func renderLoading(w io.Writer) {
	fmt.Fprintln(w, "Loading...")
}

func renderLogin(w io.Writer) {
	fmt.Fprintln(w, "You are not logged in. Type 'login' to sign in.")
}

func renderUpload(w io.Writer, welcome bool, draft upload.Attempt) {
	if welcome {
		fmt.Fprintln(w, views.WelcomeMessage)
	}
	fmt.Fprintln(w, "== Upload a statement ==")
	fmt.Fprintf(w, "Supported file types: %s\n", strings.Join(models.SupportedFileTypes, ", "))
	if draft.File != "" {
		fmt.Fprintf(w, "Last attempt: %s (%s)\n", draft.File, draft.FileType)
	}
	fmt.Fprintln(w, "Type 'upload' to choose a file, or 'upload <file.csv> <type> [project]'.")
}

func renderUploadOutcome(w io.Writer, out upload.Outcome) {
	switch out.Kind {
	case upload.Succeeded:
		fmt.Fprintln(w, out.Message)
		if r := out.Result; r != nil && r.TransactionsParsed != nil && r.TransactionsSaved != nil {
			fmt.Fprintf(w, "%d transactions parsed, %d saved.\n", *r.TransactionsParsed, *r.TransactionsSaved)
		}
	default:
		fmt.Fprintln(w, "Error: "+out.Message)
	}
}

func highlightRow(tw io.Writer, label string, h dashboard.Highlight, ok bool) {
	if !ok {
		fmt.Fprintf(tw, "%s\t-\t\n", label)
		return
	}
	fmt.Fprintf(tw, "%s\t%s\t%s\n", label, h.Name, dashboard.FormatMoney(h.Amount))
}

func renderDashboard(w io.Writer, res dashboard.Result) {
	fmt.Fprintf(w, "== Dashboard %s ==\n", res.Period)

	switch res.State {
	case dashboard.Empty:
		fmt.Fprintln(w, res.Message)
		return
	case dashboard.Failed:
		fmt.Fprintln(w, "Error: "+res.Message)
		return
	}

	s := res.Summary
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	cmp := s.Comparison
	change := func(p func(*models.Comparison) *float64) string {
		if cmp == nil {
			return ""
		}
		return dashboard.FormatPercent(p(cmp)) + " vs previous"
	}

	fmt.Fprintf(tw, "Transactions\t%d\t\n", s.TotalTransactions)
	fmt.Fprintf(tw, "Income\t%s\t%s\n", dashboard.FormatMoney(dashboard.Decimal(s.TotalIncome)),
		change(func(c *models.Comparison) *float64 { return c.IncomePercentChange }))
	fmt.Fprintf(tw, "Spending\t%s\t%s\n", dashboard.FormatMoney(dashboard.Decimal(s.TotalSpending)),
		change(func(c *models.Comparison) *float64 { return c.SpendingPercentChange }))
	fmt.Fprintf(tw, "Net flow\t%s\t%s\n", dashboard.FormatMoney(dashboard.Decimal(s.NetFlowOperational)),
		change(func(c *models.Comparison) *float64 { return c.NetFlowPercentChange }))
	if s.NetChangeTotal != "" {
		fmt.Fprintf(tw, "Net change\t%s\t\n", dashboard.FormatMoney(dashboard.Decimal(s.NetChangeTotal)))
	}
	if m, ok := dashboard.ProfitMargin(s); ok {
		fmt.Fprintf(tw, "Profit margin\t%s%%\t\n", m.StringFixed(1))
	} else {
		fmt.Fprintf(tw, "Profit margin\tn/a\t\n")
	}
	if s.AverageTransactionAmount != "" {
		fmt.Fprintf(tw, "Average transaction\t%s\t\n", dashboard.FormatMoney(dashboard.Decimal(s.AverageTransactionAmount)))
	}
	_ = tw.Flush()

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	top, ok := dashboard.TopCategory(s)
	highlightRow(tw, "Top spending", top, ok)
	top, ok = dashboard.TopIncomeCategory(s)
	highlightRow(tw, "Top income", top, ok)
	top, ok = dashboard.TopClient(s)
	highlightRow(tw, "Top client", top, ok)
	top, ok = dashboard.TopProject(s)
	highlightRow(tw, "Top project", top, ok)
	_ = tw.Flush()

	renderAmounts(w, "Spending by category", s.SpendingByCategory)
	renderAmounts(w, "Income by category", s.IncomeByCategory)
	renderBreakdown(w, "Clients", "Client", s.ClientBreakdown)
	renderBreakdown(w, "Projects", "Project", s.ProjectBreakdown)
}

// renderAmounts lists a name -> amount mapping, largest first.
func renderAmounts(w io.Writer, title string, amounts models.Amounts) {
	if len(amounts) == 0 {
		return
	}
	fmt.Fprintln(w, "\n"+title)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, h := range dashboard.Ranked(amounts) {
		fmt.Fprintf(tw, "  %s\t%s\n", h.Name, dashboard.FormatMoney(h.Amount))
	}
	_ = tw.Flush()
}

// renderBreakdown prints a per-client or per-project table in response order.
func renderBreakdown(w io.Writer, title, label string, rows models.Breakdown) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(w, "\n"+title)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\tRevenue\tDirect cost\tNet\t\n", label)
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", r.Name,
			dashboard.FormatMoney(dashboard.Decimal(r.TotalRevenue)),
			dashboard.FormatMoney(dashboard.Decimal(r.TotalDirectCost)),
			dashboard.FormatMoney(dashboard.Decimal(r.NetFromClient)))
	}
	_ = tw.Flush()
}

// trendBarWidth is the longest bar drawn for the best month.
const trendBarWidth = 30

func renderTrend(w io.Writer, res dashboard.TrendResult) {
	fmt.Fprintf(w, "== Revenue trend, last %d months ==\n", res.Months)

	switch res.State {
	case dashboard.Empty:
		fmt.Fprintln(w, res.Message)
		return
	case dashboard.Failed:
		fmt.Fprintln(w, "Error: "+res.Message)
		return
	}

	peak := dashboard.PeakRevenue(res.Points)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range res.Points {
		amount := dashboard.Decimal(p.Revenue)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Month, dashboard.FormatMoney(amount),
			dashboard.TrendBar(amount, peak, trendBarWidth))
	}
	_ = tw.Flush()
}
