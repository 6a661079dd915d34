package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/findash/internal/client/models"
	"github.com/shopspring/decimal"
)

// Highlight is a named amount picked out of a breakdown.
type Highlight struct {
	Name   string
	Amount decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Decimal parses a backend amount. Empty or malformed values count as zero.
func Decimal(m models.Money) decimal.Decimal {
	d, err := decimal.NewFromString(string(m))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// largest returns the entry with the greatest magnitude. The first one wins
// on ties, so the result follows the response's key order.
func largest(n int, at func(i int) (string, models.Money)) (Highlight, bool) {
	var best Highlight
	found := false
	for i := 0; i < n; i++ {
		name, m := at(i)
		d := Decimal(m)
		if !found || d.Abs().GreaterThan(best.Amount.Abs()) {
			best, found = Highlight{Name: name, Amount: d}, true
		}
	}
	return best, found
}

// TopCategory is the spending category with the largest magnitude.
func TopCategory(s *models.Summary) (Highlight, bool) {
	return largest(len(s.SpendingByCategory), func(i int) (string, models.Money) {
		return s.SpendingByCategory[i].Name, s.SpendingByCategory[i].Value
	})
}

// TopIncomeCategory is the income category with the largest magnitude.
func TopIncomeCategory(s *models.Summary) (Highlight, bool) {
	return largest(len(s.IncomeByCategory), func(i int) (string, models.Money) {
		return s.IncomeByCategory[i].Name, s.IncomeByCategory[i].Value
	})
}

// TopClient is the client with the most revenue.
func TopClient(s *models.Summary) (Highlight, bool) {
	return largest(len(s.ClientBreakdown), func(i int) (string, models.Money) {
		return s.ClientBreakdown[i].Name, s.ClientBreakdown[i].TotalRevenue
	})
}

// TopProject is the project with the most revenue.
func TopProject(s *models.Summary) (Highlight, bool) {
	return largest(len(s.ProjectBreakdown), func(i int) (string, models.Money) {
		return s.ProjectBreakdown[i].Name, s.ProjectBreakdown[i].TotalRevenue
	})
}

// ProfitMargin is net operational flow over income, in percent. It is
// undefined (false) when income is zero.
func ProfitMargin(s *models.Summary) (decimal.Decimal, bool) {
	income := Decimal(s.TotalIncome)
	if income.IsZero() {
		return decimal.Zero, false
	}
	return Decimal(s.NetFlowOperational).Div(income).Mul(hundred), true
}

// Ranked returns the amounts ordered by magnitude, largest first. Equal
// magnitudes keep their response order.
func Ranked(a models.Amounts) []Highlight {
	out := make([]Highlight, len(a))
	for i, e := range a {
		out[i] = Highlight{Name: e.Name, Amount: Decimal(e.Value)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.Abs().GreaterThan(out[j].Amount.Abs())
	})
	return out
}

// FormatMoney renders d as "$1,234.50" or "-$1,234.50".
func FormatMoney(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	s := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "." + frac
}

// FormatPercent renders a percent change, or "n/a" when it is undefined.
func FormatPercent(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", *p)
}
