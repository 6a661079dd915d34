package models

// Summary is the pre-aggregated report returned by GET /insights/summary.
// Everything in it is computed server-side.
type Summary struct {
	TotalTransactions        int         `json:"total_transactions"`
	PeriodStartDate          string      `json:"period_start_date,omitempty"`
	PeriodEndDate            string      `json:"period_end_date,omitempty"`
	TotalIncome              Money       `json:"total_income"`
	TotalSpending            Money       `json:"total_spending"`
	TotalPaymentsTransfers   Money       `json:"total_payments_transfers,omitempty"`
	NetFlowOperational       Money       `json:"net_flow_operational"`
	NetChangeTotal           Money       `json:"net_change_total,omitempty"`
	SpendingByCategory       Amounts     `json:"spending_by_category"`
	IncomeByCategory         Amounts     `json:"income_by_category"`
	ClientBreakdown          Breakdown   `json:"client_breakdown,omitempty"`
	ProjectBreakdown         Breakdown   `json:"project_breakdown,omitempty"`
	AverageTransactionAmount Money       `json:"average_transaction_amount,omitempty"`
	MedianTransactionAmount  Money       `json:"median_transaction_amount,omitempty"`
	Comparison               *Comparison `json:"comparison,omitempty"`
}

// HasData reports whether the period contains at least one transaction.
func (s *Summary) HasData() bool {
	return s != nil && s.TotalTransactions > 0
}

// Comparison holds the prior-period totals and percent deltas. Percent
// fields are nil when the prior value was zero.
type Comparison struct {
	PreviousPeriodStart        string   `json:"previous_period_start_date,omitempty"`
	PreviousPeriodEnd          string   `json:"previous_period_end_date,omitempty"`
	PreviousTotalIncome        Money    `json:"previous_total_income"`
	PreviousTotalSpending      Money    `json:"previous_total_spending"`
	PreviousNetFlowOperational Money    `json:"previous_net_flow_operational"`
	IncomePercentChange        *float64 `json:"income_percent_change,omitempty"`
	SpendingPercentChange      *float64 `json:"spending_percent_change,omitempty"`
	NetFlowPercentChange       *float64 `json:"net_flow_percent_change,omitempty"`
}
