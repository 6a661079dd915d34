package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RevenuePoint is one month of the revenue trend. Month is a label such as
// "2026-09"; the last point is usually the current month to date.
type RevenuePoint struct {
	Month   string
	Revenue Money
}

// UnmarshalJSON accepts both field spellings the backend has used:
// month or month_year, revenue or total_revenue.
func (p *RevenuePoint) UnmarshalJSON(b []byte) error {
	var raw struct {
		Month        string `json:"month"`
		MonthYear    string `json:"month_year"`
		Revenue      *Money `json:"revenue"`
		TotalRevenue *Money `json:"total_revenue"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	p.Month = raw.Month
	if p.Month == "" {
		p.Month = raw.MonthYear
	}
	p.Revenue = ""
	switch {
	case raw.Revenue != nil:
		p.Revenue = *raw.Revenue
	case raw.TotalRevenue != nil:
		p.Revenue = *raw.TotalRevenue
	}
	return nil
}

// RevenueTrend is the body of GET /insights/monthly-revenue-trend. Points
// keep response order, oldest month first.
type RevenueTrend struct {
	Points []RevenuePoint
}

// UnmarshalJSON reads trend_data given either as a list of points or as a
// month -> revenue object.
func (t *RevenueTrend) UnmarshalJSON(b []byte) error {
	var body struct {
		TrendData json.RawMessage `json:"trend_data"`
	}
	if err := json.Unmarshal(b, &body); err != nil {
		return err
	}

	data := bytes.TrimSpace(body.TrendData)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		t.Points = nil
		return nil
	case data[0] == '[':
		var pts []RevenuePoint
		if err := json.Unmarshal(data, &pts); err != nil {
			return fmt.Errorf("trend_data: %w", err)
		}
		t.Points = pts
		return nil
	}

	var amounts Amounts
	if err := json.Unmarshal(data, &amounts); err != nil {
		return fmt.Errorf("trend_data: %w", err)
	}
	t.Points = make([]RevenuePoint, 0, len(amounts))
	for _, a := range amounts {
		t.Points = append(t.Points, RevenuePoint{Month: a.Name, Revenue: a.Value})
	}
	return nil
}
