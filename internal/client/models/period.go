package models

import (
	"net/url"
	"time"
)

// DateLayout is the wire format of dates (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// Period is an inclusive date range.
type Period struct {
	Start time.Time
	End   time.Time
}

// Query encodes the period as start_date/end_date parameters.
func (p Period) Query() url.Values {
	q := url.Values{}
	q.Set("start_date", p.Start.Format(DateLayout))
	q.Set("end_date", p.End.Format(DateLayout))
	return q
}

func (p Period) String() string {
	return p.Start.Format(DateLayout) + " .. " + p.End.Format(DateLayout)
}
