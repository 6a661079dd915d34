package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/findash/internal/client/models"
	"github.com/dmitrijs2005/findash/internal/common"
)

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func monthOf(t time.Time) models.Period {
	y, m, _ := t.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return models.Period{Start: start, End: start.AddDate(0, 1, -1)}
}

// CurrentMonth is the calendar month containing now. It is also the
// backend's default period.
func CurrentMonth(now time.Time) models.Period {
	return monthOf(now)
}

// PreviousMonth is the calendar month before the one containing now.
func PreviousMonth(now time.Time) models.Period {
	return monthOf(monthOf(now).Start.AddDate(0, 0, -1))
}

// YearToDate runs from January 1st to now.
func YearToDate(now time.Time) models.Period {
	return models.Period{Start: time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC), End: day(now)}
}

// Presets are the named periods accepted by ParsePeriod.
var Presets = map[string]func(time.Time) models.Period{
	"this-month": CurrentMonth,
	"last-month": PreviousMonth,
	"ytd":        YearToDate,
}

// PresetNames returns the preset names in a stable order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for n := range Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParsePeriod reads either a preset name or a "YYYY-MM-DD YYYY-MM-DD" pair.
// No arguments means the current month.
func ParsePeriod(args []string, now time.Time) (models.Period, error) {
	switch len(args) {
	case 0:
		return CurrentMonth(now), nil
	case 1:
		if fn, ok := Presets[strings.ToLower(args[0])]; ok {
			return fn(now), nil
		}
		return models.Period{}, fmt.Errorf("%w: unknown period %q (use %s or two dates)",
			common.ErrorValidation, args[0], strings.Join(PresetNames(), ", "))
	case 2:
		start, err := time.Parse(models.DateLayout, args[0])
		if err != nil {
			return models.Period{}, fmt.Errorf("%w: start date %q: expected YYYY-MM-DD", common.ErrorValidation, args[0])
		}
		end, err := time.Parse(models.DateLayout, args[1])
		if err != nil {
			return models.Period{}, fmt.Errorf("%w: end date %q: expected YYYY-MM-DD", common.ErrorValidation, args[1])
		}
		if start.After(end) {
			return models.Period{}, fmt.Errorf("%w: start date cannot be after end date", common.ErrorValidation)
		}
		return models.Period{Start: start, End: end}, nil
	}
	return models.Period{}, fmt.Errorf("%w: too many arguments", common.ErrorValidation)
}
