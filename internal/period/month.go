// Package period resolves YYYY-MM month keys into date windows.
package period

import (
	"time"

	"github.com/GregMSThompson/finance-sync/internal/dto"
	"github.com/GregMSThompson/finance-sync/internal/errs"
)

const monthLayout = "2006-01"

// Parse returns the first instant of the month key in loc.
func Parse(month string, loc *time.Location) (time.Time, error) {
	if month == "" {
		return time.Time{}, errs.Required("month")
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(monthLayout, month, loc)
	if err != nil || t.Format(monthLayout) != month {
		return time.Time{}, errs.NewValidationError("month", "month must be formatted YYYY-MM, got "+month)
	}
	return t, nil
}

// Window returns the month as [first instant, first instant of next month).
func Window(month string, loc *time.Location) (dto.DateWindow, error) {
	start, err := Parse(month, loc)
	if err != nil {
		return dto.DateWindow{}, err
	}
	return dto.DateWindow{
		From:  start,
		Until: start.AddDate(0, 1, 0),
	}, nil
}

// Key formats t as a month key in loc.
func Key(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(monthLayout)
}

// Validate checks a month key without building a window.
func Validate(month string) error {
	_, err := Parse(month, time.UTC)
	return err
}
