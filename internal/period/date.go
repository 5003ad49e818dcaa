package period

import (
	"time"

	"github.com/GregMSThompson/finance-sync/internal/errs"
)

const dateLayout = "2006-01-02"

// ParseDate accepts a calendar date (YYYY-MM-DD, midnight in loc) or an
// RFC 3339 timestamp.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, errs.Required("date")
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Time{}, errs.NewValidationError("date", "date must be YYYY-MM-DD or RFC 3339, got "+s)
}
