package domain

import (
	"math"
	"time"

	"github.com/rotisserie/eris"
)

// Snapshot is the full set of raw rows for one reporting date.
// Date is zero when the source carried no date.
type Snapshot struct {
	Date time.Time
	Rows []RawRow
}

// ElapsedDays returns the whole number of days between prior and current.
// An explicit override (> 0) wins over the snapshot dates.
func ElapsedDays(prior, current time.Time, override int) (int, error) {
	if override > 0 {
		return override, nil
	}
	if prior.IsZero() || current.IsZero() {
		return 0, eris.New("elapsed days: snapshot dates unknown, set an explicit override")
	}
	days := int(math.Round(current.Sub(prior).Hours() / 24))
	if days < 1 {
		return 0, eris.Errorf("elapsed days: current snapshot %s is not after prior %s",
			current.Format(time.DateOnly), prior.Format(time.DateOnly))
	}
	return days, nil
}
