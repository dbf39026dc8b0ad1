package bulletin

import (
	"fmt"
	"time"
)

// Movement describes how a priority date moved between two bulletin months:
// a signed day count when both values are calendar dates, or a label for
// transitions involving the Current sentinel. Unavailable on either side,
// or an unparseable value, yields "" -- those states have no meaningful
// delta.
func Movement(a, b string) string {
	if a == "" || b == "" {
		return ""
	}

	if !isSentinel(a) && !isSentinel(b) {
		da, errA := time.Parse("2006-01-02", a)
		db, errB := time.Parse("2006-01-02", b)
		if errA != nil || errB != nil {
			return ""
		}
		days := int(db.Sub(da).Hours() / 24)
		if days > 0 {
			return fmt.Sprintf("+%d", days)
		}
		return fmt.Sprintf("%d", days)
	}

	switch {
	case a == Current && b == Current:
		return "Current"
	case b == Current:
		return "Became Current"
	case a == Current:
		return "Retrogressed"
	}
	return ""
}

func isSentinel(v string) bool {
	return v == Current || v == Unavailable
}
