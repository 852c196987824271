// Package clock abstracts time so cache expiry and timestamps are testable.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}
