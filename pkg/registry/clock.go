package registry // import "github.com/joincivil/civil-content-registry/pkg/registry"

import (
	"time"
)

// Clock returns the current time
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time {
	return time.Now()
}
