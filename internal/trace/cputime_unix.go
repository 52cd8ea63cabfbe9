//go:build unix

package trace

import (
	"time"

	"fortio.org/safecast"
	"golang.org/x/sys/unix"
)

// cpuNow returns the process CPU time (user plus system) in nanoseconds.
// Time spent blocked or sleeping is not billed, so a span around blocking
// work reports the full interval in wall time but only executed time here.
func cpuNow() int64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	return timevalNS(ru.Utime) + timevalNS(ru.Stime)
}

// timevalNS converts a rusage timeval to nanoseconds. The field types vary
// by platform, hence the checked conversions.
func timevalNS(tv unix.Timeval) int64 {
	sec, err := safecast.Conv[int64](tv.Sec)
	if err != nil {
		return 0
	}
	usec, err := safecast.Conv[int64](tv.Usec)
	if err != nil {
		return 0
	}
	return sec*int64(time.Second) + usec*int64(time.Microsecond)
}
