package trace

import "time"

// epoch anchors wall-clock readings so that span instants are monotonic
// nanosecond offsets from process start, immune to wall-clock jumps.
var epoch = time.Now()

// wallNow returns monotonic nanoseconds since process start.
func wallNow() int64 {
	return time.Since(epoch).Nanoseconds()
}
