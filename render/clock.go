package render

import (
	"sync/atomic"
	"time"
)

// timeLayout is the simplified extended ISO-8601 format used for `now` and
// every $fromNow result: UTC, millisecond precision, trailing `Z`.
const timeLayout = "2006-01-02T15:04:05.000Z"

// testNow, when non-nil, pins `now` to a fixed instant for the duration of
// every subsequent render. Guarded by an atomic pointer so the swap itself
// is safe under concurrent renders; grounded on
// original_source/rs/src/fromnow.rs's AtomicBool test-time switch,
// generalized to an actual pinned value instead of a single hardcoded one.
var testNow atomic.Pointer[time.Time]

// fixedTestTime is the instant UseTestNow pins `now` to, matching the
// reference implementation's hardcoded test clock.
var fixedTestTime = time.Date(2017, time.January, 19, 16, 27, 20, 974000000, time.UTC)

// UseFixedTime pins `now` to t for all subsequent renders in this process.
// Intended only for tests.
func UseFixedTime(t time.Time) {
	u := t.UTC()
	testNow.Store(&u)
}

// UseTestNow pins `now` to the reference implementation's canonical test
// instant (2017-01-19T16:27:20.974Z).
func UseTestNow() {
	UseFixedTime(fixedTestTime)
}

// ResetClock removes any pinned test time, restoring the real clock.
func ResetClock() {
	testNow.Store(nil)
}

func now() time.Time {
	if p := testNow.Load(); p != nil {
		return *p
	}
	return time.Now().UTC()
}

func nowString() string {
	return now().Format(timeLayout)
}
