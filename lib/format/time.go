package format

import (
	"context"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// relMagnitudes maps elapsed durations to the compact relative strings shown next to timestamps.
var relMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "now", DivBy: time.Second},
	{D: time.Minute, Format: "%ds %s", DivBy: time.Second},
	{D: time.Hour, Format: "%dm %s", DivBy: time.Minute},
	{D: humanize.Day, Format: "%dh %s", DivBy: time.Hour},
	{D: math.MaxInt64, Format: "%dd %s", DivBy: humanize.Day},
}

// TimeAgo returns the relative time of t seen from now: "now", "12s ago", "5m ago", "3h ago", "2d ago". Times in the
// future use "from now".
func TimeAgo(t, now time.Time) string {
	return humanize.CustomRelTime(t, now, "ago", "from now", relMagnitudes)
}

// Unix returns the time for a unix timestamp given in seconds or, when it is too large to be seconds, milliseconds.
func Unix(ts int64) time.Time {
	if ts > 1e12 || ts < -1e12 {
		return time.UnixMilli(ts)
	}

	return time.Unix(ts, 0)
}

// Tick calls fn with the relative time of t right away and then on every interval until ctx is done.
func Tick(ctx context.Context, interval time.Duration, t time.Time, fn func(string)) {
	fn(TimeAgo(t, time.Now()))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			fn(TimeAgo(t, now))
		}
	}
}
