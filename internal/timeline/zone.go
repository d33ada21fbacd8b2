package timeline

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// firstOccurrence picks the earliest UTC instant when a wall clock reading
// occurs more than once. There is no alternative policy in v1.
const firstOccurrence = 0

// offset probes around a wall clock reading. Any transition that can make the
// reading ambiguous or skipped lies within a day of it.
var probeOffsets = []int64{-86400, -43200, 0, 43200, 86400}

// LoadZone resolves an IANA zone identifier. "Local" is rejected because it
// would make results depend on the host.
func LoadZone(tzID string) (*time.Location, error) {
	id := strings.TrimSpace(tzID)
	if id == "" || id == "Local" {
		return nil, ErrMissingTimezone
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingTimezone, id)
	}
	return loc, nil
}

// wallInstants returns, in ascending order, every UTC instant whose wall clock
// in loc reads wall. wall's own location is ignored. No instants means the
// reading falls in a gap; two means it falls in an overlap.
func wallInstants(wall time.Time, loc *time.Location) []time.Time {
	naive := time.Date(wall.Year(), wall.Month(), wall.Day(),
		wall.Hour(), wall.Minute(), wall.Second(), 0, time.UTC).Unix()

	seen := make(map[int64]bool)
	var out []time.Time
	for _, p := range probeOffsets {
		off := zoneOffset(naive+p, loc)
		u := naive - off
		if seen[u] || zoneOffset(u, loc) != off {
			continue
		}
		seen[u] = true
		out = append(out, time.Unix(u, int64(wall.Nanosecond())).UTC())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// preTransitionInstant reads a skipped wall clock reading with the offset in
// force before the transition, which pushes it forward by the gap length. For
// the first skipped minute that is exactly the instant the gap closes; later
// readings land the same distance past it.
func preTransitionInstant(wall time.Time, loc *time.Location) time.Time {
	naive := time.Date(wall.Year(), wall.Month(), wall.Day(),
		wall.Hour(), wall.Minute(), wall.Second(), 0, time.UTC).Unix()
	before := zoneOffset(naive-probeOffsets[len(probeOffsets)-1], loc)
	return time.Unix(naive-before, int64(wall.Nanosecond())).UTC()
}

func zoneOffset(unix int64, loc *time.Location) int64 {
	_, off := time.Unix(unix, 0).In(loc).Zone()
	return int64(off)
}
