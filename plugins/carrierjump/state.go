package carrierjump

import (
	"sync"

	"fcdn/internal/journal"
)

// carrierSnapshot is a point-in-time copy of the carrier telemetry.
// Fuel=0 before the first CarrierStats event means "unknown", not "empty";
// consumers gate optional output on non-zero values.
type carrierSnapshot struct {
	Fuel int
	Used int
	ID   string
}

// carrierState caches the latest CarrierStats telemetry. The journal feed
// and any future callers may race, so reads go through snapshot().
type carrierState struct {
	mu   sync.Mutex
	snap carrierSnapshot
}

// update overwrites the cache wholesale from one CarrierStats event,
// last write wins.
func (c *carrierState) update(stats *journal.CarrierStats) {
	if stats == nil {
		return
	}

	used := 0
	switch {
	case stats.SpaceUsage.UsedSpace != nil:
		used = *stats.SpaceUsage.UsedSpace
	case stats.SpaceUsage.TotalCapacity != nil && stats.SpaceUsage.FreeSpace != nil:
		// UsedSpace is missing in some game versions; derive it.
		used = *stats.SpaceUsage.TotalCapacity - *stats.SpaceUsage.FreeSpace
	}

	c.mu.Lock()
	c.snap = carrierSnapshot{
		Fuel: stats.FuelLevel,
		Used: used,
		ID:   stats.Callsign,
	}
	c.mu.Unlock()
}

func (c *carrierState) snapshot() carrierSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}
