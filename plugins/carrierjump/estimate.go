package carrierjump

import (
	"context"
	"math"

	"fcdn/internal/edsm"
	logx "fcdn/pkg/logx"
)

// maxJumpRange is the carrier jump range limit in light years. Distances
// beyond it mean at least one system resolved to the wrong place.
const maxJumpRange = 500.0

// Resolver turns a system name into galactic coordinates. Satisfied by
// *edsm.Client; tests substitute call-counting fakes.
type Resolver interface {
	Resolve(ctx context.Context, systemName string) (edsm.Coords, error)
}

// estimate carries the optional jump figures. A nil field means the figure
// could not be computed and its embed field is omitted.
type estimate struct {
	Distance  *float64
	FuelCost  *int
	Remaining *int
}

// estimateJump computes jump distance and tritium cost between two systems.
// With integration disabled it returns the zero estimate without touching
// the resolver at all. When either endpoint cannot be resolved, or the
// distance exceeds the jump range, only Remaining is set (to the current
// fuel level, since nothing will be spent).
func estimateJump(ctx context.Context, r Resolver, log logx.Logger, start, end string, fuel, used int, integration bool) estimate {
	if !integration {
		return estimate{}
	}

	dist, ok := distance(ctx, r, start, end)
	if !ok {
		log.Debug("distance unavailable", logx.String("from", start), logx.String("to", end))
		return estimate{Remaining: &fuel}
	}
	if dist > maxJumpRange {
		log.Debug("distance exceeds jump range", logx.Float64("ly", dist))
		return estimate{Remaining: &fuel}
	}

	// Clamp in case a coordinate source is off; the cost formula is the
	// community one: 5 + d*(25000+mass)/200000, rounded up.
	d := math.Max(0, math.Min(maxJumpRange, dist))
	totalMass := float64(fuel + used)
	cost := int(math.Ceil(5 + d*(25000+totalMass)/200000))

	remaining := fuel - cost
	if remaining < 0 {
		remaining = 0
	}

	log.Debug("fuel estimate",
		logx.Float64("ly", d), logx.Int("cost", cost), logx.Int("remaining", remaining))
	return estimate{Distance: &dist, FuelCost: &cost, Remaining: &remaining}
}

func distance(ctx context.Context, r Resolver, a, b string) (float64, bool) {
	ca, err := r.Resolve(ctx, a)
	if err != nil {
		return 0, false
	}
	cb, err := r.Resolve(ctx, b)
	if err != nil {
		return 0, false
	}
	dx := cb.X - ca.X
	dy := cb.Y - ca.Y
	dz := cb.Z - ca.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz), true
}
