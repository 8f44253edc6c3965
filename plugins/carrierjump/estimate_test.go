package carrierjump

import (
	"context"
	"math"
	"testing"

	"fcdn/internal/edsm"
	logx "fcdn/pkg/logx"
)

type fakeResolver struct {
	coords map[string]edsm.Coords
	calls  int
}

func (f *fakeResolver) Resolve(ctx context.Context, name string) (edsm.Coords, error) {
	f.calls++
	c, ok := f.coords[name]
	if !ok {
		return edsm.Coords{}, edsm.ErrNotFound
	}
	return c, nil
}

func TestEstimateDisabledNeverResolves(t *testing.T) {
	r := &fakeResolver{coords: map[string]edsm.Coords{
		"Sol": {}, "Colonia": {X: 100},
	}}
	est := estimateJump(context.Background(), r, logx.Nop(), "Sol", "Colonia", 500, 1000, false)
	if r.calls != 0 {
		t.Fatalf("resolver called %d times with integration disabled", r.calls)
	}
	if est.Distance != nil || est.FuelCost != nil || est.Remaining != nil {
		t.Fatalf("expected zero estimate, got %+v", est)
	}
}

func TestEstimateUnresolvedKeepsFuel(t *testing.T) {
	r := &fakeResolver{coords: map[string]edsm.Coords{"Sol": {}}}
	est := estimateJump(context.Background(), r, logx.Nop(), "Sol", "Nowhere", 321, 0, true)
	if est.Distance != nil || est.FuelCost != nil {
		t.Fatalf("expected nil distance and cost, got %+v", est)
	}
	if est.Remaining == nil || *est.Remaining != 321 {
		t.Fatalf("remaining = %v, want 321", est.Remaining)
	}
}

func TestEstimateRejectsBeyondJumpRange(t *testing.T) {
	r := &fakeResolver{coords: map[string]edsm.Coords{
		"Sol": {}, "Colonia": {X: 501},
	}}
	est := estimateJump(context.Background(), r, logx.Nop(), "Sol", "Colonia", 100, 0, true)
	if est.Distance != nil || est.FuelCost != nil {
		t.Fatalf("expected rejection beyond 500 ly, got %+v", est)
	}
	if est.Remaining == nil || *est.Remaining != 100 {
		t.Fatalf("remaining = %v, want 100", est.Remaining)
	}
}

func TestEstimateFormula(t *testing.T) {
	tests := []struct {
		name      string
		dist      float64
		fuel      int
		used      int
		wantCost  int
		wantLeft  int
	}{
		// ceil(5 + 4.37*(25000+500)/200000) = ceil(5.557) = 6
		{name: "short hop", dist: 4.37, fuel: 500, used: 0, wantCost: 6, wantLeft: 494},
		// zero distance still costs the ceil of the base 5
		{name: "same spot", dist: 0, fuel: 50, used: 0, wantCost: 5, wantLeft: 45},
		// max range, heavy carrier: ceil(5 + 500*(25000+25000)/200000) = 130
		{name: "max range loaded", dist: 500, fuel: 1000, used: 24000, wantCost: 130, wantLeft: 870},
		// cost can exceed the tank; remaining floors at zero
		{name: "runs dry", dist: 500, fuel: 10, used: 0, wantCost: 68, wantLeft: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeResolver{coords: map[string]edsm.Coords{
				"A": {}, "B": {X: tt.dist},
			}}
			est := estimateJump(context.Background(), r, logx.Nop(), "A", "B", tt.fuel, tt.used, true)
			if est.FuelCost == nil || *est.FuelCost != tt.wantCost {
				t.Fatalf("cost = %v, want %d", est.FuelCost, tt.wantCost)
			}
			if est.Remaining == nil || *est.Remaining != tt.wantLeft {
				t.Fatalf("remaining = %v, want %d", est.Remaining, tt.wantLeft)
			}
			if est.Distance == nil || math.Abs(*est.Distance-tt.dist) > 1e-9 {
				t.Fatalf("distance = %v, want %v", est.Distance, tt.dist)
			}
		})
	}
}
