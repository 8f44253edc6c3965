package journal

import "strings"

// Snapshot is the ambient player context passed alongside each event:
// who is playing, where they are, and whether this is a beta build
// (beta sessions must never trigger notifications).
type Snapshot struct {
	Cmdr    string
	System  string
	Station string
	Beta    bool
}

// Tracker folds journal events into a Snapshot. It is driven from the single
// dispatch goroutine, so no locking.
type Tracker struct {
	snap Snapshot
}

func NewTracker() *Tracker { return &Tracker{} }

func (t *Tracker) Snapshot() Snapshot { return t.snap }

func (t *Tracker) Apply(ev Event) {
	switch ev.Kind {
	case KindFileheader:
		gv := strings.ToLower(ev.Fileheader.GameVersion)
		t.snap.Beta = strings.Contains(gv, "beta") || strings.Contains(gv, "alpha")
	case KindCommander:
		t.snap.Cmdr = ev.Commander.Name
	case KindLoadGame:
		if ev.LoadGame.Commander != "" {
			t.snap.Cmdr = ev.LoadGame.Commander
		}
	case KindLocation:
		t.snap.System = ev.Location.StarSystem
		if ev.Location.Docked {
			t.snap.Station = ev.Location.StationName
		} else {
			t.snap.Station = ""
		}
	case KindFSDJump:
		t.snap.System = ev.FSDJump.StarSystem
		t.snap.Station = ""
	case KindCarrierJump:
		t.snap.System = ev.CarrierJump.StarSystem
		if ev.CarrierJump.StationName != "" {
			t.snap.Station = ev.CarrierJump.StationName
		}
	case KindDocked:
		t.snap.Station = ev.Docked.StationName
		if ev.Docked.StarSystem != "" {
			t.snap.System = ev.Docked.StarSystem
		}
	case KindUndocked:
		t.snap.Station = ""
	}
}
