package journal

import "testing"

func TestParseCarrierJumpRequest(t *testing.T) {
	line := []byte(`{"timestamp":"2026-01-02T15:04:05Z","event":"CarrierJumpRequest","CarrierID":3700000000,"SystemName":"Colonia","Body":"Colonia 2","DepartureTime":"2026-01-02T15:20:00Z"}`)
	ev, err := Parse(line)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Kind != KindCarrierJumpRequest {
		t.Fatalf("kind = %q", ev.Kind)
	}
	if ev.Timestamp != "2026-01-02T15:04:05Z" {
		t.Fatalf("timestamp = %q", ev.Timestamp)
	}
	req := ev.JumpRequest
	if req == nil || req.SystemName != "Colonia" || req.Body != "Colonia 2" || req.DepartureTime != "2026-01-02T15:20:00Z" {
		t.Fatalf("payload = %+v", req)
	}
}

func TestParseCarrierStats(t *testing.T) {
	line := []byte(`{"timestamp":"2026-01-02T15:04:05Z","event":"CarrierStats","Callsign":"K3B-43M","Name":"VOYAGER I","FuelLevel":430,"SpaceUsage":{"TotalCapacity":25000,"FreeSpace":5000,"UsedSpace":20000}}`)
	ev, err := Parse(line)
	if err != nil {
		t.Fatal(err)
	}
	cs := ev.CarrierStats
	if cs == nil || cs.Callsign != "K3B-43M" || cs.FuelLevel != 430 {
		t.Fatalf("payload = %+v", cs)
	}
	if cs.SpaceUsage.UsedSpace == nil || *cs.SpaceUsage.UsedSpace != 20000 {
		t.Fatalf("used space = %v", cs.SpaceUsage.UsedSpace)
	}
}

func TestParseMissingSpaceUsageFields(t *testing.T) {
	line := []byte(`{"timestamp":"t","event":"CarrierStats","Callsign":"K3B-43M","FuelLevel":1,"SpaceUsage":{"TotalCapacity":25000,"FreeSpace":5000}}`)
	ev, err := Parse(line)
	if err != nil {
		t.Fatal(err)
	}
	su := ev.CarrierStats.SpaceUsage
	if su.UsedSpace != nil {
		t.Fatalf("UsedSpace = %v, want nil when absent", su.UsedSpace)
	}
	if su.TotalCapacity == nil || su.FreeSpace == nil {
		t.Fatal("capacity fields should be present")
	}
}

func TestParseUnknownKind(t *testing.T) {
	ev, err := Parse([]byte(`{"timestamp":"t","event":"Music","MusicTrack":"NoTrack"}`))
	if err != nil {
		t.Fatal(err)
	}
	if ev.Kind != KindUnknown {
		t.Fatalf("kind = %q, want unknown", ev.Kind)
	}
}

func TestParseMalformedLine(t *testing.T) {
	if _, err := Parse([]byte(`{"event":`)); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
}

func TestTrackerFoldsLocation(t *testing.T) {
	tr := NewTracker()
	apply := func(line string) {
		t.Helper()
		ev, err := Parse([]byte(line))
		if err != nil {
			t.Fatal(err)
		}
		tr.Apply(ev)
	}

	apply(`{"timestamp":"t","event":"Fileheader","gameversion":"4.0.0.100"}`)
	apply(`{"timestamp":"t","event":"Commander","Name":"Jameson"}`)
	apply(`{"timestamp":"t","event":"Location","StarSystem":"Sol","StationName":"K3B-43M Voyager I","Docked":true}`)

	snap := tr.Snapshot()
	if snap.Beta {
		t.Fatal("release build flagged as beta")
	}
	if snap.Cmdr != "Jameson" || snap.System != "Sol" || snap.Station != "K3B-43M Voyager I" {
		t.Fatalf("snapshot = %+v", snap)
	}

	// An FSD jump leaves the station behind.
	apply(`{"timestamp":"t","event":"FSDJump","StarSystem":"Barnard's Star"}`)
	snap = tr.Snapshot()
	if snap.System != "Barnard's Star" || snap.Station != "" {
		t.Fatalf("snapshot after jump = %+v", snap)
	}

	apply(`{"timestamp":"t","event":"Docked","StarSystem":"Barnard's Star","StationName":"Miller Depot"}`)
	if tr.Snapshot().Station != "Miller Depot" {
		t.Fatalf("snapshot after dock = %+v", tr.Snapshot())
	}
	apply(`{"timestamp":"t","event":"Undocked"}`)
	if tr.Snapshot().Station != "" {
		t.Fatalf("snapshot after undock = %+v", tr.Snapshot())
	}
}

func TestTrackerBetaDetection(t *testing.T) {
	tr := NewTracker()
	ev, err := Parse([]byte(`{"timestamp":"t","event":"Fileheader","gameversion":"4.1 Beta 2"}`))
	if err != nil {
		t.Fatal(err)
	}
	tr.Apply(ev)
	if !tr.Snapshot().Beta {
		t.Fatal("beta build not detected")
	}
}
