package journal

import (
	"encoding/json"
	"fmt"
)

type Kind string

const (
	KindUnknown Kind = ""

	KindFileheader Kind = "Fileheader"
	KindCommander  Kind = "Commander"
	KindLoadGame   Kind = "LoadGame"
	KindLocation   Kind = "Location"
	KindFSDJump    Kind = "FSDJump"
	KindDocked     Kind = "Docked"
	KindUndocked   Kind = "Undocked"

	KindCarrierStats         Kind = "CarrierStats"
	KindCarrierJump          Kind = "CarrierJump"
	KindCarrierJumpRequest   Kind = "CarrierJumpRequest"
	KindCarrierJumpCancelled Kind = "CarrierJumpCancelled"
)

// Event is a tagged union over the journal kinds this host understands.
// Exactly one payload pointer is non-nil, matching Kind; KindUnknown carries
// none and is dropped before plugin dispatch.
type Event struct {
	Kind      Kind
	Timestamp string

	Fileheader   *Fileheader
	Commander    *Commander
	LoadGame     *LoadGame
	Location     *Location
	FSDJump      *FSDJump
	Docked       *Docked
	CarrierStats *CarrierStats
	CarrierJump  *CarrierJump
	JumpRequest  *CarrierJumpRequest
}

type Fileheader struct {
	GameVersion string `json:"gameversion"`
}

type Commander struct {
	Name string `json:"Name"`
}

type LoadGame struct {
	Commander string `json:"Commander"`
}

type Location struct {
	StarSystem  string `json:"StarSystem"`
	StationName string `json:"StationName"`
	Docked      bool   `json:"Docked"`
}

type FSDJump struct {
	StarSystem string `json:"StarSystem"`
}

type Docked struct {
	StarSystem  string `json:"StarSystem"`
	StationName string `json:"StationName"`
}

// CarrierStats is the periodic carrier telemetry snapshot emitted when the
// carrier management screen refreshes.
type CarrierStats struct {
	Callsign   string     `json:"Callsign"`
	Name       string     `json:"Name"`
	FuelLevel  int        `json:"FuelLevel"`
	SpaceUsage SpaceUsage `json:"SpaceUsage"`
}

// SpaceUsage uses pointers because UsedSpace is known to be missing or null
// in some game versions; consumers fall back to TotalCapacity-FreeSpace.
type SpaceUsage struct {
	TotalCapacity *int `json:"TotalCapacity"`
	FreeSpace     *int `json:"FreeSpace"`
	UsedSpace     *int `json:"UsedSpace"`
}

type CarrierJump struct {
	StarSystem  string `json:"StarSystem"`
	StationName string `json:"StationName"`
}

type CarrierJumpRequest struct {
	SystemName    string `json:"SystemName"`
	Body          string `json:"Body"`
	DepartureTime string `json:"DepartureTime"`
}

// Parse decodes one journal line. Unknown event kinds are not an error; they
// return an Event with KindUnknown so callers can skip them cheaply.
func Parse(line []byte) (Event, error) {
	var env struct {
		Event     string `json:"event"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(line, &env); err != nil {
		return Event{}, fmt.Errorf("journal line: %w", err)
	}

	ev := Event{Timestamp: env.Timestamp}

	decode := func(dst any) error {
		if err := json.Unmarshal(line, dst); err != nil {
			return fmt.Errorf("journal %s payload: %w", env.Event, err)
		}
		return nil
	}

	switch Kind(env.Event) {
	case KindFileheader:
		ev.Kind = KindFileheader
		ev.Fileheader = &Fileheader{}
		return ev, decode(ev.Fileheader)
	case KindCommander:
		ev.Kind = KindCommander
		ev.Commander = &Commander{}
		return ev, decode(ev.Commander)
	case KindLoadGame:
		ev.Kind = KindLoadGame
		ev.LoadGame = &LoadGame{}
		return ev, decode(ev.LoadGame)
	case KindLocation:
		ev.Kind = KindLocation
		ev.Location = &Location{}
		return ev, decode(ev.Location)
	case KindFSDJump:
		ev.Kind = KindFSDJump
		ev.FSDJump = &FSDJump{}
		return ev, decode(ev.FSDJump)
	case KindDocked:
		ev.Kind = KindDocked
		ev.Docked = &Docked{}
		return ev, decode(ev.Docked)
	case KindUndocked:
		ev.Kind = KindUndocked
		return ev, nil
	case KindCarrierStats:
		ev.Kind = KindCarrierStats
		ev.CarrierStats = &CarrierStats{}
		return ev, decode(ev.CarrierStats)
	case KindCarrierJump:
		ev.Kind = KindCarrierJump
		ev.CarrierJump = &CarrierJump{}
		return ev, decode(ev.CarrierJump)
	case KindCarrierJumpRequest:
		ev.Kind = KindCarrierJumpRequest
		ev.JumpRequest = &CarrierJumpRequest{}
		return ev, decode(ev.JumpRequest)
	case KindCarrierJumpCancelled:
		ev.Kind = KindCarrierJumpCancelled
		return ev, nil
	default:
		ev.Kind = KindUnknown
		return ev, nil
	}
}
