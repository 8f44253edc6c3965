package carrierjump

import (
	"testing"

	logx "fcdn/pkg/logx"
)

func TestOnOwnCarrier(t *testing.T) {
	tests := []struct {
		name      string
		station   string
		carrierID string
		want      bool
	}{
		{name: "callsign with fleet name", station: "K3B-43M Voyager I", carrierID: "K3B-43M", want: true},
		{name: "exact callsign", station: "K3B-43M", carrierID: "K3B-43M", want: true},
		{name: "callsign punctuation stripped", station: "K3B43M Voyager I", carrierID: "K3B-43M", want: true},
		{name: "lowercase station", station: "k3b-43m voyager i", carrierID: "K3B-43M", want: true},
		{name: "not at a station", station: "", carrierID: "K3B-43M", want: false},
		{name: "no callsign cached", station: "K3B-43M Voyager I", carrierID: "", want: false},
		{name: "foreign station", station: "Jameson Memorial", carrierID: "K3B-43M", want: false},
		{name: "someone else's carrier", station: "X9Z-11Q Wanderer", carrierID: "K3B-43M", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := onOwnCarrier(logx.Nop(), tt.station, tt.carrierID); got != tt.want {
				t.Fatalf("onOwnCarrier(%q, %q) = %v, want %v", tt.station, tt.carrierID, got, tt.want)
			}
		})
	}
}
