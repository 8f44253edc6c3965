package carrierjump

import (
	"strings"

	logx "fcdn/pkg/logx"
)

// onOwnCarrier reports whether the commander is docked at the carrier named
// by carrierID. The check is a substring match both on a normalized form
// (dashes and spaces stripped, uppercased) and on the raw uppercased names,
// because station names may or may not carry the callsign punctuation.
func onOwnCarrier(log logx.Logger, station, carrierID string) bool {
	if carrierID == "" {
		log.Warn("no carrier callsign cached; open the carrier management screen once")
		return false
	}
	if station == "" {
		log.Debug("not at a station", logx.String("carrier_id", carrierID))
		return false
	}

	idClean := normalizeName(carrierID)
	stationClean := normalizeName(station)

	match := strings.Contains(stationClean, idClean) ||
		strings.Contains(strings.ToUpper(station), strings.ToUpper(carrierID))

	if match {
		log.Debug("docked at own carrier",
			logx.String("station", station), logx.String("carrier_id", carrierID))
	} else {
		log.Debug("not on own carrier",
			logx.String("station", station), logx.String("carrier_id", carrierID))
	}
	return match
}

func normalizeName(s string) string {
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	return strings.ToUpper(s)
}
