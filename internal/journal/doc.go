package journal

// Package journal consumes the game's player journal: newline-delimited JSON
// event records appended to Journal.*.log files while the game runs.
//
// Events are decoded at the boundary into a tagged Event value with typed
// payloads for the kinds this host cares about; unrecognized kinds come back
// as KindUnknown and are ignored by dispatch.
