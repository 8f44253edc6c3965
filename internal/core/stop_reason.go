package core

// StopReason tags why a plugin or the app is stopping; it only feeds logs.
type StopReason string

const (
	StopShutdown      StopReason = "shutdown"
	StopPluginDisable StopReason = "plugin_disable"
	StopFatal         StopReason = "fatal"
)
