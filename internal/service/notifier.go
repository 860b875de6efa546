package service

// Notification event names pushed to every connected fan-out channel
// client. They carry no payload: subscribers treat them as cache
// invalidation signals and re-fetch the affected collection over HTTP.
const (
	// EventStateChanged follows every successful chat mutation.
	EventStateChanged = "state-changed"
	// EventVoicePending follows a voice upload, informational only.
	EventVoicePending = "voice-pending"
)

// Notifier delivers a fire-and-forget event name to every connected
// channel client. The fan-out hub implements it.
type Notifier interface {
	Notify(event string)
}
