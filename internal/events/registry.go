package events

import "fmt"

var allowedEvents = map[string]struct{}{
	// page
	"page.navigated": {},

	// action
	"action.navigate": {},
	"action.link":     {},
	"action.alert":    {},

	// runtime
	"runtime.started": {},
	"runtime.stopped": {},

	// session
	"session.started": {},
	"session.resumed": {},
	"session.closed":  {},

	// project
	"project.loaded":   {},
	"project.invalid":  {},
	"project.exported": {},

	// bridge
	"bridge.connected":    {},
	"bridge.disconnected": {},
	"bridge.input":        {},
	"bridge.error":        {},

	// system
	"system.startup":  {},
	"system.shutdown": {},
	"system.error":    {},
}

// Validate reports whether event is a registered name.
func Validate(event string) error {
	if _, ok := allowedEvents[event]; !ok {
		return fmt.Errorf("unknown event: %s", event)
	}
	return nil
}
