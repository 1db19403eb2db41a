package flow

// TriggerState remembers, per action node id, whether the node's trigger
// input was true on the previous evaluation. It is owned by a single runtime
// and is not safe for concurrent use.
type TriggerState struct {
	last map[string]bool
}

// NewTriggerState returns an empty trigger state.
func NewTriggerState() *TriggerState {
	return &TriggerState{last: make(map[string]bool)}
}

// Last reports the trigger value recorded for nodeID.
func (s *TriggerState) Last(nodeID string) bool {
	return s.last[nodeID]
}

// Record stores the trigger value observed for nodeID.
func (s *TriggerState) Record(nodeID string, v bool) {
	if v {
		s.last[nodeID] = true
		return
	}
	delete(s.last, nodeID)
}

// Snapshot returns a copy of every node currently recorded as triggered.
func (s *TriggerState) Snapshot() map[string]bool {
	out := make(map[string]bool, len(s.last))
	for id, v := range s.last {
		out[id] = v
	}
	return out
}

// Restore replaces the recorded values with snap.
func (s *TriggerState) Restore(snap map[string]bool) {
	s.last = make(map[string]bool, len(snap))
	for id, v := range snap {
		if v {
			s.last[id] = true
		}
	}
}
