package session

// State is the lifecycle stage of an orchestrator.
type State int

const (
	StateUninitialized State = iota
	StateSetup
	StateActive
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateSetup:
		return "setup"
	case StateActive:
		return "active"
	case StateTerminated:
		return "terminated"
	default:
		return "uninitialized"
	}
}
