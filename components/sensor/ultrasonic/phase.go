package ultrasonic

// Phase is a state of the timing state machine that runs once per reading:
//
//	Idle → Triggering → AwaitingEchoStart → MeasuringEcho → Done
//	                            ↓                  ↓
//	                         TimedOut           TimedOut
type Phase int

const (
	// PhaseIdle is the state before a reading starts.
	PhaseIdle Phase = iota
	// PhaseTriggering sends the trigger pulse. A shared pin is an output during this phase only.
	PhaseTriggering
	// PhaseAwaitingEchoStart polls for the echo line to rise.
	PhaseAwaitingEchoStart
	// PhaseMeasuringEcho polls for the echo line to fall.
	PhaseMeasuringEcho
	// PhaseDone means an echo was measured.
	PhaseDone
	// PhaseTimedOut means a polling phase ran past its budget.
	PhaseTimedOut
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseTriggering:
		return "triggering"
	case PhaseAwaitingEchoStart:
		return "awaiting_echo_start"
	case PhaseMeasuringEcho:
		return "measuring_echo"
	case PhaseDone:
		return "done"
	case PhaseTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}
