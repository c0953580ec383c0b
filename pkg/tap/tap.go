package tap

import "fmt"

// State is one of the 16 IEEE 1149.1 TAP controller states.
type State uint8

const (
	TestLogicReset State = iota
	RunTestIdle
	SelectDRScan
	CaptureDR
	ShiftDR
	Exit1DR
	PauseDR
	Exit2DR
	UpdateDR
	SelectIRScan
	CaptureIR
	ShiftIR
	Exit1IR
	PauseIR
	Exit2IR
	UpdateIR

	numStates = 16
)

var stateNames = [numStates]string{
	"TestLogicReset",
	"RunTestIdle",
	"SelectDRScan",
	"CaptureDR",
	"ShiftDR",
	"Exit1DR",
	"PauseDR",
	"Exit2DR",
	"UpdateDR",
	"SelectIRScan",
	"CaptureIR",
	"ShiftIR",
	"Exit1IR",
	"PauseIR",
	"Exit2IR",
	"UpdateIR",
}

func (s State) String() string {
	if s < numStates {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// transitions[s] holds the successor of s for TMS=0 and TMS=1.
var transitions = [numStates][2]State{
	TestLogicReset: {RunTestIdle, TestLogicReset},
	RunTestIdle:    {RunTestIdle, SelectDRScan},
	SelectDRScan:   {CaptureDR, SelectIRScan},
	CaptureDR:      {ShiftDR, Exit1DR},
	ShiftDR:        {ShiftDR, Exit1DR},
	Exit1DR:        {PauseDR, UpdateDR},
	PauseDR:        {PauseDR, Exit2DR},
	Exit2DR:        {ShiftDR, UpdateDR},
	UpdateDR:       {RunTestIdle, SelectDRScan},
	SelectIRScan:   {CaptureIR, TestLogicReset},
	CaptureIR:      {ShiftIR, Exit1IR},
	ShiftIR:        {ShiftIR, Exit1IR},
	Exit1IR:        {PauseIR, UpdateIR},
	PauseIR:        {PauseIR, Exit2IR},
	Exit2IR:        {ShiftIR, UpdateIR},
	UpdateIR:       {RunTestIdle, SelectDRScan},
}

// Next returns the TAP state after one TCK cycle with the given TMS value.
// It panics on an out-of-range state, which cannot happen when going through
// the exported API.
func Next(s State, tms bool) State {
	if s >= numStates {
		panic(fmt.Sprintf("tap: unhandled state %d", uint8(s)))
	}
	if tms {
		return transitions[s][1]
	}
	return transitions[s][0]
}

// Machine tracks the TAP controller state without performing any I/O. The
// caller clocks the physical pins itself and mirrors each cycle here.
type Machine struct {
	state State
}

// NewMachine returns a machine in Test-Logic-Reset.
func NewMachine() *Machine {
	return &Machine{state: TestLogicReset}
}

// State reports the tracked TAP state.
func (m *Machine) State() State {
	return m.state
}

// Clock advances the machine one TCK cycle with the given TMS value and
// returns the new state.
func (m *Machine) Clock(tms bool) State {
	m.state = Next(m.state, tms)
	return m.state
}

// Reset snaps the tracked state back to Test-Logic-Reset. The caller is
// responsible for driving the matching five TMS=1 cycles on the wire.
func (m *Machine) Reset() {
	m.state = TestLogicReset
}

// Seek computes the shortest TMS sequence from the current state to target,
// advances the machine along it, and returns the sequence so it can be
// replayed on the physical pins. Seeking the current state returns nil.
func (m *Machine) Seek(target State) []bool {
	path := route(m.state, target)
	for _, tms := range path {
		m.Clock(tms)
	}
	return path
}

// route finds the shortest TMS path between two states with a breadth-first
// walk over the transition graph. Every state is reachable from every other,
// so a path always exists.
func route(from, to State) []bool {
	if from == to {
		return nil
	}

	type node struct {
		state State
		tms   []bool
	}

	queue := []node{{state: from}}
	var visited [numStates]bool
	visited[from] = true

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, tms := range [2]bool{false, true} {
			next := Next(cur.state, tms)
			if visited[next] {
				continue
			}
			path := append(append([]bool{}, cur.tms...), tms)
			if next == to {
				return path
			}
			visited[next] = true
			queue = append(queue, node{state: next, tms: path})
		}
	}

	panic(fmt.Sprintf("tap: no route from %s to %s", from, to))
}
