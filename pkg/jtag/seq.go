package jtag

// Op describes one step of a command sequence: a shift of Bits bits of Value
// into the given chain. Tag carries the step name for error messages.
type Op struct {
	Chain Chain
	Bits  int
	Value uint64
	Tag   string
}

// RunSequence queues every op in order, drains the whole queue through the
// driver, and returns the response captured for the final op, truncated to
// 64 bits. Callers that care about a response only ever have one in flight,
// so returning just the last capture is enough.
func RunSequence(m *Mach, d Driver, ops []Op) (uint64, error) {
	for _, op := range ops {
		l := NewLeg(op.Chain, op.Tag)
		l.PushLittle(op.Value, op.Bits)
		m.Add(l)
	}
	for m.HasPending() {
		if err := m.Next(d); err != nil {
			return 0, err
		}
	}
	resp := m.Get()
	if resp == nil {
		return 0, ErrNoResponse
	}
	n := resp.Len()
	if n > 64 {
		n = 64
	}
	return resp.PopLittle(n), nil
}
