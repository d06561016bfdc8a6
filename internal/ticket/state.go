package ticket

// State is the immutable-value form of a counter. The zero value is the
// initial state. Draw never modifies its receiver, so an old State can be
// kept around and drawn from again to replay the sequence from that point.
type State struct {
	LastTicket int64
}

// Draw returns the next ticket number and the state after issuing it.
func (s State) Draw() (int64, State) {
	n := s.LastTicket + 1
	return n, State{LastTicket: n}
}
