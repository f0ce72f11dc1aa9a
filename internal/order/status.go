package order

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusInProcess Status = "in_process"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

// allowedTransitions is the full adjacency for the generic status update.
// cancelled is deliberately absent: it is reachable only through Cancel, which
// is owner-initiated and restores stock, a side effect the generic transition
// must never trigger.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusAccepted: true,
		StatusRejected: true,
	},
	StatusAccepted: {
		StatusInProcess: true,
		StatusRejected:  true,
	},
	StatusInProcess: {
		StatusShipped:  true,
		StatusRejected: true,
	},
	StatusShipped: {
		StatusDelivered: true,
	},
	StatusDelivered: {},
	StatusRejected:  {},
	StatusCancelled: {},
}

// CanTransition reports whether the generic status update permits from→to.
func CanTransition(from, to Status) bool {
	next, ok := allowedTransitions[from]
	return ok && next[to]
}

// CanCancel reports whether an order in this status may still be cancelled.
func CanCancel(s Status) bool {
	return s == StatusPending || s == StatusAccepted
}

// ValidStatus reports whether the value is one of the known states.
func ValidStatus(s Status) bool {
	_, ok := allowedTransitions[s]
	return ok
}
