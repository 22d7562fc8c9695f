package request

type Action string

const (
	ActionStartReview Action = "start_review"
	ActionApprove     Action = "approve"
	ActionReject      Action = "reject"
	ActionCancel      Action = "cancel"
)

type transition struct {
	from []Status
	to   Status
}

var transitions = map[Action]transition{
	ActionStartReview: {from: []Status{StatusPending}, to: StatusUnderReview},
	ActionApprove:     {from: []Status{StatusPending, StatusUnderReview}, to: StatusApproved},
	ActionReject:      {from: []Status{StatusPending, StatusUnderReview}, to: StatusRejected},
	ActionCancel:      {from: []Status{StatusPending, StatusUnderReview}, to: StatusCancelled},
}

func (a Action) String() string {
	return string(a)
}

func (a Action) IsValid() bool {
	_, ok := transitions[a]
	return ok
}

// Target returns the status an action leads to.
func (a Action) Target() Status {
	return transitions[a].to
}

// CanApply reports whether the action is legal from the given status.
func CanApply(from Status, a Action) bool {
	t, ok := transitions[a]
	if !ok {
		return false
	}
	for _, s := range t.from {
		if s == from {
			return true
		}
	}
	return false
}
