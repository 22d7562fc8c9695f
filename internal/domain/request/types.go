package request

type Kind string

const (
	KindMaintenance   Kind = "maintenance"
	KindSupport       Kind = "support"
	KindDevelopment   Kind = "development"
	KindInquiry       Kind = "inquiry"
	KindOther         Kind = "other"
	KindVacation      Kind = "vacation"
	KindReimbursement Kind = "reimbursement"
	KindTraining      Kind = "training"
)

var kindLabels = map[Kind]string{
	KindMaintenance:   "Maintenance",
	KindSupport:       "Support",
	KindDevelopment:   "Development",
	KindInquiry:       "Inquiry",
	KindOther:         "Other",
	KindVacation:      "Vacation",
	KindReimbursement: "Reimbursement",
	KindTraining:      "Training",
}

// Kinds lists every kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindMaintenance, KindSupport, KindDevelopment, KindInquiry, KindOther,
		KindVacation, KindReimbursement, KindTraining,
	}
}

func (k Kind) String() string {
	return string(k)
}

func (k Kind) IsValid() bool {
	_, ok := kindLabels[k]
	return ok
}

func (k Kind) Label() string {
	return kindLabels[k]
}

// RequiresAmount reports whether requests of this kind carry a monetary amount.
func (k Kind) RequiresAmount() bool {
	return k == KindReimbursement || k == KindTraining
}

// RequiresPeriod reports whether requests of this kind carry a start and end date.
func (k Kind) RequiresPeriod() bool {
	return k == KindVacation || k == KindTraining
}

func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", ErrUnknownKind
	}
	return k, nil
}

type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusCancelled   Status = "cancelled"
)

var statusLabels = map[Status]string{
	StatusPending:     "Pending",
	StatusUnderReview: "Under review",
	StatusApproved:    "Approved",
	StatusRejected:    "Rejected",
	StatusCancelled:   "Cancelled",
}

func Statuses() []Status {
	return []Status{StatusPending, StatusUnderReview, StatusApproved, StatusRejected, StatusCancelled}
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s Status) Label() string {
	return statusLabels[s]
}

// IsOpen is true while the request still awaits a decision.
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusUnderReview
}

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", ErrUnknownStatus
	}
	return st, nil
}
