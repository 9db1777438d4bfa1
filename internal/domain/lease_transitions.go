package domain

type LeaseAction string

const (
	ActionHire   LeaseAction = "hire"
	ActionReturn LeaseAction = "return"
)

var leaseTransitions = map[ListingStatus]map[LeaseAction]ListingStatus{
	ListingAvailable: {ActionHire: ListingHired},
	ListingHired:     {ActionReturn: ListingAvailable},
}

// NextStatus returns the status reached by applying action from the given
// status, or false when the transition is not allowed.
func NextStatus(from ListingStatus, action LeaseAction) (ListingStatus, bool) {
	allowed, ok := leaseTransitions[from]
	if !ok {
		return "", false
	}
	to, ok := allowed[action]
	return to, ok
}

// CanTransition returns whether the listing can move from one status to another
// through hire or return.
func CanTransition(from, to ListingStatus) bool {
	for _, next := range leaseTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
