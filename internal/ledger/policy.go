package ledger

// DefaultMinHOSHours is the least hours-of-service a driver needs to take a trip.
const DefaultMinHOSHours = 4.0

// Policy holds the assignment rules that are a business decision rather than an invariant.
type Policy struct {
	MinHOSHours float64

	// AllowAssignedDrivers lets a driver who already holds a trip be proposed for
	// another one. The driver is not released from the first trip, so with this on
	// one driver can be referenced by two open trips; Audit reports that.
	AllowAssignedDrivers bool
}

func DefaultPolicy() Policy {
	return Policy{MinHOSHours: DefaultMinHOSHours}
}
