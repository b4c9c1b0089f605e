package filter

// Interest is the cached tri-state decision for one callsite.
type Interest uint8

const (
	// InterestNever means no directive can enable the callsite.
	InterestNever Interest = iota
	// InterestSometimes means a field-matcher directive applies and the
	// decision needs runtime field values.
	InterestSometimes
	// InterestAlways means the callsite is enabled regardless of values.
	InterestAlways
)

func (i Interest) String() string {
	switch i {
	case InterestNever:
		return "never"
	case InterestSometimes:
		return "sometimes"
	default:
		return "always"
	}
}

// Max returns the more permissive of two interests.
func Max(a, b Interest) Interest {
	if a > b {
		return a
	}
	return b
}
