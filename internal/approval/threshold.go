// Package approval decides when an expense has gathered enough approvals.
package approval

// Threshold returns the number of distinct approvals needed for a group with
// memberCount members: a strict majority, floor(memberCount/2) + 1.
// Groups always contain their creator, so memberCount < 1 is treated as 1.
func Threshold(memberCount int) int {
	if memberCount < 1 {
		memberCount = 1
	}
	return memberCount/2 + 1
}

// IsApproved reports whether approvalCount reaches the threshold for memberCount.
func IsApproved(approvalCount, memberCount int) bool {
	return approvalCount >= Threshold(memberCount)
}

// Decision is the outcome of evaluating an expense after an approval cast.
type Decision struct {
	// Approved is the expense's approved flag after evaluation.
	Approved bool
	// Transitioned is true only when the flag moved from false to true.
	Transitioned bool
}

// Evaluate applies an approval cast to an expense whose flag is currently
// wasApproved. Approval is a one-way transition: once approved, the result stays
// approved whatever the counts say.
func Evaluate(wasApproved bool, approvalCount, memberCount int) Decision {
	if wasApproved {
		return Decision{Approved: true}
	}
	if IsApproved(approvalCount, memberCount) {
		return Decision{Approved: true, Transitioned: true}
	}
	return Decision{}
}
