package resolver

import "time"

// Classify derives the status of one assignment at the pass instant now.
//
// A graded record wins regardless of deadline, any other record means submitted,
// and without a record a deadline at or before now is shown as submitted with
// inferred set. The inference is display-only.
func Classify(def AssignmentDefinition, submission *SubmissionRecord, now time.Time) (Status, bool) {
	if submission != nil {
		if submission.IsGraded() {
			return StatusGraded, false
		}
		return StatusSubmitted, false
	}

	if def.Deadline == nil || def.Deadline.After(now) {
		return StatusOnGoing, false
	}

	return StatusSubmitted, true
}
