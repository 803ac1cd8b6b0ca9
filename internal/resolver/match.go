package resolver

import (
	"fmt"
	"strings"
)

// DuplicatePolicy decides which record wins when a student has more than one
// submission for the same assignment.
type DuplicatePolicy string

const (
	// DuplicateFirst keeps the first record in query order. The store gives no
	// ordering guarantee, so this is a known limitation rather than a business rule.
	DuplicateFirst DuplicatePolicy = "first"
	// DuplicateLatest keeps the record with the latest submission instant.
	DuplicateLatest DuplicatePolicy = "latest"
)

// ParseDuplicatePolicy validates a configured policy name. Empty means first.
func ParseDuplicatePolicy(value string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", DuplicateFirst:
		return DuplicateFirst, nil
	case DuplicateLatest:
		return DuplicateLatest, nil
	default:
		return "", fmt.Errorf("unknown duplicate submission policy %q", value)
	}
}

// Duplicate describes a record that lost the tie-break.
type Duplicate struct {
	AssignmentID string
	KeptID       string
	DroppedID    string
}

// MatchSubmissions maps assignment ids to at most one of the student's records.
// Records of other students, including records with no student id when a
// student is given, and records without an assignment id are ignored.
func MatchSubmissions(studentID string, records []SubmissionRecord, policy DuplicatePolicy) (map[string]SubmissionRecord, []Duplicate) {
	matched := make(map[string]SubmissionRecord, len(records))
	var duplicates []Duplicate

	for _, record := range records {
		if record.AssignmentID == "" {
			continue
		}
		if studentID != "" && record.StudentID != studentID {
			continue
		}

		kept, exists := matched[record.AssignmentID]
		if !exists {
			matched[record.AssignmentID] = record
			continue
		}

		if policy == DuplicateLatest && isLater(record, kept) {
			matched[record.AssignmentID] = record
			duplicates = append(duplicates, Duplicate{AssignmentID: record.AssignmentID, KeptID: record.ID, DroppedID: kept.ID})
			continue
		}

		duplicates = append(duplicates, Duplicate{AssignmentID: record.AssignmentID, KeptID: kept.ID, DroppedID: record.ID})
	}

	return matched, duplicates
}

func isLater(candidate, kept SubmissionRecord) bool {
	if candidate.SubmittedAt == nil {
		return false
	}
	if kept.SubmittedAt == nil {
		return true
	}
	return candidate.SubmittedAt.After(*kept.SubmittedAt)
}
