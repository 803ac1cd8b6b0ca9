package resolver

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func jakarta(t *testing.T) *time.Location {
	t.Helper()
	loc, err := LoadLocation("")
	require.NoError(t, err)
	return loc
}

func at(value string) *time.Time {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return &parsed
}

func fixedClock(now time.Time) func() time.Time {
	return func() time.Time { return now }
}

func floatPtr(v float64) *float64 {
	return &v
}

func TestResolveClassifiesAgainstSinglePassInstant(t *testing.T) {
	now := *at("2024-05-10T12:00:00Z")
	calls := 0
	r := New(Options{
		Location: jakarta(t),
		Logger:   zerolog.Nop(),
		Clock: func() time.Time {
			calls++
			return now
		},
	})

	defs := []AssignmentDefinition{
		{ID: "a1", ClassID: "c1", Title: "Essay", Deadline: at("2024-05-12T10:00:00Z")},
		{ID: "a2", ClassID: "c1", Title: "Quiz", Deadline: at("2024-05-09T10:00:00Z")},
		{ID: "a3", ClassID: "c1", Title: "Lab", Deadline: at("2024-05-08T10:00:00Z")},
		{ID: "a4", ClassID: "c1", Title: "Reading", Deadline: at("2024-05-01T10:00:00Z")},
		{ID: "a5", ClassID: "c1", Title: "Project"},
	}
	subs := []SubmissionRecord{
		{ID: "s1", AssignmentID: "a2", StudentID: "u1", Status: "SUBMITTED", SubmittedAt: at("2024-05-09T08:00:00Z")},
		{ID: "s2", AssignmentID: "a4", StudentID: "u1", Status: "GRADED", SubmittedAt: at("2024-04-30T08:00:00Z"), Score: floatPtr(88)},
	}

	result := r.Resolve(Input{StudentID: "u1", ClassIDs: []string{"c1"}, Definitions: defs, Submissions: subs})

	require.Equal(t, 1, calls)
	require.Equal(t, now, result.Now)
	require.Len(t, result.Items, 5)

	statuses := map[string]Status{}
	inferred := map[string]bool{}
	for _, item := range result.Items {
		statuses[item.Definition.ID] = item.Status
		inferred[item.Definition.ID] = item.Inferred
	}

	require.Equal(t, StatusOnGoing, statuses["a1"])
	require.Equal(t, StatusSubmitted, statuses["a2"])
	require.Equal(t, StatusSubmitted, statuses["a3"])
	require.True(t, inferred["a3"])
	require.False(t, inferred["a2"])
	require.Equal(t, StatusGraded, statuses["a4"])
	require.Equal(t, StatusOnGoing, statuses["a5"])

	require.Len(t, result.Full.OnGoing, 2)
	require.Equal(t, "a1", result.Full.OnGoing[0].Definition.ID)
	require.Equal(t, "a5", result.Full.OnGoing[1].Definition.ID)
	require.Len(t, result.Full.Submitted, 2)
	require.Equal(t, "a2", result.Full.Submitted[0].Definition.ID)
	require.Equal(t, "a3", result.Full.Submitted[1].Definition.ID)
	require.Len(t, result.Full.Graded, 1)
	require.InDelta(t, 88.0, *result.Full.Graded[0].Score(), 0.001)
}

func TestResolveGradedWinsRegardlessOfDeadline(t *testing.T) {
	now := *at("2024-05-10T12:00:00Z")
	def := AssignmentDefinition{ID: "a1", ClassID: "c1", Deadline: at("2024-06-01T00:00:00Z")}
	sub := SubmissionRecord{ID: "s1", AssignmentID: "a1", StudentID: "u1", Status: "graded"}

	status, inferred := Classify(def, &sub, now)
	require.Equal(t, StatusGraded, status)
	require.False(t, inferred)

	def.Deadline = at("2024-01-01T00:00:00Z")
	status, _ = Classify(def, &sub, now)
	require.Equal(t, StatusGraded, status)
}

func TestClassifyDeadlineEqualToNowIsPast(t *testing.T) {
	now := *at("2024-05-10T12:00:00Z")
	def := AssignmentDefinition{ID: "a1", Deadline: at("2024-05-10T12:00:00Z")}

	status, inferred := Classify(def, nil, now)
	require.Equal(t, StatusSubmitted, status)
	require.True(t, inferred)

	status, inferred = Classify(def, nil, now.Add(-time.Nanosecond))
	require.Equal(t, StatusOnGoing, status)
	require.False(t, inferred)
}

func TestClassifyUnknownSubmissionStatusCountsAsSubmitted(t *testing.T) {
	now := *at("2024-05-10T12:00:00Z")
	def := AssignmentDefinition{ID: "a1", Deadline: at("2024-06-10T12:00:00Z")}

	for _, status := range []string{"LATE", "", "SUBMITTED", "resubmitted"} {
		sub := SubmissionRecord{AssignmentID: "a1", Status: status}
		got, inferred := Classify(def, &sub, now)
		require.Equal(t, StatusSubmitted, got, status)
		require.False(t, inferred)
	}
}

func TestResolveHidesUnpublishedAndForeignClasses(t *testing.T) {
	r := New(Options{Clock: fixedClock(*at("2024-05-10T12:00:00Z"))})

	defs := []AssignmentDefinition{
		{ID: "a1", ClassID: "c1", Visibility: "published"},
		{ID: "a2", ClassID: "c1", Visibility: "draft"},
		{ID: "a3", ClassID: "c1"},
		{ID: "a4", ClassID: "c2"},
		{ID: "a5", ClassID: "c1", Visibility: "archived"},
	}

	result := r.Resolve(Input{StudentID: "u1", ClassIDs: []string{"c1"}, Definitions: defs})
	ids := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		ids = append(ids, item.Definition.ID)
	}
	require.Equal(t, []string{"a1", "a3"}, ids)
	require.Equal(t, 2, result.Hidden)
}

func TestResolveNilClassIDsDisablesFiltering(t *testing.T) {
	r := New(Options{Clock: fixedClock(*at("2024-05-10T12:00:00Z"))})
	defs := []AssignmentDefinition{{ID: "a1", ClassID: "c1"}, {ID: "a2", ClassID: "c9"}}

	result := r.Resolve(Input{StudentID: "u1", Definitions: defs})
	require.Len(t, result.Items, 2)

	result = r.Resolve(Input{StudentID: "u1", ClassIDs: []string{}, Definitions: defs})
	require.Empty(t, result.Items)
}

func TestResolveIgnoresOtherStudentsSubmissions(t *testing.T) {
	r := New(Options{Clock: fixedClock(*at("2024-05-10T12:00:00Z"))})
	defs := []AssignmentDefinition{{ID: "a1", ClassID: "c1", Deadline: at("2024-05-20T00:00:00Z")}}
	subs := []SubmissionRecord{{ID: "s1", AssignmentID: "a1", StudentID: "someone-else", Status: "GRADED"}}

	result := r.Resolve(Input{StudentID: "u1", Definitions: defs, Submissions: subs})
	require.Len(t, result.Items, 1)
	require.Equal(t, StatusOnGoing, result.Items[0].Status)
	require.Nil(t, result.Items[0].Submission)
	require.Equal(t, "-", result.Items[0].FinishedOn("2006-01-02", time.UTC))
}

func TestMatchSubmissionsRequiresStudentIDWhenGiven(t *testing.T) {
	records := []SubmissionRecord{
		{ID: "anon", AssignmentID: "a1", Status: "GRADED"},
		{ID: "mine", AssignmentID: "a2", StudentID: "u1", Status: "SUBMITTED"},
	}

	matched, dups := MatchSubmissions("u1", records, DuplicateFirst)
	require.Empty(t, dups)
	require.Len(t, matched, 1)
	require.Equal(t, "mine", matched["a2"].ID)
	_, found := matched["a1"]
	require.False(t, found)

	all, _ := MatchSubmissions("", records, DuplicateFirst)
	require.Len(t, all, 2)
}

func TestMatchSubmissionsDuplicatePolicies(t *testing.T) {
	records := []SubmissionRecord{
		{ID: "s1", AssignmentID: "a1", StudentID: "u1", SubmittedAt: at("2024-05-01T00:00:00Z")},
		{ID: "s2", AssignmentID: "a1", StudentID: "u1", SubmittedAt: at("2024-05-03T00:00:00Z")},
		{ID: "s3", AssignmentID: "a1", StudentID: "u1"},
		{ID: "s4", AssignmentID: "", StudentID: "u1"},
	}

	first, dups := MatchSubmissions("u1", records, DuplicateFirst)
	require.Len(t, first, 1)
	require.Equal(t, "s1", first["a1"].ID)
	require.Len(t, dups, 2)

	latest, dups := MatchSubmissions("u1", records, DuplicateLatest)
	require.Equal(t, "s2", latest["a1"].ID)
	require.Len(t, dups, 2)
	require.Equal(t, Duplicate{AssignmentID: "a1", KeptID: "s2", DroppedID: "s1"}, dups[0])
}

func TestParseDuplicatePolicy(t *testing.T) {
	policy, err := ParseDuplicatePolicy("")
	require.NoError(t, err)
	require.Equal(t, DuplicateFirst, policy)

	policy, err = ParseDuplicatePolicy(" Latest ")
	require.NoError(t, err)
	require.Equal(t, DuplicateLatest, policy)

	_, err = ParseDuplicatePolicy("random")
	require.Error(t, err)
}

func TestAssembleTruncatesCopiesAndKeepsFullSet(t *testing.T) {
	now := *at("2024-05-10T12:00:00Z")
	items := make([]ResolvedAssignment, 0)
	for i := 0; i < 5; i++ {
		deadline := now.Add(time.Duration(5-i) * time.Hour)
		items = append(items, ResolvedAssignment{
			Definition: AssignmentDefinition{ID: string(rune('a' + i)), Deadline: &deadline},
			Status:     StatusOnGoing,
		})
	}
	items = append(items, ResolvedAssignment{Definition: AssignmentDefinition{ID: "nodeadline"}, Status: StatusOnGoing})

	original := make([]ResolvedAssignment, len(items))
	copy(original, items)

	full, display := Assemble(items, DefaultLimits())
	require.Len(t, full.OnGoing, 6)
	require.Len(t, display.OnGoing, 3)
	require.Equal(t, "e", full.OnGoing[0].Definition.ID)
	require.Equal(t, "nodeadline", full.OnGoing[5].Definition.ID)
	require.Equal(t, full.OnGoing[:3], display.OnGoing)
	require.Equal(t, original, items)
	require.Empty(t, full.Graded)
	require.NotNil(t, display.Graded)
}

func TestSortByDeadlineIsStableForEqualKeys(t *testing.T) {
	deadline := at("2024-05-11T00:00:00Z")
	items := []ResolvedAssignment{
		{Definition: AssignmentDefinition{ID: "x"}},
		{Definition: AssignmentDefinition{ID: "first", Deadline: deadline}},
		{Definition: AssignmentDefinition{ID: "y"}},
		{Definition: AssignmentDefinition{ID: "second", Deadline: deadline}},
	}

	SortByDeadline(items)
	ids := []string{items[0].Definition.ID, items[1].Definition.ID, items[2].Definition.ID, items[3].Definition.ID}
	require.Equal(t, []string{"first", "second", "x", "y"}, ids)
}

func TestSortByRecencyPutsMissingSubmissionLast(t *testing.T) {
	items := []ResolvedAssignment{
		{Definition: AssignmentDefinition{ID: "inferred"}, Status: StatusSubmitted, Inferred: true},
		{Definition: AssignmentDefinition{ID: "old"}, Submission: &SubmissionRecord{SubmittedAt: at("2024-05-01T00:00:00Z")}},
		{Definition: AssignmentDefinition{ID: "new"}, Submission: &SubmissionRecord{SubmittedAt: at("2024-05-05T00:00:00Z")}},
	}

	SortByRecency(items)
	require.Equal(t, "new", items[0].Definition.ID)
	require.Equal(t, "old", items[1].Definition.ID)
	require.Equal(t, "inferred", items[2].Definition.ID)
}

func TestCalendarUsesReferenceZoneDays(t *testing.T) {
	loc := jakarta(t)
	r := New(Options{Location: loc, Clock: fixedClock(*at("2024-05-10T00:00:00Z"))})

	defs := []AssignmentDefinition{
		// 18:30 UTC on the 14th is 01:30 on the 15th in Jakarta.
		{ID: "late-night", ClassID: "c1", Deadline: at("2024-05-14T18:30:00Z")},
		{ID: "morning", ClassID: "c1", Deadline: at("2024-05-15T02:00:00Z")},
		{ID: "done", ClassID: "c1", Deadline: at("2024-05-20T02:00:00Z")},
		{ID: "open", ClassID: "c1"},
	}
	subs := []SubmissionRecord{{ID: "s1", AssignmentID: "done", StudentID: "u1", Status: "SUBMITTED"}}

	result := r.Resolve(Input{StudentID: "u1", Definitions: defs, Submissions: subs})

	require.Equal(t, []string{"2024-05-15"}, result.Calendar.Keys())
	require.True(t, result.Calendar.HasKey("2024-05-15"))
	require.False(t, result.Calendar.HasKey("2024-05-14"))
	require.False(t, result.Calendar.HasKey("2024-05-20"))

	day := time.Date(2024, 5, 15, 9, 0, 0, 0, loc)
	require.True(t, result.Calendar.Has(day))
	reminders := result.Calendar.Reminders(day)
	require.Len(t, reminders, 2)
	require.Equal(t, "late-night", reminders[0].Definition.ID)
	require.Equal(t, "morning", reminders[1].Definition.ID)

	require.Equal(t, []string{"2024-05-15"}, result.Calendar.KeysInMonth(2024, time.May))
	require.Empty(t, result.Calendar.KeysInMonth(2024, time.June))
	require.Empty(t, result.Calendar.Reminders(day.AddDate(0, 0, 1)))
}

func TestCalendarIgnoresDefinitionOrder(t *testing.T) {
	r := New(Options{Location: jakarta(t), Clock: fixedClock(*at("2024-05-10T00:00:00Z"))})
	defs := []AssignmentDefinition{
		{ID: "a1", ClassID: "c1", Deadline: at("2024-05-15T02:00:00Z")},
		{ID: "a2", ClassID: "c2", Deadline: at("2024-05-16T03:00:00Z")},
		{ID: "a3", ClassID: "c1", Deadline: at("2024-05-15T09:00:00Z")},
		{ID: "a4", ClassID: "c2", Deadline: at("2024-05-18T03:00:00Z")},
		{ID: "a5", ClassID: "c1"},
		{ID: "a6", ClassID: "c1", Deadline: at("2024-05-01T00:00:00Z")},
	}
	subs := []SubmissionRecord{{ID: "s1", AssignmentID: "a4", StudentID: "u1", Status: "SUBMITTED"}}

	reversed := make([]AssignmentDefinition, len(defs))
	for i, def := range defs {
		reversed[len(defs)-1-i] = def
	}

	forward := r.Resolve(Input{StudentID: "u1", Definitions: defs, Submissions: subs})
	backward := r.Resolve(Input{StudentID: "u1", Definitions: reversed, Submissions: subs})

	require.Equal(t, []string{"2024-05-15", "2024-05-16"}, forward.Calendar.Keys())
	require.Equal(t, forward.Calendar.Keys(), backward.Calendar.Keys())
	require.Equal(t, forward.Calendar.Len(), backward.Calendar.Len())
	require.LessOrEqual(t, forward.Calendar.Len(), len(forward.Full.OnGoing))
	require.LessOrEqual(t, backward.Calendar.Len(), len(backward.Full.OnGoing))
}

func TestResolveIsIdempotentForSameInstant(t *testing.T) {
	r := New(Options{Location: jakarta(t), Clock: fixedClock(*at("2024-05-10T12:00:00Z"))})
	in := Input{
		StudentID: "u1",
		Definitions: []AssignmentDefinition{
			{ID: "a1", ClassID: "c1", Deadline: at("2024-05-12T00:00:00Z")},
			{ID: "a2", ClassID: "c1", Deadline: at("2024-05-01T00:00:00Z")},
		},
		Submissions: []SubmissionRecord{{ID: "s1", AssignmentID: "a1", StudentID: "u1", Status: "SUBMITTED"}},
	}

	first := r.Resolve(in)
	second := r.Resolve(in)
	require.Equal(t, first.Items, second.Items)
	require.Equal(t, first.Full, second.Full)
	require.Equal(t, first.Calendar.Keys(), second.Calendar.Keys())
}

func TestResolveEmptyInputs(t *testing.T) {
	r := New(Options{Clock: fixedClock(time.Now())})
	result := r.Resolve(Input{StudentID: "u1"})
	require.Empty(t, result.Items)
	require.Empty(t, result.Display.OnGoing)
	require.Zero(t, result.Calendar.Len())
}

func TestFinishedOnFormatsInLocation(t *testing.T) {
	loc := jakarta(t)
	item := ResolvedAssignment{Submission: &SubmissionRecord{SubmittedAt: at("2024-05-14T18:30:00Z")}}
	require.Equal(t, "2024-05-15 01:30", item.FinishedOn("2006-01-02 15:04", loc))
}

func TestParseStatus(t *testing.T) {
	for input, want := range map[string]Status{
		"ongoing":   StatusOnGoing,
		"On Going":  StatusOnGoing,
		"on-going":  StatusOnGoing,
		"Submitted": StatusSubmitted,
		"GRADED":    StatusGraded,
	} {
		got, ok := ParseStatus(input)
		require.True(t, ok, input)
		require.Equal(t, want, got)
	}

	_, ok := ParseStatus("late")
	require.False(t, ok)
}
