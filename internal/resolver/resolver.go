package resolver

import (
	"time"

	"github.com/rs/zerolog"
)

// Options configures a Resolver.
type Options struct {
	Policy   DuplicatePolicy
	Location *time.Location
	Limits   Limits
	Logger   zerolog.Logger
	Clock    func() time.Time
}

// Input is everything one resolution pass needs for a single student.
type Input struct {
	StudentID   string
	ClassIDs    []string
	Definitions []AssignmentDefinition
	Submissions []SubmissionRecord
}

// Result is the outcome of one pass. Every status inside it was computed
// against the same Now.
type Result struct {
	Now        time.Time
	Items      []ResolvedAssignment
	Full       Board
	Display    Board
	Calendar   CalendarMarks
	Duplicates []Duplicate
	Hidden     int
}

// Resolver runs resolution passes. It holds no per-student state and is safe for
// concurrent use.
type Resolver struct {
	policy DuplicatePolicy
	loc    *time.Location
	limits Limits
	logger zerolog.Logger
	now    func() time.Time
}

// New constructs a Resolver, filling defaults for unset options.
func New(opts Options) *Resolver {
	if opts.Policy == "" {
		opts.Policy = DuplicateFirst
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Limits == (Limits{}) {
		opts.Limits = DefaultLimits()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Resolver{
		policy: opts.Policy,
		loc:    opts.Location,
		limits: opts.Limits,
		logger: opts.Logger.With().Str("component", "assignment_resolver").Logger(),
		now:    opts.Clock,
	}
}

// Location returns the reference zone used for calendar days.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Limits returns the compact view caps.
func (r *Resolver) Limits() Limits {
	return r.limits
}

// Resolve joins definitions with the student's submissions. The clock is read once.
func (r *Resolver) Resolve(in Input) Result {
	now := r.now()

	var allowed map[string]struct{}
	if in.ClassIDs != nil {
		allowed = make(map[string]struct{}, len(in.ClassIDs))
		for _, id := range in.ClassIDs {
			allowed[id] = struct{}{}
		}
	}

	matched, duplicates := MatchSubmissions(in.StudentID, in.Submissions, r.policy)
	for _, dup := range duplicates {
		r.logger.Warn().
			Str("student_id", in.StudentID).
			Str("assignment_id", dup.AssignmentID).
			Str("kept_id", dup.KeptID).
			Str("dropped_id", dup.DroppedID).
			Msg("duplicate submission ignored")
	}

	items := make([]ResolvedAssignment, 0, len(in.Definitions))
	hidden := 0
	for _, def := range in.Definitions {
		if allowed != nil {
			if _, ok := allowed[def.ClassID]; !ok {
				continue
			}
		}
		if !def.Published() {
			hidden++
			continue
		}

		var submission *SubmissionRecord
		if record, ok := matched[def.ID]; ok {
			rec := record
			submission = &rec
		}

		status, inferred := Classify(def, submission, now)
		items = append(items, ResolvedAssignment{
			Definition: def,
			Submission: submission,
			Status:     status,
			Inferred:   inferred,
		})
	}

	if hidden > 0 {
		r.logger.Debug().Str("student_id", in.StudentID).Int("hidden", hidden).Msg("unpublished assignments skipped")
	}

	full, display := Assemble(items, r.limits)

	return Result{
		Now:        now,
		Items:      items,
		Full:       full,
		Display:    display,
		Calendar:   MarkCalendar(items, r.loc),
		Duplicates: duplicates,
		Hidden:     hidden,
	}
}
