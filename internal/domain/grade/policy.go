package grade

import "time"

// MaxCorrectionAttempts is the cap on correction requests per grade.
const MaxCorrectionAttempts = 3

// LetterGrade describes one row of a grading policy table: the numeric value
// of a letter grade and how it participates in the correction workflow.
type LetterGrade struct {
	Letter string

	// Points on the grading scale (commonly 4.0 max).
	Points float64

	// Passing marks the grade as a passing result.
	Passing bool

	// CorrectionEligible marks the grade as open to upgrade corrections.
	// Policies differ here (some exclude F entirely), so this is table data,
	// not a branch in code.
	CorrectionEligible bool
}

// Policy is a grading policy: an ordered table of letter grades, best first.
// It is configuration data so deployments can swap scales without touching
// the computation helpers.
type Policy struct {
	table []LetterGrade
	index map[string]int
}

// NewPolicy builds a policy from an ordered table, best grade first.
func NewPolicy(table []LetterGrade) Policy {
	index := make(map[string]int, len(table))
	for i, lg := range table {
		index[lg.Letter] = i
	}
	return Policy{table: table, index: index}
}

// DefaultPolicy returns the standard 4.0 scale with +/- modifiers.
// F is not eligible for upgrade corrections under this policy.
func DefaultPolicy() Policy {
	return NewPolicy([]LetterGrade{
		{Letter: "A+", Points: 4.0, Passing: true, CorrectionEligible: true},
		{Letter: "A", Points: 4.0, Passing: true, CorrectionEligible: true},
		{Letter: "A-", Points: 3.7, Passing: true, CorrectionEligible: true},
		{Letter: "B+", Points: 3.3, Passing: true, CorrectionEligible: true},
		{Letter: "B", Points: 3.0, Passing: true, CorrectionEligible: true},
		{Letter: "B-", Points: 2.7, Passing: true, CorrectionEligible: true},
		{Letter: "C+", Points: 2.3, Passing: true, CorrectionEligible: true},
		{Letter: "C", Points: 2.0, Passing: true, CorrectionEligible: true},
		{Letter: "C-", Points: 1.7, Passing: true, CorrectionEligible: true},
		{Letter: "D+", Points: 1.3, Passing: true, CorrectionEligible: true},
		{Letter: "D", Points: 1.0, Passing: true, CorrectionEligible: true},
		{Letter: "D-", Points: 0.7, Passing: false, CorrectionEligible: true},
		{Letter: "F", Points: 0.0, Passing: false, CorrectionEligible: false},
	})
}

// Knows reports whether letter appears in the policy table.
func (p Policy) Knows(letter string) bool {
	_, ok := p.index[letter]
	return ok
}

// Points returns the numeric value of a letter grade. Unknown letters map
// to 0 with ok=false.
func (p Policy) Points(letter string) (float64, bool) {
	i, ok := p.index[letter]
	if !ok {
		return 0, false
	}
	return p.table[i].Points, true
}

// QualityPoints returns grade points multiplied by credit hours.
func (p Policy) QualityPoints(letter string, creditHours int) float64 {
	points, ok := p.Points(letter)
	if !ok || creditHours <= 0 {
		return 0
	}
	return points * float64(creditHours)
}

// GPA computes the credit-weighted grade point average over grades whose
// letters the policy knows. Unknown letters and non-positive credit hours
// are skipped rather than poisoning the average.
func (p Policy) GPA(grades []Grade) float64 {
	var quality float64
	var hours int
	for _, g := range grades {
		if _, ok := p.Points(g.Grade); !ok || g.CreditHours <= 0 {
			continue
		}
		quality += p.QualityPoints(g.Grade, g.CreditHours)
		hours += g.CreditHours
	}
	if hours == 0 {
		return 0
	}
	return quality / float64(hours)
}

// IsPassing reports whether letter is a passing grade under the policy.
func (p Policy) IsPassing(letter string) bool {
	i, ok := p.index[letter]
	return ok && p.table[i].Passing
}

// IsCorrectionEligible reports whether a grade with this letter may be the
// subject of an upgrade correction.
func (p Policy) IsCorrectionEligible(letter string) bool {
	i, ok := p.index[letter]
	return ok && p.table[i].CorrectionEligible
}

// IsUpgrade reports whether requesting `to` is an improvement over `from`.
// The table is ordered best first, so a lower index is a better grade.
func (p Policy) IsUpgrade(from, to string) bool {
	fi, ok := p.index[from]
	if !ok {
		return false
	}
	ti, ok := p.index[to]
	if !ok {
		return false
	}
	return ti < fi
}

// DaysSinceSubmission returns the calendar-day difference between the
// submission date and now. Partial days do not count: a correction submitted
// at 23:59 is one day old at 00:01.
func DaysSinceSubmission(submitted, now time.Time) int {
	a := startOfDay(submitted)
	b := startOfDay(now)
	days := int(b.Sub(a).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
