package grade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicyPoints(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		letter string
		points float64
	}{
		{"A+", 4.0},
		{"A", 4.0},
		{"A-", 3.7},
		{"B+", 3.3},
		{"B", 3.0},
		{"B-", 2.7},
		{"C+", 2.3},
		{"C", 2.0},
		{"C-", 1.7},
		{"D+", 1.3},
		{"D", 1.0},
		{"D-", 0.7},
		{"F", 0.0},
	}
	for _, tt := range tests {
		got, ok := p.Points(tt.letter)
		assert.True(t, ok, tt.letter)
		assert.Equal(t, tt.points, got, tt.letter)
	}

	_, ok := p.Points("E")
	assert.False(t, ok)
	_, ok = p.Points("")
	assert.False(t, ok)
}

func TestQualityPoints(t *testing.T) {
	p := DefaultPolicy()

	assert.InDelta(t, 14.8, p.QualityPoints("A-", 4), 1e-9)
	assert.Equal(t, 0.0, p.QualityPoints("A", 0))
	assert.Equal(t, 0.0, p.QualityPoints("X", 3))
}

func TestGPA(t *testing.T) {
	p := DefaultPolicy()

	grades := []Grade{
		{Grade: "A-", CreditHours: 4},
		{Grade: "B+", CreditHours: 3},
		{Grade: "C", CreditHours: 2},
	}
	// (3.7*4 + 3.3*3 + 2.0*2) / 9 = 28.7 / 9
	assert.InDelta(t, 28.7/9.0, p.GPA(grades), 1e-9)
}

func TestGPASkipsUnusableRows(t *testing.T) {
	p := DefaultPolicy()

	grades := []Grade{
		{Grade: "A", CreditHours: 3},
		{Grade: "IN_PROGRESS", CreditHours: 3},
		{Grade: "B", CreditHours: 0},
	}
	assert.InDelta(t, 4.0, p.GPA(grades), 1e-9)

	assert.Equal(t, 0.0, p.GPA(nil))
	assert.Equal(t, 0.0, p.GPA([]Grade{{Grade: "??", CreditHours: 3}}))
}

func TestPassingAndEligibility(t *testing.T) {
	p := DefaultPolicy()

	assert.True(t, p.IsPassing("D"))
	assert.False(t, p.IsPassing("D-"))
	assert.False(t, p.IsPassing("F"))
	assert.False(t, p.IsPassing("Z"))

	assert.True(t, p.IsCorrectionEligible("D-"))
	assert.False(t, p.IsCorrectionEligible("F"))
	assert.False(t, p.IsCorrectionEligible("Z"))
}

func TestIsUpgrade(t *testing.T) {
	p := DefaultPolicy()

	assert.True(t, p.IsUpgrade("B", "A"))
	assert.True(t, p.IsUpgrade("B", "B+"))
	assert.False(t, p.IsUpgrade("B", "B"))
	assert.False(t, p.IsUpgrade("A", "B"))
	assert.False(t, p.IsUpgrade("Z", "A"))
	assert.False(t, p.IsUpgrade("A", "Z"))
}

func TestCustomPolicySwap(t *testing.T) {
	// A pass/fail scale with no modifiers, where F stays correctable.
	p := NewPolicy([]LetterGrade{
		{Letter: "P", Points: 4.0, Passing: true, CorrectionEligible: false},
		{Letter: "F", Points: 0.0, Passing: false, CorrectionEligible: true},
	})

	assert.True(t, p.Knows("P"))
	assert.False(t, p.Knows("A"))
	assert.True(t, p.IsCorrectionEligible("F"))
	assert.False(t, p.IsCorrectionEligible("P"))
	assert.True(t, p.IsUpgrade("F", "P"))
}

func TestDaysSinceSubmission(t *testing.T) {
	submitted := time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, 1, DaysSinceSubmission(submitted, time.Date(2024, 3, 11, 0, 1, 0, 0, time.UTC)))
	assert.Equal(t, 0, DaysSinceSubmission(submitted, time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, 5, DaysSinceSubmission(submitted, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)))

	// Clock skew: a submission date in the future clamps to zero.
	assert.Equal(t, 0, DaysSinceSubmission(submitted, time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)))
}

func TestCorrectionRequestValidate(t *testing.T) {
	p := DefaultPolicy()

	valid := CorrectionRequest{
		GradeID:        "grade-1",
		StudentID:      "stu-1",
		RequestedGrade: "A",
		Reason:         "The final exam was graded with the wrong key",
	}
	assert.NoError(t, valid.Validate(p))

	missingReason := valid
	missingReason.Reason = "  "
	assert.Error(t, missingReason.Validate(p))

	unknownGrade := valid
	unknownGrade.RequestedGrade = "A++"
	err := unknownGrade.Validate(p)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid-grade-data")
}
