// Package grade contains the grade and grade-correction domain model plus the
// pure grading-policy helpers the presentation layer computes with.
package grade

import (
	"strings"
	"time"

	"github.com/portal-hub/student-portal/internal/domain/shared"
)

// Grade is a single recorded course result. Grades are immutable from the
// client's perspective: only an approved correction can change one, and that
// happens server-side.
type Grade struct {
	ID          string `json:"id"`
	StudentID   string `json:"studentId"`
	CourseCode  string `json:"courseCode"`
	CourseName  string `json:"courseName"`
	Grade       string `json:"grade"`
	CreditHours int    `json:"creditHours"`
	Semester    string `json:"semester"`
}

// CorrectionStatus is the review state of a correction request. Transitions
// out of pending happen only on the server; the client is read-only here.
type CorrectionStatus string

const (
	CorrectionPending  CorrectionStatus = "pending"
	CorrectionApproved CorrectionStatus = "approved"
	CorrectionRejected CorrectionStatus = "rejected"
)

// IsValid reports whether s is a known review state.
func (s CorrectionStatus) IsValid() bool {
	switch s {
	case CorrectionPending, CorrectionApproved, CorrectionRejected:
		return true
	}
	return false
}

// Correction is a student-submitted request to change a recorded grade.
type Correction struct {
	ID                string           `json:"id"`
	GradeID           string           `json:"gradeId"`
	StudentID         string           `json:"studentId"`
	RequestedGrade    string           `json:"requestedGrade"`
	Reason            string           `json:"reason"`
	SupportingDetails string           `json:"supportingDetails,omitempty"`
	Status            CorrectionStatus `json:"status"`
	SubmissionDate    time.Time        `json:"submissionDate"`
	ReviewDate        *time.Time       `json:"reviewDate,omitempty"`
}

// CorrectionRequest is the payload for submitting a new correction.
type CorrectionRequest struct {
	GradeID           string `json:"gradeId"`
	StudentID         string `json:"studentId"`
	RequestedGrade    string `json:"requestedGrade"`
	Reason            string `json:"reason"`
	SupportingDetails string `json:"supportingDetails,omitempty"`
}

// Validate checks the request against the grading policy before submission.
func (r CorrectionRequest) Validate(policy Policy) error {
	switch {
	case strings.TrimSpace(r.GradeID) == "":
		return shared.NewError(shared.KindValidation, "grade ID is required").WithField("gradeId")
	case strings.TrimSpace(r.StudentID) == "":
		return shared.NewError(shared.KindValidation, "student ID is required").WithField("studentId")
	case strings.TrimSpace(r.Reason) == "":
		return shared.NewError(shared.KindValidation, "a reason is required").WithField("reason")
	}
	if !policy.Knows(r.RequestedGrade) {
		return shared.NewErrorf(shared.KindInvalidGradeData, "unknown grade %q", r.RequestedGrade).
			WithField("requestedGrade")
	}
	return nil
}

// Filter narrows a grade listing. Zero-valued fields are omitted from the
// request entirely; filters are optional and additive.
type Filter struct {
	Semester   string
	CourseCode string
	MinGrade   string
	MaxGrade   string
}

// CorrectionFilter narrows a correction listing.
type CorrectionFilter struct {
	Status   CorrectionStatus
	Semester string
	DateFrom *time.Time
	DateTo   *time.Time
}
