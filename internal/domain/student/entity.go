// Package student contains the student domain model. Students are created
// server-side; the client only reads and transmits them.
package student

import (
	"strings"

	"github.com/portal-hub/student-portal/internal/domain/shared"
)

// Student is a portal account holder as returned by the API.
type Student struct {
	ID        string `json:"id"`
	StudentID string `json:"studentId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// FullName returns the display name for the student.
func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// NormalizeEmail trims surrounding whitespace and lowercases an email
// address. Every email sent to the API goes through this first, so the
// server never sees two casings of the same address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Registration is the payload for creating a new student account.
type Registration struct {
	StudentID string `json:"studentId"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Normalize trims the identifying fields and normalizes the email.
// The password is transmitted as entered.
func (r Registration) Normalize() Registration {
	r.StudentID = strings.TrimSpace(r.StudentID)
	r.Email = NormalizeEmail(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	return r
}

// Validate checks the registration payload before it is sent.
func (r Registration) Validate() error {
	switch {
	case strings.TrimSpace(r.StudentID) == "":
		return shared.NewError(shared.KindValidation, "student ID is required").WithField("studentId")
	case strings.TrimSpace(r.Email) == "":
		return shared.NewError(shared.KindValidation, "email is required").WithField("email")
	case !strings.Contains(NormalizeEmail(r.Email), "@"):
		return shared.NewError(shared.KindValidation, "email is not valid").WithField("email")
	case r.Password == "":
		return shared.NewError(shared.KindValidation, "password is required").WithField("password")
	case strings.TrimSpace(r.FirstName) == "":
		return shared.NewError(shared.KindValidation, "first name is required").WithField("firstName")
	case strings.TrimSpace(r.LastName) == "":
		return shared.NewError(shared.KindValidation, "last name is required").WithField("lastName")
	}
	return nil
}
