// Package mockapi implements a local, in-memory mock of the student portal
// API for development and CLI smoke-testing. It speaks the documented
// contract: the {success, data, error} envelope, bearer-token auth, and the
// documented status codes. It deliberately keeps no durable state so it can
// run with zero setup.
package mockapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/portal-hub/student-portal/internal/domain/grade"
	"github.com/portal-hub/student-portal/internal/domain/shared"
	"github.com/portal-hub/student-portal/internal/domain/student"
	"github.com/portal-hub/student-portal/pkg/logger"
)

// Server is the mock portal API.
type Server struct {
	log    *logger.Logger
	policy grade.Policy

	mu          sync.Mutex
	students    map[string]student.Student // by student record ID
	passwords   map[string]string          // email -> password
	byEmail     map[string]string          // email -> record ID
	tokens      map[string]string          // token -> record ID
	grades      map[string]grade.Grade
	corrections map[string]grade.Correction
	nextID      int
}

// New creates a mock server seeded with demo data.
func New(log *logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	s := &Server{
		log:         log.With(logger.String("component", "mockapi")),
		policy:      grade.DefaultPolicy(),
		students:    make(map[string]student.Student),
		passwords:   make(map[string]string),
		byEmail:     make(map[string]string),
		tokens:      make(map[string]string),
		grades:      make(map[string]grade.Grade),
		corrections: make(map[string]grade.Correction),
	}
	s.seed()
	return s
}

// Router builds the chi router for the documented HTTP surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/register", s.handleRegister)
		r.Get("/me", s.handleMe)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/logout", s.handleLogout)
	})

	r.Route("/api/grades", func(r chi.Router) {
		r.Post("/corrections", s.handleSubmitCorrection)
		r.Get("/corrections/{studentID}", s.handleListCorrections)
		r.Get("/corrections/{studentID}/paginated", s.handleListCorrectionsPaginated)
		r.Get("/corrections/{studentID}/correction/{correctionID}", s.handleGetCorrection)
		r.Get("/{studentID}", s.handleListGrades)
		r.Get("/{studentID}/paginated", s.handleListGradesPaginated)
		r.Get("/{studentID}/grade/{gradeID}", s.handleGetGrade)
		r.Get("/{studentID}/grade/{gradeID}/can-correct", s.handleCanCorrect)
		r.Get("/{studentID}/grade/{gradeID}/correction-attempts", s.handleCorrectionAttempts)
	})

	return r
}

// ══════════════════════════════════════════════════════════════════════════════
// ENVELOPE HELPERS
// ══════════════════════════════════════════════════════════════════════════════

type envelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   *envelopeError `json:"error,omitempty"`
}

type envelopeError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (s *Server) ok(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func (s *Server) fail(w http.ResponseWriter, status int, kind shared.Kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{
		Success: false,
		Error:   &envelopeError{Code: kind.String(), Message: message},
	})
}

// seed loads the demo account: demo@example.edu / password, with a few
// recorded grades.
func (s *Server) seed() {
	demo := student.Student{
		ID:        "stu-1",
		StudentID: "S1000001",
		Email:     "demo@example.edu",
		FirstName: "Dana",
		LastName:  "Demo",
	}
	s.students[demo.ID] = demo
	s.byEmail[demo.Email] = demo.ID
	s.passwords[demo.Email] = "password"

	seedGrades := []grade.Grade{
		{ID: "grade-1", StudentID: demo.ID, CourseCode: "CS101", CourseName: "Intro to Computer Science", Grade: "A-", CreditHours: 4, Semester: "Fall 2023"},
		{ID: "grade-2", StudentID: demo.ID, CourseCode: "MATH201", CourseName: "Linear Algebra", Grade: "B+", CreditHours: 3, Semester: "Fall 2023"},
		{ID: "grade-3", StudentID: demo.ID, CourseCode: "ENG102", CourseName: "Academic Writing", Grade: "C", CreditHours: 2, Semester: "Spring 2024"},
	}
	for _, g := range seedGrades {
		s.grades[g.ID] = g
	}
}

func (s *Server) issueToken(recordID string) string {
	token := newSignedToken(recordID, time.Now().Add(time.Hour))
	s.tokens[token] = recordID
	return token
}

// authenticate resolves the bearer token on a request to a student record.
func (s *Server) authenticate(r *http.Request) (student.Student, bool) {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return student.Student{}, false
	}
	recordID, ok := s.tokens[header[len(prefix):]]
	if !ok {
		return student.Student{}, false
	}
	st, ok := s.students[recordID]
	return st, ok
}
