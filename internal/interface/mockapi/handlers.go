package mockapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/portal-hub/student-portal/internal/domain/grade"
	"github.com/portal-hub/student-portal/internal/domain/shared"
	"github.com/portal-hub/student-portal/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// AUTH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, shared.KindValidation, "Invalid login payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recordID, ok := s.byEmail[req.Email]
	if !ok || s.passwords[req.Email] != req.Password {
		s.fail(w, http.StatusBadRequest, shared.KindValidation, "Invalid email or password")
		return
	}

	st := s.students[recordID]
	s.ok(w, map[string]any{"student": st, "token": s.issueToken(recordID)})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg student.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		s.fail(w, http.StatusBadRequest, shared.KindValidation, "Invalid registration payload")
		return
	}
	if reg.StudentID == "" || reg.Email == "" || reg.Password == "" {
		s.fail(w, http.StatusBadRequest, shared.KindValidation, "studentId, email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[reg.Email]; exists {
		s.fail(w, http.StatusConflict, shared.KindDuplicate, "A user with this email already exists")
		return
	}
	for _, st := range s.students {
		if st.StudentID == reg.StudentID {
			s.fail(w, http.StatusConflict, shared.KindDuplicate, "A user with this student ID already exists")
			return
		}
	}

	s.nextID++
	st := student.Student{
		ID:        fmt.Sprintf("stu-%d", len(s.students)+1),
		StudentID: reg.StudentID,
		Email:     reg.Email,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
	}
	s.students[st.ID] = st
	s.byEmail[st.Email] = st.ID
	s.passwords[st.Email] = reg.Password

	s.ok(w, map[string]any{"student": st, "token": s.issueToken(st.ID)})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.authenticate(r)
	if !ok {
		s.fail(w, http.StatusUnauthorized, shared.KindAuthentication, "Invalid or expired token")
		return
	}
	s.ok(w, map[string]any{"student": st})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, shared.KindValidation, "Invalid refresh payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recordID, ok := s.tokens[req.Token]
	if !ok {
		s.fail(w, http.StatusUnauthorized, shared.KindAuthentication, "Unknown token")
		return
	}
	delete(s.tokens, req.Token)

	s.ok(w, map[string]any{"student": s.students[recordID], "token": s.issueToken(recordID)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	const prefix = "Bearer "
	if header := r.Header.Get("Authorization"); len(header) > len(prefix) {
		delete(s.tokens, header[len(prefix):])
	}
	s.ok(w, map[string]any{})
}

// ══════════════════════════════════════════════════════════════════════════════
// GRADE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// requireOwner authenticates the request and checks that the path's student
// segment belongs to the caller.
func (s *Server) requireOwner(w http.ResponseWriter, r *http.Request) (student.Student, bool) {
	st, ok := s.authenticate(r)
	if !ok {
		s.fail(w, http.StatusUnauthorized, shared.KindAuthentication, "Invalid or expired token")
		return student.Student{}, false
	}
	if pathID := chi.URLParam(r, "studentID"); pathID != st.ID {
		s.fail(w, http.StatusForbidden, shared.KindAuthorization, "You may only access your own records")
		return student.Student{}, false
	}
	return st, true
}

func (s *Server) studentGrades(studentID string, f grade.Filter) []grade.Grade {
	var out []grade.Grade
	for _, g := range s.grades {
		if g.StudentID != studentID {
			continue
		}
		if f.Semester != "" && g.Semester != f.Semester {
			continue
		}
		if f.CourseCode != "" && g.CourseCode != f.CourseCode {
			continue
		}
		if f.MinGrade != "" && s.policy.IsUpgrade(g.Grade, f.MinGrade) {
			continue // grade is below the requested minimum
		}
		if f.MaxGrade != "" && s.policy.IsUpgrade(f.MaxGrade, g.Grade) {
			continue // grade is above the requested maximum
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func gradeFilterFromQuery(r *http.Request) grade.Filter {
	q := r.URL.Query()
	return grade.Filter{
		Semester:   q.Get("semester"),
		CourseCode: q.Get("courseCode"),
		MinGrade:   q.Get("minGrade"),
		MaxGrade:   q.Get("maxGrade"),
	}
}

func (s *Server) handleListGrades(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	grades := s.studentGrades(st.ID, gradeFilterFromQuery(r))
	if grades == nil {
		grades = []grade.Grade{}
	}
	s.ok(w, map[string]any{"grades": grades})
}

func (s *Server) handleListGradesPaginated(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	grades := s.studentGrades(st.ID, gradeFilterFromQuery(r))
	page, pagination := paginate(r, len(grades))
	s.ok(w, map[string]any{
		"data":       grades[page.from:page.to],
		"pagination": pagination,
	})
}

func (s *Server) handleGetGrade(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	g, ok := s.grades[chi.URLParam(r, "gradeID")]
	if !ok || g.StudentID != st.ID {
		s.fail(w, http.StatusNotFound, shared.KindNotFound, "Grade not found")
		return
	}
	s.ok(w, map[string]any{"grade": g})
}

func (s *Server) attemptsFor(gradeID string) int {
	n := 0
	for _, c := range s.corrections {
		if c.GradeID == gradeID {
			n++
		}
	}
	return n
}

func (s *Server) handleCanCorrect(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	g, ok := s.grades[chi.URLParam(r, "gradeID")]
	if !ok || g.StudentID != st.ID {
		s.fail(w, http.StatusNotFound, shared.KindNotFound, "Grade not found")
		return
	}

	canSubmit := s.policy.IsCorrectionEligible(g.Grade) &&
		s.attemptsFor(g.ID) < grade.MaxCorrectionAttempts
	s.ok(w, map[string]any{"canSubmit": canSubmit})
}

func (s *Server) handleCorrectionAttempts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	g, ok := s.grades[chi.URLParam(r, "gradeID")]
	if !ok || g.StudentID != st.ID {
		s.fail(w, http.StatusNotFound, shared.KindNotFound, "Grade not found")
		return
	}
	s.ok(w, map[string]any{"attempts": s.attemptsFor(g.ID)})
}

func (s *Server) handleSubmitCorrection(w http.ResponseWriter, r *http.Request) {
	var req grade.CorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, shared.KindValidation, "Invalid correction payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.authenticate(r)
	if !ok {
		s.fail(w, http.StatusUnauthorized, shared.KindAuthentication, "Invalid or expired token")
		return
	}

	g, ok := s.grades[req.GradeID]
	if !ok || g.StudentID != st.ID {
		s.fail(w, http.StatusNotFound, shared.KindNotFound, "Grade not found")
		return
	}
	if !s.policy.IsCorrectionEligible(g.Grade) {
		s.fail(w, http.StatusUnprocessableEntity, shared.KindBusinessRule, "This grade is not eligible for correction")
		return
	}
	if s.attemptsFor(g.ID) >= grade.MaxCorrectionAttempts {
		s.fail(w, http.StatusUnprocessableEntity, shared.KindBusinessRule, "Maximum corrections reached")
		return
	}
	for _, c := range s.corrections {
		if c.GradeID == g.ID && c.Status == grade.CorrectionPending {
			s.fail(w, http.StatusConflict, shared.KindDuplicate, "A correction for this grade is already pending")
			return
		}
	}

	s.nextID++
	correction := grade.Correction{
		ID:                fmt.Sprintf("corr-%d", s.nextID),
		GradeID:           g.ID,
		StudentID:         st.ID,
		RequestedGrade:    req.RequestedGrade,
		Reason:            req.Reason,
		SupportingDetails: req.SupportingDetails,
		Status:            grade.CorrectionPending,
		SubmissionDate:    time.Now().UTC(),
	}
	s.corrections[correction.ID] = correction
	s.ok(w, map[string]any{"correction": correction})
}

func (s *Server) studentCorrections(studentID string, f grade.CorrectionFilter) []grade.Correction {
	var out []grade.Correction
	for _, c := range s.corrections {
		if c.StudentID != studentID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Semester != "" {
			if g, ok := s.grades[c.GradeID]; !ok || g.Semester != f.Semester {
				continue
			}
		}
		if f.DateFrom != nil && c.SubmissionDate.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && c.SubmissionDate.After(*f.DateTo) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func correctionFilterFromQuery(r *http.Request) grade.CorrectionFilter {
	q := r.URL.Query()
	f := grade.CorrectionFilter{
		Status:   grade.CorrectionStatus(q.Get("status")),
		Semester: q.Get("semester"),
	}
	if t, err := time.Parse(time.RFC3339, q.Get("dateFrom")); err == nil {
		f.DateFrom = &t
	}
	if t, err := time.Parse(time.RFC3339, q.Get("dateTo")); err == nil {
		f.DateTo = &t
	}
	return f
}

func (s *Server) handleListCorrections(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	corrections := s.studentCorrections(st.ID, correctionFilterFromQuery(r))
	if corrections == nil {
		corrections = []grade.Correction{}
	}
	s.ok(w, map[string]any{"corrections": corrections})
}

func (s *Server) handleListCorrectionsPaginated(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	corrections := s.studentCorrections(st.ID, correctionFilterFromQuery(r))
	page, pagination := paginate(r, len(corrections))
	s.ok(w, map[string]any{
		"data":       corrections[page.from:page.to],
		"pagination": pagination,
	})
}

func (s *Server) handleGetCorrection(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.requireOwner(w, r)
	if !ok {
		return
	}
	c, ok := s.corrections[chi.URLParam(r, "correctionID")]
	if !ok || c.StudentID != st.ID {
		s.fail(w, http.StatusNotFound, shared.KindNotFound, "Correction not found")
		return
	}
	s.ok(w, map[string]any{"correction": c})
}

// ══════════════════════════════════════════════════════════════════════════════
// PAGINATION
// ══════════════════════════════════════════════════════════════════════════════

type pageWindow struct {
	from, to int
}

func paginate(r *http.Request, total int) (pageWindow, shared.Pagination) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	totalPages := (total + limit - 1) / limit
	from := (page - 1) * limit
	if from > total {
		from = total
	}
	to := from + limit
	if to > total {
		to = total
	}

	return pageWindow{from: from, to: to}, shared.Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
