package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/portal-hub/student-portal/internal/domain/grade"
	"github.com/portal-hub/student-portal/internal/domain/shared"
	"github.com/portal-hub/student-portal/internal/infrastructure/transport"
	"github.com/portal-hub/student-portal/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GRADE GATEWAY
// ══════════════════════════════════════════════════════════════════════════════

// GradeGateway fetches grades and correction requests, building filter and
// pagination queries and validating response shapes strictly: array-shaped
// data is never silently dropped.
type GradeGateway struct {
	client *transport.Client
	logger *logger.Logger
}

// NewGradeGateway creates a grade gateway over the given transport client.
func NewGradeGateway(client *transport.Client, log *logger.Logger) *GradeGateway {
	if log == nil {
		log = logger.Default()
	}
	return &GradeGateway{
		client: client,
		logger: log.With(logger.String("component", "grade_gateway")),
	}
}

// gradeFilterFields returns the grade filters in their fixed wire order.
func gradeFilterFields(f grade.Filter) []field {
	return []field{
		str("semester", f.Semester),
		str("courseCode", f.CourseCode),
		str("minGrade", f.MinGrade),
		str("maxGrade", f.MaxGrade),
	}
}

// correctionFilterFields returns the correction filters in their fixed wire order.
func correctionFilterFields(f grade.CorrectionFilter) []field {
	return []field{
		str("status", string(f.Status)),
		str("semester", f.Semester),
		date("dateFrom", f.DateFrom),
		date("dateTo", f.DateTo),
	}
}

// paged prepends the always-present page and limit fields.
func paged(page shared.PageRequest, filters []field) []field {
	page = page.Normalize()
	return append([]field{num("page", page.Page), num("limit", page.Limit)}, filters...)
}

// decodeArray strictly decodes a required array field. A missing or
// non-array field is a server contract violation, not an empty result.
func decodeArray[T any](raw json.RawMessage, shape string) ([]T, error) {
	if raw == nil {
		return nil, shared.NewError(shared.KindServer, shape)
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, shared.NewError(shared.KindServer, shape)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// decodePage strictly decodes a {data, pagination} page body.
func decodePage[T any](body json.RawMessage, shape string) (*shared.Paginated[T], error) {
	var resp struct {
		Data       json.RawMessage    `json:"data"`
		Pagination *shared.Pagination `json:"pagination"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.Pagination == nil {
		return nil, shared.NewError(shared.KindServer, shape)
	}
	items, err := decodeArray[T](resp.Data, shape)
	if err != nil {
		return nil, err
	}
	return &shared.Paginated[T]{Data: items, Pagination: *resp.Pagination}, nil
}

// StudentGrades fetches all grades for a student, optionally filtered.
func (g *GradeGateway) StudentGrades(ctx context.Context, studentID string, filter grade.Filter) ([]grade.Grade, error) {
	path := fmt.Sprintf("/api/grades/%s", url.PathEscape(studentID)) +
		buildQuery(gradeFilterFields(filter)...)

	var resp struct {
		Grades json.RawMessage `json:"grades"`
	}
	if err := g.client.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, g.wrap(err, "Failed to fetch grades")
	}
	return decodeArray[grade.Grade](resp.Grades, "Invalid grades response from server")
}

// StudentGradesPaginated fetches one page of a student's grades.
func (g *GradeGateway) StudentGradesPaginated(ctx context.Context, studentID string, page shared.PageRequest, filter grade.Filter) (*shared.Paginated[grade.Grade], error) {
	path := fmt.Sprintf("/api/grades/%s/paginated", url.PathEscape(studentID)) +
		buildQuery(paged(page, gradeFilterFields(filter))...)

	var body json.RawMessage
	if err := g.client.Do(ctx, http.MethodGet, path, nil, &body); err != nil {
		return nil, g.wrap(err, "Failed to fetch grades")
	}
	return decodePage[grade.Grade](body, "Invalid paginated grades response from server")
}

// GradeByID fetches a single grade. A not-found outcome is a valid empty
// result: the gateway returns nil without an error. Every other structured
// failure propagates unchanged.
func (g *GradeGateway) GradeByID(ctx context.Context, gradeID, studentID string) (*grade.Grade, error) {
	path := fmt.Sprintf("/api/grades/%s/grade/%s", url.PathEscape(studentID), url.PathEscape(gradeID))

	var resp struct {
		Grade *grade.Grade `json:"grade"`
	}
	if err := g.client.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		if shared.IsNotFound(err) {
			return nil, nil
		}
		return nil, g.wrap(err, "Failed to fetch grade")
	}

	if resp.Grade == nil {
		return nil, shared.NewError(shared.KindServer, "Invalid grade response from server")
	}
	return resp.Grade, nil
}

// SubmitCorrection posts a correction request. The payload is transmitted
// as-is; request validation against the grading policy is the caller's job.
func (g *GradeGateway) SubmitCorrection(ctx context.Context, req grade.CorrectionRequest) (*grade.Correction, error) {
	var resp struct {
		Correction *grade.Correction `json:"correction"`
	}
	err := g.client.Do(ctx, http.MethodPost, "/api/grades/corrections", req, &resp)
	if err != nil {
		if e, ok := shared.AsError(err); ok {
			switch e.Kind {
			case shared.KindDuplicate:
				return nil, shared.NewError(shared.KindDuplicateCorrection, "A correction for this grade has already been submitted")
			case shared.KindBusinessRule:
				// The server's message names the violated rule; keep it.
				return nil, shared.NewError(shared.KindCorrectionNotAllowed, e.Message).WithDetails(e.Details)
			}
			return nil, err
		}
		return nil, shared.NewError(shared.KindServer, "Failed to submit grade correction")
	}

	if resp.Correction == nil {
		return nil, shared.NewError(shared.KindServer, "Invalid correction response from server")
	}
	return resp.Correction, nil
}

// Corrections fetches all correction requests for a student.
func (g *GradeGateway) Corrections(ctx context.Context, studentID string, filter grade.CorrectionFilter) ([]grade.Correction, error) {
	path := fmt.Sprintf("/api/grades/corrections/%s", url.PathEscape(studentID)) +
		buildQuery(correctionFilterFields(filter)...)

	var resp struct {
		Corrections json.RawMessage `json:"corrections"`
	}
	if err := g.client.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, g.wrap(err, "Failed to fetch grade corrections")
	}
	return decodeArray[grade.Correction](resp.Corrections, "Invalid corrections response from server")
}

// CorrectionsPaginated fetches one page of a student's correction requests.
func (g *GradeGateway) CorrectionsPaginated(ctx context.Context, studentID string, page shared.PageRequest, filter grade.CorrectionFilter) (*shared.Paginated[grade.Correction], error) {
	path := fmt.Sprintf("/api/grades/corrections/%s/paginated", url.PathEscape(studentID)) +
		buildQuery(paged(page, correctionFilterFields(filter))...)

	var body json.RawMessage
	if err := g.client.Do(ctx, http.MethodGet, path, nil, &body); err != nil {
		return nil, g.wrap(err, "Failed to fetch grade corrections")
	}
	return decodePage[grade.Correction](body, "Invalid paginated corrections response from server")
}

// CorrectionByID fetches a single correction request, with the same
// nil-on-not-found contract as GradeByID.
func (g *GradeGateway) CorrectionByID(ctx context.Context, correctionID, studentID string) (*grade.Correction, error) {
	path := fmt.Sprintf("/api/grades/corrections/%s/correction/%s",
		url.PathEscape(studentID), url.PathEscape(correctionID))

	var resp struct {
		Correction *grade.Correction `json:"correction"`
	}
	if err := g.client.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		if shared.IsNotFound(err) {
			return nil, nil
		}
		return nil, g.wrap(err, "Failed to fetch correction")
	}

	if resp.Correction == nil {
		return nil, shared.NewError(shared.KindServer, "Invalid correction response from server")
	}
	return resp.Correction, nil
}

// CanSubmitCorrection asks the server whether a new correction may be
// submitted for the grade.
func (g *GradeGateway) CanSubmitCorrection(ctx context.Context, gradeID, studentID string) (bool, error) {
	path := fmt.Sprintf("/api/grades/%s/grade/%s/can-correct",
		url.PathEscape(studentID), url.PathEscape(gradeID))

	var resp struct {
		CanSubmit bool `json:"canSubmit"`
	}
	if err := g.client.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return false, g.wrap(err, "Failed to check correction eligibility")
	}
	return resp.CanSubmit, nil
}

// CorrectionAttempts returns how many corrections have been submitted for
// the grade so far.
func (g *GradeGateway) CorrectionAttempts(ctx context.Context, gradeID, studentID string) (int, error) {
	path := fmt.Sprintf("/api/grades/%s/grade/%s/correction-attempts",
		url.PathEscape(studentID), url.PathEscape(gradeID))

	var resp struct {
		Attempts int `json:"attempts"`
	}
	if err := g.client.Do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return 0, g.wrap(err, "Failed to fetch correction attempts")
	}
	return resp.Attempts, nil
}

// wrap passes structured failures through unchanged and converts anything
// else into a server error with an operation-specific message, so callers
// above the gateway never see an unstructured error.
func (g *GradeGateway) wrap(err error, fallback string) error {
	if _, ok := shared.AsError(err); ok {
		return err
	}
	return shared.NewError(shared.KindServer, fallback)
}
