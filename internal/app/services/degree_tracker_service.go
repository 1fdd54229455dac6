package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/degreetracker/internal/app/models"
	"github.com/yigit/degreetracker/internal/app/models/dto"
	"github.com/yigit/degreetracker/internal/app/repositories"
	"github.com/yigit/degreetracker/internal/pkg/apperrors"
	"github.com/yigit/degreetracker/internal/pkg/validation"
	"golang.org/x/sync/errgroup"
)

// Action failure messages shown to the student
const (
	msgSaveFailed          = "Failed to save changes"
	msgRemoveFailed        = "Failed to remove course"
	msgLoadFailed          = "Failed to load degree tracker"
	msgMissingRemoveFields = "Missing course or requirement ID"
)

// StudentStore reads student records
type StudentStore interface {
	GetStudentByUserID(ctx context.Context, userID int64) (*models.Student, error)
}

// ProgramStore reads programs with their requirement rows
type ProgramStore interface {
	GetProgramWithRequirements(ctx context.Context, programID int64) (*models.Program, []models.RequirementRow, error)
}

// CourseStore reads courses, prerequisite edges and pool matches
type CourseStore interface {
	GetCoursesByIDs(ctx context.Context, ids []int64) ([]models.Course, error)
	GetPrerequisites(ctx context.Context, courseIDs []int64) ([]models.CoursePrerequisite, error)
	FindPoolCourseIDs(ctx context.Context, levels []models.CourseLevel, anyFaculty bool, departments []string) ([]int64, error)
}

// StudentCourseStore reads and writes a student's course records
type StudentCourseStore interface {
	GetByStudentID(ctx context.Context, studentID int64) ([]models.StudentCourseRow, error)
	ReplaceAll(ctx context.Context, studentID int64, records []models.StudentCourse) error
	Delete(ctx context.Context, studentID, courseID int64, requirementID string) error
}

// DegreeTrackerService resolves a student's program, courses and records, and applies grade edits
type DegreeTrackerService struct {
	students       StudentStore
	programs       ProgramStore
	courses        CourseStore
	studentCourses StudentCourseStore
	newID          func() string
	logger         zerolog.Logger
}

// NewDegreeTrackerService creates a new DegreeTrackerService
func NewDegreeTrackerService(
	students StudentStore,
	programs ProgramStore,
	courses CourseStore,
	studentCourses StudentCourseStore,
	logger zerolog.Logger,
) *DegreeTrackerService {
	return &DegreeTrackerService{
		students:       students,
		programs:       programs,
		courses:        courses,
		studentCourses: studentCourses,
		newID:          uuid.NewString,
		logger:         logger,
	}
}

// ResolveStudent finds the student record of the caller
func (s *DegreeTrackerService) ResolveStudent(ctx context.Context, identity *models.Identity) (*models.Student, error) {
	if identity == nil || identity.UserID <= 0 {
		return nil, apperrors.ErrUnauthenticated
	}

	student, err := s.students.GetStudentByUserID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("resolve student: %w", err)
	}
	return student, nil
}

// ResolveProgram loads the program with its requirements in position order, each requirement's
// details decoded
func (s *DegreeTrackerService) ResolveProgram(ctx context.Context, programID int64) (*models.Program, error) {
	program, rows, err := s.programs.GetProgramWithRequirements(ctx, programID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrProgramNotFound
		}
		return nil, fmt.Errorf("resolve program: %w", err)
	}
	if len(rows) == 0 {
		s.logger.Warn().Int64("programID", programID).Msg("Program has no requirements")
		return nil, apperrors.ErrProgramHasNoRequirements
	}

	program.Requirements = make([]models.ProgramRequirement, 0, len(rows))
	for _, row := range rows {
		details, err := models.ParseRequirementDetails(row.RawDetails)
		if err != nil {
			s.logger.Error().Err(err).Str("requirementID", row.ID).Msg("Malformed requirement details")
			return nil, fmt.Errorf("requirement %s: %w", row.ID, err)
		}
		program.Requirements = append(program.Requirements, models.ProgramRequirement{
			ID:        row.ID,
			ProgramID: row.ProgramID,
			Type:      row.Type,
			Level:     row.Level,
			Credits:   row.Credits,
			Details:   details,
		})
	}
	return program, nil
}

// ResolveCourses returns the courses for ids, each with its prerequisite list.
// Course rows and prerequisite edges are read concurrently.
func (s *DegreeTrackerService) ResolveCourses(ctx context.Context, ids []int64) ([]models.CourseWithPrerequisites, error) {
	if len(ids) == 0 {
		return []models.CourseWithPrerequisites{}, nil
	}

	var (
		courses []models.Course
		edges   []models.CoursePrerequisite
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		courses, err = s.courses.GetCoursesByIDs(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		edges, err = s.courses.GetPrerequisites(gctx, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolve courses: %w", err)
	}

	prereqs := make(map[int64][]models.PrerequisiteSummary, len(courses))
	for _, e := range edges {
		prereqs[e.CourseID] = append(prereqs[e.CourseID], models.PrerequisiteSummary{
			ID:   e.PrerequisiteID,
			Code: e.PrerequisiteCode,
			Name: e.PrerequisiteName,
		})
	}

	result := make([]models.CourseWithPrerequisites, 0, len(courses))
	for _, c := range courses {
		list := prereqs[c.ID]
		if list == nil {
			list = []models.PrerequisiteSummary{}
		}
		result = append(result, models.CourseWithPrerequisites{Course: c, Prerequisites: list})
	}
	return result, nil
}

// ResolveElectives matches every POOL requirement against the course catalogue and resolves
// the matched courses. Duplicates across pools are kept.
func (s *DegreeTrackerService) ResolveElectives(ctx context.Context, requirements []models.ProgramRequirement) ([]models.CourseWithPrerequisites, error) {
	pools := make([]models.RequirementDetails, 0)
	for _, req := range requirements {
		if req.Type == models.RequirementPool {
			pools = append(pools, req.Details)
		}
	}
	if len(pools) == 0 {
		return []models.CourseWithPrerequisites{}, nil
	}

	matches := make([][]int64, len(pools))
	g, gctx := errgroup.WithContext(ctx)
	for i, pool := range pools {
		i, pool := i, pool
		g.Go(func() error {
			var names []string
			if pool.FacultyPool != nil {
				names = pool.FacultyPool.Names
			}
			ids, err := s.courses.FindPoolCourseIDs(gctx, pool.PoolLevels(), pool.AnyFaculty(), names)
			if err != nil {
				return err
			}
			matches[i] = ids
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolve electives: %w", err)
	}

	ids := make([]int64, 0)
	for _, m := range matches {
		ids = append(ids, m...)
	}
	return s.ResolveCourses(ctx, ids)
}

// LoadStudentRecords returns the student's records keyed by course ID.
// When a course is recorded more than once, the later row wins.
func (s *DegreeTrackerService) LoadStudentRecords(ctx context.Context, studentID int64) (map[int64]models.StudentGrade, error) {
	rows, err := s.studentCourses.GetByStudentID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load student records: %w", err)
	}

	records := make(map[int64]models.StudentGrade, len(rows))
	for _, row := range rows {
		if prev, ok := records[row.CourseID]; ok {
			s.logger.Warn().
				Int64("studentID", studentID).
				Int64("courseID", row.CourseID).
				Interface("replacedRequirementID", prev.RequirementID).
				Msg("Course recorded more than once, keeping the later record")
		}
		records[row.CourseID] = models.StudentGrade{
			Grade:         row.Grade,
			RequirementID: row.RequirementID,
			Course:        row.Course,
		}
	}
	return records, nil
}

// requiredCourseIDs is the union of the course lists of CREDITS requirements, first occurrence order
func requiredCourseIDs(requirements []models.ProgramRequirement) []int64 {
	seen := make(map[int64]bool)
	ids := make([]int64, 0)
	for _, req := range requirements {
		if req.Type != models.RequirementCredits || !req.Details.HasCourseList() {
			continue
		}
		for _, id := range req.Details.Courses {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// Load builds the degree tracker view for the caller
func (s *DegreeTrackerService) Load(ctx context.Context, identity *models.Identity) (*models.DegreeTrackerView, error) {
	student, err := s.ResolveStudent(ctx, identity)
	if err != nil {
		return nil, s.loadError(err)
	}

	program, err := s.ResolveProgram(ctx, student.ProgramID)
	if err != nil {
		return nil, s.loadError(err)
	}

	view := &models.DegreeTrackerView{
		Program:      *program,
		Requirements: program.Requirements,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		view.ProgramCourses, err = s.ResolveCourses(gctx, requiredCourseIDs(program.Requirements))
		return err
	})
	g.Go(func() error {
		var err error
		view.ElectiveCourses, err = s.ResolveElectives(gctx, program.Requirements)
		return err
	})
	g.Go(func() error {
		var err error
		view.StudentCourses, err = s.LoadStudentRecords(gctx, student.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.loadError(err)
	}

	s.logger.Debug().
		Int64("studentID", student.ID).
		Int("programCourses", len(view.ProgramCourses)).
		Int("electiveCourses", len(view.ElectiveCourses)).
		Int("studentCourses", len(view.StudentCourses)).
		Msg("Degree tracker loaded")

	return view, nil
}

// loadError passes known failures through and hides store failures behind a generic message
func (s *DegreeTrackerService) loadError(err error) error {
	if apperrors.Is(err, apperrors.ErrUnauthenticated, apperrors.ErrResourceNotFound) {
		return err
	}
	s.logger.Error().Err(err).Msg("Error loading degree tracker")
	return apperrors.NewPersistenceError(msgLoadFailed, err)
}

// SaveChanges replaces all of the caller's course records with the entries that carry a grade.
// The delete and the inserts commit together or not at all.
func (s *DegreeTrackerService) SaveChanges(ctx context.Context, identity *models.Identity, entries []dto.CourseEntry) error {
	student, err := s.ResolveStudent(ctx, identity)
	if err != nil {
		return s.actionError(err, msgSaveFailed)
	}

	records := make([]models.StudentCourse, 0, len(entries))
	for _, entry := range entries {
		if err := validation.Struct(entry); err != nil {
			return apperrors.NewValidationError(fmt.Sprintf("Invalid entry for course %d: %s",
				entry.CourseID, dto.HandleValidationError(err).Message))
		}
		if entry.Grade == "" {
			continue
		}

		record := models.StudentCourse{
			ID:        s.newID(),
			StudentID: student.ID,
			CourseID:  entry.CourseID,
			Grade:     entry.Grade,
		}
		if entry.RequirementID != "" {
			requirementID := entry.RequirementID
			record.RequirementID = &requirementID
		}
		records = append(records, record)
	}

	if err := s.studentCourses.ReplaceAll(ctx, student.ID, records); err != nil {
		return s.actionError(err, msgSaveFailed)
	}

	s.logger.Info().Int64("studentID", student.ID).Int("records", len(records)).Msg("Student courses saved")
	return nil
}

// RemoveCourse deletes the caller's record of a course under a requirement.
// Removing a record that does not exist succeeds.
func (s *DegreeTrackerService) RemoveCourse(ctx context.Context, identity *models.Identity, req dto.RemoveCourseRequest) error {
	student, err := s.ResolveStudent(ctx, identity)
	if err != nil {
		return s.actionError(err, msgRemoveFailed)
	}

	if req.CourseID == "" || req.RequirementID == "" {
		return apperrors.NewValidationError(msgMissingRemoveFields)
	}
	courseID, err := strconv.ParseInt(req.CourseID, 10, 64)
	if err != nil || courseID <= 0 {
		return apperrors.NewValidationError(fmt.Sprintf("Invalid course ID %q", req.CourseID))
	}
	if err := validation.Struct(req); err != nil {
		return apperrors.NewValidationError(dto.HandleValidationError(err).Message)
	}

	if err := s.studentCourses.Delete(ctx, student.ID, courseID, req.RequirementID); err != nil {
		return s.actionError(err, msgRemoveFailed)
	}

	s.logger.Info().Int64("studentID", student.ID).Int64("courseID", courseID).Msg("Student course removed")
	return nil
}

// actionError keeps auth, not-found and validation failures and turns anything else into a
// persistence failure with the given message
func (s *DegreeTrackerService) actionError(err error, message string) error {
	if apperrors.Is(err, apperrors.ErrUnauthenticated, apperrors.ErrResourceNotFound, apperrors.ErrValidationFailed, apperrors.ErrConflict) {
		return err
	}
	s.logger.Error().Err(err).Msg(message)
	return apperrors.NewPersistenceError(message, err)
}
