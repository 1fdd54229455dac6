package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/degreetracker/internal/app/models"
	"github.com/yigit/degreetracker/internal/pkg/logger"
)

// CourseRepository handles course and prerequisite reads
type CourseRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db DBTX) *CourseRepository {
	return &CourseRepository{db: db, sb: psql}
}

// GetCoursesByIDs returns the course rows for the given IDs in store order
func (r *CourseRepository) GetCoursesByIDs(ctx context.Context, ids []int64) ([]models.Course, error) {
	sql, args, err := r.sb.Select("id", "code", "name", "credits", "level", "department_id").
		From("courses").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get courses SQL")
		return nil, fmt.Errorf("failed to build courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying courses")
		return nil, fmt.Errorf("error querying courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		var (
			c     models.Course
			level int16
		)
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Credits, &level, &c.DepartmentID); err != nil {
			logger.Error().Err(err).Msg("Error scanning course row")
			return nil, fmt.Errorf("error scanning course: %w", err)
		}
		c.Level = models.CourseLevel(level)
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating courses: %w", err)
	}
	return courses, nil
}

// GetPrerequisites returns the prerequisite edges owned by the given courses,
// joined with the prerequisite course's code and name
func (r *CourseRepository) GetPrerequisites(ctx context.Context, courseIDs []int64) ([]models.CoursePrerequisite, error) {
	sql, args, err := r.sb.Select("cp.course_id", "cp.prerequisite_id", "c.code", "c.name").
		From("course_prerequisites cp").
		Join("courses c ON c.id = cp.prerequisite_id").
		Where(squirrel.Eq{"cp.course_id": courseIDs}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building prerequisites SQL")
		return nil, fmt.Errorf("failed to build prerequisites query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying prerequisites")
		return nil, fmt.Errorf("error querying prerequisites: %w", err)
	}
	defer rows.Close()

	edges := []models.CoursePrerequisite{}
	for rows.Next() {
		var e models.CoursePrerequisite
		if err := rows.Scan(&e.CourseID, &e.PrerequisiteID, &e.PrerequisiteCode, &e.PrerequisiteName); err != nil {
			logger.Error().Err(err).Msg("Error scanning prerequisite row")
			return nil, fmt.Errorf("error scanning prerequisite: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prerequisites: %w", err)
	}
	return edges, nil
}

// poolQuery selects course IDs at the given levels, limited to the named departments unless
// anyFaculty is set
func (r *CourseRepository) poolQuery(levels []models.CourseLevel, anyFaculty bool, departments []string) squirrel.SelectBuilder {
	levelValues := make([]int, 0, len(levels))
	for _, l := range levels {
		levelValues = append(levelValues, int(l))
	}

	q := r.sb.Select("courses.id").
		From("courses").
		Where(squirrel.Eq{"courses.level": levelValues})

	if !anyFaculty {
		q = q.Join("departments ON departments.id = courses.department_id").
			Where(squirrel.Eq{"departments.name": departments})
	}
	return q
}

// FindPoolCourseIDs returns the IDs of courses matching a pool requirement's filters
func (r *CourseRepository) FindPoolCourseIDs(ctx context.Context, levels []models.CourseLevel, anyFaculty bool, departments []string) ([]int64, error) {
	sql, args, err := r.poolQuery(levels, anyFaculty, departments).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building pool courses SQL")
		return nil, fmt.Errorf("failed to build pool query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying pool courses")
		return nil, fmt.Errorf("error querying pool courses: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning pool course: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pool courses: %w", err)
	}
	return ids, nil
}

// GetCourseNames returns course names keyed by ID for the given IDs
func (r *CourseRepository) GetCourseNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	courses, err := r.GetCoursesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(courses))
	for _, c := range courses {
		names[c.ID] = c.Name
	}
	return names, nil
}
