package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/degreetracker/internal/app/models"
	"github.com/yigit/degreetracker/internal/db"
	"github.com/yigit/degreetracker/internal/pkg/apperrors"
	"github.com/yigit/degreetracker/internal/pkg/dberrors"
	"github.com/yigit/degreetracker/internal/pkg/logger"
)

// StudentCourseRepository handles a student's recorded courses
type StudentCourseRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewStudentCourseRepository creates a new StudentCourseRepository
func NewStudentCourseRepository(db DBTX) *StudentCourseRepository {
	return &StudentCourseRepository{db: db, sb: psql}
}

// GetByStudentID returns the student's records joined with their courses, in store order
func (r *StudentCourseRepository) GetByStudentID(ctx context.Context, studentID int64) ([]models.StudentCourseRow, error) {
	sql, args, err := r.sb.Select(
		"sc.course_id", "sc.grade", "sc.requirement_id::text",
		"c.id", "c.code", "c.name", "c.level", "c.credits",
	).
		From("student_courses sc").
		Join("courses c ON c.id = sc.course_id").
		Where(squirrel.Eq{"sc.student_id": studentID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building student courses SQL")
		return nil, fmt.Errorf("failed to build student courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error querying student courses")
		return nil, fmt.Errorf("error querying student courses: %w", err)
	}
	defer rows.Close()

	records := []models.StudentCourseRow{}
	for rows.Next() {
		var (
			rec   models.StudentCourseRow
			level int16
		)
		if err := rows.Scan(&rec.CourseID, &rec.Grade, &rec.RequirementID,
			&rec.Course.ID, &rec.Course.Code, &rec.Course.Name, &level, &rec.Course.Credits); err != nil {
			logger.Error().Err(err).Msg("Error scanning student course row")
			return nil, fmt.Errorf("error scanning student course: %w", err)
		}
		rec.Course.Level = models.CourseLevel(level)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student courses: %w", err)
	}
	return records, nil
}

// ReplaceAll deletes every record of the student and inserts the given ones, in one transaction
func (r *StudentCourseRepository) ReplaceAll(ctx context.Context, studentID int64, records []models.StudentCourse) error {
	deleteSQL, deleteArgs, err := r.sb.Delete("student_courses").
		Where(squirrel.Eq{"student_id": studentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete student courses query: %w", err)
	}

	return db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteSQL, deleteArgs...); err != nil {
			logger.Error().Err(err).Int64("studentID", studentID).Msg("Error deleting student courses")
			return fmt.Errorf("error deleting student courses: %w", err)
		}

		for _, rec := range records {
			sql, args, err := r.insertQuery(studentID, rec).ToSql()
			if err != nil {
				return fmt.Errorf("failed to build insert student course query: %w", err)
			}
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				logger.Error().Err(err).
					Int64("studentID", studentID).
					Int64("courseID", rec.CourseID).
					Msg("Error inserting student course")
				return mapStudentCourseError(err)
			}
		}
		return nil
	})
}

// insertQuery builds the insert for one record; requirement_id is only written when present
func (r *StudentCourseRepository) insertQuery(studentID int64, rec models.StudentCourse) squirrel.InsertBuilder {
	columns := []string{"id", "student_id", "course_id", "grade"}
	values := []any{rec.ID, studentID, rec.CourseID, rec.Grade}
	if rec.RequirementID != nil {
		columns = append(columns, "requirement_id")
		values = append(values, *rec.RequirementID)
	}
	return r.sb.Insert("student_courses").Columns(columns...).Values(values...)
}

// Delete removes the student's record of a course under a requirement. A missing row is not an error.
func (r *StudentCourseRepository) Delete(ctx context.Context, studentID, courseID int64, requirementID string) error {
	sql, args, err := r.sb.Delete("student_courses").
		Where(squirrel.Eq{
			"student_id":     studentID,
			"course_id":      courseID,
			"requirement_id": requirementID,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete student course query: %w", err)
	}

	return db.RunInTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			logger.Error().Err(err).
				Int64("studentID", studentID).
				Int64("courseID", courseID).
				Msg("Error deleting student course")
			return fmt.Errorf("error deleting student course: %w", err)
		}
		if tag.RowsAffected() == 0 {
			logger.Debug().Int64("studentID", studentID).Int64("courseID", courseID).Msg("No student course to delete")
		}
		return nil
	})
}

func mapStudentCourseError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, ""):
		return apperrors.NewConflictError("Course recorded twice for the same requirement")
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.NewValidationError("Unknown course or requirement")
	default:
		return fmt.Errorf("error inserting student course: %w", err)
	}
}
