package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/degreetracker/internal/app/models"
	"github.com/yigit/degreetracker/internal/pkg/apperrors"
)

type execCall struct {
	sql  string
	args []any
}

// recordingTx captures statements; the embedded interface panics on anything else
type recordingTx struct {
	pgx.Tx
	execs      []execCall
	failOn     int // 1-based statement index that fails, 0 for none
	failErr    error
	committed  bool
	rolledBack bool
}

func (t *recordingTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, execCall{sql: sql, args: args})
	if t.failOn == len(t.execs) {
		return pgconn.CommandTag{}, t.failErr
	}
	return pgconn.NewCommandTag("DELETE 0"), nil
}

func (t *recordingTx) Commit(context.Context) error   { t.committed = true; return nil }
func (t *recordingTx) Rollback(context.Context) error { t.rolledBack = true; return nil }

// txOnlyDB hands out a single recordingTx; direct queries are not expected
type txOnlyDB struct {
	DBTX
	tx *recordingTx
}

func (d *txOnlyDB) Begin(context.Context) (pgx.Tx, error) { return d.tx, nil }

func strPtr(s string) *string { return &s }

func TestStudentCourseRepository_ReplaceAll(t *testing.T) {
	tx := &recordingTx{}
	repo := NewStudentCourseRepository(&txOnlyDB{tx: tx})

	err := repo.ReplaceAll(context.Background(), 7, []models.StudentCourse{
		{ID: "a", CourseID: 101, Grade: "A", RequirementID: strPtr("r1")},
		{ID: "b", CourseID: 102, Grade: "B+"},
	})
	require.NoError(t, err)

	require.Len(t, tx.execs, 3)
	assert.Equal(t, "DELETE FROM student_courses WHERE student_id = $1", tx.execs[0].sql)
	assert.Equal(t, []any{int64(7)}, tx.execs[0].args)

	assert.Equal(t,
		"INSERT INTO student_courses (id,student_id,course_id,grade,requirement_id) VALUES ($1,$2,$3,$4,$5)",
		tx.execs[1].sql)
	assert.Equal(t, []any{"a", int64(7), int64(101), "A", "r1"}, tx.execs[1].args)

	assert.Equal(t,
		"INSERT INTO student_courses (id,student_id,course_id,grade) VALUES ($1,$2,$3,$4)",
		tx.execs[2].sql, "requirement_id is left out when absent")

	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
}

func TestStudentCourseRepository_ReplaceAll_RollsBack(t *testing.T) {
	tx := &recordingTx{failOn: 2, failErr: errors.New("connection reset")}
	repo := NewStudentCourseRepository(&txOnlyDB{tx: tx})

	err := repo.ReplaceAll(context.Background(), 7, []models.StudentCourse{
		{ID: "a", CourseID: 101, Grade: "A"},
		{ID: "b", CourseID: 102, Grade: "B"},
	})
	require.Error(t, err)

	assert.Len(t, tx.execs, 2, "no insert after the failing one")
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestStudentCourseRepository_ReplaceAll_MapsConstraintErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
		want error
	}{
		{name: "unique violation", code: "23505", want: apperrors.ErrConflict},
		{name: "foreign key violation", code: "23503", want: apperrors.ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &recordingTx{failOn: 2, failErr: &pgconn.PgError{Code: tt.code}}
			repo := NewStudentCourseRepository(&txOnlyDB{tx: tx})

			err := repo.ReplaceAll(context.Background(), 1, []models.StudentCourse{{ID: "a", CourseID: 5, Grade: "C"}})
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, tx.rolledBack)
		})
	}
}

func TestStudentCourseRepository_Delete(t *testing.T) {
	tx := &recordingTx{}
	repo := NewStudentCourseRepository(&txOnlyDB{tx: tx})

	require.NoError(t, repo.Delete(context.Background(), 3, 101, "r1"), "deleting an absent row succeeds")

	require.Len(t, tx.execs, 1)
	assert.Equal(t,
		"DELETE FROM student_courses WHERE course_id = $1 AND requirement_id = $2 AND student_id = $3",
		tx.execs[0].sql)
	assert.Equal(t, []any{int64(101), "r1", int64(3)}, tx.execs[0].args)
	assert.True(t, tx.committed)
}

func TestCourseRepository_PoolQuery(t *testing.T) {
	repo := NewCourseRepository(nil)

	sql, args, err := repo.poolQuery([]models.CourseLevel{models.LevelI}, true, []string{"Ignored"}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT courses.id FROM courses WHERE courses.level IN ($1)", sql)
	assert.Equal(t, []any{1}, args)

	sql, args, err = repo.poolQuery([]models.CourseLevel{models.LevelI, models.LevelII}, false, []string{"Physics", "Chemistry"}).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT courses.id FROM courses JOIN departments ON departments.id = courses.department_id "+
			"WHERE courses.level IN ($1,$2) AND departments.name IN ($3,$4)",
		sql)
	assert.Equal(t, []any{1, 2, "Physics", "Chemistry"}, args)

	sql, _, err = repo.poolQuery([]models.CourseLevel{models.LevelIII}, false, []string{}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "(1=0)", "an empty faculty list matches no course")
}

func TestProgramRepository_Query(t *testing.T) {
	repo := NewProgramRepository(nil)

	sql, args, err := repo.programWithRequirementsQuery(4).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT p.id, p.name, pr.id, pr.type, pr.level, pr.credits, pr.details::text FROM programs p "+
			"LEFT JOIN program_requirements pr ON pr.program_id = p.id WHERE p.id = $1 ORDER BY pr.position ASC",
		sql)
	assert.Equal(t, []any{int64(4)}, args)
}

func TestProgramRepository_ByNameQuery(t *testing.T) {
	repo := NewProgramRepository(nil)

	sql, args, err := repo.programByNameQuery("  Computer_Science 100% ").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM programs WHERE LOWER(name) = $1 ORDER BY id ASC LIMIT 1", sql)
	assert.Equal(t, []any{"computer_science 100%"}, args, "wildcard characters are compared literally")
	assert.NotContains(t, sql, "ILIKE")
}
