package repositories

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned by lookups that match no row
var ErrNotFound = errors.New("record not found")

// DBTX is the store handle every repository runs on. *pgxpool.Pool and pgx.Tx both satisfy it,
// so a repository built on a transaction joins that transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// psql is the statement builder shared by the repositories
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository          *UserRepository
	StudentRepository       *StudentRepository
	ProgramRepository       *ProgramRepository
	CourseRepository        *CourseRepository
	StudentCourseRepository *StudentCourseRepository
	DepartmentRepository    *DepartmentRepository
}

// NewRepositories initializes all repositories on the given handle
func NewRepositories(db DBTX) *Repositories {
	return &Repositories{
		UserRepository:          NewUserRepository(db),
		StudentRepository:       NewStudentRepository(db),
		ProgramRepository:       NewProgramRepository(db),
		CourseRepository:        NewCourseRepository(db),
		StudentCourseRepository: NewStudentCourseRepository(db),
		DepartmentRepository:    NewDepartmentRepository(db),
	}
}
