// Package seed loads program requirements from a majors data file
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/degreetracker/internal/app/models"
	"github.com/yigit/degreetracker/internal/app/repositories"
	"github.com/yigit/degreetracker/internal/db"
)

// Major is one program entry of the data file
type Major struct {
	Name    string        `json:"name"`
	Details []MajorDetail `json:"details"`
}

// MajorDetail is one requirement of a major
type MajorDetail struct {
	Type    models.RequirementType    `json:"type"`
	Level   int                       `json:"level"`
	Credits int                       `json:"credits"`
	Data    models.RequirementDetails `json:"data"`
}

// Store is what the seeder needs from the database, scoped to one transaction
type Store interface {
	DeleteAllRequirements(ctx context.Context) (int64, error)
	FindProgramIDByName(ctx context.Context, name string) (int64, error)
	InsertRequirement(ctx context.Context, req models.ProgramRequirement, position int) error
	GetCourseNames(ctx context.Context, ids []int64) (map[int64]string, error)
	ExistingNames(ctx context.Context, names []string) (map[string]bool, error)
}

// Result summarizes a seed run
type Result struct {
	Deleted         int64
	Programs        int
	Requirements    int
	SkippedPrograms []string
}

type txStore struct {
	*repositories.ProgramRepository
	*repositories.CourseRepository
	*repositories.DepartmentRepository
}

// StoreForTx builds the repository-backed Store on a transaction
func StoreForTx(tx pgx.Tx) Store {
	repos := repositories.NewRepositories(tx)
	return txStore{
		ProgramRepository:    repos.ProgramRepository,
		CourseRepository:     repos.CourseRepository,
		DepartmentRepository: repos.DepartmentRepository,
	}
}

// Seeder replaces every program requirement with the contents of a majors file
type Seeder struct {
	db       db.Beginner
	storeFor func(pgx.Tx) Store
	newID    func() string
	logger   zerolog.Logger
}

// NewSeeder creates a new Seeder
func NewSeeder(database db.Beginner, storeFor func(pgx.Tx) Store, logger zerolog.Logger) *Seeder {
	return &Seeder{
		db:       database,
		storeFor: storeFor,
		newID:    uuid.NewString,
		logger:   logger,
	}
}

// ReadMajors decodes a majors data file
func ReadMajors(r io.Reader) ([]Major, error) {
	var majors []Major
	if err := json.NewDecoder(r).Decode(&majors); err != nil {
		return nil, fmt.Errorf("failed to decode majors: %w", err)
	}
	for _, major := range majors {
		if strings.TrimSpace(major.Name) == "" {
			return nil, errors.New("major without a name")
		}
		for i, detail := range major.Details {
			if !detail.Type.IsKnown() {
				return nil, fmt.Errorf("major %q detail %d: unknown requirement type %q", major.Name, i, detail.Type)
			}
		}
	}
	return majors, nil
}

// ReadMajorsFile decodes the majors data file at path
func ReadMajorsFile(path string) ([]Major, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open majors file: %w", err)
	}
	defer f.Close()
	return ReadMajors(f)
}

// Run deletes every requirement and inserts the requirements of majors, all in one transaction.
// Majors naming no known program are skipped with a warning.
func (s *Seeder) Run(ctx context.Context, majors []Major) (*Result, error) {
	result := &Result{}

	err := db.RunInTx(ctx, s.db, func(ctx context.Context, tx pgx.Tx) error {
		store := s.storeFor(tx)

		deleted, err := store.DeleteAllRequirements(ctx)
		if err != nil {
			return err
		}
		result.Deleted = deleted
		s.logger.Info().Int64("deleted", deleted).Msg("Existing requirements removed")

		for _, major := range majors {
			programID, err := store.FindProgramIDByName(ctx, major.Name)
			if errors.Is(err, repositories.ErrNotFound) {
				s.logger.Warn().Str("major", major.Name).Msg("No program matches major, skipping")
				result.SkippedPrograms = append(result.SkippedPrograms, major.Name)
				continue
			}
			if err != nil {
				return err
			}
			s.logger.Info().Str("major", major.Name).Int64("programID", programID).Msg("Seeding program")

			for position, detail := range major.Details {
				req := models.ProgramRequirement{
					ID:        s.newID(),
					ProgramID: programID,
					Type:      detail.Type,
					Level:     detail.Level,
					Credits:   detail.Credits,
					Details:   detail.Data,
				}
				if err := store.InsertRequirement(ctx, req, position); err != nil {
					return err
				}
				result.Requirements++
				s.logger.Info().Str("type", string(req.Type)).Int("level", req.Level).Int("credits", req.Credits).Msg("Requirement inserted")

				if err := s.logDetail(ctx, store, major.Name, detail.Data); err != nil {
					return err
				}
			}
			result.Programs++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("seed failed: %w", err)
	}
	return result, nil
}

// logDetail reports the courses a detail lists and any pool faculty with no department behind it
func (s *Seeder) logDetail(ctx context.Context, store Store, major string, details models.RequirementDetails) error {
	if len(details.Courses) > 0 {
		names, err := store.GetCourseNames(ctx, details.Courses)
		if err != nil {
			return err
		}
		matched := make([]string, 0, len(names))
		for _, id := range details.Courses {
			if name, ok := names[id]; ok {
				matched = append(matched, name)
			} else {
				s.logger.Warn().Str("major", major).Int64("courseID", id).Msg("Listed course does not exist")
			}
		}
		s.logger.Info().Strs("courses", matched).Msg("Matched courses")
	}

	if details.AnyFaculty() || len(details.FacultyPool.Names) == 0 {
		return nil
	}
	existing, err := store.ExistingNames(ctx, details.FacultyPool.Names)
	if err != nil {
		return err
	}
	var unknown []string
	for _, name := range details.FacultyPool.Names {
		if !existing[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		s.logger.Warn().Str("major", major).Strs("faculties", unknown).Msg("Pool names departments that do not exist")
	}
	return nil
}
