package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/degreetracker/internal/app/models"
	"github.com/yigit/degreetracker/internal/pkg/logger"
)

// ProgramRepository handles programs and their requirement rows
type ProgramRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewProgramRepository creates a new ProgramRepository
func NewProgramRepository(db DBTX) *ProgramRepository {
	return &ProgramRepository{db: db, sb: psql}
}

// programWithRequirementsQuery left-joins a program with its requirements in position order
func (r *ProgramRepository) programWithRequirementsQuery(programID int64) squirrel.SelectBuilder {
	return r.sb.Select(
		"p.id", "p.name",
		"pr.id", "pr.type", "pr.level", "pr.credits", "pr.details::text",
	).
		From("programs p").
		LeftJoin("program_requirements pr ON pr.program_id = p.id").
		Where(squirrel.Eq{"p.id": programID}).
		OrderBy("pr.position ASC")
}

// GetProgramWithRequirements returns the program row and its raw requirement rows.
// ErrNotFound is returned when the program does not exist; a program without requirements
// comes back with an empty row list.
func (r *ProgramRepository) GetProgramWithRequirements(ctx context.Context, programID int64) (*models.Program, []models.RequirementRow, error) {
	sql, args, err := r.programWithRequirementsQuery(programID).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building program requirements SQL")
		return nil, nil, fmt.Errorf("failed to build program query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("programID", programID).Msg("Error querying program requirements")
		return nil, nil, fmt.Errorf("error querying program: %w", err)
	}
	defer rows.Close()

	var program *models.Program
	requirements := []models.RequirementRow{}
	for rows.Next() {
		var (
			id                        int64
			name                      string
			reqID, reqType, reqDetail *string
			reqLevel, reqCredits      *int32
		)
		if err := rows.Scan(&id, &name, &reqID, &reqType, &reqLevel, &reqCredits, &reqDetail); err != nil {
			logger.Error().Err(err).Msg("Error scanning program requirement row")
			return nil, nil, fmt.Errorf("error scanning program: %w", err)
		}
		if program == nil {
			program = &models.Program{ID: id, Name: name}
		}
		if reqID == nil {
			continue
		}

		row := models.RequirementRow{ID: *reqID, ProgramID: id}
		if reqType != nil {
			row.Type = models.RequirementType(*reqType)
		}
		if reqLevel != nil {
			row.Level = int(*reqLevel)
		}
		if reqCredits != nil {
			row.Credits = int(*reqCredits)
		}
		if reqDetail != nil {
			row.RawDetails = []byte(*reqDetail)
		}
		requirements = append(requirements, row)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating program requirement rows")
		return nil, nil, fmt.Errorf("error iterating program rows: %w", err)
	}

	if program == nil {
		return nil, nil, ErrNotFound
	}
	return program, requirements, nil
}

// programByNameQuery matches the name exactly, ignoring case; % and _ are not wildcards
func (r *ProgramRepository) programByNameQuery(name string) squirrel.SelectBuilder {
	return r.sb.Select("id").
		From("programs").
		Where(squirrel.Eq{"LOWER(name)": strings.ToLower(strings.TrimSpace(name))}).
		OrderBy("id ASC").
		Limit(1)
}

// FindProgramIDByName looks a program up by case-insensitive name match
func (r *ProgramRepository) FindProgramIDByName(ctx context.Context, name string) (int64, error) {
	sql, args, err := r.programByNameQuery(name).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build program lookup query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		logger.Error().Err(err).Str("name", name).Msg("Error looking up program by name")
		return 0, fmt.Errorf("error looking up program: %w", err)
	}
	return id, nil
}

// DeleteAllRequirements removes every requirement row and returns the number deleted
func (r *ProgramRepository) DeleteAllRequirements(ctx context.Context) (int64, error) {
	sql, args, err := r.sb.Delete("program_requirements").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete requirements query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error deleting program requirements")
		return 0, fmt.Errorf("error deleting program requirements: %w", err)
	}
	return tag.RowsAffected(), nil
}

// InsertRequirement stores one requirement at the given position
func (r *ProgramRepository) InsertRequirement(ctx context.Context, req models.ProgramRequirement, position int) error {
	details, err := json.Marshal(req.Details)
	if err != nil {
		return fmt.Errorf("failed to encode requirement details: %w", err)
	}

	sql, args, err := r.sb.Insert("program_requirements").
		Columns("id", "program_id", "type", "level", "credits", "details", "position").
		Values(req.ID, req.ProgramID, string(req.Type), req.Level, req.Credits, string(details), position).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert requirement query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("programID", req.ProgramID).Msg("Error inserting program requirement")
		return fmt.Errorf("error inserting program requirement: %w", err)
	}
	return nil
}
