package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RequirementType is the kind of a program requirement
type RequirementType string

const (
	// RequirementCredits is satisfied by credits earned, optionally from an explicit course list
	RequirementCredits RequirementType = "CREDITS"
	// RequirementPool is satisfied by any course matching level and faculty filters
	RequirementPool RequirementType = "POOL"
)

// IsKnown reports whether t is one of the requirement kinds the tracker evaluates
func (t RequirementType) IsKnown() bool {
	return t == RequirementCredits || t == RequirementPool
}

// Program is a degree program with its ordered requirement list
type Program struct {
	ID           int64                `json:"id"`
	Name         string               `json:"name"`
	Requirements []ProgramRequirement `json:"requirements"`
}

// ProgramRequirement is one rule a program imposes
type ProgramRequirement struct {
	ID        string             `json:"id"`
	ProgramID int64              `json:"programId"`
	Type      RequirementType    `json:"type"`
	Level     int                `json:"level"`
	Credits   int                `json:"credits"`
	Details   RequirementDetails `json:"details"`
}

// RequirementDetails is the kind-specific payload of a requirement.
// CREDITS requirements may carry Courses; POOL requirements carry LevelPool and FacultyPool.
type RequirementDetails struct {
	Courses     CourseIDList `json:"courses,omitempty"`
	Area        []string     `json:"area,omitempty"`
	LevelPool   []string     `json:"levelPool,omitempty"`
	FacultyPool *FacultyPool `json:"facultyPool,omitempty"`
}

// HasCourseList reports whether the details carry an explicit course list
func (d RequirementDetails) HasCourseList() bool {
	return d.Courses != nil
}

// PoolLevels returns the stored course levels selected by LevelPool
func (d RequirementDetails) PoolLevels() []CourseLevel {
	levels := make([]CourseLevel, 0, len(d.LevelPool))
	for _, label := range d.LevelPool {
		levels = append(levels, ParseCourseLevel(label))
	}
	return levels
}

// AnyFaculty reports whether the pool accepts courses from every department.
// A missing facultyPool is treated like "any".
func (d RequirementDetails) AnyFaculty() bool {
	return d.FacultyPool == nil || d.FacultyPool.Any
}

// ParseRequirementDetails decodes a stored details payload. The store may hand back the
// JSON object itself or a JSON string holding the encoded object; both decode the same.
func ParseRequirementDetails(raw []byte) (RequirementDetails, error) {
	var details RequirementDetails

	raw = bytes.TrimSpace(raw)
	// unwrap at most twice: text column -> JSON string -> object
	for i := 0; i < 2 && len(raw) > 0 && raw[0] == '"'; i++ {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return details, fmt.Errorf("decode requirement details string: %w", err)
		}
		raw = bytes.TrimSpace([]byte(inner))
	}

	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return details, nil
	}

	if err := json.Unmarshal(raw, &details); err != nil {
		return details, fmt.Errorf("decode requirement details: %w", err)
	}
	return details, nil
}

// FacultyPool is either the literal "any" or an explicit list of department names
type FacultyPool struct {
	Any   bool
	Names []string
}

// AnyFacultyPool returns a pool matching every department
func AnyFacultyPool() *FacultyPool {
	return &FacultyPool{Any: true}
}

// FacultyPoolOf returns a pool limited to the named departments
func FacultyPoolOf(names ...string) *FacultyPool {
	return &FacultyPool{Names: append([]string{}, names...)}
}

// UnmarshalJSON accepts "any", a single name, or a list of names
func (p *FacultyPool) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "any" {
			*p = FacultyPool{Any: true}
		} else {
			*p = FacultyPool{Names: []string{s}}
		}
		return nil
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("facultyPool must be \"any\" or a list of names: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	*p = FacultyPool{Names: names}
	return nil
}

// MarshalJSON writes "any" or the list of names
func (p FacultyPool) MarshalJSON() ([]byte, error) {
	if p.Any {
		return json.Marshal("any")
	}
	names := p.Names
	if names == nil {
		names = []string{}
	}
	return json.Marshal(names)
}

// CourseIDList is a list of course IDs. Data files write them as numbers or numeric strings.
type CourseIDList []int64

// UnmarshalJSON accepts numbers and numeric strings
func (l *CourseIDList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("courses must be a list: %w", err)
	}

	ids := make(CourseIDList, 0, len(items))
	for _, item := range items {
		var n int64
		if err := json.Unmarshal(item, &n); err == nil {
			ids = append(ids, n)
			continue
		}
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			return fmt.Errorf("invalid course id %s", string(item))
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid course id %q: %w", s, err)
		}
		ids = append(ids, n)
	}
	*l = ids
	return nil
}

// RequirementRow is a program_requirements row with its details payload as stored
type RequirementRow struct {
	ID         string
	ProgramID  int64
	Type       RequirementType
	Level      int
	Credits    int
	RawDetails []byte
}
