package services

import (
	"context"
	"slices"
	"sync"

	"github.com/yigit/degreetracker/internal/app/models"
	"github.com/yigit/degreetracker/internal/app/repositories"
)

// fakeStore is an in-memory stand-in for every store the degree tracker reads and writes
type fakeStore struct {
	mu    sync.Mutex
	calls int

	students        map[int64]*models.Student // keyed by user ID
	programs        map[int64]models.Program
	requirementRows map[int64][]models.RequirementRow
	courses         []models.Course
	departments     map[int64]string
	prerequisites   []models.CoursePrerequisite
	records         []models.StudentCourse

	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		students:        map[int64]*models.Student{},
		programs:        map[int64]models.Program{},
		requirementRows: map[int64][]models.RequirementRow{},
		departments:     map[int64]string{},
	}
}

func (f *fakeStore) touch() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeStore) GetStudentByUserID(_ context.Context, userID int64) (*models.Student, error) {
	f.touch()
	s, ok := f.students[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStore) GetProgramWithRequirements(_ context.Context, programID int64) (*models.Program, []models.RequirementRow, error) {
	f.touch()
	p, ok := f.programs[programID]
	if !ok {
		return nil, nil, repositories.ErrNotFound
	}
	return &p, append([]models.RequirementRow{}, f.requirementRows[programID]...), nil
}

func (f *fakeStore) GetCoursesByIDs(_ context.Context, ids []int64) ([]models.Course, error) {
	f.touch()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []models.Course{}
	for _, c := range f.courses {
		if slices.Contains(ids, c.ID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetPrerequisites(_ context.Context, courseIDs []int64) ([]models.CoursePrerequisite, error) {
	f.touch()
	out := []models.CoursePrerequisite{}
	for _, e := range f.prerequisites {
		if slices.Contains(courseIDs, e.CourseID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) FindPoolCourseIDs(_ context.Context, levels []models.CourseLevel, anyFaculty bool, departments []string) ([]int64, error) {
	f.touch()
	out := []int64{}
	for _, c := range f.courses {
		if !slices.Contains(levels, c.Level) {
			continue
		}
		if !anyFaculty && !slices.Contains(departments, f.departments[c.DepartmentID]) {
			continue
		}
		out = append(out, c.ID)
	}
	return out, nil
}

func (f *fakeStore) course(id int64) models.Course {
	for _, c := range f.courses {
		if c.ID == id {
			return c
		}
	}
	return models.Course{}
}

func (f *fakeStore) GetByStudentID(_ context.Context, studentID int64) ([]models.StudentCourseRow, error) {
	f.touch()
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.StudentCourseRow{}
	for _, r := range f.records {
		if r.StudentID != studentID {
			continue
		}
		c := f.course(r.CourseID)
		out = append(out, models.StudentCourseRow{
			CourseID:      r.CourseID,
			Grade:         r.Grade,
			RequirementID: r.RequirementID,
			Course: models.CourseSummary{
				ID: c.ID, Code: c.Code, Name: c.Name, Level: c.Level, Credits: c.Credits,
			},
		})
	}
	return out, nil
}

func (f *fakeStore) ReplaceAll(_ context.Context, studentID int64, records []models.StudentCourse) error {
	f.touch()
	if f.failWith != nil {
		return f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.records[:0:0]
	for _, r := range f.records {
		if r.StudentID != studentID {
			kept = append(kept, r)
		}
	}
	for _, r := range records {
		r.StudentID = studentID
		kept = append(kept, r)
	}
	f.records = kept
	return nil
}

func (f *fakeStore) Delete(_ context.Context, studentID, courseID int64, requirementID string) error {
	f.touch()
	if f.failWith != nil {
		return f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.records[:0:0]
	for _, r := range f.records {
		if r.StudentID == studentID && r.CourseID == courseID && r.RequirementID != nil && *r.RequirementID == requirementID {
			continue
		}
		kept = append(kept, r)
	}
	f.records = kept
	return nil
}

// recordKey identifies a record regardless of its generated ID
type recordKey struct {
	CourseID      int64
	RequirementID string
	Grade         string
}

func (f *fakeStore) recordSet(studentID int64) []recordKey {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []recordKey{}
	for _, r := range f.records {
		if r.StudentID != studentID {
			continue
		}
		k := recordKey{CourseID: r.CourseID, Grade: r.Grade}
		if r.RequirementID != nil {
			k.RequirementID = *r.RequirementID
		}
		out = append(out, k)
	}
	return out
}
