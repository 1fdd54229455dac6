package dto

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/yigit/degreetracker/internal/pkg/apperrors"
)

const (
	courseFieldPrefix = "courses["
	gradeFieldSuffix  = "].grade"
)

// CourseEntry is one row of the save-changes form
type CourseEntry struct {
	CourseID      int64  `json:"courseId" validate:"gt=0"`
	Grade         string `json:"grade" validate:"max=8,grade"`
	RequirementID string `json:"requirementId" validate:"omitempty,uuid"`
}

// ParseCourseEntries collects the courses[<id>].grade / courses[<id>].requirementId pairs of a
// submitted form, ordered by course ID. A field sent more than once keeps its last non-blank
// value. Entries with an empty grade are kept; the caller decides what an empty grade means.
func ParseCourseEntries(form url.Values) ([]CourseEntry, error) {
	entries := make([]CourseEntry, 0)
	for key, values := range form {
		if !strings.HasPrefix(key, courseFieldPrefix) || !strings.HasSuffix(key, gradeFieldSuffix) {
			continue
		}

		rawID := key[len(courseFieldPrefix) : len(key)-len(gradeFieldSuffix)]
		courseID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("Invalid course ID %q", rawID))
		}

		entries = append(entries, CourseEntry{
			CourseID:      courseID,
			Grade:         lastNonEmpty(values),
			RequirementID: lastNonEmpty(form[courseFieldPrefix+rawID+"].requirementId"]),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].CourseID < entries[j].CourseID })
	return entries, nil
}

// lastNonEmpty returns the last non-blank value of a repeated field
func lastNonEmpty(values []string) string {
	for i := len(values) - 1; i >= 0; i-- {
		if v := strings.TrimSpace(values[i]); v != "" {
			return v
		}
	}
	return ""
}

// RemoveCourseRequest is the remove-course form. Both fields are checked by the service so the
// caller is authenticated before the form is judged.
type RemoveCourseRequest struct {
	CourseID      string `form:"courseId" json:"courseId"`
	RequirementID string `form:"requirementId" json:"requirementId" validate:"omitempty,uuid"`
}
