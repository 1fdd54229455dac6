package models

// Identity is the authenticated caller as established by the session middleware
type Identity struct {
	UserID    int64    `json:"userId"`
	Email     string   `json:"email"`
	Role      RoleType `json:"role"`
	SessionID string   `json:"-"`
}

// DegreeTrackerView is everything the degree tracker page renders
type DegreeTrackerView struct {
	Program         Program                   `json:"program"`
	ProgramCourses  []CourseWithPrerequisites `json:"programCourses"`
	ElectiveCourses []CourseWithPrerequisites `json:"electiveCourses"`
	StudentCourses  map[int64]StudentGrade    `json:"studentCourses"`
	Requirements    []ProgramRequirement      `json:"requirements"`
}
