package models

// Course represents a course offered by a department.
type Course struct {
	ID           int64       `json:"id" db:"id"`
	Code         string      `json:"code" db:"code"`
	Name         string      `json:"name" db:"name"`
	Credits      int         `json:"credits" db:"credits"`
	Level        CourseLevel `json:"level" db:"level"`
	DepartmentID int64       `json:"departmentId" db:"department_id"`
}

// PrerequisiteSummary identifies a course required before another one
type PrerequisiteSummary struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// CoursePrerequisite is a directed edge: CourseID requires PrerequisiteID
type CoursePrerequisite struct {
	CourseID         int64  `db:"course_id"`
	PrerequisiteID   int64  `db:"prerequisite_id"`
	PrerequisiteCode string `db:"code"`
	PrerequisiteName string `db:"name"`
}

// CourseWithPrerequisites is a course row plus its prerequisite list
type CourseWithPrerequisites struct {
	Course
	Prerequisites []PrerequisiteSummary `json:"prerequisites"`
}
