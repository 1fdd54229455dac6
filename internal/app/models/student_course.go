package models

// StudentCourse is a student's record of a course taken against a requirement
type StudentCourse struct {
	ID            string  `json:"id" db:"id"`
	StudentID     int64   `json:"studentId" db:"student_id"`
	CourseID      int64   `json:"courseId" db:"course_id"`
	RequirementID *string `json:"requirementId" db:"requirement_id"` // NULL when recorded without a requirement
	Grade         string  `json:"grade" db:"grade"`
}

// CourseSummary is the course part of a student's grade record
type CourseSummary struct {
	ID      int64       `json:"id"`
	Code    string      `json:"code"`
	Name    string      `json:"name"`
	Level   CourseLevel `json:"level"`
	Credits int         `json:"credits"`
}

// StudentGrade is one entry of a student's record map, keyed by course ID
type StudentGrade struct {
	Grade         string        `json:"grade"`
	RequirementID *string       `json:"requirementId"`
	Course        CourseSummary `json:"course"`
}

// StudentCourseRow is a student_courses row joined with its course
type StudentCourseRow struct {
	CourseID      int64
	Grade         string
	RequirementID *string
	Course        CourseSummary
}
