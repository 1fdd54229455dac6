package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent RoleType = "STUDENT"
	RoleAdmin   RoleType = "ADMIN"
)

// CourseLevel is the year level of a course: I, II or III, stored as 1, 2 or 3
type CourseLevel int

const (
	LevelI   CourseLevel = 1
	LevelII  CourseLevel = 2
	LevelIII CourseLevel = 3
)

// ParseCourseLevel maps a roman level label to its stored value.
// Anything other than "I" or "II" is treated as level III.
func ParseCourseLevel(label string) CourseLevel {
	switch label {
	case "I":
		return LevelI
	case "II":
		return LevelII
	default:
		return LevelIII
	}
}

// String returns the roman label of the level
func (l CourseLevel) String() string {
	switch l {
	case LevelI:
		return "I"
	case LevelII:
		return "II"
	case LevelIII:
		return "III"
	default:
		return "?"
	}
}
