package models

// Student defines the student model based on the 'students' table
type Student struct {
	ID         int64  `json:"id" db:"id" example:"1"`                     // Unique identifier for the student record
	UserID     int64  `json:"userId" db:"user_id" example:"5"`            // ID of the associated user account
	Identifier string `json:"identifier" db:"identifier" example:"12345"` // Student number
	ProgramID  int64  `json:"programId" db:"program_id" example:"3"`      // Program the student is enrolled in
}
