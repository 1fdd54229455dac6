package models

// Faculty represents a faculty at the university
type Faculty struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// Department represents a department in a faculty. Pool requirements filter courses by
// department name.
type Department struct {
	ID        int64    `json:"id"`
	FacultyID int64    `json:"facultyId"`
	Name      string   `json:"name"`
	Code      string   `json:"code"`
	Faculty   *Faculty `json:"faculty,omitempty"`
}
