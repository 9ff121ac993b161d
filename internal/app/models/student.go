package models

import "database/sql"

// Student defines the student model based on the 'students' table
type Student struct {
	IDNo      string         `json:"idno" db:"idno" example:"2021-0001"` // Caller supplied, primary key
	LastName  string         `json:"lastname" db:"lastname" example:"Doe"`
	FirstName string         `json:"firstname" db:"firstname" example:"Jane"`
	Course    string         `json:"course" db:"course" example:"BSCS"`
	Level     string         `json:"level" db:"level" example:"1"`
	Image     sql.NullString `json:"-" db:"image"` // Blob store filename, NULL when no photo
}

// HasImage reports whether the student references a stored photo
func (s *Student) HasImage() bool {
	return s.Image.Valid && s.Image.String != ""
}
