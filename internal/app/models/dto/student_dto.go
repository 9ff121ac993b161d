package dto

import (
	"github.com/yigit/campus/internal/app/models"
)

// CreateStudentRequest is the multipart form for a new student. The optional
// photo travels in the "image" file field.
type CreateStudentRequest struct {
	IDNo      string `form:"idno" binding:"required,max=32"`
	LastName  string `form:"lastname" binding:"required,max=100"`
	FirstName string `form:"firstname" binding:"required,max=100"`
	Course    string `form:"course" binding:"required,max=100"`
	Level     string `form:"level" binding:"required,max=20"`
}

// UpdateStudentRequest is the multipart form for editing a student; the ID number comes from the path
type UpdateStudentRequest struct {
	LastName  string `form:"lastname" binding:"required,max=100"`
	FirstName string `form:"firstname" binding:"required,max=100"`
	Course    string `form:"course" binding:"required,max=100"`
	Level     string `form:"level" binding:"required,max=20"`
}

// StudentResponse is a student with its photo rewritten to a servable path,
// or null when there is none.
type StudentResponse struct {
	IDNo      string  `json:"idno" example:"2021-0001"`
	LastName  string  `json:"lastname" example:"Doe"`
	FirstName string  `json:"firstname" example:"Jane"`
	Course    string  `json:"course" example:"BSCS"`
	Level     string  `json:"level" example:"1"`
	Image     *string `json:"image" example:"/static/uploads/2021-0001_jane.png"`
}

// NewStudentResponse converts the model; urlFor maps a blob name to its public path
func NewStudentResponse(s *models.Student, urlFor func(string) string) StudentResponse {
	resp := StudentResponse{
		IDNo:      s.IDNo,
		LastName:  s.LastName,
		FirstName: s.FirstName,
		Course:    s.Course,
		Level:     s.Level,
	}
	if s.HasImage() {
		url := urlFor(s.Image.String)
		resp.Image = &url
	}
	return resp
}

// NewStudentResponses converts a list of models
func NewStudentResponses(students []*models.Student, urlFor func(string) string) []StudentResponse {
	out := make([]StudentResponse, 0, len(students))
	for _, s := range students {
		out = append(out, NewStudentResponse(s, urlFor))
	}
	return out
}
