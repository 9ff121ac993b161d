package controllers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/services"
	"github.com/yigit/campus/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// listOnlyStudents serves ListStudents from memory
type listOnlyStudents struct {
	services.StudentService
	students []*models.Student
	err      error
}

func (f listOnlyStudents) ListStudents(context.Context) ([]*models.Student, error) {
	return f.students, f.err
}

func (f listOnlyStudents) ImageURL(name string) string {
	return "/static/uploads/" + name
}

func serveLegacy(svc services.StudentService) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/api/get_students", NewLegacyController(svc, zerolog.Nop()).GetStudents)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/get_students", nil))
	return rec
}

func TestLegacyGetStudents(t *testing.T) {
	rec := serveLegacy(listOnlyStudents{students: []*models.Student{
		{IDNo: "001", LastName: "Doe", FirstName: "Jane", Course: "CS", Level: "1", Image: sql.NullString{String: "001_me.png", Valid: true}},
		{IDNo: "002", LastName: "Roe", FirstName: "Rick", Course: "IT", Level: "2"},
	}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[
		{"idno":"001","lastname":"Doe","firstname":"Jane","course":"CS","level":"1","image":"/static/uploads/001_me.png"},
		{"idno":"002","lastname":"Roe","firstname":"Rick","course":"IT","level":"2","image":null}
	]`, rec.Body.String())
}

func TestLegacyGetStudentsHidesStoreErrors(t *testing.T) {
	cause := apperrors.NewStoreError("fetch_all", "students", apperrors.ErrStoreUnavailable,
		errors.New("unable to open database file: /srv/db/campus_data.db"))

	rec := serveLegacy(listOnlyStudents{err: cause})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to load students"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "campus_data.db")
}
